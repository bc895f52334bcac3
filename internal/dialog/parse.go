package dialog

import (
	"strconv"
	"strings"

	"crewtrack/internal/domain"
)

const idSeparator = " - ID: "

// ParseCommand maps raw inbound text to the command union. Recognition is
// state-independent; each state decides which commands it accepts.
func ParseCommand(raw string) Command {
	txt := strings.TrimSpace(raw)

	if txt == "/start" {
		return CmdStart{}
	}
	if txt == "/register" || strings.HasPrefix(txt, "/register ") {
		arg := strings.TrimSpace(strings.TrimPrefix(txt, "/register"))
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil || id <= 0 {
			return CmdRegister{}
		}
		return CmdRegister{EmployeeID: id}
	}
	if txt == backCaption {
		return CmdBack{}
	}
	if strings.HasPrefix(txt, "--- ") && strings.HasSuffix(txt, " ---") {
		return CmdHeader{}
	}
	for item, caption := range menuCaptions {
		if txt == caption {
			return CmdMenu{Item: item}
		}
	}
	for window, caption := range periodCaptions {
		if txt == caption {
			return CmdPeriod{Window: window}
		}
	}
	if cat := domain.Category(txt); cat.Valid() {
		return CmdCategory{Category: cat}
	}
	if i := strings.LastIndex(txt, idSeparator); i >= 0 {
		if id, err := strconv.ParseInt(txt[i+len(idSeparator):], 10, 64); err == nil {
			return CmdSelect{ID: id}
		}
	}
	return CmdText{Text: txt}
}
