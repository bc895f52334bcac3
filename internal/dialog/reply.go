package dialog

// Reply is one outbound effect: text plus an optional reply keyboard. The
// keyboard is rows of selectable captions; transports render it however they
// can.
type Reply struct {
	Text     string     `json:"text"`
	Keyboard [][]string `json:"keyboard,omitempty"`
}

func text(s string) Reply {
	return Reply{Text: s}
}

func withKeyboard(s string, kb [][]string) Reply {
	return Reply{Text: s, Keyboard: kb}
}
