package server

import "crewtrack/internal/dialog"

type MessageRequest struct {
	ChatID int64  `json:"chat_id" example:"1042"`
	Text   string `json:"text" example:"/start"`
}

type ReplyResponse struct {
	Text     string     `json:"text"`
	Keyboard [][]string `json:"keyboard,omitempty"`
}

type MessageResponse struct {
	Replies []ReplyResponse `json:"replies"`
}

func mapReplies(replies []dialog.Reply) []ReplyResponse {
	out := make([]ReplyResponse, 0, len(replies))
	for _, r := range replies {
		out = append(out, ReplyResponse{Text: r.Text, Keyboard: r.Keyboard})
	}
	return out
}
