package server

import (
	"encoding/json"
	"fmt"

	"github.com/wakalAIagency/tamhid-chat-api/core"
)

type askRequest struct {
	Q         string  `json:"q"`
	TopK      int     `json:"topK"`
	Lang      *string `json:"lang"` // nil: server default; "": no language filter
	SessionID string  `json:"sessionId"`
}

type askResponse struct {
	Answer  string       `json:"answer"`
	Matches []core.Match `json:"matches"`
	LogID   string       `json:"logId,omitempty"`
}

type feedbackRequest struct {
	LogID   string          `json:"logId"`
	Rating  json.RawMessage `json:"rating"`
	Comment string          `json:"comment"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// parseRating accepts 1, -1, "1" or "-1".
func parseRating(raw json.RawMessage) (int, error) {
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		if n == 1 || n == -1 {
			return n, nil
		}
		return 0, fmt.Errorf("rating must be 1 or -1")
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		switch s {
		case "1":
			return 1, nil
		case "-1":
			return -1, nil
		}
	}
	return 0, fmt.Errorf("rating must be 1 or -1")
}
