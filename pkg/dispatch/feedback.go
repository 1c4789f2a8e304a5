package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"
)

type feedbackPayload struct {
	UserID          string `json:"user_id"`
	SessionID       string `json:"session_id"`
	SuggestionIndex int    `json:"suggestion_index"`
	Accepted        bool   `json:"accepted"`
	ContextHash     string `json:"context_hash"`
	Language        string `json:"language"`
	Timestamp       int64  `json:"timestamp"`
}

// SendFeedback reports an acceptance or rejection to the service.
// Fire-and-forget: the send runs on its own goroutine and failures are
// only logged, never surfaced.
func (d *Dispatcher) SendFeedback(suggestionIndex int, accepted bool, contextHash, language string) {
	payload := feedbackPayload{
		UserID:          d.identity.UserID,
		SessionID:       d.identity.SessionID,
		SuggestionIndex: suggestionIndex,
		Accepted:        accepted,
		ContextHash:     contextHash,
		Language:        language,
		Timestamp:       time.Now().UnixMilli(),
	}

	go func() {
		data, err := json.Marshal(payload)
		if err != nil {
			d.log.Warnf("Failed to encode feedback: %v", err)
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), d.client.Timeout)
		defer cancel()

		req, err := http.NewRequestWithContext(ctx, "POST", d.baseURL+feedbackPath, bytes.NewReader(data))
		if err != nil {
			d.log.Warnf("Failed to build feedback request: %v", err)
			return
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := d.client.Do(req)
		if err != nil {
			d.log.Debugf("Feedback send failed: %v", err)
			return
		}
		resp.Body.Close()
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			d.log.Debugf("Feedback rejected with status %d", resp.StatusCode)
		}
	}()
}
