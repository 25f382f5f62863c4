package dto

import "encoding/json"

// NotificationPayload describes one message handed to the dispatcher.
type NotificationPayload struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Type        string          `json:"type"`
	Link        string          `json:"link"`
	Metadata    json.RawMessage `json:"metadata,omitempty"`
}
