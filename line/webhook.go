package line

import "encoding/json"

// WebhookRequest is a signed batch of events from the Messaging API
type WebhookRequest struct {
	Events []WebhookEvent `json:"events"`
}

// WebhookEvent is a single inbound event
type WebhookEvent struct {
	Type       string       `json:"type"`
	ReplyToken string       `json:"replyToken"`
	Message    EventMessage `json:"message"`
	Source     EventSource  `json:"source"`
}

// EventMessage is the message attached to a message event
type EventMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// EventSource identifies who sent the event
type EventSource struct {
	UserID string `json:"userId"`
}

// IsTextMessage reports whether the event carries user text to process
func (e *WebhookEvent) IsTextMessage() bool {
	return e.Type == "message" && e.Message.Type == "text"
}

// ParseWebhook parses a webhook request body
func ParseWebhook(body []byte) (*WebhookRequest, error) {
	var req WebhookRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, err
	}
	return &req, nil
}
