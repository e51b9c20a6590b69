package data

import (
	"context"

	"sendlater/internal/biz/domain"
	"sendlater/internal/biz/repo"
	"sendlater/line"
)

// lineMessenger implements the messenger repository over the LINE client
type lineMessenger struct {
	client *line.Client
}

// NewLineMessenger creates a LINE-backed messenger repository
func NewLineMessenger(client *line.Client) repo.MessengerRepo {
	return &lineMessenger{client: client}
}

// Reply answers an inbound event via its reply token
func (m *lineMessenger) Reply(ctx context.Context, replyToken, text string, quickReplies []domain.QuickReply) error {
	var qr []line.QuickReply
	for _, q := range quickReplies {
		qr = append(qr, line.QuickReply{Label: q.Label, Text: q.Text})
	}
	return m.client.Reply(ctx, replyToken, text, qr)
}

// Push sends a message to a user
func (m *lineMessenger) Push(ctx context.Context, userID, text string) error {
	return m.client.Push(ctx, userID, text)
}

// GetProfile fetches a user's channel profile
func (m *lineMessenger) GetProfile(ctx context.Context, userID string) (*repo.Profile, error) {
	profile, err := m.client.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &repo.Profile{DisplayName: profile.DisplayName}, nil
}
