package repo

import (
	"context"

	"sendlater/internal/biz/domain"
)

// Profile is the channel-side view of a user
type Profile struct {
	DisplayName string
}

// MessengerRepo is the push/reply messaging channel interface
type MessengerRepo interface {
	// Reply answers an inbound event via its reply token, optionally
	// attaching quick-reply options
	Reply(ctx context.Context, replyToken, text string, quickReplies []domain.QuickReply) error

	// Push sends a message to a user outside of a reply context
	Push(ctx context.Context, userID, text string) error

	// GetProfile fetches the user's channel profile
	GetProfile(ctx context.Context, userID string) (*Profile, error)
}
