package repo

import (
	"context"
	"time"

	"sendlater/internal/biz/domain"
)

// StoreRepo is the entity store interface.
// Contacts and scheduled messages are owned by the external store; the bot
// holds no cache, so every call reflects store state at call time.
type StoreRepo interface {
	// ListContacts lists all registered contacts in store order
	ListContacts(ctx context.Context) ([]*domain.Contact, error)

	// ListAdmins lists the user IDs allowed to schedule and cancel
	ListAdmins(ctx context.Context) ([]string, error)

	// ListScheduled lists pending scheduled messages in store order
	ListScheduled(ctx context.Context) ([]*domain.ScheduledMessage, error)

	// CreateContact persists a new contact and fills in its CardID
	CreateContact(ctx context.Context, contact *domain.Contact) error

	// CreateScheduled persists a new scheduled message with the given due
	// time and fills in its CardID
	CreateScheduled(ctx context.Context, msg *domain.ScheduledMessage, due time.Time) error

	// MarkSent transitions a scheduled message to the sent stage
	MarkSent(ctx context.Context, cardID string) error

	// DeleteScheduled removes a scheduled message outright (cancellation)
	DeleteScheduled(ctx context.Context, cardID string) error

	Close() error
}
