package data

import (
	"context"
	"fmt"
	"time"

	"sendlater/internal/biz/domain"
	"sendlater/internal/biz/repo"
	"sendlater/trello"
)

// contactRecord is the JSON payload stored after the contact marker.
// The display name lives in the card title, not the payload.
type contactRecord struct {
	UserID    string `json:"user_id,omitempty"`
	LineName  string `json:"line_name,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

// scheduledRecord is the JSON payload stored after the scheduled marker
type scheduledRecord struct {
	RecipientName   string `json:"recipient_name"`
	RecipientUserID string `json:"recipient_user_id,omitempty"`
	SenderUserID    string `json:"sender_user_id"`
	Message         string `json:"message"`
	CreatedAt       string `json:"created_at"`
}

// TrelloListIDs names the four lists backing the store
type TrelloListIDs struct {
	Scheduled string
	Contacts  string
	Sent      string
	Admins    string
}

// trelloStore implements StoreRepo over Trello cards. Each record is a
// card whose description carries marker + JSON; the containing list is
// the lifecycle stage.
type trelloStore struct {
	client         *trello.Client
	lists          TrelloListIDs
	contactFieldID string
}

// NewTrelloStore creates a Trello-backed store repository
func NewTrelloStore(client *trello.Client, lists TrelloListIDs, contactFieldID string) repo.StoreRepo {
	return &trelloStore{
		client:         client,
		lists:          lists,
		contactFieldID: contactFieldID,
	}
}

// ListContacts lists contacts in store order. Cards without a valid
// contact record are silently excluded.
func (s *trelloStore) ListContacts(ctx context.Context) ([]*domain.Contact, error) {
	return s.contactsFrom(ctx, s.lists.Contacts)
}

// ListAdmins lists the user IDs on the admins list
func (s *trelloStore) ListAdmins(ctx context.Context) ([]string, error) {
	admins, err := s.contactsFrom(ctx, s.lists.Admins)
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, c := range admins {
		if c.UserID != "" {
			ids = append(ids, c.UserID)
		}
	}
	return ids, nil
}

func (s *trelloStore) contactsFrom(ctx context.Context, listID string) ([]*domain.Contact, error) {
	cards, err := s.client.ListCards(ctx, listID)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}

	var contacts []*domain.Contact
	for _, card := range cards {
		var rec contactRecord
		if err := decodeRecord(card.Desc, contactMarker, &rec); err != nil {
			continue
		}
		contacts = append(contacts, &domain.Contact{
			CardID:    card.ID,
			UserID:    rec.UserID,
			Name:      card.Name,
			LineName:  rec.LineName,
			CreatedAt: rec.CreatedAt,
		})
	}
	return contacts, nil
}

// ListScheduled lists pending scheduled messages in store order
func (s *trelloStore) ListScheduled(ctx context.Context) ([]*domain.ScheduledMessage, error) {
	cards, err := s.client.ListCards(ctx, s.lists.Scheduled)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}

	var msgs []*domain.ScheduledMessage
	for _, card := range cards {
		var rec scheduledRecord
		if err := decodeRecord(card.Desc, scheduledMarker, &rec); err != nil {
			continue
		}
		msgs = append(msgs, &domain.ScheduledMessage{
			CardID:          card.ID,
			RecipientName:   rec.RecipientName,
			RecipientUserID: rec.RecipientUserID,
			SenderUserID:    rec.SenderUserID,
			Message:         rec.Message,
			CreatedAt:       rec.CreatedAt,
			Due:             card.Due,
		})
	}
	return msgs, nil
}

// CreateContact creates a contact card and labels it via the custom field
func (s *trelloStore) CreateContact(ctx context.Context, contact *domain.Contact) error {
	desc, err := encodeRecord(contactMarker, contactRecord{
		UserID:    contact.UserID,
		LineName:  contact.LineName,
		CreatedAt: contact.CreatedAt,
	})
	if err != nil {
		return err
	}

	card, err := s.client.CreateCard(ctx, s.lists.Contacts, contact.DisplayName(), desc, nil)
	if err != nil {
		return fmt.Errorf("create card: %w", err)
	}
	contact.CardID = card.ID

	// labeling failure is non-fatal, the record itself is intact
	if s.contactFieldID != "" {
		if err := s.client.SetCustomField(ctx, card.ID, s.contactFieldID, contact.DisplayName()); err != nil {
			fmt.Printf("[Store] Set custom field failed: %v\n", err)
		}
	}
	return nil
}

// CreateScheduled creates a scheduled-message card with the due time as
// the delivery trigger
func (s *trelloStore) CreateScheduled(ctx context.Context, msg *domain.ScheduledMessage, due time.Time) error {
	desc, err := encodeRecord(scheduledMarker, scheduledRecord{
		RecipientName:   msg.RecipientName,
		RecipientUserID: msg.RecipientUserID,
		SenderUserID:    msg.SenderUserID,
		Message:         msg.Message,
		CreatedAt:       msg.CreatedAt,
	})
	if err != nil {
		return err
	}

	title := fmt.Sprintf("📨 %s：%s", msg.RecipientName, domain.TruncateRunes(msg.Message, 30))
	card, err := s.client.CreateCard(ctx, s.lists.Scheduled, title, desc, &due)
	if err != nil {
		return fmt.Errorf("create card: %w", err)
	}
	msg.CardID = card.ID
	msg.Due = due.UTC().Format(time.RFC3339)

	if s.contactFieldID != "" {
		if err := s.client.SetCustomField(ctx, card.ID, s.contactFieldID, msg.RecipientName); err != nil {
			fmt.Printf("[Store] Set custom field failed: %v\n", err)
		}
	}
	return nil
}

// MarkSent moves a card to the sent list
func (s *trelloStore) MarkSent(ctx context.Context, cardID string) error {
	return s.client.MoveCard(ctx, cardID, s.lists.Sent)
}

// DeleteScheduled deletes a card outright
func (s *trelloStore) DeleteScheduled(ctx context.Context, cardID string) error {
	return s.client.DeleteCard(ctx, cardID)
}

// Close is a no-op for the remote store
func (s *trelloStore) Close() error {
	return nil
}
