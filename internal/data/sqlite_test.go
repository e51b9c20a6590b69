package data

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"sendlater/internal/biz/domain"
)

func newSQLiteTestStore(t *testing.T) *sqliteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store.(*sqliteStore)
}

func TestSQLiteStore_ContactRoundTrip(t *testing.T) {
	store := newSQLiteTestStore(t)
	ctx := context.Background()

	contact := &domain.Contact{UserID: "u1", LineName: "阿美", CreatedAt: "2026-03-10T14:30:00+08:00"}
	if err := store.CreateContact(ctx, contact); err != nil {
		t.Fatalf("CreateContact failed: %v", err)
	}
	if contact.CardID == "" {
		t.Fatal("Expected CardID fill-in")
	}

	contacts, err := store.ListContacts(ctx)
	if err != nil {
		t.Fatalf("ListContacts failed: %v", err)
	}
	if len(contacts) != 1 {
		t.Fatalf("Expected 1 contact, got %d", len(contacts))
	}
	got := contacts[0]
	if got.UserID != "u1" || got.LineName != "阿美" {
		t.Errorf("Wrong contact: %+v", got)
	}
	// display name backfills the canonical name on insert
	if got.Name != "阿美" {
		t.Errorf("Expected backfilled name, got %q", got.Name)
	}
}

func TestSQLiteStore_AdminsRequireFlag(t *testing.T) {
	store := newSQLiteTestStore(t)
	ctx := context.Background()

	if err := store.CreateContact(ctx, &domain.Contact{UserID: "u1", Name: "Regular"}); err != nil {
		t.Fatalf("CreateContact failed: %v", err)
	}
	if _, err := store.db.ExecContext(ctx, `
		INSERT INTO contacts (user_id, name, is_admin) VALUES ('boss', 'Boss', 1)
	`); err != nil {
		t.Fatalf("Insert admin failed: %v", err)
	}

	admins, err := store.ListAdmins(ctx)
	if err != nil {
		t.Fatalf("ListAdmins failed: %v", err)
	}
	if len(admins) != 1 || admins[0] != "boss" {
		t.Errorf("Expected [boss], got %v", admins)
	}
}

func TestSQLiteStore_ScheduledLifecycle(t *testing.T) {
	store := newSQLiteTestStore(t)
	ctx := context.Background()

	msg := &domain.ScheduledMessage{
		RecipientName:   "Amy",
		RecipientUserID: "u-amy",
		SenderUserID:    "boss",
		Message:         "記得開會",
		CreatedAt:       "2026-03-10T14:30:00+08:00",
	}
	due := time.Date(2026, 3, 11, 1, 0, 0, 0, time.UTC)
	if err := store.CreateScheduled(ctx, msg, due); err != nil {
		t.Fatalf("CreateScheduled failed: %v", err)
	}
	if msg.Due != "2026-03-11T01:00:00Z" {
		t.Errorf("Expected normalized due, got %q", msg.Due)
	}

	msgs, err := store.ListScheduled(ctx)
	if err != nil {
		t.Fatalf("ListScheduled failed: %v", err)
	}
	if len(msgs) != 1 || msgs[0].Message != "記得開會" {
		t.Fatalf("Unexpected scheduled list: %+v", msgs)
	}

	if err := store.MarkSent(ctx, msg.CardID); err != nil {
		t.Fatalf("MarkSent failed: %v", err)
	}
	msgs, err = store.ListScheduled(ctx)
	if err != nil {
		t.Fatalf("ListScheduled failed: %v", err)
	}
	if len(msgs) != 0 {
		t.Errorf("Sent message must leave the scheduled stage, got %d", len(msgs))
	}
}

func TestSQLiteStore_DeleteScheduled(t *testing.T) {
	store := newSQLiteTestStore(t)
	ctx := context.Background()

	msg := &domain.ScheduledMessage{RecipientName: "Amy", SenderUserID: "boss", Message: "hi"}
	if err := store.CreateScheduled(ctx, msg, time.Now().UTC()); err != nil {
		t.Fatalf("CreateScheduled failed: %v", err)
	}
	if err := store.DeleteScheduled(ctx, msg.CardID); err != nil {
		t.Fatalf("DeleteScheduled failed: %v", err)
	}

	msgs, err := store.ListScheduled(ctx)
	if err != nil {
		t.Fatalf("ListScheduled failed: %v", err)
	}
	if len(msgs) != 0 {
		t.Errorf("Expected empty schedule after delete, got %d", len(msgs))
	}
}
