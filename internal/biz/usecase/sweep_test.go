package usecase

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"sendlater/internal/biz/domain"
	"sendlater/internal/biz/repo"
)

type pushedMessage struct {
	userID string
	text   string
}

type mockMessenger struct {
	pushErrFor map[string]error // keyed by user ID
	pushed     []pushedMessage
	replies    []string
	profile    *repo.Profile
	profileErr error
}

func (m *mockMessenger) Reply(ctx context.Context, replyToken, text string, quickReplies []domain.QuickReply) error {
	m.replies = append(m.replies, text)
	return nil
}

func (m *mockMessenger) Push(ctx context.Context, userID, text string) error {
	if err := m.pushErrFor[userID]; err != nil {
		return err
	}
	m.pushed = append(m.pushed, pushedMessage{userID: userID, text: text})
	return nil
}

func (m *mockMessenger) GetProfile(ctx context.Context, userID string) (*repo.Profile, error) {
	if m.profileErr != nil {
		return nil, m.profileErr
	}
	if m.profile != nil {
		return m.profile, nil
	}
	return &repo.Profile{DisplayName: "Someone"}, nil
}

func TestSweep_DeliversOnlyDue(t *testing.T) {
	store := &mockStore{
		contacts: []*domain.Contact{{UserID: "boss", Name: "Boss Lady"}},
		scheduled: []*domain.ScheduledMessage{
			{CardID: "s1", RecipientUserID: "u-amy", RecipientName: "Amy", SenderUserID: "boss",
				Message: "記得開會", Due: "2026-03-10T09:00:00+08:00"},
			{CardID: "s2", RecipientUserID: "u-bob", RecipientName: "Bob", SenderUserID: "boss",
				Message: "之後再說", Due: "2026-03-20T09:00:00+08:00"},
			{CardID: "s3", RecipientUserID: "u-carol", RecipientName: "Carol", SenderUserID: "boss",
				Message: "壞時間", Due: "not-a-time"},
		},
	}
	messenger := &mockMessenger{}
	uc := NewSweepUsecase(store, messenger)

	sent, err := uc.Run(context.Background(), testNow)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if sent != 1 {
		t.Fatalf("Expected 1 delivery, got %d", sent)
	}

	if len(store.markedSent) != 1 || store.markedSent[0] != "s1" {
		t.Errorf("Expected s1 marked sent, got %v", store.markedSent)
	}

	// recipient delivery plus sender confirmation
	if len(messenger.pushed) != 2 {
		t.Fatalf("Expected 2 pushes, got %d", len(messenger.pushed))
	}
	delivery := messenger.pushed[0]
	if delivery.userID != "u-amy" {
		t.Errorf("Expected push to u-amy, got %s", delivery.userID)
	}
	if !strings.Contains(delivery.text, "📬 來自 Boss Lady：") || !strings.Contains(delivery.text, "記得開會") {
		t.Errorf("Unexpected delivery text: %q", delivery.text)
	}
	confirm := messenger.pushed[1]
	if confirm.userID != "boss" {
		t.Errorf("Expected confirmation to boss, got %s", confirm.userID)
	}
	if !strings.Contains(confirm.text, "✅ 已發送給 Amy") {
		t.Errorf("Unexpected confirmation text: %q", confirm.text)
	}
}

func TestSweep_PushFailureKeepsRecord(t *testing.T) {
	store := &mockStore{
		scheduled: []*domain.ScheduledMessage{
			{CardID: "s1", RecipientUserID: "u-amy", RecipientName: "Amy", SenderUserID: "boss",
				Message: "hi", Due: "2026-03-01T09:00:00+08:00"},
		},
	}
	messenger := &mockMessenger{pushErrFor: map[string]error{"u-amy": fmt.Errorf("channel down")}}
	uc := NewSweepUsecase(store, messenger)

	sent, err := uc.Run(context.Background(), testNow)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if sent != 0 {
		t.Errorf("Expected 0 deliveries, got %d", sent)
	}
	if len(store.markedSent) != 0 {
		t.Errorf("Record must stay pending after a failed push, got %v", store.markedSent)
	}
	if len(messenger.pushed) != 0 {
		t.Errorf("No confirmation should be sent, got %v", messenger.pushed)
	}
}

func TestSweep_UnknownSenderPlaceholder(t *testing.T) {
	store := &mockStore{
		scheduled: []*domain.ScheduledMessage{
			{CardID: "s1", RecipientUserID: "u-amy", RecipientName: "Amy", SenderUserID: "ghost",
				Message: "hi", Due: "2026-03-01T09:00:00+08:00"},
		},
	}
	messenger := &mockMessenger{}
	uc := NewSweepUsecase(store, messenger)

	if _, err := uc.Run(context.Background(), testNow); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(messenger.pushed) == 0 {
		t.Fatal("Expected a delivery")
	}
	if !strings.Contains(messenger.pushed[0].text, "📬 來自 某人：") {
		t.Errorf("Expected sender placeholder, got %q", messenger.pushed[0].text)
	}
}

func TestSweep_ListFailure(t *testing.T) {
	store := &mockStore{listScheduledErr: fmt.Errorf("store down")}
	uc := NewSweepUsecase(store, &mockMessenger{})

	if _, err := uc.Run(context.Background(), testNow); err == nil {
		t.Fatal("Expected error when the store is unreachable")
	}
}

func TestSweep_EmptySchedule(t *testing.T) {
	uc := NewSweepUsecase(&mockStore{}, &mockMessenger{})

	sent, err := uc.Run(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if sent != 0 {
		t.Errorf("Expected 0 deliveries, got %d", sent)
	}
}
