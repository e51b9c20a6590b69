package usecase

import (
	"context"
	"fmt"
	"time"

	"sendlater/internal/biz/domain"
	"sendlater/internal/biz/repo"
)

// senderPlaceholder is shown when the sender is no longer a known contact
const senderPlaceholder = "某人"

// SweepUsecase scans due scheduled messages and performs delivery.
// It is safe under at-least-once external triggering: a delivered record
// is moved to the sent stage and no longer returned by the scheduled
// fetch. Two sweeps racing on the same still-pending record may still
// double-deliver; delivery is at-most-once best effort, not exactly-once.
type SweepUsecase struct {
	store     repo.StoreRepo
	messenger repo.MessengerRepo
}

// NewSweepUsecase creates a new sweep usecase
func NewSweepUsecase(store repo.StoreRepo, messenger repo.MessengerRepo) *SweepUsecase {
	return &SweepUsecase{store: store, messenger: messenger}
}

// Run delivers every scheduled message due at or before now and returns
// the number of deliveries performed. Records with an absent or
// unparsable due timestamp are skipped.
func (uc *SweepUsecase) Run(ctx context.Context, now time.Time) (int, error) {
	msgs, err := uc.store.ListScheduled(ctx)
	if err != nil {
		return 0, fmt.Errorf("list scheduled: %w", err)
	}

	sent := 0
	for _, msg := range msgs {
		if !msg.IsDue(now) {
			continue
		}
		if uc.deliver(ctx, msg) {
			sent++
		}
	}
	return sent, nil
}

// deliver attempts one delivery. The record transitions to the sent
// stage and the sender is notified only when the push reports success.
func (uc *SweepUsecase) deliver(ctx context.Context, msg *domain.ScheduledMessage) bool {
	senderName := uc.senderName(ctx, msg.SenderUserID)

	text := fmt.Sprintf("📬 來自 %s：\n\n%s", senderName, msg.Message)
	if err := uc.messenger.Push(ctx, msg.RecipientUserID, text); err != nil {
		fmt.Printf("[Sweep] Push to %s failed: %v\n", msg.RecipientName, err)
		return false
	}

	if err := uc.store.MarkSent(ctx, msg.CardID); err != nil {
		fmt.Printf("[Sweep] Mark sent failed for %s: %v\n", msg.CardID, err)
	}

	confirm := fmt.Sprintf("✅ 已發送給 %s\n\n📝 %s", msg.RecipientName, msg.Message)
	if err := uc.messenger.Push(ctx, msg.SenderUserID, confirm); err != nil {
		fmt.Printf("[Sweep] Sender confirmation failed: %v\n", err)
	}
	return true
}

// senderName looks up the sender's display name, falling back to a
// generic placeholder
func (uc *SweepUsecase) senderName(ctx context.Context, senderUserID string) string {
	contacts, err := uc.store.ListContacts(ctx)
	if err != nil {
		fmt.Printf("[Sweep] List contacts error: %v\n", err)
		return senderPlaceholder
	}
	for _, c := range contacts {
		if c.UserID != "" && c.UserID == senderUserID {
			if name := c.DisplayName(); name != "" {
				return name
			}
		}
	}
	return senderPlaceholder
}
