package service

import (
	"context"
	"fmt"
	"time"

	"sendlater/internal/biz/domain"
	"sendlater/internal/biz/repo"
	"sendlater/internal/biz/usecase"
)

// BotService orchestrates one inbound utterance: auto-registration,
// interpretation, dispatch, reply. Each invocation is an independent
// unit of work; all state lives in the store.
type BotService struct {
	interpreter *usecase.InterpreterUsecase
	dispatcher  *usecase.DispatcherUsecase
	store       repo.StoreRepo
	messenger   repo.MessengerRepo

	now func() time.Time
}

// NewBotService creates a new bot service
func NewBotService(
	interpreter *usecase.InterpreterUsecase,
	dispatcher *usecase.DispatcherUsecase,
	store repo.StoreRepo,
	messenger repo.MessengerRepo,
) *BotService {
	return &BotService{
		interpreter: interpreter,
		dispatcher:  dispatcher,
		store:       store,
		messenger:   messenger,
		now:         time.Now,
	}
}

// SetNowFunc replaces the clock (tests)
func (s *BotService) SetNowFunc(f func() time.Time) {
	s.now = f
}

// HandleMessage processes one inbound text message end to end.
// Failures are logged and absorbed; the webhook must always ack.
func (s *BotService) HandleMessage(ctx context.Context, replyToken, userID, text string) {
	if userID != "" {
		s.autoRegister(ctx, userID)
	}

	if replyToken == "" || text == "" {
		return
	}

	intent := s.interpreter.Interpret(ctx, text, s.now().In(usecase.TaipeiZone))
	resp := s.dispatcher.Dispatch(ctx, intent, userID)

	var quickReplies []domain.QuickReply
	if resp != nil {
		quickReplies = resp.QuickReplies
	}
	if resp == nil || resp.Text == "" {
		return
	}
	if err := s.messenger.Reply(ctx, replyToken, resp.Text, quickReplies); err != nil {
		fmt.Printf("[Bot] Reply failed: %v\n", err)
	}
}

// autoRegister records an unseen sender as a contact so they can later
// be targeted by name. Best effort: any failure leaves the sender
// unregistered until their next message.
func (s *BotService) autoRegister(ctx context.Context, userID string) {
	contacts, err := s.store.ListContacts(ctx)
	if err != nil {
		fmt.Printf("[Bot] Auto-register list error: %v\n", err)
		return
	}
	for _, c := range contacts {
		if c.UserID == userID {
			return
		}
	}

	name := "Unknown"
	if profile, err := s.messenger.GetProfile(ctx, userID); err == nil && profile.DisplayName != "" {
		name = profile.DisplayName
	}

	contact := &domain.Contact{
		UserID:    userID,
		LineName:  name,
		CreatedAt: s.now().In(usecase.TaipeiZone).Format(time.RFC3339),
	}
	if err := s.store.CreateContact(ctx, contact); err != nil {
		fmt.Printf("[Bot] Auto-register create error: %v\n", err)
		return
	}
	fmt.Printf("[Bot] Registered new contact %s (%s)\n", name, userID)
}
