package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"sendlater/internal/biz/domain"
	"sendlater/internal/biz/repo"
)

// TaipeiZone is the bot's display timezone (UTC+8, no DST)
var TaipeiZone = time.FixedZone("Asia/Taipei", 8*60*60)

const helpText = `📨 SendLater

• 「發給小明：記得開會」
• 「聯絡人」「排程」「取消」

讓朋友傳訊息給我就會自動記住！`

const (
	maxContactsShown  = 15
	maxScheduledShown = 10
	previewRunes      = 15
	cancelLabelRunes  = 20
	cardTitleRunes    = 30
)

// DispatcherConfig contains scheduling defaults
type DispatcherConfig struct {
	DefaultSendHour int // local hour for the next-day default due time
}

// DispatcherUsecase routes a typed intent to its handler and enforces
// the admin-only gate on mutating actions
type DispatcherUsecase struct {
	store    repo.StoreRepo
	resolver *ResolverUsecase
	cfg      DispatcherConfig
	now      func() time.Time
}

// NewDispatcherUsecase creates a new dispatcher usecase
func NewDispatcherUsecase(store repo.StoreRepo, resolver *ResolverUsecase, cfg DispatcherConfig) *DispatcherUsecase {
	if cfg.DefaultSendHour <= 0 {
		cfg.DefaultSendHour = 9
	}
	return &DispatcherUsecase{
		store:    store,
		resolver: resolver,
		cfg:      cfg,
		now:      time.Now,
	}
}

// SetNowFunc replaces the clock (tests)
func (uc *DispatcherUsecase) SetNowFunc(f func() time.Time) {
	uc.now = f
}

// Dispatch routes an intent to its handler. The response is always a
// best-effort natural-language message; collaborator failures never
// surface as errors to the caller.
func (uc *DispatcherUsecase) Dispatch(ctx context.Context, intent *domain.Intent, callerUserID string) *domain.Response {
	switch intent.Action {
	case domain.ActionListContacts:
		return uc.listContacts(ctx)
	case domain.ActionListScheduled:
		return uc.listScheduled(ctx)
	case domain.ActionCancelLast:
		return uc.cancelLast(ctx, callerUserID)
	case domain.ActionScheduleMessage:
		return uc.schedule(ctx, intent, callerUserID)
	case domain.ActionChat:
		reply := intent.Reply
		if reply == "" {
			reply = "你好！"
		}
		return domain.TextResponse(reply)
	default:
		return domain.TextResponse(helpText)
	}
}

func (uc *DispatcherUsecase) listContacts(ctx context.Context) *domain.Response {
	contacts, err := uc.store.ListContacts(ctx)
	if err != nil {
		fmt.Printf("[Dispatcher] List contacts error: %v\n", err)
	}
	if len(contacts) == 0 {
		return domain.TextResponse("📇 目前沒有聯絡人")
	}

	lines := []string{fmt.Sprintf("📇 聯絡人 (%d 人)\n", len(contacts))}
	for i, c := range contacts {
		if i >= maxContactsShown {
			break
		}
		name := c.DisplayName()
		if name == "" {
			name = "?"
		}
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, name))
	}
	return domain.TextResponse(strings.Join(lines, "\n"))
}

func (uc *DispatcherUsecase) listScheduled(ctx context.Context) *domain.Response {
	msgs, err := uc.store.ListScheduled(ctx)
	if err != nil {
		fmt.Printf("[Dispatcher] List scheduled error: %v\n", err)
	}
	if len(msgs) == 0 {
		return domain.TextResponse("📤 沒有排程中的訊息")
	}

	lines := []string{fmt.Sprintf("📤 排程 (%d 則)\n", len(msgs))}
	for i, m := range msgs {
		if i >= maxScheduledShown {
			break
		}
		due := "?"
		if t, ok := m.DueTime(); ok {
			due = t.In(TaipeiZone).Format("01/02 15:04")
		}
		recipient := m.RecipientName
		if recipient == "" {
			recipient = "?"
		}
		lines = append(lines, fmt.Sprintf("%d. → %s：%s... (%s)",
			i+1, recipient, domain.TruncateRunes(m.Message, previewRunes), due))
	}
	return domain.TextResponse(strings.Join(lines, "\n"))
}

func (uc *DispatcherUsecase) cancelLast(ctx context.Context, callerUserID string) *domain.Response {
	if !uc.isAdmin(ctx, callerUserID) {
		return domain.TextResponse("⚠️ 只有管理員可以取消")
	}

	all, err := uc.store.ListScheduled(ctx)
	if err != nil {
		fmt.Printf("[Dispatcher] List scheduled error: %v\n", err)
	}
	var mine []*domain.ScheduledMessage
	for _, m := range all {
		if m.SenderUserID == callerUserID {
			mine = append(mine, m)
		}
	}
	if len(mine) == 0 {
		return domain.TextResponse("❌ 沒有可取消的排程")
	}

	// most recent first; ISO-8601 strings compare chronologically
	sort.SliceStable(mine, func(i, j int) bool {
		return mine[i].CreatedAt > mine[j].CreatedAt
	})
	target := mine[0]

	if err := uc.store.DeleteScheduled(ctx, target.CardID); err != nil {
		fmt.Printf("[Dispatcher] Delete error: %v\n", err)
		return domain.TextResponse("❌ 取消失敗，請稍後再試")
	}

	recipient := target.RecipientName
	if recipient == "" {
		recipient = "?"
	}
	return domain.TextResponse(fmt.Sprintf("✅ 已取消：%s - %s...",
		recipient, domain.TruncateRunes(target.Message, cancelLabelRunes)))
}

func (uc *DispatcherUsecase) schedule(ctx context.Context, intent *domain.Intent, callerUserID string) *domain.Response {
	if !uc.isAdmin(ctx, callerUserID) {
		return domain.TextResponse("⚠️ 只有管理員可以排程")
	}

	recipient := strings.TrimSpace(intent.Recipient)
	message := strings.TrimSpace(intent.Message)
	if recipient == "" || message == "" {
		return domain.TextResponse("❌ 範例：發給小明：記得開會")
	}

	contacts, err := uc.store.ListContacts(ctx)
	if err != nil {
		fmt.Printf("[Dispatcher] List contacts error: %v\n", err)
	}

	res := uc.resolver.ResolveWithFallback(ctx, recipient, contacts)
	switch res.Kind {
	case domain.ResolutionAmbiguous:
		// disambiguate by re-entering the pipeline with a fully
		// specified utterance, not a separate confirmation state
		resp := &domain.Response{Text: fmt.Sprintf("🔍 「%s」有多個可能：", recipient)}
		for _, c := range res.Candidates {
			resp.QuickReplies = append(resp.QuickReplies, domain.QuickReply{
				Label: domain.TruncateRunes(c.Name, cancelLabelRunes),
				Text:  fmt.Sprintf("發給 %s：%s", c.Name, message),
			})
		}
		resp.QuickReplies = append(resp.QuickReplies, domain.QuickReply{Label: "❌ 取消", Text: "取消"})
		return resp

	case domain.ResolutionNotFound:
		return domain.TextResponse(fmt.Sprintf("❌ 找不到「%s」\n\n輸入「聯絡人」查看名單", recipient))
	}

	contact := res.Contact
	sendTime := uc.defaultSendTime()
	if intent.SendTime != "" {
		if t, ok := parseSendTime(intent.SendTime); ok {
			sendTime = t
		}
	}

	name := contact.Name
	if name == "" {
		name = recipient
	}
	msg := &domain.ScheduledMessage{
		RecipientName:   name,
		RecipientUserID: contact.UserID,
		SenderUserID:    callerUserID,
		Message:         message,
		CreatedAt:       uc.now().In(TaipeiZone).Format(time.RFC3339),
	}
	if err := uc.store.CreateScheduled(ctx, msg, sendTime); err != nil {
		fmt.Printf("[Dispatcher] Create scheduled error: %v\n", err)
		return domain.TextResponse("❌ 排程失敗，請稍後再試")
	}

	aiHint := ""
	if res.AIAssisted {
		aiHint = "\n🤖 AI 判斷"
	}
	return &domain.Response{
		Text: fmt.Sprintf("✅ 已排程%s\n\n👤 %s\n📝 %s\n⏰ %s",
			aiHint, name, message, sendTime.In(TaipeiZone).Format("01/02 15:04")),
		QuickReplies: []domain.QuickReply{{Label: "❌ 取消", Text: "取消"}},
	}
}

// isAdmin checks the caller against the admin contact set. A store
// failure reads as an empty set, refusing the action.
func (uc *DispatcherUsecase) isAdmin(ctx context.Context, userID string) bool {
	if userID == "" {
		return false
	}
	admins, err := uc.store.ListAdmins(ctx)
	if err != nil {
		fmt.Printf("[Dispatcher] List admins error: %v\n", err)
		return false
	}
	for _, id := range admins {
		if id == userID {
			return true
		}
	}
	return false
}

// defaultSendTime is next-day at the configured hour, local time
func (uc *DispatcherUsecase) defaultSendTime() time.Time {
	now := uc.now().In(TaipeiZone)
	return time.Date(now.Year(), now.Month(), now.Day()+1,
		uc.cfg.DefaultSendHour, 0, 0, 0, TaipeiZone)
}

// parseSendTime parses an explicit send time from the intent. The model
// may or may not include a zone offset.
func parseSendTime(s string) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.ParseInLocation("2006-01-02T15:04:05", s, TaipeiZone); err == nil {
		return t, true
	}
	if t, err := time.ParseInLocation("2006-01-02 15:04", s, TaipeiZone); err == nil {
		return t, true
	}
	return time.Time{}, false
}
