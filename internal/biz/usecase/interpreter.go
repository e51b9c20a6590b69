package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"sendlater/internal/biz/domain"
	"sendlater/internal/biz/repo"
)

// intentPrompt instructs the model to answer with a single JSON object.
// The current local time is embedded so relative dates can be resolved.
const intentPrompt = `你是 SendLater 排程訊息助手。用 JSON 回覆：
- schedule_message: {"action":"schedule_message","recipient":"名字","message":"內容","send_time":"ISO時間(可選)"}
- list_contacts: {"action":"list_contacts"}
- list_scheduled: {"action":"list_scheduled"}
- cancel_last: {"action":"cancel_last"}
- chat: {"action":"chat","reply":"回覆"}
只回覆 JSON。時間：%s`

// quickCommands are fixed-pattern shortcuts that bypass the language
// model entirely. First match wins.
var quickCommands = []struct {
	pattern *regexp.Regexp
	action  domain.Action
}{
	{regexp.MustCompile(`^(help|幫助|\?)$`), domain.ActionHelp},
	{regexp.MustCompile(`^(contacts|聯絡人|通訊錄)$`), domain.ActionListContacts},
	{regexp.MustCompile(`^(scheduled|排程|排程訊息)$`), domain.ActionListScheduled},
	{regexp.MustCompile(`^(cancel|取消|不對|錯了)$`), domain.ActionCancelLast},
}

// codeFence strips a fenced code block wrapper from a model reply
var codeFence = regexp.MustCompile("^```(?:json)?\n?|\n?```$")

// InterpreterUsecase converts a raw utterance into a typed intent,
// either via quick-command pattern match or a language-model parse.
type InterpreterUsecase struct {
	completion repo.CompletionRepo // nil means quick commands only
}

// NewInterpreterUsecase creates a new interpreter usecase
func NewInterpreterUsecase(completion repo.CompletionRepo) *InterpreterUsecase {
	return &InterpreterUsecase{completion: completion}
}

// Interpret parses an utterance into an intent. It never fails: any
// parse or transport problem degrades to the help intent.
func (uc *InterpreterUsecase) Interpret(ctx context.Context, utterance string, now time.Time) *domain.Intent {
	text := strings.TrimSpace(utterance)

	lowered := strings.ToLower(text)
	for _, cmd := range quickCommands {
		if cmd.pattern.MatchString(lowered) {
			return &domain.Intent{Action: cmd.action}
		}
	}

	if uc.completion == nil {
		return &domain.Intent{Action: domain.ActionHelp}
	}

	prompt := fmt.Sprintf(intentPrompt, now.Format("2006-01-02 15:04")) + "\n\n" + text
	reply, err := uc.completion.Complete(ctx, prompt)
	if err != nil {
		fmt.Printf("[Interpreter] Completion error: %v\n", err)
		return &domain.Intent{Action: domain.ActionHelp}
	}

	intent, err := parseIntentJSON(reply)
	if err != nil {
		fmt.Printf("[Interpreter] Parse error: %v (reply: %.80s)\n", err, reply)
		return &domain.Intent{Action: domain.ActionHelp}
	}
	return intent
}

// parseIntentJSON parses a model reply as an intent, tolerating a
// fenced code block wrapper and rejecting unknown actions
func parseIntentJSON(reply string) (*domain.Intent, error) {
	raw := strings.TrimSpace(reply)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimSpace(codeFence.ReplaceAllString(raw, ""))
	}

	var parsed struct {
		Action    string `json:"action"`
		Recipient string `json:"recipient"`
		Message   string `json:"message"`
		SendTime  string `json:"send_time"`
		Reply     string `json:"reply"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("unmarshal intent: %w", err)
	}

	action := domain.Action(parsed.Action)
	if !action.Known() {
		return nil, fmt.Errorf("unknown action %q", parsed.Action)
	}

	return &domain.Intent{
		Action:    action,
		Recipient: parsed.Recipient,
		Message:   parsed.Message,
		SendTime:  parsed.SendTime,
		Reply:     parsed.Reply,
	}, nil
}
