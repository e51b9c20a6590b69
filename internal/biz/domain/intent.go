package domain

// Action identifies what the user wants the bot to do
type Action string

const (
	ActionScheduleMessage Action = "schedule_message"
	ActionListContacts    Action = "list_contacts"
	ActionListScheduled   Action = "list_scheduled"
	ActionCancelLast      Action = "cancel_last"
	ActionChat            Action = "chat"
	ActionHelp            Action = "help"
)

// Known reports whether the action is part of the dispatchable set.
// Unknown actions from the language model degrade to help.
func (a Action) Known() bool {
	switch a {
	case ActionScheduleMessage, ActionListContacts, ActionListScheduled,
		ActionCancelLast, ActionChat, ActionHelp:
		return true
	}
	return false
}

// Mutating reports whether the action requires admin authorization
func (a Action) Mutating() bool {
	return a == ActionScheduleMessage || a == ActionCancelLast
}

// Intent is a typed action request parsed from an utterance.
// It is ephemeral: produced by the interpreter, consumed once by the dispatcher.
type Intent struct {
	Action    Action
	Recipient string // schedule_message only
	Message   string // schedule_message only
	SendTime  string // schedule_message only, optional ISO-8601
	Reply     string // chat only, model-supplied reply text
}
