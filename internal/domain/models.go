package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Amounts holds one monetary value split into its taxable base and tax.
// Incl always equals Excl plus Tax.
type Amounts struct {
	Excl decimal.Decimal `json:"excl"`
	Incl decimal.Decimal `json:"incl"`
	Tax  decimal.Decimal `json:"tax"`
}

// Draft is a record being filled in across several dialogue steps.
// It is implemented only by the draft types in this package.
type Draft interface {
	Kind() RecordKind
	// Missing returns the names of required fields that are still empty.
	Missing() []string
	sealed()
}

// ExpenseDraft is an expense row in progress.
type ExpenseDraft struct {
	Date     time.Time
	Category string
	Amounts  *Amounts
	// Comment is nil until the comment step has been answered; "" means skipped.
	Comment *string
}

func (*ExpenseDraft) Kind() RecordKind { return KindExpense }
func (*ExpenseDraft) sealed()          {}

func (d *ExpenseDraft) Missing() []string {
	var missing []string
	if d.Date.IsZero() {
		missing = append(missing, "date")
	}
	if strings.TrimSpace(d.Category) == "" {
		missing = append(missing, "category")
	}
	if d.Amounts == nil {
		missing = append(missing, "amount")
	}
	if d.Comment == nil {
		missing = append(missing, "comment")
	}
	return missing
}

// IncomeDraft is an income row in progress.
type IncomeDraft struct {
	Date    time.Time
	Info    string
	Amounts *Amounts
}

func (*IncomeDraft) Kind() RecordKind { return KindIncome }
func (*IncomeDraft) sealed()          {}

func (d *IncomeDraft) Missing() []string {
	var missing []string
	if d.Date.IsZero() {
		missing = append(missing, "date")
	}
	if strings.TrimSpace(d.Info) == "" {
		missing = append(missing, "info")
	}
	if d.Amounts == nil {
		missing = append(missing, "amount")
	}
	return missing
}

// RequestDraft is a payout request for the intake sheet.
type RequestDraft struct {
	Date     time.Time
	FIO      string
	Role     string
	Quantity *int
	Amount   *decimal.Decimal
	Period   string
}

func (*RequestDraft) Kind() RecordKind { return KindRequest }
func (*RequestDraft) sealed()          {}

func (d *RequestDraft) Missing() []string {
	var missing []string
	if d.Date.IsZero() {
		missing = append(missing, "date")
	}
	if strings.TrimSpace(d.FIO) == "" {
		missing = append(missing, "fio")
	}
	if strings.TrimSpace(d.Role) == "" {
		missing = append(missing, "role")
	}
	if d.Quantity == nil {
		missing = append(missing, "quantity")
	}
	if d.Amount == nil {
		missing = append(missing, "amount")
	}
	if strings.TrimSpace(d.Period) == "" {
		missing = append(missing, "period")
	}
	return missing
}

// CommittedRef points at the row written for the last accepted record.
type CommittedRef struct {
	Sheet string
	Kind  RecordKind
	Row   int
}

// ChatState is the conversation state of one chat.
type ChatState struct {
	ChatID     int64
	Authorized bool
	Project    string
	Step       Step
	Pending    Draft
	// Branch is the entry type that seeded the most recent draft.
	Branch        EntryType
	LastCommitted *CommittedRef
}

// NewChatState returns the state of a chat that has not talked to the bot yet.
func NewChatState(chatID int64) *ChatState {
	return &ChatState{ChatID: chatID, Step: StepNone}
}

// StartDraft seeds a fresh draft for branch and moves to its first step.
func (s *ChatState) StartDraft(branch EntryType, now time.Time) {
	day := Today(now)
	s.Branch = branch
	s.LastCommitted = nil
	switch branch {
	case EntryExpense:
		s.Pending = &ExpenseDraft{Date: day}
		s.Step = StepExpenseCategory
	case EntryIncome:
		s.Pending = &IncomeDraft{Date: day}
		s.Step = StepIncomeInfo
	case EntryRequest:
		s.Pending = &RequestDraft{Date: day}
		s.Step = StepRequestFIO
	case EntryAI:
		s.Pending = nil
		s.Step = StepAIText
	case EntryRequestAI:
		s.Pending = nil
		s.Step = StepRequestAIText
	}
}

// Restart forgets everything about the chat except the password gate.
func (s *ChatState) Restart() {
	*s = ChatState{ChatID: s.ChatID, Authorized: s.Authorized, Step: StepNone}
}

// ResetToMenu drops any pending draft and waits for an entry type.
func (s *ChatState) ResetToMenu() {
	s.Pending = nil
	s.Step = StepEntryType
}

// Discard drops the pending draft and the last committed handle.
func (s *ChatState) Discard() {
	s.ResetToMenu()
	s.LastCommitted = nil
}

// Today truncates t to a calendar day in its own location.
func Today(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Event is one inbound user interaction, already stripped of transport details.
type Event struct {
	ChatID     int64
	MessageID  int
	Text       string
	Action     string
	CallbackID string
}

// IsAction reports whether the event came from an inline button.
func (e Event) IsAction() bool {
	return e.Action != ""
}

// IsStart reports whether the event is the /start command.
func (e Event) IsStart() bool {
	t := strings.TrimSpace(e.Text)
	return t == "/start" || strings.HasPrefix(t, "/start ") || strings.HasPrefix(t, "/start@")
}
