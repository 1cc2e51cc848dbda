package domain

// Step identifies the kind of input a chat is currently expected to send.
type Step string

const (
	StepNone             Step = "none"
	StepProjectSelection Step = "project_selection"
	StepProjectName      Step = "project_name"
	StepEntryType        Step = "entry_type"
	StepExpenseCategory  Step = "expense_category"
	StepExpenseAmount    Step = "expense_amount"
	StepExpenseComment   Step = "expense_comment"
	StepIncomeInfo       Step = "income_info"
	StepIncomeAmount     Step = "income_amount"
	StepRequestFIO       Step = "request_fio"
	StepRequestRole      Step = "request_role"
	StepRequestQuantity  Step = "request_quantity"
	StepRequestAmount    Step = "request_amount"
	StepRequestPeriod    Step = "request_period"
	StepAIText           Step = "ai_text"
	StepRequestAIText    Step = "request_ai_text"
	StepConfirmation     Step = "confirmation"
)

// EntryType is the branch a user picks from the entry menu.
type EntryType string

const (
	EntryExpense   EntryType = "expense"
	EntryIncome    EntryType = "income"
	EntryAI        EntryType = "ai"
	EntryRequest   EntryType = "request"
	EntryRequestAI EntryType = "request_ai"
)

// ValidEntryTypes lists every branch the entry menu accepts.
var ValidEntryTypes = map[EntryType]bool{
	EntryExpense:   true,
	EntryIncome:    true,
	EntryAI:        true,
	EntryRequest:   true,
	EntryRequestAI: true,
}

// NeedsProject reports whether the branch writes into the selected project sheet.
// Payout requests go to the shared intake sheet instead.
func (e EntryType) NeedsProject() bool {
	return e != EntryRequest && e != EntryRequestAI
}

// RecordKind is the shape of a finished draft.
type RecordKind string

const (
	KindExpense RecordKind = "expense"
	KindIncome  RecordKind = "income"
	KindRequest RecordKind = "request"
)

// Action is the callback payload sent by inline keyboard buttons.
type Action string

const (
	ActionCreateProject  Action = "create_project"
	ActionBackToProjects Action = "back_to_projects"
	ActionBackToMenu     Action = "back_to_menu"
	ActionKeep           Action = "keep_last"
	ActionDelete         Action = "delete_last"
	ActionStartOver      Action = "start_over"
	ActionDownload       Action = "download"
	ActionPreview        Action = "preview"
	ActionDone           Action = "done"

	// ActionInputPrefix and ActionProjectPrefix carry an argument after the colon.
	ActionInputPrefix   = "input:"
	ActionProjectPrefix = "project:"
)
