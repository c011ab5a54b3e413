package conversation

import (
	"github.com/DiscordantST/document-bot/internal/domain/models"
)

// InputKind discriminates what the user just did.
type InputKind int

const (
	// InputFile is a document or photo arriving in chat.
	InputFile InputKind = iota
	// InputText is a plain text message.
	InputText
	// InputDateChoice is a tap on a date keyboard (start|* or end|*).
	InputDateChoice
	// InputTemplateChoice is a tap on the template picker.
	InputTemplateChoice
	// InputCancel aborts whatever conversation is active.
	InputCancel
)

// Input is one user event fed into the machine.
type Input struct {
	Kind InputKind

	// File receipt.
	FileID   string
	FileName string
	FileSize int64

	// Sender profile, used to register the user on first contact.
	Username  string
	FirstName string

	// Text message body.
	Text string

	// Date keyboard choice: today, +1m, +3m, +6m, +1y, +2y, +5y,
	// manual or skip.
	Choice string

	// Template picker choice; nil means "no template".
	TemplateID *int64
}

// Outcome marks the terminal result of a conversation step.
type Outcome int

const (
	// OutcomeNone means the conversation continues (or nothing happened).
	OutcomeNone Outcome = iota
	// OutcomePersisted means a document was saved.
	OutcomePersisted
	// OutcomeUpdated means an existing document was changed.
	OutcomeUpdated
	// OutcomeTemplateCreated means a template was saved.
	OutcomeTemplateCreated
	// OutcomeDiscarded means the draft was thrown away.
	OutcomeDiscarded
	// OutcomeLimitReached means a quota blocked the flow before it began.
	OutcomeLimitReached
	// OutcomeFailed means the store rejected the final write.
	OutcomeFailed
)

// KeyboardKind selects which keyboard the presentation layer should build
// for a reply.
type KeyboardKind int

const (
	KeyboardNone KeyboardKind = iota
	// KeyboardStartDate shows the quick date options and manual entry.
	KeyboardStartDate
	// KeyboardEndDate adds a skip button to the date options.
	KeyboardEndDate
	// KeyboardTemplatePicker lists templates for selection plus skip.
	KeyboardTemplatePicker
	// KeyboardDocuments lists documents with view buttons.
	KeyboardDocuments
)

// Keyboard is a symbolic keyboard request with its data payload. The
// machine never builds buttons itself; presentation does.
type Keyboard struct {
	Kind      KeyboardKind
	Templates []models.Template
	Documents []models.Document
	Page      int
}

// Reply asks the presentation layer to render one catalog message.
type Reply struct {
	Key      string
	Data     map[string]string
	Keyboard Keyboard
}

// Effect is what a conversation step asks the caller to do.
type Effect struct {
	Reply    *Reply
	Outcome  Outcome
	Document *models.Document
}
