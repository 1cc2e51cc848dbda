package port

import "context"

// Button is one keyboard button. Data is the callback payload for inline
// buttons and ignored for reply keyboards.
type Button struct {
	Text string
	Data string
}

// Keyboard is attached to an outgoing message. Inline keyboards send callbacks;
// reply keyboards send their text back as a message.
type Keyboard struct {
	Inline bool
	Rows   [][]Button
}

// OutgoingMessage is a text message to a chat.
type OutgoingMessage struct {
	Text     string
	Keyboard *Keyboard
}

// Document is a file sent to a chat.
type Document struct {
	FileName string
	Data     []byte
	Caption  string
}

// Messenger sends replies back to the messaging platform.
type Messenger interface {
	Send(ctx context.Context, chatID int64, msg OutgoingMessage) error
	SendDocument(ctx context.Context, chatID int64, doc Document) error
	DeleteMessage(ctx context.Context, chatID int64, messageID int) error
	AnswerCallback(ctx context.Context, callbackID string) error
}
