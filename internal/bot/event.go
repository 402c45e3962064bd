// Package bot routes chat events to command modules.
package bot

import "context"

// Document is a file attached to a message.
type Document struct {
	FileID   string
	FileName string
	MimeType string
	Size     int64
}

// Event is one normalized chat update.
type Event struct {
	UpdateID  int
	UserID    int64
	ChatID    int64
	MessageID int
	Username  string
	FirstName string

	Text    string
	Command string
	Args    string

	Document *Document

	CallbackID   string
	CallbackData string
}

func (e Event) Kind() string {
	switch {
	case e.CallbackID != "":
		return "callback"
	case e.Command != "":
		return "command"
	case e.Document != nil:
		return "document"
	case e.Text != "":
		return "text"
	default:
		return "other"
	}
}

const ParseModeMarkdown = "Markdown"

type Button struct {
	Text string
	Data string
}

type Reply struct {
	Text      string
	ParseMode string
	Keyboard  [][]Button
}

func Text(s string) Reply { return Reply{Text: s} }

func Markdown(s string) Reply { return Reply{Text: s, ParseMode: ParseModeMarkdown} }

// Sender delivers replies back to the chat platform.
type Sender interface {
	// Send posts a new message and returns its id.
	Send(ctx context.Context, chatID int64, reply Reply) (int, error)
	Edit(ctx context.Context, chatID int64, messageID int, reply Reply) error
	AnswerCallback(ctx context.Context, callbackID, text string) error
	Download(ctx context.Context, fileID string, maxBytes int64) ([]byte, error)
}
