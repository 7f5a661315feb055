// Package chat provides a unified interface for chat frontends.
package chat

import (
	"context"
)

// Message represents a normalized chat message from any frontend
type Message struct {
	ID         string
	ChatID     string
	SenderID   string
	SenderName string
	Text       string
	Raw        any // underlying library message struct
}

// InlineQuery represents a normalized inline search query
type InlineQuery struct {
	ID       string
	SenderID string
	Query    string
}

// SelectionEvent represents a pressed selection button
type SelectionEvent struct {
	CallbackID      string
	ChatID          string // empty for inline-origin events
	MessageID       string // message carrying the keyboard, if any
	InlineMessageID string // set only for inline-origin events
	SenderID        string
	Payload         string
}

// SelectionOption is one row of a selection keyboard
type SelectionOption struct {
	Label   string
	Payload string
}

// InlineResult is one answer to an inline query
type InlineResult struct {
	ID          string
	Title       string
	Description string
	Thumbnail   string
	Text        string // message content posted when the result is picked
	Payload     string // callback payload of the attached button
	ButtonLabel string
}

// Audio is a finished audio delivery
type Audio struct {
	FilePath      string
	ThumbnailPath string
	Title         string
	Performer     string
	DurationSecs  int
	Caption       string // MarkdownV2
}

// Handlers receives normalized frontend events
type Handlers struct {
	OnMessage     func(ctx context.Context, m *Message)
	OnSelection   func(ctx context.Context, e *SelectionEvent)
	OnInlineQuery func(ctx context.Context, q *InlineQuery)
}

// Frontend defines the unified interface for all chat integrations
type Frontend interface {
	// Start initializes the connection to the chat service
	Start(ctx context.Context) error

	// Listen blocks, dispatching incoming updates to the handlers until ctx ends
	Listen(ctx context.Context, handlers Handlers) error

	// SendText sends a text message and returns the new message ID
	SendText(ctx context.Context, chatID, replyToID, text string) (string, error)

	// EditText replaces the text of an existing message
	EditText(ctx context.Context, chatID, messageID, text string) error

	// DeleteMessage deletes a message by its ID
	DeleteMessage(ctx context.Context, chatID, messageID string) error

	// SendSelectionKeyboard sends a prompt with one button per option and
	// returns the new message ID
	SendSelectionKeyboard(ctx context.Context, chatID, text string, options []SelectionOption) (string, error)

	// RemoveKeyboard strips the buttons from a selection message, keeping text
	RemoveKeyboard(ctx context.Context, chatID, messageID, text string) error

	// SendAudio uploads an audio file to a chat
	SendAudio(ctx context.Context, chatID string, audio *Audio) error

	// AnswerCallback acknowledges a selection event, optionally with a notice
	AnswerCallback(ctx context.Context, callbackID, text string) error

	// AnswerInlineQuery responds to an inline query with a result list
	AnswerInlineQuery(ctx context.Context, queryID string, results []InlineResult) error

	// EditInlineText replaces the text of an inline-originated message
	EditInlineText(ctx context.Context, inlineMessageID, text string) error
}
