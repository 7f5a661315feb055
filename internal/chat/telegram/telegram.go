// Package telegram provides Telegram Bot API integration using go-telegram/bot library.
package telegram

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"songfetch/internal/chat"
)

// Config holds Telegram-specific configuration
type Config struct {
	BotToken string
}

// Frontend implements the chat.Frontend interface for Telegram
type Frontend struct {
	config   *Config
	logger   *zap.Logger
	bot      *bot.Bot
	handlers chat.Handlers
}

// NewFrontend creates a new Telegram frontend
func NewFrontend(config *Config, logger *zap.Logger) *Frontend {
	return &Frontend{
		config: config,
		logger: logger.Named("telegram"),
	}
}

// Start initializes the Telegram bot
func (f *Frontend) Start(ctx context.Context) error {
	b, err := bot.New(f.config.BotToken, bot.WithDefaultHandler(f.handleUpdate))
	if err != nil {
		return fmt.Errorf("failed to create telegram bot: %w", err)
	}
	f.bot = b

	me, err := b.GetMe(ctx)
	if err != nil {
		return fmt.Errorf("failed to verify bot identity: %w", err)
	}

	f.logger.Info("Telegram frontend started",
		zap.String("username", me.Username))
	return nil
}

// Listen blocks, dispatching incoming updates to the handlers until ctx ends
func (f *Frontend) Listen(ctx context.Context, handlers chat.Handlers) error {
	f.handlers = handlers
	f.bot.Start(ctx)
	return nil
}

// handleUpdate routes incoming Telegram updates to the normalized handlers
func (f *Frontend) handleUpdate(ctx context.Context, _ *bot.Bot, update *models.Update) {
	switch {
	case update.Message != nil:
		f.handleMessage(ctx, update.Message)
	case update.CallbackQuery != nil:
		f.handleCallbackQuery(ctx, update.CallbackQuery)
	case update.InlineQuery != nil:
		f.handleInlineQuery(ctx, update.InlineQuery)
	}
}

func (f *Frontend) handleMessage(ctx context.Context, msg *models.Message) {
	if f.handlers.OnMessage == nil || msg.Text == "" {
		return
	}

	normalized := &chat.Message{
		ID:     strconv.Itoa(msg.ID),
		ChatID: strconv.FormatInt(msg.Chat.ID, 10),
		Text:   msg.Text,
		Raw:    msg,
	}
	if msg.From != nil {
		normalized.SenderID = strconv.FormatInt(msg.From.ID, 10)
		normalized.SenderName = msg.From.FirstName
	}

	f.handlers.OnMessage(ctx, normalized)
}

func (f *Frontend) handleCallbackQuery(ctx context.Context, query *models.CallbackQuery) {
	if f.handlers.OnSelection == nil {
		return
	}

	event := &chat.SelectionEvent{
		CallbackID:      query.ID,
		SenderID:        strconv.FormatInt(query.From.ID, 10),
		InlineMessageID: query.InlineMessageID,
		Payload:         query.Data,
	}
	if query.Message.Message != nil {
		event.ChatID = strconv.FormatInt(query.Message.Message.Chat.ID, 10)
		event.MessageID = strconv.Itoa(query.Message.Message.ID)
	}

	f.handlers.OnSelection(ctx, event)
}

func (f *Frontend) handleInlineQuery(ctx context.Context, query *models.InlineQuery) {
	if f.handlers.OnInlineQuery == nil {
		return
	}

	f.handlers.OnInlineQuery(ctx, &chat.InlineQuery{
		ID:       query.ID,
		SenderID: strconv.FormatInt(query.From.ID, 10),
		Query:    query.Query,
	})
}

// SendText sends a text message, optionally as a reply
func (f *Frontend) SendText(ctx context.Context, chatID, replyToID, text string) (string, error) {
	chatIDInt, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return "", fmt.Errorf("invalid chat ID: %w", err)
	}

	params := &bot.SendMessageParams{
		ChatID: chatIDInt,
		Text:   text,
	}

	if replyToID != "" {
		messageID, parseErr := strconv.Atoi(replyToID)
		if parseErr != nil {
			return "", fmt.Errorf("invalid reply message ID: %w", parseErr)
		}
		params.ReplyParameters = &models.ReplyParameters{
			MessageID: messageID,
		}
	}

	msg, err := f.bot.SendMessage(ctx, params)
	if err != nil {
		return "", fmt.Errorf("failed to send message: %w", err)
	}

	return strconv.Itoa(msg.ID), nil
}

// EditText replaces the text of an existing message
func (f *Frontend) EditText(ctx context.Context, chatID, messageID, text string) error {
	chatIDInt, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid chat ID: %w", err)
	}
	messageIDInt, err := strconv.Atoi(messageID)
	if err != nil {
		return fmt.Errorf("invalid message ID: %w", err)
	}

	_, err = f.bot.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:    chatIDInt,
		MessageID: messageIDInt,
		Text:      text,
	})
	if err != nil {
		return fmt.Errorf("failed to edit message: %w", err)
	}
	return nil
}

// DeleteMessage deletes a message by its ID
func (f *Frontend) DeleteMessage(ctx context.Context, chatID, messageID string) error {
	chatIDInt, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid chat ID: %w", err)
	}
	messageIDInt, err := strconv.Atoi(messageID)
	if err != nil {
		return fmt.Errorf("invalid message ID: %w", err)
	}

	_, err = f.bot.DeleteMessage(ctx, &bot.DeleteMessageParams{
		ChatID:    chatIDInt,
		MessageID: messageIDInt,
	})
	if err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	return nil
}

// SendSelectionKeyboard sends a prompt with one button per option
func (f *Frontend) SendSelectionKeyboard(ctx context.Context, chatID, text string, options []chat.SelectionOption) (string, error) {
	chatIDInt, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return "", fmt.Errorf("invalid chat ID: %w", err)
	}

	keyboard := make([][]models.InlineKeyboardButton, 0, len(options))
	for _, opt := range options {
		keyboard = append(keyboard, []models.InlineKeyboardButton{
			{Text: opt.Label, CallbackData: opt.Payload},
		})
	}

	msg, err := f.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatIDInt,
		Text:        text,
		ReplyMarkup: &models.InlineKeyboardMarkup{InlineKeyboard: keyboard},
	})
	if err != nil {
		return "", fmt.Errorf("failed to send selection keyboard: %w", err)
	}

	return strconv.Itoa(msg.ID), nil
}

// RemoveKeyboard strips the buttons from a selection message, keeping text
func (f *Frontend) RemoveKeyboard(ctx context.Context, chatID, messageID, text string) error {
	chatIDInt, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid chat ID: %w", err)
	}
	messageIDInt, err := strconv.Atoi(messageID)
	if err != nil {
		return fmt.Errorf("invalid message ID: %w", err)
	}

	_, err = f.bot.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:      chatIDInt,
		MessageID:   messageIDInt,
		Text:        text,
		ReplyMarkup: &models.InlineKeyboardMarkup{InlineKeyboard: [][]models.InlineKeyboardButton{}},
	})
	if err != nil {
		return fmt.Errorf("failed to remove keyboard: %w", err)
	}
	return nil
}

// SendAudio uploads an audio file with its metadata and cover art
func (f *Frontend) SendAudio(ctx context.Context, chatID string, audio *chat.Audio) error {
	chatIDInt, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid chat ID: %w", err)
	}

	audioFile, err := os.Open(audio.FilePath)
	if err != nil {
		return fmt.Errorf("failed to open audio file: %w", err)
	}
	defer audioFile.Close()

	params := &bot.SendAudioParams{
		ChatID: chatIDInt,
		Audio: &models.InputFileUpload{
			Filename: fmt.Sprintf("%s - %s.mp3", audio.Performer, audio.Title),
			Data:     audioFile,
		},
		Title:     audio.Title,
		Performer: audio.Performer,
		Duration:  audio.DurationSecs,
	}
	if audio.Caption != "" {
		params.Caption = audio.Caption
		params.ParseMode = models.ParseModeMarkdown
	}

	var thumbFile *os.File
	if audio.ThumbnailPath != "" {
		thumbFile, err = os.Open(audio.ThumbnailPath)
		if err == nil {
			defer thumbFile.Close()
			params.Thumbnail = &models.InputFileUpload{
				Filename: "cover.jpg",
				Data:     thumbFile,
			}
		} else {
			f.logger.Warn("Failed to open thumbnail, sending without cover",
				zap.String("path", audio.ThumbnailPath),
				zap.Error(err))
		}
	}

	if _, err := f.bot.SendAudio(ctx, params); err != nil {
		return fmt.Errorf("failed to send audio: %w", err)
	}
	return nil
}

// AnswerCallback acknowledges a selection event
func (f *Frontend) AnswerCallback(ctx context.Context, callbackID, text string) error {
	_, err := f.bot.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: callbackID,
		Text:            text,
	})
	if err != nil {
		return fmt.Errorf("failed to answer callback: %w", err)
	}
	return nil
}

// AnswerInlineQuery responds to an inline query with article results
func (f *Frontend) AnswerInlineQuery(ctx context.Context, queryID string, results []chat.InlineResult) error {
	converted := make([]models.InlineQueryResult, 0, len(results))
	for _, r := range results {
		article := &models.InlineQueryResultArticle{
			ID:           r.ID,
			Title:        r.Title,
			Description:  r.Description,
			ThumbnailURL: r.Thumbnail,
			InputMessageContent: &models.InputTextMessageContent{
				MessageText: r.Text,
			},
		}
		if r.Payload != "" {
			article.ReplyMarkup = &models.InlineKeyboardMarkup{
				InlineKeyboard: [][]models.InlineKeyboardButton{
					{{Text: r.ButtonLabel, CallbackData: r.Payload}},
				},
			}
		}
		converted = append(converted, article)
	}

	_, err := f.bot.AnswerInlineQuery(ctx, &bot.AnswerInlineQueryParams{
		InlineQueryID: queryID,
		Results:       converted,
	})
	if err != nil {
		return fmt.Errorf("failed to answer inline query: %w", err)
	}
	return nil
}

// EditInlineText replaces the text of an inline-originated message
func (f *Frontend) EditInlineText(ctx context.Context, inlineMessageID, text string) error {
	_, err := f.bot.EditMessageText(ctx, &bot.EditMessageTextParams{
		InlineMessageID: inlineMessageID,
		Text:            text,
	})
	if err != nil {
		return fmt.Errorf("failed to edit inline message: %w", err)
	}
	return nil
}
