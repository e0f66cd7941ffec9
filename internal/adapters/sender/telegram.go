package sender

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"memebot/internal/core/domain"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	TelegramMessageLimit    = 4096
	TelegramCaptionLimit    = 1024
	ChatActionRepeatSeconds = 5
)

type TelegramBot interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
	SendPhoto(ctx context.Context, params *bot.SendPhotoParams) (*models.Message, error)
	SendChatAction(ctx context.Context, params *bot.SendChatActionParams) (bool, error)
	EditMessageMedia(ctx context.Context, params *bot.EditMessageMediaParams) (*models.Message, error)
	EditMessageText(ctx context.Context, params *bot.EditMessageTextParams) (*models.Message, error)
	DeleteMessage(ctx context.Context, params *bot.DeleteMessageParams) (bool, error)
	AnswerCallbackQuery(ctx context.Context, params *bot.AnswerCallbackQueryParams) (bool, error)
	GetMe(ctx context.Context) (*models.User, error)
}

type Option func(*Telegram)

// WithSendRate limits outgoing messages to perSecond. Zero or less disables limiting.
func WithSendRate(perSecond float64) Option {
	return func(t *Telegram) {
		if perSecond <= 0 {
			t.limiter = nil
			return
		}

		burst := int(perSecond)
		if burst < 1 {
			burst = 1
		}
		t.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithChatActionInterval sets how often a chat action is repeated while a command runs.
func WithChatActionInterval(d time.Duration) Option {
	return func(t *Telegram) {
		t.actionInterval = d
	}
}

type Telegram struct {
	bot            TelegramBot
	limiter        *rate.Limiter
	actionInterval time.Duration
}

func NewTelegram(b TelegramBot, opts ...Option) *Telegram {
	t := &Telegram{
		bot:            b,
		actionInterval: ChatActionRepeatSeconds * time.Second,
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

func (s *Telegram) wait(ctx context.Context) error {
	if s.limiter == nil {
		return nil
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("send rate limit: %w", err)
	}

	return nil
}

// Ping times a getMe call. It bypasses the send limiter so queued sends do not count as latency.
func (s *Telegram) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()

	if _, err := s.bot.GetMe(ctx); err != nil {
		return 0, fmt.Errorf("failed to reach telegram: %w", err)
	}

	return time.Since(start), nil
}

func replyTo(message *domain.Message) *models.ReplyParameters {
	return &models.ReplyParameters{
		MessageID: message.ID,
		ChatID:    message.ChatID,
	}
}

// SendMessageReply replies with text, split into as many messages as needed. It returns the ID of the last one.
func (s *Telegram) SendMessageReply(ctx context.Context, message *domain.Message, text string) (int, error) {
	var lastID int

	for _, chunk := range chunkText(text, TelegramMessageLimit) {
		if err := s.wait(ctx); err != nil {
			return lastID, err
		}

		sent, err := s.bot.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:          message.ChatID,
			Text:            chunk,
			ReplyParameters: replyTo(message),
		})
		if err != nil {
			log.Error().Err(err).Int64("chatId", message.ChatID).Msg("failed to send message reply")
			return lastID, err
		}

		lastID = sent.ID
	}

	return lastID, nil
}

func (s *Telegram) NotifyAndReturnError(ctx context.Context, err error, message *domain.Message) error {
	_, sendErr := s.SendMessageReply(ctx, message, fmt.Sprintf("Error: %v", err))
	if sendErr != nil {
		return fmt.Errorf("%w: %w", domain.ErrSendingReplyFailed, sendErr)
	}

	return err
}

func (s *Telegram) SendChatAction(ctx context.Context, chatID int64, action domain.Action) {
	chatAction := models.ChatActionTyping
	if action == domain.SendingPhoto {
		chatAction = models.ChatActionUploadPhoto
	}

	l := log.With().Int64("chatId", chatID).Str("action", string(chatAction)).Logger()
	l.Debug().Msg("starting action routine")

	ticker := time.NewTicker(s.actionInterval)
	defer ticker.Stop()

	for {
		_, err := s.bot.SendChatAction(ctx, &bot.SendChatActionParams{
			ChatID: chatID,
			Action: chatAction,
		})
		if err != nil {
			l.Debug().Err(err).Msg("error sending chat action")
			return
		}

		select {
		case <-ctx.Done():
			l.Debug().Msg("done, stopping action routine")
			return
		case <-ticker.C:
		}
	}
}

func (s *Telegram) SendItemReply(ctx context.Context, message *domain.Message, item domain.Item, refreshData string) error {
	var markup models.ReplyMarkup
	if refreshData != "" {
		markup = refreshKeyboard(refreshData)
	}

	_, err := s.send(ctx, message.ChatID, replyTo(message), item, itemCaption(item), markup)

	return err
}

func (s *Telegram) SendItemsReply(ctx context.Context, message *domain.Message, header string, items []domain.Item) error {
	if header != "" {
		if _, err := s.SendMessageReply(ctx, message, header); err != nil {
			return err
		}
	}

	for i, item := range items {
		caption := fmt.Sprintf("%d. %s", i+1, itemCaption(item))
		if _, err := s.send(ctx, message.ChatID, nil, item, caption, nil); err != nil {
			return fmt.Errorf("sending item %d of %d: %w", i+1, len(items), err)
		}
	}

	return nil
}

// Deliver posts a scheduled item to a destination chat.
func (s *Telegram) Deliver(ctx context.Context, destinationID int64, item domain.Item) error {
	_, err := s.send(ctx, destinationID, nil, item, itemCaption(item), nil)

	return err
}

func (s *Telegram) SendView(ctx context.Context, message *domain.Message, header string, view domain.View,
	sessionID string) (int, error) {
	caption := viewCaption(view)
	if header != "" {
		caption = header + "\n\n" + caption
	}

	return s.send(ctx, message.ChatID, replyTo(message), view.Item, caption, pageKeyboard(view, sessionID))
}

func (s *Telegram) EditView(ctx context.Context, chatID int64, messageID int, view domain.View, sessionID string) error {
	return s.edit(ctx, chatID, messageID, view.Item, viewCaption(view), pageKeyboard(view, sessionID))
}

func (s *Telegram) EditItem(ctx context.Context, chatID int64, messageID int, item domain.Item, refreshData string) error {
	return s.edit(ctx, chatID, messageID, item, itemCaption(item), refreshKeyboard(refreshData))
}

func (s *Telegram) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	_, err := s.bot.DeleteMessage(ctx, &bot.DeleteMessageParams{
		ChatID:    chatID,
		MessageID: messageID,
	})
	if err != nil {
		return fmt.Errorf("deleting message %d: %w", messageID, err)
	}

	return nil
}

func (s *Telegram) AnswerPress(ctx context.Context, press *domain.ButtonPress, text string) error {
	_, err := s.bot.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: press.ID,
		Text:            text,
	})
	if err != nil {
		return fmt.Errorf("answering callback query: %w", err)
	}

	return nil
}

// send posts item as a photo when it has an image and as a text message otherwise.
func (s *Telegram) send(ctx context.Context, chatID int64, reply *models.ReplyParameters, item domain.Item,
	caption string, markup models.ReplyMarkup) (int, error) {
	if err := s.wait(ctx); err != nil {
		return 0, err
	}

	l := log.With().Int64("chatId", chatID).Str("source", item.Source).Logger()

	var sent *models.Message
	var err error

	if item.ImageURL != "" {
		sent, err = s.bot.SendPhoto(ctx, &bot.SendPhotoParams{
			ChatID:          chatID,
			Photo:           &models.InputFileString{Data: item.ImageURL},
			Caption:         truncate(caption, TelegramCaptionLimit),
			ReplyParameters: reply,
			ReplyMarkup:     markup,
		})
	} else {
		sent, err = s.bot.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:          chatID,
			Text:            truncate(caption, TelegramMessageLimit),
			ReplyParameters: reply,
			ReplyMarkup:     markup,
		})
	}

	if err != nil {
		l.Error().Err(err).Msg("failed to send item")
		return 0, err
	}

	l.Debug().Int("messageId", sent.ID).Msg("item sent")

	return sent.ID, nil
}

func (s *Telegram) edit(ctx context.Context, chatID int64, messageID int, item domain.Item, caption string,
	markup models.ReplyMarkup) error {
	if err := s.wait(ctx); err != nil {
		return err
	}

	var err error

	if item.ImageURL != "" {
		_, err = s.bot.EditMessageMedia(ctx, &bot.EditMessageMediaParams{
			ChatID:    chatID,
			MessageID: messageID,
			Media: &models.InputMediaPhoto{
				Media:   item.ImageURL,
				Caption: truncate(caption, TelegramCaptionLimit),
			},
			ReplyMarkup: markup,
		})
	} else {
		_, err = s.bot.EditMessageText(ctx, &bot.EditMessageTextParams{
			ChatID:      chatID,
			MessageID:   messageID,
			Text:        truncate(caption, TelegramMessageLimit),
			ReplyMarkup: markup,
		})
	}

	if err != nil {
		log.Error().Err(err).Int64("chatId", chatID).Int("messageId", messageID).Msg("failed to edit message")
		return fmt.Errorf("editing message %d: %w", messageID, err)
	}

	return nil
}

func itemCaption(item domain.Item) string {
	var sb strings.Builder

	if item.Title != "" {
		sb.WriteString(item.Title)
	}

	if item.Text != "" {
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(item.Text)
	}

	if item.Score != 0 || item.Comments != 0 {
		fmt.Fprintf(&sb, "\n\n👍 %d | 💬 %d", item.Score, item.Comments)
	}

	if item.ImageURL == "" && item.Permalink != "" {
		sb.WriteString("\n" + item.Permalink)
	}

	return sb.String()
}

func viewCaption(view domain.View) string {
	return fmt.Sprintf("%s\n\nMeme %d/%d | From %s | Score: %d",
		view.Item.Title, view.Index+1, view.Total, view.Item.Source, view.Item.Score)
}

func pageKeyboard(view domain.View, sessionID string) *models.InlineKeyboardMarkup {
	var row []models.InlineKeyboardButton

	if view.HasPrevious {
		row = append(row, models.InlineKeyboardButton{
			Text:         "⬅️ Previous",
			CallbackData: domain.CallbackData(domain.PagePrefix, string(domain.NavPrevious), sessionID),
		})
	}

	if view.HasNext {
		row = append(row, models.InlineKeyboardButton{
			Text:         "Next ➡️",
			CallbackData: domain.CallbackData(domain.PagePrefix, string(domain.NavNext), sessionID),
		})
	}

	row = append(row, models.InlineKeyboardButton{
		Text:         "❌ Close",
		CallbackData: domain.CallbackData(domain.PagePrefix, string(domain.NavClose), sessionID),
	})

	return &models.InlineKeyboardMarkup{InlineKeyboard: [][]models.InlineKeyboardButton{row}}
}

func refreshKeyboard(data string) *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{InlineKeyboard: [][]models.InlineKeyboardButton{{
		{Text: "🔄 Another one", CallbackData: data},
	}}}
}

// chunkText splits text into pieces of at most limit bytes without cutting runes.
func chunkText(text string, limit int) []string {
	if len(text) <= limit {
		return []string{text}
	}

	var chunks []string
	for len(text) > limit {
		cut := limit
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		chunks = append(chunks, text[:cut])
		text = text[cut:]
	}

	if text != "" {
		chunks = append(chunks, text)
	}

	return chunks
}

func truncate(text string, limit int) string {
	if len(text) <= limit {
		return text
	}

	return chunkText(text, limit-len("…"))[0] + "…"
}
