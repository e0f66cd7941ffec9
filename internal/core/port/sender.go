package port

import (
	"context"
	"memebot/internal/core/domain"
	"time"
)

type TextSender interface {
	// SendMessageReply sends a reply to a specified message with the given text and returns the sent message ID and
	// an error if any.
	SendMessageReply(ctx context.Context, message *domain.Message, text string) (int, error)
	// SendChatAction sends a specified chat action (e.g., typing, sending photo) to indicate activity in a given chat.
	SendChatAction(ctx context.Context, chatID int64, action domain.Action)
	// NotifyAndReturnError sends an error notification based on the provided message context and returns the error.
	NotifyAndReturnError(ctx context.Context, err error, message *domain.Message) error
}

type ItemSender interface {
	// SendItemReply sends a single item in response to message, with an optional refresh button carrying refreshData.
	SendItemReply(ctx context.Context, message *domain.Message, item domain.Item, refreshData string) error
	// SendItemsReply sends a batch of items following a header line.
	SendItemsReply(ctx context.Context, message *domain.Message, header string, items []domain.Item) error
}

// Sink delivers scheduled items to a destination chat.
type Sink interface {
	Deliver(ctx context.Context, destinationID int64, item domain.Item) error
}

type ViewSender interface {
	// SendView posts a rendered session view with navigation buttons and returns the new message ID.
	SendView(ctx context.Context, message *domain.Message, header string, view domain.View, sessionID string) (int, error)
	// EditView re-renders an existing view message in place.
	EditView(ctx context.Context, chatID int64, messageID int, view domain.View, sessionID string) error
	// EditItem replaces an item message in place, used by refresh buttons.
	EditItem(ctx context.Context, chatID int64, messageID int, item domain.Item, refreshData string) error
	DeleteMessage(ctx context.Context, chatID int64, messageID int) error
	// AnswerPress acknowledges a button press, optionally showing text to the user.
	AnswerPress(ctx context.Context, press *domain.ButtonPress, text string) error
}

type Pinger interface {
	// Ping measures one round trip to the chat platform's API.
	Ping(ctx context.Context) (time.Duration, error)
}
