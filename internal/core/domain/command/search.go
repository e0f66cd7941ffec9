package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"memebot/internal/core/domain"
	"memebot/internal/core/port"
	"memebot/internal/core/service"

	"github.com/rs/zerolog/log"
)

const expiredSearch = "This search has expired, please run it again."

// MemeSearch answers with a paginated view over search results.
type MemeSearch struct {
	searcher   port.Searcher
	sessions   *service.SessionStore
	viewSender port.ViewSender
	textSender port.TextSender
	command    string
}

func NewMemeSearch(searcher port.Searcher, sessions *service.SessionStore, viewSender port.ViewSender,
	textSender port.TextSender, command string) *MemeSearch {
	return &MemeSearch{
		searcher:   searcher,
		sessions:   sessions,
		viewSender: viewSender,
		textSender: textSender,
		command:    command,
	}
}

func (s *MemeSearch) GetCommand() string {
	return s.command
}

func (s *MemeSearch) Respond(ctx context.Context, timeout time.Duration, message *domain.Message) error {
	keyword := ParseCommandArgs(message.Text)

	l := log.With().
		Int("messageId", message.ID).
		Int64("chatId", message.ChatID).
		Str("command", s.GetCommand()).
		Str("keyword", keyword).
		Logger()

	l.Info().Msg("handling request")

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if keyword == "" {
		return s.textSender.NotifyAndReturnError(ctx, usage(s.command, "<keyword>"), message)
	}

	go s.textSender.SendChatAction(ctx, message.ChatID, domain.SendingPhoto)

	items, err := s.searcher.Search(ctx, keyword)
	if err != nil {
		return s.textSender.NotifyAndReturnError(ctx, fmt.Errorf("error searching memes: %w", err), message)
	}

	id, view, err := s.sessions.Start(message.ChatID, items)
	if errors.Is(err, domain.ErrEmptySession) {
		return s.textSender.NotifyAndReturnError(ctx, fmt.Errorf("%w for '%s'", domain.ErrNotFound, keyword), message)
	}
	if err != nil {
		return s.textSender.NotifyAndReturnError(ctx, err, message)
	}

	messageID, err := s.viewSender.SendView(ctx, message, fmt.Sprintf("🔍 Results for '%s'", keyword), view, id)
	if err != nil {
		_, _ = s.sessions.Close(id, message.ChatID)
		return s.textSender.NotifyAndReturnError(ctx, fmt.Errorf("error sending results: %w", err), message)
	}

	if err := s.sessions.Bind(id, messageID); err != nil {
		l.Warn().Err(err).Msg("session ended before it was bound")
	}

	l.Debug().Str("session", id).Int("results", len(items)).Msg("search session started")

	return nil
}

// Pager handles the previous, next and close buttons of a search view.
type Pager struct {
	sessions   *service.SessionStore
	viewSender port.ViewSender
}

func NewPager(sessions *service.SessionStore, viewSender port.ViewSender) *Pager {
	return &Pager{sessions: sessions, viewSender: viewSender}
}

func (p *Pager) Prefix() string {
	return domain.PagePrefix
}

func (p *Pager) HandleCallback(ctx context.Context, press *domain.ButtonPress) error {
	_, action, id, ok := domain.ParseCallbackData(press.Data)
	if !ok {
		_ = p.viewSender.AnswerPress(ctx, press, "")
		return fmt.Errorf("%w: %q", domain.ErrUnknownAction, press.Data)
	}

	l := log.With().
		Int64("chatId", press.ChatID).
		Int("messageId", press.MessageID).
		Str("session", id).
		Str("action", action).
		Logger()

	if domain.NavAction(action) == domain.NavClose {
		messageID, err := p.sessions.Close(id, press.ChatID)
		if err != nil {
			return p.answerError(ctx, press, err)
		}

		if messageID == 0 {
			messageID = press.MessageID
		}

		l.Debug().Msg("closing search session")

		if err := p.viewSender.DeleteMessage(ctx, press.ChatID, messageID); err != nil {
			_ = p.viewSender.AnswerPress(ctx, press, "")
			return err
		}

		return p.viewSender.AnswerPress(ctx, press, "")
	}

	// the edit runs under the session lock so concurrent presses render in cursor order
	_, moved, err := p.sessions.Navigate(id, press.ChatID, domain.NavAction(action), func(view domain.View) error {
		return p.viewSender.EditView(ctx, press.ChatID, press.MessageID, view, id)
	})
	if err != nil {
		return p.answerError(ctx, press, err)
	}

	if !moved {
		l.Debug().Msg("already at boundary")
	}

	return p.viewSender.AnswerPress(ctx, press, "")
}

func (p *Pager) answerError(ctx context.Context, press *domain.ButtonPress, err error) error {
	if errors.Is(err, domain.ErrSessionNotFound) {
		return p.viewSender.AnswerPress(ctx, press, expiredSearch)
	}

	_ = p.viewSender.AnswerPress(ctx, press, "")

	return err
}
