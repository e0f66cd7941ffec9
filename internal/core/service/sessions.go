package service

import (
	"fmt"
	"sync"
	"time"

	"memebot/internal/core/domain"

	"github.com/gofrs/uuid/v5"
	"github.com/rs/zerolog/log"
)

const defaultSessionTTL = 15 * time.Minute

// SessionStore keeps live pagination sessions keyed by ID. Navigation on one session is serialized;
// sessions expire after ttl without interaction.
type SessionStore struct {
	ttl time.Duration

	mu       sync.RWMutex
	sessions map[string]*liveSession
}

type liveSession struct {
	mu        sync.Mutex
	session   *Session
	chatID    int64
	messageID int
	timer     *time.Timer
}

func NewSessionStore(ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}

	return &SessionStore{
		ttl:      ttl,
		sessions: make(map[string]*liveSession),
	}
}

// Start creates a session over items for a chat and returns its ID and first view.
func (s *SessionStore) Start(chatID int64, items []domain.Item) (string, domain.View, error) {
	session, err := NewSession(items)
	if err != nil {
		return "", domain.View{}, err
	}

	id, err := uuid.NewV4()
	if err != nil {
		return "", domain.View{}, fmt.Errorf("failed to create session id: %w", err)
	}

	key := id.String()
	ls := &liveSession{session: session, chatID: chatID}
	ls.timer = time.AfterFunc(s.ttl, func() { s.expire(key, ls) })

	s.mu.Lock()
	s.sessions[key] = ls
	s.mu.Unlock()

	log.Debug().Str("session", key).Int64("chatId", chatID).Int("items", session.Len()).Msg("session started")

	return key, session.Render(), nil
}

// Bind records the message that renders the session.
func (s *SessionStore) Bind(id string, messageID int) error {
	ls, err := s.get(id)
	if err != nil {
		return err
	}

	ls.mu.Lock()
	ls.messageID = messageID
	ls.mu.Unlock()

	return nil
}

// Navigate applies action to the session and returns the new view and whether it changed. When the cursor
// moved, render is called with the new view before the session is unlocked, so renders of one session land
// in cursor order. A render error is returned with the view.
func (s *SessionStore) Navigate(id string, chatID int64, action domain.NavAction,
	render func(domain.View) error,
) (domain.View, bool, error) {
	ls, err := s.get(id)
	if err != nil {
		return domain.View{}, false, err
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()

	if ls.chatID != chatID {
		return domain.View{}, false, domain.ErrSessionNotFound
	}

	var moved bool
	switch action {
	case domain.NavNext:
		moved = ls.session.Next()
	case domain.NavPrevious:
		moved = ls.session.Previous()
	default:
		return domain.View{}, false, fmt.Errorf("%w: %q", domain.ErrUnknownAction, action)
	}

	ls.timer.Reset(s.ttl)

	view := ls.session.Render()
	if moved && render != nil {
		if err := render(view); err != nil {
			return view, moved, err
		}
	}

	return view, moved, nil
}

// Close drops the session and returns the ID of the message it was bound to, if any.
func (s *SessionStore) Close(id string, chatID int64) (int, error) {
	ls, err := s.get(id)
	if err != nil {
		return 0, err
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()

	if ls.chatID != chatID {
		return 0, domain.ErrSessionNotFound
	}

	ls.timer.Stop()
	s.remove(id, ls)

	return ls.messageID, nil
}

func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.sessions)
}

// Stop drops every session and its expiry timer.
func (s *SessionStore) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, ls := range s.sessions {
		ls.timer.Stop()
		delete(s.sessions, id)
	}
}

func (s *SessionStore) get(id string) (*liveSession, error) {
	s.mu.RLock()
	ls, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok {
		return nil, domain.ErrSessionNotFound
	}

	return ls, nil
}

func (s *SessionStore) expire(id string, ls *liveSession) {
	s.remove(id, ls)
	log.Debug().Str("session", id).Msg("session expired")
}

func (s *SessionStore) remove(id string, ls *liveSession) {
	s.mu.Lock()
	if s.sessions[id] == ls {
		delete(s.sessions, id)
	}
	s.mu.Unlock()
}
