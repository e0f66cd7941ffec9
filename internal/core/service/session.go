package service

import "memebot/internal/core/domain"

// Session is a cursor over a fixed, non-empty result set. It does no locking; callers serialize access.
type Session struct {
	items  []domain.Item
	cursor int
}

func NewSession(items []domain.Item) (*Session, error) {
	if len(items) == 0 {
		return nil, domain.ErrEmptySession
	}

	return &Session{items: append([]domain.Item(nil), items...)}, nil
}

// Next moves forward one item and reports whether the cursor moved.
func (s *Session) Next() bool {
	if s.cursor >= len(s.items)-1 {
		return false
	}

	s.cursor++
	return true
}

// Previous moves back one item and reports whether the cursor moved.
func (s *Session) Previous() bool {
	if s.cursor == 0 {
		return false
	}

	s.cursor--
	return true
}

func (s *Session) Render() domain.View {
	return domain.View{
		Item:        s.items[s.cursor],
		Index:       s.cursor,
		Total:       len(s.items),
		HasNext:     s.cursor < len(s.items)-1,
		HasPrevious: s.cursor > 0,
	}
}

func (s *Session) Len() int {
	return len(s.items)
}
