package command

import (
	"context"
	"sync"

	"memebot/internal/core/domain"

	"github.com/stretchr/testify/mock"
)

type MockTextSender struct {
	mu       sync.Mutex
	err      error
	Messages []string
	Errors   []error
}

func (m *MockTextSender) SendMessageReply(_ context.Context, _ *domain.Message, message string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Messages = append(m.Messages, message)
	return len(m.Messages), m.err
}

func (m *MockTextSender) NotifyAndReturnError(_ context.Context, err error, _ *domain.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Errors = append(m.Errors, err)
	if m.err != nil {
		return m.err
	}
	return err
}

func (m *MockTextSender) SendChatAction(_ context.Context, _ int64, _ domain.Action) {}

func (m *MockTextSender) last() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.Messages) == 0 {
		return ""
	}
	return m.Messages[len(m.Messages)-1]
}

type MockItemSender struct {
	err         error
	Item        domain.Item
	RefreshData string
	Header      string
	Items       []domain.Item
}

func (m *MockItemSender) SendItemReply(_ context.Context, _ *domain.Message, item domain.Item, refreshData string) error {
	m.Item = item
	m.RefreshData = refreshData
	return m.err
}

func (m *MockItemSender) SendItemsReply(_ context.Context, _ *domain.Message, header string, items []domain.Item) error {
	m.Header = header
	m.Items = items
	return m.err
}

type MockViewSender struct {
	mock.Mock
}

func (m *MockViewSender) SendView(ctx context.Context, message *domain.Message, header string, view domain.View,
	sessionID string) (int, error) {
	args := m.Called(ctx, message, header, view, sessionID)
	return args.Int(0), args.Error(1)
}

func (m *MockViewSender) EditView(ctx context.Context, chatID int64, messageID int, view domain.View,
	sessionID string) error {
	args := m.Called(ctx, chatID, messageID, view, sessionID)
	return args.Error(0)
}

func (m *MockViewSender) EditItem(ctx context.Context, chatID int64, messageID int, item domain.Item,
	refreshData string) error {
	args := m.Called(ctx, chatID, messageID, item, refreshData)
	return args.Error(0)
}

func (m *MockViewSender) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	args := m.Called(ctx, chatID, messageID)
	return args.Error(0)
}

func (m *MockViewSender) AnswerPress(ctx context.Context, press *domain.ButtonPress, text string) error {
	args := m.Called(ctx, press, text)
	return args.Error(0)
}

type MockSource struct {
	item      domain.Item
	err       error
	Selectors []string
}

func (m *MockSource) Fetch(_ context.Context, selector string) (domain.Item, error) {
	m.Selectors = append(m.Selectors, selector)
	return m.item, m.err
}

type MockLister struct {
	items     []domain.Item
	err       error
	Timeframe string
	Limit     int
}

func (m *MockLister) Top(_ context.Context, timeframe string, limit int) ([]domain.Item, error) {
	m.Timeframe = timeframe
	m.Limit = limit
	return m.items, m.err
}

func (m *MockLister) Newest(_ context.Context, limit int) ([]domain.Item, error) {
	m.Limit = limit
	return m.items, m.err
}

type MockSearcher struct {
	items   []domain.Item
	err     error
	Keyword string
}

func (m *MockSearcher) Search(_ context.Context, keyword string) ([]domain.Item, error) {
	m.Keyword = keyword
	return m.items, m.err
}

type MockBroadcaster struct {
	mock.Mock
}

func (m *MockBroadcaster) Configure(destinationID int64, selector, intervalText string) error {
	return m.Called(destinationID, selector, intervalText).Error(0)
}

func (m *MockBroadcaster) Pause(destinationID int64) error {
	return m.Called(destinationID).Error(0)
}

func (m *MockBroadcaster) Resume(destinationID int64, selectorOverride string) error {
	return m.Called(destinationID, selectorOverride).Error(0)
}

func (m *MockBroadcaster) Teardown(destinationID int64) error {
	return m.Called(destinationID).Error(0)
}

func (m *MockBroadcaster) Status(destinationID int64) (domain.RegistryEntry, bool) {
	args := m.Called(destinationID)
	entry, _ := args.Get(0).(domain.RegistryEntry)
	return entry, args.Bool(1)
}

func (m *MockBroadcaster) List() []domain.RegistryEntry {
	args := m.Called()
	entries, _ := args.Get(0).([]domain.RegistryEntry)
	return entries
}

type MockAuthorizer struct {
	allow bool
}

func (m *MockAuthorizer) IsAuthorized(_ context.Context, _ *domain.Message) bool {
	return m.allow
}
