package command

import (
	"strings"
	"testing"
	"time"

	"memebot/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestParseDestination(t *testing.T) {
	msg := &domain.Message{ChatID: 42}

	tests := []struct {
		args        string
		destination int64
		rest        []string
	}{
		{args: "", destination: 42, rest: []string{}},
		{args: "here memes 5 min", destination: 42, rest: []string{"memes", "5", "min"}},
		{args: "-100123 memes 5min", destination: -100123, rest: []string{"memes", "5min"}},
		{args: "memes 30 sec", destination: 42, rest: []string{"memes", "30", "sec"}},
	}

	for _, tt := range tests {
		t.Run(tt.args, func(t *testing.T) {
			destination, rest := parseDestination(msg, strings.Fields(tt.args))
			assert.Equal(t, tt.destination, destination)
			assert.Equal(t, len(tt.rest), len(rest))
			for i := range tt.rest {
				assert.Equal(t, tt.rest[i], rest[i])
			}
		})
	}
}

func TestSetChannelRespond(t *testing.T) {
	b := new(MockBroadcaster)
	ts := &MockTextSender{}
	msg := &domain.Message{ID: 1, ChatID: 42, Text: "/setchannel -100 DankMemes 5 min"}

	b.On("Configure", int64(-100), "dankmemes", "5 min").Return(nil).Once()
	b.On("Status", int64(-100)).Return(domain.RegistryEntry{
		Config: domain.ScheduleConfig{DestinationID: -100, Selector: "dankmemes", Interval: 5 * time.Minute},
		Active: true,
	}, true).Once()

	cmd := NewSetChannel(b, &MockAuthorizer{allow: true}, ts, "/setchannel")
	require.NoError(t, cmd.Respond(t.Context(), time.Second, msg))

	assert.Equal(t, "✅ Posting 'dankmemes' to chat -100 every 5 min.", ts.last())
	b.AssertExpectations(t)
}

func TestSetChannelPausedHint(t *testing.T) {
	b := new(MockBroadcaster)
	ts := &MockTextSender{}

	b.On("Configure", int64(42), "memes", "30 sec").Return(nil).Once()
	b.On("Status", int64(42)).Return(domain.RegistryEntry{
		Config: domain.ScheduleConfig{DestinationID: 42, Selector: "memes", Interval: 30 * time.Second},
		Paused: true,
	}, true).Once()

	cmd := NewSetChannel(b, &MockAuthorizer{allow: true}, ts, "/setchannel")
	require.NoError(t, cmd.Respond(t.Context(), time.Second, &domain.Message{ChatID: 42, Text: "/setchannel memes 30sec"}))

	assert.Contains(t, ts.last(), "this chat every 30 sec")
	assert.Contains(t, ts.last(), "paused")
}

func TestSetChannelRespondErrors(t *testing.T) {
	t.Run("unauthorized", func(t *testing.T) {
		b := new(MockBroadcaster)
		ts := &MockTextSender{}

		cmd := NewSetChannel(b, &MockAuthorizer{allow: false}, ts, "/setchannel")
		require.NoError(t, cmd.Respond(t.Context(), time.Second, &domain.Message{ChatID: 1, Text: "/setchannel memes 5 min"}))

		b.AssertNotCalled(t, "Configure", mock.Anything, mock.Anything, mock.Anything)
		assert.Empty(t, ts.Messages)
	})

	t.Run("missing interval", func(t *testing.T) {
		b := new(MockBroadcaster)
		ts := &MockTextSender{}

		cmd := NewSetChannel(b, &MockAuthorizer{allow: true}, ts, "/setchannel")
		err := cmd.Respond(t.Context(), time.Second, &domain.Message{ChatID: 1, Text: "/setchannel here memes"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "usage: /setchannel")
		b.AssertNotCalled(t, "Configure", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("invalid interval", func(t *testing.T) {
		b := new(MockBroadcaster)
		ts := &MockTextSender{}
		b.On("Configure", int64(1), "memes", "5 hours").Return(domain.ErrInvalidInterval).Once()

		cmd := NewSetChannel(b, &MockAuthorizer{allow: true}, ts, "/setchannel")
		err := cmd.Respond(t.Context(), time.Second, &domain.Message{ChatID: 1, Text: "/setchannel memes 5 hours"})

		require.ErrorIs(t, err, domain.ErrInvalidInterval)
		assert.Empty(t, ts.Messages)
	})
}

func TestStopMemesRespond(t *testing.T) {
	b := new(MockBroadcaster)
	ts := &MockTextSender{}
	b.On("Pause", int64(42)).Return(nil).Once()
	b.On("Pause", int64(-7)).Return(domain.ErrNotConfigured).Once()

	cmd := NewStopMemes(b, &MockAuthorizer{allow: true}, ts, "/stopmemes")

	require.NoError(t, cmd.Respond(t.Context(), time.Second, &domain.Message{ChatID: 42, Text: "/stopmemes"}))
	assert.Equal(t, "⏸ Stopped posting memes in this chat.", ts.last())

	err := cmd.Respond(t.Context(), time.Second, &domain.Message{ChatID: 42, Text: "/stopmemes -7"})
	require.ErrorIs(t, err, domain.ErrNotConfigured)

	b.AssertExpectations(t)
}

func TestStartMemesRespond(t *testing.T) {
	b := new(MockBroadcaster)
	ts := &MockTextSender{}
	b.On("Resume", int64(42), "funny").Return(nil).Once()
	b.On("Status", int64(42)).Return(domain.RegistryEntry{
		Config: domain.ScheduleConfig{DestinationID: 42, Selector: "funny", Interval: time.Minute},
		Active: true,
	}, true).Once()
	b.On("Resume", int64(42), "").Return(domain.ErrAlreadyActive).Once()

	cmd := NewStartMemes(b, &MockAuthorizer{allow: true}, ts, "/startmemes")

	require.NoError(t, cmd.Respond(t.Context(), time.Second, &domain.Message{ChatID: 42, Text: "/startmemes here Funny"}))
	assert.Equal(t, "▶️ Resumed posting 'funny' in this chat.", ts.last())

	err := cmd.Respond(t.Context(), time.Second, &domain.Message{ChatID: 42, Text: "/startmemes"})
	require.ErrorIs(t, err, domain.ErrAlreadyActive)

	b.AssertExpectations(t)
}

func TestUnsetChannelRespond(t *testing.T) {
	b := new(MockBroadcaster)
	ts := &MockTextSender{}
	b.On("Teardown", int64(42)).Return(nil).Once()

	cmd := NewUnsetChannel(b, &MockAuthorizer{allow: true}, ts, "/unsetchannel")
	require.NoError(t, cmd.Respond(t.Context(), time.Second, &domain.Message{ChatID: 42, Text: "/unsetchannel here"}))

	assert.Equal(t, "🗑 Removed the schedule of this chat.", ts.last())
	b.AssertExpectations(t)
}

func TestStatusRespond(t *testing.T) {
	started := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	b := new(MockBroadcaster)
	b.On("Status", int64(42)).Return(domain.RegistryEntry{
		Config:    domain.ScheduleConfig{DestinationID: 42, Selector: "memes", Interval: 90 * time.Minute},
		Active:    true,
		StartedAt: started,
		Delivered: 3,
		Failed:    1,
	}, true).Once()
	b.On("Status", int64(7)).Return(nil, false).Once()

	ts := &MockTextSender{}
	cmd := NewStatus(b, ts, "/status")

	require.NoError(t, cmd.Respond(t.Context(), time.Second, &domain.Message{ChatID: 42, Text: "/status"}))
	assert.Equal(t, "📡 Schedule of this chat\n"+
		"State: active\n"+
		"Selector: memes\n"+
		"Interval: 1 hours 30 min\n"+
		"Running since: 2026-01-02 03:04:05\n"+
		"Delivered: 3, failed: 1\n"+
		"Last delivery: never", ts.last())

	require.NoError(t, cmd.Respond(t.Context(), time.Second, &domain.Message{ChatID: 42, Text: "/status 7"}))
	assert.Equal(t, "chat 7 is not set up for meme posting.", ts.last())
}
