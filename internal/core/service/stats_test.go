package service

import (
	"memebot/internal/core/domain"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatsRecordCommand(t *testing.T) {
	tests := []struct {
		name     string
		size     int
		commands []string
		want     []CommandCount
	}{
		{
			name: "empty history",
			size: 30,
			want: nil,
		},
		{
			name:     "groups in order of first use",
			size:     30,
			commands: []string{"/meme", "/stats", "/meme"},
			want:     []CommandCount{{Command: "/meme", Count: 2}, {Command: "/stats", Count: 1}},
		},
		{
			name:     "history is bounded",
			size:     2,
			commands: []string{"/help", "/meme", "/meme"},
			want:     []CommandCount{{Command: "/meme", Count: 2}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStats(tt.size)
			for _, c := range tt.commands {
				s.RecordCommand(c)
			}

			assert.Equal(t, tt.want, s.History())
		})
	}
}

func TestStatsCommandCountOutlivesHistory(t *testing.T) {
	s := NewStats(1)
	s.RecordCommand("/meme")
	s.RecordCommand("/meme")
	s.RecordCommand("/help")

	assert.Equal(t, 2, s.CommandCount("/meme"))
	assert.Equal(t, []CommandCount{{Command: "/help", Count: 1}}, s.History())
}

func TestStatsRecordDeliveryConcurrent(t *testing.T) {
	s := NewStats(0)

	var wg sync.WaitGroup
	for range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.RecordDelivery(domain.ScheduleConfig{}, domain.Item{})
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(100), s.Delivered())
}
