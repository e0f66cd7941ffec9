package service

import (
	"sync"
	"time"

	"memebot/internal/core/domain"
)

const DefaultHistorySize = 30

type CommandCount struct {
	Command string
	Count   int
}

// Stats counts deliveries and command usage and keeps a short command history.
type Stats struct {
	mu          sync.Mutex
	started     time.Time
	delivered   int64
	commands    map[string]int
	history     []string
	historySize int
}

func NewStats(historySize int) *Stats {
	if historySize <= 0 {
		historySize = DefaultHistorySize
	}

	return &Stats{
		started:     time.Now(),
		commands:    make(map[string]int),
		historySize: historySize,
	}
}

func (s *Stats) RecordCommand(command string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.commands[command]++
	s.history = append(s.history, command)
	if len(s.history) > s.historySize {
		s.history = s.history[len(s.history)-s.historySize:]
	}
}

// RecordDelivery matches SchedulerOptions.OnDeliver.
func (s *Stats) RecordDelivery(_ domain.ScheduleConfig, _ domain.Item) {
	s.mu.Lock()
	s.delivered++
	s.mu.Unlock()
}

func (s *Stats) Delivered() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.delivered
}

func (s *Stats) CommandCount(command string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.commands[command]
}

// History groups the recent command history by command, in order of first appearance.
func (s *Stats) History() []CommandCount {
	s.mu.Lock()
	defer s.mu.Unlock()

	index := make(map[string]int)
	var counts []CommandCount

	for _, cmd := range s.history {
		i, ok := index[cmd]
		if !ok {
			index[cmd] = len(counts)
			counts = append(counts, CommandCount{Command: cmd, Count: 1})
			continue
		}
		counts[i].Count++
	}

	return counts
}

func (s *Stats) Uptime() time.Duration {
	return time.Since(s.started)
}
