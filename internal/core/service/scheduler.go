package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"memebot/internal/core/domain"
	"memebot/internal/core/port"

	"github.com/rs/zerolog/log"
)

const (
	MinInterval        = time.Second
	defaultCancelGrace = 5 * time.Second
)

type SchedulerOptions struct {
	// MinInterval and MaxInterval bound configured intervals; zero MaxInterval means unbounded.
	MinInterval time.Duration
	MaxInterval time.Duration
	// CancelGrace is how long a stopping loop waits for a content fetch that ignores cancellation.
	CancelGrace time.Duration
	// ResumeOnConfigure makes Configure restart delivery for a paused destination instead of only
	// replacing its stored config.
	ResumeOnConfigure bool
	// OnDeliver is called after every successful delivery.
	OnDeliver func(cfg domain.ScheduleConfig, item domain.Item)
}

// Scheduler owns every destination's schedule and its delivery loop. At most one loop runs per destination.
type Scheduler struct {
	source port.ContentSource
	sink   port.Sink
	opts   SchedulerOptions

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	slots  map[int64]*slot
	closed bool
}

// slot holds one destination. mu linearizes lifecycle operations on it; view is what Status reads.
type slot struct {
	mu         sync.Mutex
	removed    bool
	configured bool
	paused     bool
	cfg        domain.ScheduleConfig
	task       *task
	counters   deliveryCounters

	view atomic.Pointer[slotView]
}

type slotView struct {
	cfg     domain.ScheduleConfig
	active  bool
	paused  bool
	started time.Time
}

func NewScheduler(source port.ContentSource, sink port.Sink, opts SchedulerOptions) *Scheduler {
	if opts.MinInterval < MinInterval {
		opts.MinInterval = MinInterval
	}

	if opts.CancelGrace <= 0 {
		opts.CancelGrace = defaultCancelGrace
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		source: source,
		sink:   sink,
		opts:   opts,
		ctx:    ctx,
		cancel: cancel,
		slots:  make(map[int64]*slot),
	}
}

// Configure sets the selector and interval for a destination and (re)starts its delivery loop.
// A running loop is stopped and awaited before the replacement starts. A paused destination only
// has its config replaced unless ResumeOnConfigure is set.
func (s *Scheduler) Configure(destinationID int64, selector, intervalText string) error {
	interval, err := ParseInterval(intervalText)
	if err != nil {
		return err
	}

	if err := s.checkBounds(interval); err != nil {
		return err
	}

	selector = strings.TrimSpace(selector)
	if selector == "" {
		return domain.ErrEmptySelector
	}

	sl, err := s.lockSlot(destinationID, true)
	if err != nil {
		return err
	}
	defer sl.mu.Unlock()

	cfg := domain.ScheduleConfig{DestinationID: destinationID, Selector: selector, Interval: interval}

	l := log.With().
		Int64("destination", destinationID).
		Str("selector", selector).
		Dur("interval", interval).
		Logger()

	if sl.configured && sl.paused && !s.opts.ResumeOnConfigure {
		sl.cfg = cfg
		sl.publish()
		l.Info().Msg("updated config of paused destination")
		return nil
	}

	if sl.task != nil {
		l.Debug().Msg("stopping previous delivery loop")
		sl.task.stop()
		sl.task = nil
	}

	sl.cfg = cfg
	sl.configured = true
	s.startLocked(sl)

	l.Info().Msg("destination configured")

	return nil
}

// Pause stops delivery for a destination and keeps its config.
func (s *Scheduler) Pause(destinationID int64) error {
	sl, err := s.lockSlot(destinationID, false)
	if err != nil {
		return err
	}

	if sl == nil {
		return domain.ErrNotConfigured
	}
	defer sl.mu.Unlock()

	if sl.paused || sl.task == nil {
		return domain.ErrNotConfigured
	}

	sl.task.stop()
	sl.task = nil
	sl.paused = true
	sl.publish()

	log.Info().Int64("destination", destinationID).Msg("destination paused")

	return nil
}

// Resume restarts delivery for a paused destination. A non-empty selectorOverride replaces the stored selector.
func (s *Scheduler) Resume(destinationID int64, selectorOverride string) error {
	sl, err := s.lockSlot(destinationID, false)
	if err != nil {
		return err
	}

	if sl == nil {
		return domain.ErrNotConfigured
	}
	defer sl.mu.Unlock()

	if !sl.paused {
		return domain.ErrAlreadyActive
	}

	if override := strings.TrimSpace(selectorOverride); override != "" {
		sl.cfg.Selector = override
	}

	s.startLocked(sl)

	log.Info().
		Int64("destination", destinationID).
		Str("selector", sl.cfg.Selector).
		Msg("destination resumed")

	return nil
}

// Teardown stops delivery and forgets the destination.
func (s *Scheduler) Teardown(destinationID int64) error {
	sl, err := s.lockSlot(destinationID, false)
	if err != nil {
		return err
	}

	if sl == nil {
		return domain.ErrNotConfigured
	}
	defer sl.mu.Unlock()

	if sl.task != nil {
		sl.task.stop()
		sl.task = nil
	}

	sl.removed = true
	sl.view.Store(nil)

	s.mu.Lock()
	if s.slots[destinationID] == sl {
		delete(s.slots, destinationID)
	}
	s.mu.Unlock()

	log.Info().Int64("destination", destinationID).Msg("destination removed")

	return nil
}

// Status returns a snapshot of a destination's entry without waiting on lifecycle operations.
func (s *Scheduler) Status(destinationID int64) (domain.RegistryEntry, bool) {
	s.mu.Lock()
	sl, ok := s.slots[destinationID]
	s.mu.Unlock()

	if !ok {
		return domain.RegistryEntry{}, false
	}

	return sl.entry()
}

// List returns snapshots of every configured destination ordered by ID.
func (s *Scheduler) List() []domain.RegistryEntry {
	s.mu.Lock()
	slots := make([]*slot, 0, len(s.slots))
	for _, sl := range s.slots {
		slots = append(slots, sl)
	}
	s.mu.Unlock()

	entries := make([]domain.RegistryEntry, 0, len(slots))
	for _, sl := range slots {
		if e, ok := sl.entry(); ok {
			entries = append(entries, e)
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Config.DestinationID < entries[j].Config.DestinationID
	})

	return entries
}

// Shutdown stops every delivery loop and rejects further lifecycle calls. It returns ctx.Err() if the loops
// did not terminate in time.
func (s *Scheduler) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	slots := make([]*slot, 0, len(s.slots))
	for _, sl := range s.slots {
		slots = append(slots, sl)
	}
	s.mu.Unlock()

	s.cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for _, sl := range slots {
			sl.mu.Lock()
			if sl.task != nil {
				sl.task.stop()
				sl.task = nil
				sl.publish()
			}
			sl.mu.Unlock()
		}
	}()

	select {
	case <-done:
		log.Info().Int("destinations", len(slots)).Msg("scheduler stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for delivery loops: %w", ctx.Err())
	}
}

func (s *Scheduler) checkBounds(interval time.Duration) error {
	if interval < s.opts.MinInterval {
		return fmt.Errorf("%w: minimum is %s", domain.ErrIntervalOutOfRange, FormatInterval(s.opts.MinInterval))
	}

	if s.opts.MaxInterval > 0 && interval > s.opts.MaxInterval {
		return fmt.Errorf("%w: maximum is %s", domain.ErrIntervalOutOfRange, FormatInterval(s.opts.MaxInterval))
	}

	return nil
}

// lockSlot returns the destination's slot with its mutex held. Without create, a missing slot yields nil.
func (s *Scheduler) lockSlot(destinationID int64, create bool) (*slot, error) {
	for {
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return nil, domain.ErrShutdown
		}

		sl, ok := s.slots[destinationID]
		if !ok {
			if !create {
				s.mu.Unlock()
				return nil, nil
			}
			sl = &slot{}
			s.slots[destinationID] = sl
		}
		s.mu.Unlock()

		sl.mu.Lock()
		if !sl.removed {
			return sl, nil
		}
		// torn down while we waited, look again
		sl.mu.Unlock()
	}
}

func (s *Scheduler) startLocked(sl *slot) {
	t := &task{
		cfg:       sl.cfg,
		source:    s.source,
		sink:      s.sink,
		grace:     s.opts.CancelGrace,
		onDeliver: s.opts.OnDeliver,
		counters:  &sl.counters,
		l: log.With().
			Int64("destination", sl.cfg.DestinationID).
			Str("selector", sl.cfg.Selector).
			Logger(),
	}

	t.start(s.ctx)

	sl.task = t
	sl.paused = false
	sl.publish()
}

func (sl *slot) publish() {
	v := &slotView{cfg: sl.cfg, paused: sl.paused}
	if sl.task != nil {
		v.active = true
		v.started = sl.task.started
	}

	sl.view.Store(v)
}

func (sl *slot) entry() (domain.RegistryEntry, bool) {
	v := sl.view.Load()
	if v == nil {
		return domain.RegistryEntry{}, false
	}

	delivered, failed, last := sl.counters.snapshot()

	return domain.RegistryEntry{
		Config:       v.cfg,
		Active:       v.active,
		Paused:       v.paused,
		StartedAt:    v.started,
		Delivered:    delivered,
		Failed:       failed,
		LastDelivery: last,
	}, true
}
