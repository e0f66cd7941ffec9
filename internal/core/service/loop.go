package service

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"memebot/internal/core/domain"
	"memebot/internal/core/port"

	"github.com/rs/zerolog"
)

// task is the handle of one running delivery loop.
type task struct {
	cfg       domain.ScheduleConfig
	source    port.ContentSource
	sink      port.Sink
	grace     time.Duration
	onDeliver func(domain.ScheduleConfig, domain.Item)

	cancel  context.CancelFunc
	done    chan struct{}
	started time.Time

	counters *deliveryCounters

	l zerolog.Logger
}

// deliveryCounters outlive a single loop so pause and resume keep the totals.
type deliveryCounters struct {
	delivered    atomic.Int64
	failed       atomic.Int64
	lastDelivery atomic.Int64
}

type fetchResult struct {
	item domain.Item
	err  error
}

func (t *task) start(parent context.Context) {
	ctx, cancel := context.WithCancel(parent)
	t.cancel = cancel
	t.done = make(chan struct{})
	t.started = time.Now()

	go t.run(ctx)
}

// stop cancels the loop and blocks until it has terminated.
func (t *task) stop() {
	t.cancel()
	<-t.done
}

func (t *task) run(ctx context.Context) {
	defer close(t.done)

	t.l.Info().Dur("interval", t.cfg.Interval).Msg("delivery loop started")

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			t.l.Info().Msg("delivery loop stopped")
			return
		case <-timer.C:
		}

		t.cycle(ctx)
		timer.Reset(t.cfg.Interval)
	}
}

func (t *task) cycle(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	item, err := t.fetch(ctx)
	if err != nil {
		switch {
		case ctx.Err() != nil:
		case errors.Is(err, domain.ErrNotFound):
			t.l.Debug().Msg("nothing to deliver this cycle")
		default:
			t.l.Warn().Err(err).Msg("failed to fetch item")
		}
		return
	}

	if ctx.Err() != nil {
		t.l.Debug().Msg("dropping item fetched during cancellation")
		return
	}

	err = t.sink.Deliver(ctx, t.cfg.DestinationID, item)
	if err != nil {
		t.counters.failed.Add(1)
		t.l.Warn().Err(err).Msg("failed to deliver item")
		return
	}

	t.counters.delivered.Add(1)
	t.counters.lastDelivery.Store(time.Now().UnixNano())

	if t.onDeliver != nil {
		t.onDeliver(t.cfg, item)
	}
}

// fetch calls the content source but stops waiting on it once ctx is cancelled and the grace period has passed.
// An abandoned fetch keeps running in its goroutine, so for a source that ignores cancellation a replacement
// loop's first fetch can overlap it and a destination may briefly have two fetches in flight. The abandoned
// result is discarded and never delivered.
func (t *task) fetch(ctx context.Context) (domain.Item, error) {
	res := make(chan fetchResult, 1)

	go func() {
		item, err := t.source.Fetch(ctx, t.cfg.Selector)
		res <- fetchResult{item: item, err: err}
	}()

	select {
	case r := <-res:
		return r.item, r.err
	case <-ctx.Done():
	}

	grace := time.NewTimer(t.grace)
	defer grace.Stop()

	select {
	case <-res:
	case <-grace.C:
		t.l.Warn().Dur("grace", t.grace).Msg("abandoning content fetch that ignored cancellation")
	}

	return domain.Item{}, ctx.Err()
}

func (c *deliveryCounters) snapshot() (delivered, failed int64, last time.Time) {
	delivered = c.delivered.Load()
	failed = c.failed.Load()

	if ns := c.lastDelivery.Load(); ns != 0 {
		last = time.Unix(0, ns)
	}

	return delivered, failed, last
}
