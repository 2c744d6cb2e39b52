package livequery

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// Loader returns the current result set for a validated query.
type Loader func(ctx context.Context, q Query) (interface{}, error)

// Publisher is what writers depend on.
type Publisher interface {
	Publish(ctx context.Context, change Change)
}

// Broker carries changes between server instances.
type Broker interface {
	Publish(ctx context.Context, change Change) error
	// Subscribe blocks, calling fn for every change, until ctx ends or the
	// connection drops. ready is called once changes are flowing.
	Subscribe(ctx context.Context, ready func(), fn func(Change)) error
}

const (
	minBrokerRetry = 500 * time.Millisecond
	maxBrokerRetry = 30 * time.Second
)

type Hub struct {
	mu      sync.RWMutex
	loaders map[Collection]Loader
	subs    map[*Subscription]struct{}
	broker  Broker

	// relaying is set while Run is receiving broker changes.
	relaying atomic.Bool
	minRetry time.Duration
	maxRetry time.Duration
}

// NewHub builds a hub. A nil broker dispatches changes in process only.
func NewHub(broker Broker) *Hub {
	return &Hub{
		loaders: make(map[Collection]Loader),
		subs:    make(map[*Subscription]struct{}),
		broker:   broker,
		minRetry: minBrokerRetry,
		maxRetry: maxBrokerRetry,
	}
}

func (h *Hub) Register(c Collection, loader Loader) {
	h.mu.Lock()
	h.loaders[c] = loader
	h.mu.Unlock()
}

// Subscribe starts a live query. The first snapshot is loaded right away.
// The subscription ends when ctx is done or Close is called.
func (h *Hub) Subscribe(ctx context.Context, q Query) (*Subscription, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	h.mu.Lock()
	loader, ok := h.loaders[q.Collection]
	if !ok {
		h.mu.Unlock()
		return nil, fmt.Errorf("%w: no loader for %s", ErrInvalidQuery, q.Collection)
	}
	subCtx, cancel := context.WithCancel(ctx)
	s := &Subscription{
		hub:     h,
		query:   q,
		loader:  loader,
		ctx:     subCtx,
		cancel:  cancel,
		updates: make(chan Snapshot, 1),
	}
	h.subs[s] = struct{}{}
	h.mu.Unlock()

	go func() {
		<-subCtx.Done()
		s.Close()
	}()
	s.refresh()

	return s, nil
}

// Publish announces a write. With a broker the change goes through it so
// every instance, this one included, sees it once. While this hub is not
// receiving from the broker the change is also dispatched locally.
func (h *Hub) Publish(ctx context.Context, change Change) {
	if h.broker != nil {
		err := h.broker.Publish(ctx, change)
		if err == nil && h.relaying.Load() {
			return
		}
		if err != nil {
			logrus.WithError(err).WithField("collection", change.Collection).
				Warn("Broker publish failed, dispatching locally")
		}
	}
	h.dispatch(change)
}

// Run consumes broker changes until ctx ends, resubscribing with backoff
// whenever the broker connection drops. Without a broker it just waits.
func (h *Hub) Run(ctx context.Context) {
	if h.broker == nil {
		<-ctx.Done()
		return
	}

	retry := h.minRetry
	for {
		err := h.broker.Subscribe(ctx, func() {
			h.relaying.Store(true)
			retry = h.minRetry
		}, h.dispatch)
		h.relaying.Store(false)
		if ctx.Err() != nil {
			return
		}

		logrus.WithError(err).WithField("retry_in", retry).
			Warn("Live query broker disconnected, dispatching locally")
		select {
		case <-ctx.Done():
			return
		case <-time.After(retry):
		}
		retry *= 2
		if retry > h.maxRetry {
			retry = h.maxRetry
		}
	}
}

func (h *Hub) dispatch(change Change) {
	h.mu.RLock()
	var matched []*Subscription
	for s := range h.subs {
		if change.Matches(s.query) {
			matched = append(matched, s)
		}
	}
	h.mu.RUnlock()

	for _, s := range matched {
		s.refresh()
	}
}

func (h *Hub) remove(s *Subscription) {
	h.mu.Lock()
	delete(h.subs, s)
	h.mu.Unlock()
}

// Len reports the number of open subscriptions.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Subscription delivers snapshots on Updates. A slow reader only ever sees
// the most recent snapshot; older undelivered ones are dropped.
type Subscription struct {
	hub    *Hub
	query  Query
	loader Loader
	ctx    context.Context
	cancel context.CancelFunc

	seq       atomic.Uint64
	mu        sync.Mutex
	delivered uint64
	closed    bool
	updates   chan Snapshot
}

func (s *Subscription) Query() Query {
	return s.query
}

// Updates is closed once the subscription ends.
func (s *Subscription) Updates() <-chan Snapshot {
	return s.updates
}

func (s *Subscription) Close() {
	s.cancel()

	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.updates)
	}
	s.mu.Unlock()

	s.hub.remove(s)
}

func (s *Subscription) refresh() {
	seq := s.seq.Add(1)
	go func() {
		data, err := s.loader(s.ctx, s.query)
		if err != nil {
			if s.ctx.Err() == nil {
				logrus.WithError(err).WithField("query", s.query.String()).Warn("Live query reload failed")
			}
			return
		}
		s.deliver(seq, Snapshot{Query: s.query, Data: data, At: time.Now()})
	}()
}

func (s *Subscription) deliver(seq uint64, snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || seq <= s.delivered {
		return
	}
	s.delivered = seq

	select {
	case <-s.updates:
	default:
	}
	s.updates <- snap
}
