package query

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"ubae_shell/internal/metrics"
)

// Status is the outcome of the most recent settled fetch of a key.
type Status int

const (
	// StatusPending means no fetch of the key has settled yet.
	StatusPending Status = iota
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// ErrUnknownKey is returned when a key was never registered.
var ErrUnknownKey = errors.New("unknown query key")

// State is a snapshot of one cache entry.
type State struct {
	Status Status
	// Data holds the last successful value. A failed refetch keeps it.
	Data      any
	Err       error
	Fetching  bool
	UpdatedAt time.Time

	// Generation identifies the fetch that produced this snapshot. It only
	// grows, so consumers can drop snapshots older than one already seen.
	Generation uint64
}

// IsLoading reports whether the key is still waiting for its first outcome.
func (s State) IsLoading() bool {
	return s.Status == StatusPending
}

// Fetcher loads the value for a key. It must honor ctx cancellation.
type Fetcher func(ctx context.Context) (any, error)

// Listener is called with the new state every time a fetch of the key settles.
type Listener func(key Key, state State)

type subscription struct {
	id int
	fn Listener
}

type entry struct {
	fetcher    Fetcher
	state      State
	generation uint64
	cancel     context.CancelFunc
	done       chan struct{}
	subs       []subscription
}

// Store is the process-wide query cache. Each key is owned by exactly one
// entry; consumers read snapshots and request refetches through Invalidate.
type Store struct {
	mu      sync.Mutex
	entries map[Key]*entry
	nextSub int

	// notifyMu serializes listener deliveries across keys.
	notifyMu sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewStore creates an empty store. Fetches run on contexts derived from ctx.
func NewStore(ctx context.Context) *Store {
	ctx, cancel := context.WithCancel(ctx)
	return &Store{
		entries: make(map[Key]*entry),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Register binds a fetcher to a key. Registering an existing key replaces
// its fetcher and keeps its cached state.
func (s *Store) Register(key Key, fetcher Fetcher) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[key]; ok {
		e.fetcher = fetcher
		return
	}
	s.entries[key] = &entry{fetcher: fetcher}
}

// Register binds a typed fetcher to a key.
func Register[T any](s *Store, key Key, fetch func(ctx context.Context) (T, error)) {
	s.Register(key, func(ctx context.Context) (any, error) {
		return fetch(ctx)
	})
}

// Value extracts typed data from a state snapshot.
func Value[T any](state State) (T, bool) {
	v, ok := state.Data.(T)
	return v, ok
}

// State returns the current snapshot for key. Unknown keys report pending.
func (s *Store) State(key Key) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return State{}
	}
	return e.state
}

// Ensure starts the first fetch of key if nothing has fetched it yet.
func (s *Store) Ensure(key Key) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		log.Printf("[QueryStore] Ensure: key=%s not registered", key)
		return
	}
	if e.state.Fetching || e.state.Status != StatusPending {
		return
	}
	s.startLocked(key, e)
}

// Invalidate marks key stale and refetches it. An in-flight fetch is
// cancelled and its result discarded.
func (s *Store) Invalidate(key Key) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		log.Printf("[QueryStore] Invalidate: key=%s not registered", key)
		return
	}
	log.Printf("[QueryStore] Invalidate: key=%s superseding=%t", key, e.state.Fetching)
	s.startLocked(key, e)
}

// Subscribe registers fn for settled fetches of key. The returned function
// removes the subscription.
func (s *Store) Subscribe(key Key, fn Listener) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		e = &entry{}
		s.entries[key] = e
	}
	s.nextSub++
	id := s.nextSub
	e.subs = append(e.subs, subscription{id: id, fn: fn})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range e.subs {
			if sub.id == id {
				e.subs = append(e.subs[:i:i], e.subs[i+1:]...)
				return
			}
		}
	}
}

// Await blocks until key has no fetch in flight and returns its state.
func (s *Store) Await(ctx context.Context, key Key) (State, error) {
	for {
		s.mu.Lock()
		e, ok := s.entries[key]
		if !ok {
			s.mu.Unlock()
			return State{}, fmt.Errorf("await %s: %w", key, ErrUnknownKey)
		}
		if !e.state.Fetching {
			st := e.state
			s.mu.Unlock()
			return st, nil
		}
		done := e.done
		s.mu.Unlock()

		select {
		case <-done:
		case <-ctx.Done():
			return State{}, ctx.Err()
		}
	}
}

// Close cancels every in-flight fetch and waits for them to return.
func (s *Store) Close() {
	s.cancel()
	s.wg.Wait()
}

func (s *Store) startLocked(key Key, e *entry) {
	if e.fetcher == nil {
		log.Printf("[QueryStore] Fetch skipped: key=%s has no fetcher", key)
		return
	}
	if e.cancel != nil {
		e.cancel()
	}

	e.generation++
	gen := e.generation
	ctx, cancel := context.WithCancel(s.ctx)
	done := make(chan struct{})

	e.cancel = cancel
	e.done = done
	e.state.Fetching = true

	s.wg.Add(1)
	go s.run(ctx, cancel, done, key, e.fetcher, gen)
}

func (s *Store) run(ctx context.Context, cancel context.CancelFunc, done chan struct{}, key Key, fetcher Fetcher, gen uint64) {
	defer s.wg.Done()
	defer close(done)
	defer cancel()

	startTime := time.Now()
	data, err := fetcher(ctx)

	// The generation check, the state write and the delivery happen under
	// notifyMu together, so a superseded result can never reach listeners
	// after a newer one.
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	e := s.entries[key]
	if e.generation != gen {
		s.mu.Unlock()
		log.Printf("[QueryStore] Fetch superseded: key=%s gen=%d", key, gen)
		metrics.RecordQueryFetch(string(key), metrics.OutcomeSuperseded, time.Since(startTime))
		return
	}

	e.state.UpdatedAt = time.Now()
	e.state.Generation = gen
	if err != nil {
		e.state.Status = StatusError
		e.state.Err = err
	} else {
		e.state.Status = StatusSuccess
		e.state.Data = data
		e.state.Err = nil
	}
	snapshot := e.state
	snapshot.Fetching = false
	subs := make([]subscription, len(e.subs))
	copy(subs, e.subs)
	s.mu.Unlock()

	if err != nil {
		log.Printf("[QueryStore] Fetch FAILED: key=%s gen=%d err=%v duration=%v", key, gen, err, time.Since(startTime))
		metrics.RecordQueryFetch(string(key), metrics.OutcomeError, time.Since(startTime))
	} else {
		log.Printf("[QueryStore] Fetch OK: key=%s gen=%d duration=%v", key, gen, time.Since(startTime))
		metrics.RecordQueryFetch(string(key), metrics.OutcomeSuccess, time.Since(startTime))
	}

	for _, sub := range subs {
		sub.fn(key, snapshot)
	}

	// The fetch counts as in flight until every listener has seen it, so
	// Await never returns ahead of the subscribers.
	s.mu.Lock()
	if e.generation == gen {
		e.state.Fetching = false
		e.cancel = nil
	}
	s.mu.Unlock()
}
