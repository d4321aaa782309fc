// Package daemon provides the long-running budget sync watcher.
package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/theirongolddev/tally/internal/logging"
	"github.com/theirongolddev/tally/internal/model"
	"github.com/theirongolddev/tally/internal/pipeline"
	"github.com/theirongolddev/tally/internal/store"
)

// Event types.
const (
	EventSnapshot       = "snapshot"
	EventBudgetsChanged = "budgets_changed"
)

// Config controls the daemon runtime behavior.
type Config struct {
	Interval     time.Duration
	Addr         string
	EventsBuffer int
	// SnapshotKeep bounds the snapshot history kept in the store.
	SnapshotKeep int
}

// Sink receives snapshots for local persistence.
type Sink interface {
	SaveBudgets(budgets []model.Budget) error
	SaveSnapshot(s store.SnapshotRow, keep int) error
}

// Publisher forwards events to an external bus.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

// Event is emitted whenever the budget snapshot changes.
type Event struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Snapshot  Snapshot  `json:"snapshot"`
	Delta     Delta     `json:"delta"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time `json:"started_at"`
	LastPollAt      time.Time `json:"last_poll_at"`
	PollIntervalSec int       `json:"poll_interval_sec"`
	PollCount       int64     `json:"poll_count"`
	SkippedPolls    int64     `json:"skipped_polls"`
	Summary         Snapshot  `json:"summary"`
	LastError       string    `json:"last_error,omitempty"`
	EventCount      int       `json:"event_count"`
	SubscriberCount int       `json:"subscriber_count"`
}

// Service provides the daemon runtime and HTTP API.
type Service struct {
	cfg       Config
	src       pipeline.BudgetLister
	sink      Sink
	publisher Publisher
	log       *logging.Logger

	polling atomic.Bool
	skipped atomic.Int64
	wg      sync.WaitGroup

	mu          sync.RWMutex
	startedAt   time.Time
	lastPollAt  time.Time
	pollCount   int64
	lastError   string
	hasSnapshot bool
	snapshot    Snapshot
	nextEventID int64
	events      []Event

	nextSubID int
	subs      map[int]chan Event
}

// Option configures a Service.
type Option func(*Service)

// WithSink persists budgets and snapshots after each poll.
func WithSink(s Sink) Option {
	return func(svc *Service) { svc.sink = s }
}

// WithPublisher forwards every event to p.
func WithPublisher(p Publisher) Option {
	return func(svc *Service) { svc.publisher = p }
}

// WithLogger sets the service logger.
func WithLogger(l *logging.Logger) Option {
	return func(svc *Service) { svc.log = l.WithComponent(logging.ComponentDaemon) }
}

// New returns a new daemon service polling src.
func New(cfg Config, src pipeline.BudgetLister, opts ...Option) *Service {
	if cfg.Interval < 2*time.Second {
		cfg.Interval = 30 * time.Second
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8787"
	}
	if cfg.SnapshotKeep < 1 {
		cfg.SnapshotKeep = 500
	}

	s := &Service{
		cfg:       cfg,
		src:       src,
		log:       logging.Discard(),
		startedAt: time.Now(),
		subs:      make(map[int]chan Event),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the HTTP API.
func (s *Service) Handler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/v1/status", s.handleStatus)
	mux.HandleFunc("/v1/events", s.handleEvents)
	mux.HandleFunc("/v1/stream", s.handleStream)
	mux.HandleFunc("/v1/refresh", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.triggerPoll(ctx)
		w.WriteHeader(http.StatusAccepted)
	})
	return mux
}

// Run starts HTTP endpoints and polling until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(ctx),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Seed initial snapshot so status is useful immediately.
	s.PollOnce(ctx)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			err := server.Shutdown(shutdownCtx)
			s.wg.Wait()
			if s.publisher != nil {
				if cerr := s.publisher.Close(); cerr != nil {
					s.log.Warn("closing publisher", logging.FieldError, cerr)
				}
			}
			return err
		case <-ticker.C:
			s.triggerPoll(ctx)
		case err := <-errCh:
			return fmt.Errorf("daemon http server: %w", err)
		}
	}
}

func (s *Service) triggerPoll(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.PollOnce(ctx)
	}()
}

// PollOnce fetches budgets and emits events for any change. It returns
// false without polling when another poll is still in flight.
func (s *Service) PollOnce(ctx context.Context) bool {
	if !s.polling.CompareAndSwap(false, true) {
		s.skipped.Add(1)
		s.log.Debug("poll skipped, previous poll in flight", logging.FieldOperation, logging.OpSync)
		return false
	}
	defer s.polling.Store(false)

	pollCtx, cancel := context.WithTimeout(ctx, s.cfg.Interval)
	defer cancel()

	start := time.Now()
	budgets, err := s.src.ListBudgets(pollCtx)
	if err != nil {
		s.mu.Lock()
		s.lastError = err.Error()
		s.lastPollAt = time.Now()
		s.pollCount++
		s.mu.Unlock()
		s.log.Warn("poll failed", logging.FieldOperation, logging.OpSync, logging.FieldError, err)
		return true
	}

	now := time.Now()
	snap := SnapshotOf(budgets, now)

	var (
		ev      Event
		publish bool
	)

	s.mu.Lock()
	prev := s.snapshot
	prevExists := s.hasSnapshot

	s.hasSnapshot = true
	s.snapshot = snap
	s.lastPollAt = now
	s.pollCount++
	s.lastError = ""

	if !prevExists {
		s.nextEventID++
		ev = Event{
			ID:        s.nextEventID,
			Type:      EventSnapshot,
			Timestamp: now,
			Snapshot:  snap,
		}
		publish = true
	} else if delta := diffSnapshots(prev, snap); !delta.isZero() {
		s.nextEventID++
		ev = Event{
			ID:        s.nextEventID,
			Type:      EventBudgetsChanged,
			Timestamp: now,
			Snapshot:  snap,
			Delta:     delta,
		}
		publish = true
	}
	s.mu.Unlock()

	s.log.Debug("poll complete",
		logging.FieldOperation, logging.OpSync,
		logging.FieldCount, len(budgets),
		logging.FieldDuration, time.Since(start).Milliseconds())

	if s.sink != nil {
		s.persist(budgets, snap, publish)
	}
	if publish {
		s.publishEvent(ctx, ev)
	}
	return true
}

// persist always refreshes the cached budgets; a history row is only
// written when something changed.
func (s *Service) persist(budgets []model.Budget, snap Snapshot, changed bool) {
	if err := s.sink.SaveBudgets(budgets); err != nil {
		s.log.Warn("saving budgets", logging.FieldOperation, logging.OpSave, logging.FieldError, err)
	}
	if !changed {
		return
	}
	row := store.SnapshotRow{
		TakenAt:             snap.At,
		BudgetCount:         snap.Budgets,
		TotalIncomeCents:    snap.TotalIncomeCents,
		TotalAllocatedCents: snap.TotalAllocatedCents,
		UnbalancedCount:     snap.UnbalancedCount,
	}
	if err := s.sink.SaveSnapshot(row, s.cfg.SnapshotKeep); err != nil {
		s.log.Warn("saving snapshot", logging.FieldOperation, logging.OpSave, logging.FieldError, err)
	}
}

func (s *Service) publishEvent(ctx context.Context, ev Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	s.mu.Unlock()

	s.log.Info("event", logging.FieldEvent, ev.Type, "id", ev.ID, logging.FieldCount, ev.Snapshot.Budgets)

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, ev); err != nil {
			s.log.Warn("publishing event",
				logging.FieldOperation, logging.OpPublish,
				logging.FieldEvent, ev.Type,
				logging.FieldError, err)
		}
	}
}

// Status returns the current runtime status.
func (s *Service) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		StartedAt:       s.startedAt,
		LastPollAt:      s.lastPollAt,
		PollIntervalSec: int(s.cfg.Interval.Seconds()),
		PollCount:       s.pollCount,
		SkippedPolls:    s.skipped.Load(),
		Summary:         s.snapshot,
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.Status())
}

func (s *Service) handleEvents(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(events)
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	// Send current snapshot immediately.
	current := Event{
		Type:      EventSnapshot,
		Timestamp: time.Now(),
		Snapshot:  s.Status().Summary,
	}
	writeSSE(w, current)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}
