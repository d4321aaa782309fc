package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/theirongolddev/tally/internal/model"
	"github.com/theirongolddev/tally/internal/store"
)

type fakeSource struct {
	mu      sync.Mutex
	budgets []model.Budget
	err     error
}

func (f *fakeSource) ListBudgets(context.Context) ([]model.Budget, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.budgets, f.err
}

func (f *fakeSource) set(b []model.Budget, err error) {
	f.mu.Lock()
	f.budgets, f.err = b, err
	f.mu.Unlock()
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []Event
	closed bool
}

func (p *recordingPublisher) Publish(_ context.Context, ev Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) Close() error {
	p.closed = true
	return nil
}

type recordingSink struct {
	budgetSaves int
	snapshots   []store.SnapshotRow
}

func (s *recordingSink) SaveBudgets([]model.Budget) error {
	s.budgetSaves++
	return nil
}

func (s *recordingSink) SaveSnapshot(row store.SnapshotRow, _ int) error {
	s.snapshots = append(s.snapshots, row)
	return nil
}

func sample() []model.Budget {
	return []model.Budget{
		{ID: 1, Month: 1, Year: 2024, IncomeCents: 500000, Categories: []model.BudgetCategory{
			{ID: 10, Name: "Rent", AllocatedCents: 300000, IsActive: 1},
			{ID: 11, Name: "Food", AllocatedCents: 200000, IsActive: 1},
		}},
		{ID: 2, Month: 2, Year: 2024, IncomeCents: 400000, Categories: []model.BudgetCategory{
			{ID: 20, Name: "Rent", AllocatedCents: 300000, IsActive: 1},
		}},
	}
}

func TestSnapshotOf(t *testing.T) {
	snap := SnapshotOf(sample(), time.Unix(0, 0))
	if snap.Budgets != 2 {
		t.Errorf("Budgets = %d", snap.Budgets)
	}
	if snap.TotalIncomeCents != 900000 || snap.TotalAllocatedCents != 800000 {
		t.Errorf("totals = %d / %d", snap.TotalIncomeCents, snap.TotalAllocatedCents)
	}
	if snap.UnbalancedCount != 1 {
		t.Errorf("UnbalancedCount = %d, want 1", snap.UnbalancedCount)
	}
	if len(snap.Hashes) != 2 {
		t.Errorf("Hashes = %v", snap.Hashes)
	}
}

func TestHashIgnoresOrderAndTimestamps(t *testing.T) {
	a := sample()[0]
	b := sample()[0]
	b.Categories[0], b.Categories[1] = b.Categories[1], b.Categories[0]
	b.UpdatedAt = "2024-05-01T00:00:00"
	if hashBudget(a) != hashBudget(b) {
		t.Error("hash changed on reorder or timestamp")
	}
	b.Categories[0].Name = "Groceries"
	if hashBudget(a) == hashBudget(b) {
		t.Error("hash did not change on rename")
	}
}

func TestDiffSnapshots(t *testing.T) {
	prev := SnapshotOf(sample(), time.Unix(0, 0))

	next := sample()
	next[0].Categories[1].Name = "Groceries" // same totals, new hash
	next = next[:1]
	next = append(next, model.Budget{ID: 3, Month: 3, Year: 2024, IncomeCents: 100000})
	curr := SnapshotOf(next, time.Unix(60, 0))

	delta := diffSnapshots(prev, curr)
	if delta.Budgets != 0 {
		t.Errorf("Budgets delta = %d, want 0", delta.Budgets)
	}
	if delta.TotalIncomeCents != -300000 {
		t.Errorf("income delta = %d, want -300000", delta.TotalIncomeCents)
	}
	if len(delta.Added) != 1 || delta.Added[0] != 3 {
		t.Errorf("Added = %v", delta.Added)
	}
	if len(delta.Removed) != 1 || delta.Removed[0] != 2 {
		t.Errorf("Removed = %v", delta.Removed)
	}
	if len(delta.Changed) != 1 || delta.Changed[0] != 1 {
		t.Errorf("Changed = %v", delta.Changed)
	}
	if delta.isZero() {
		t.Fatal("delta unexpectedly reported as zero")
	}
	if !diffSnapshots(curr, curr).isZero() {
		t.Error("self diff not zero")
	}
}

func TestPublishEventRingBuffer(t *testing.T) {
	s := New(Config{
		Interval:     10 * time.Second,
		EventsBuffer: 2,
	}, &fakeSource{})

	ctx := context.Background()
	s.publishEvent(ctx, Event{ID: 1})
	s.publishEvent(ctx, Event{ID: 2})
	s.publishEvent(ctx, Event{ID: 3})

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.events) != 2 {
		t.Fatalf("events len = %d, want 2", len(s.events))
	}
	if s.events[0].ID != 2 || s.events[1].ID != 3 {
		t.Fatalf("events ring contains IDs [%d, %d], want [2, 3]", s.events[0].ID, s.events[1].ID)
	}
}

func TestPollEmitsSnapshotThenChanges(t *testing.T) {
	src := &fakeSource{budgets: sample()}
	pub := &recordingPublisher{}
	sink := &recordingSink{}
	s := New(Config{Interval: 10 * time.Second}, src, WithPublisher(pub), WithSink(sink))
	ctx := context.Background()

	s.PollOnce(ctx)
	s.PollOnce(ctx) // unchanged: no event

	changed := sample()
	changed[1].Categories[0].AllocatedCents = 400000
	src.set(changed, nil)
	s.PollOnce(ctx)

	if len(pub.events) != 2 {
		t.Fatalf("published %d events, want 2", len(pub.events))
	}
	if pub.events[0].Type != EventSnapshot {
		t.Errorf("first event = %s", pub.events[0].Type)
	}
	second := pub.events[1]
	if second.Type != EventBudgetsChanged {
		t.Errorf("second event = %s", second.Type)
	}
	if second.Delta.TotalAllocatedCents != 100000 || second.Delta.UnbalancedCount != -1 {
		t.Errorf("delta = %+v", second.Delta)
	}
	if len(second.Delta.Changed) != 1 || second.Delta.Changed[0] != 2 {
		t.Errorf("Changed = %v", second.Delta.Changed)
	}

	if sink.budgetSaves != 3 {
		t.Errorf("budget saves = %d, want 3", sink.budgetSaves)
	}
	if len(sink.snapshots) != 2 {
		t.Errorf("snapshot rows = %d, want 2", len(sink.snapshots))
	}

	st := s.Status()
	if st.PollCount != 3 || st.EventCount != 2 {
		t.Errorf("status = %+v", st)
	}
}

func TestPollErrorKeepsSnapshot(t *testing.T) {
	src := &fakeSource{budgets: sample()}
	s := New(Config{Interval: 10 * time.Second}, src)
	ctx := context.Background()

	s.PollOnce(ctx)
	src.set(nil, errors.New("connection refused"))
	s.PollOnce(ctx)

	st := s.Status()
	if st.LastError == "" {
		t.Error("LastError not recorded")
	}
	if st.Summary.Budgets != 2 {
		t.Errorf("summary lost on error: %+v", st.Summary)
	}
	if st.EventCount != 1 {
		t.Errorf("EventCount = %d, want 1", st.EventCount)
	}
}

type blockingSource struct {
	entered chan struct{}
	release chan struct{}
}

func (b *blockingSource) ListBudgets(ctx context.Context) ([]model.Budget, error) {
	b.entered <- struct{}{}
	select {
	case <-b.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return sample(), nil
}

func TestPollOverlapGuard(t *testing.T) {
	src := &blockingSource{entered: make(chan struct{}, 1), release: make(chan struct{})}
	s := New(Config{Interval: 10 * time.Second}, src)
	ctx := context.Background()

	done := make(chan bool, 1)
	go func() { done <- s.PollOnce(ctx) }()
	<-src.entered

	if s.PollOnce(ctx) {
		t.Error("second poll ran while first was in flight")
	}
	close(src.release)
	if !<-done {
		t.Error("first poll reported skipped")
	}
	if got := s.Status().SkippedPolls; got != 1 {
		t.Errorf("SkippedPolls = %d, want 1", got)
	}

	// The guard is released afterwards.
	go func() { <-src.entered }()
	if !s.PollOnce(ctx) {
		t.Error("poll after completion was skipped")
	}
}

func TestHTTPEndpoints(t *testing.T) {
	src := &fakeSource{budgets: sample()}
	s := New(Config{Interval: 10 * time.Second}, src)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.PollOnce(ctx)

	srv := httptest.NewServer(s.Handler(ctx))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("healthz: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("healthz status = %d", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/v1/status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	var st Status
	err = json.NewDecoder(resp.Body).Decode(&st)
	_ = resp.Body.Close()
	if err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if st.Summary.Budgets != 2 || st.PollCount != 1 {
		t.Errorf("status = %+v", st)
	}

	resp, err = http.Get(srv.URL + "/v1/events")
	if err != nil {
		t.Fatalf("events: %v", err)
	}
	var events []Event
	err = json.NewDecoder(resp.Body).Decode(&events)
	_ = resp.Body.Close()
	if err != nil {
		t.Fatalf("decode events: %v", err)
	}
	if len(events) != 1 || events[0].Type != EventSnapshot {
		t.Errorf("events = %+v", events)
	}

	resp, err = http.Get(srv.URL + "/v1/refresh")
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("GET refresh status = %d", resp.StatusCode)
	}
}

func TestRoutingKey(t *testing.T) {
	if got := RoutingKey(EventBudgetsChanged); got != "tally.budgets_changed" {
		t.Errorf("RoutingKey = %q", got)
	}
}
