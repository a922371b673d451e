package storage

import (
	"context"
	"sync"
	"time"

	"github.com/HatiCode/retrofit/pkg/simulation"
)

// MemoryStore implements an in-memory report store.
// It is safe for concurrent use by multiple goroutines.
//
// If TTL is configured, a background goroutine removes reports whose
// GeneratedAt is older than the TTL. Use RedisStore to share reports between
// planner instances.
type MemoryStore struct {
	mu            sync.RWMutex
	reports       map[string]simulation.Report
	ttl           time.Duration
	cleanupTicker *time.Ticker
	stopCleanup   chan struct{}
	cleanupDone   chan struct{}
	stopped       bool
	stopMu        sync.Mutex
}

// NewMemoryStore creates a new in-memory store without expiration.
// Reports are kept until they are replaced or deleted, so Stop is a no-op.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		reports: make(map[string]simulation.Report),
	}
}

// NewMemoryStoreWithTTL creates an in-memory store whose reports expire.
//
// Parameters:
//   - ttl: maximum age of a report, measured from its GeneratedAt (must be > 0)
//   - cleanupInterval: how often expired reports are removed (<= 0 uses 1 minute)
//
// It panics when ttl is not positive. Call Stop when done with the store to
// end the cleanup goroutine.
func NewMemoryStoreWithTTL(ttl, cleanupInterval time.Duration) *MemoryStore {
	if ttl <= 0 {
		panic("TTL must be positive")
	}
	if cleanupInterval <= 0 {
		cleanupInterval = time.Minute
	}

	store := &MemoryStore{
		reports:       make(map[string]simulation.Report),
		ttl:           ttl,
		cleanupTicker: time.NewTicker(cleanupInterval),
		stopCleanup:   make(chan struct{}),
		cleanupDone:   make(chan struct{}),
	}

	go store.runCleanup()

	return store
}

// Stop shuts down the cleanup goroutine and blocks until it exits.
// It is safe to call multiple times (idempotent) and on stores created
// without a TTL.
func (s *MemoryStore) Stop() {
	if s.cleanupTicker == nil {
		return
	}

	s.stopMu.Lock()
	defer s.stopMu.Unlock()

	if s.stopped {
		return
	}

	close(s.stopCleanup)
	<-s.cleanupDone
	s.cleanupTicker.Stop()
	s.stopped = true
}

// runCleanup removes expired reports on every tick until Stop is called.
func (s *MemoryStore) runCleanup() {
	defer close(s.cleanupDone)

	for {
		select {
		case <-s.cleanupTicker.C:
			s.cleanup()
		case <-s.stopCleanup:
			return
		}
	}
}

func (s *MemoryStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ttl == 0 {
		return
	}

	now := time.Now()
	for name, report := range s.reports {
		if now.Sub(report.GeneratedAt) > s.ttl {
			delete(s.reports, name)
		}
	}
}

// Put stores report under report.Scenario, replacing any previous report.
// It returns an error for an invalid scenario name or a done context;
// the stored copy is the caller's value, not a deep copy.
func (s *MemoryStore) Put(ctx context.Context, report simulation.Report) error {
	if err := validateScenarioName(report.Scenario); err != nil {
		return err
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.reports[report.Scenario] = report
	return nil
}

// GetLatest retrieves the latest report for scenario.
//
// Returns:
//   - report: the stored report (zero value if not found)
//   - found: true if a report exists, false otherwise
//   - error: non-nil only when ctx is already done
func (s *MemoryStore) GetLatest(ctx context.Context, scenario string) (simulation.Report, bool, error) {
	select {
	case <-ctx.Done():
		return simulation.Report{}, false, ctx.Err()
	default:
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	report, found := s.reports[scenario]
	return report, found, nil
}

// Len returns the number of stored reports.
// Expired reports still count until the next cleanup tick removes them.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.reports)
}

// Delete removes the report for scenario.
// It returns true if a report existed and was removed.
func (s *MemoryStore) Delete(scenario string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, existed := s.reports[scenario]
	delete(s.reports, scenario)
	return existed
}
