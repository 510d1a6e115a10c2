// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/okian/regatta/internal/adapters/mq/queue"
	"github.com/okian/regatta/internal/adapters/mq/worker"
	"github.com/okian/regatta/internal/adapters/repository"
	"github.com/okian/regatta/internal/domain/dedupe"
	"github.com/okian/regatta/internal/domain/scoring"
	"github.com/okian/regatta/internal/domain/types"
	"github.com/okian/regatta/pkg/logger"
	"github.com/okian/regatta/pkg/metrics"
)

const stopTimeout = 10 * time.Second

// nopPublisher drops scoreboards when no live feed is attached.
type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, types.Scoreboard) error { return nil }

// Service implements the API dependencies for the regatta system.
type Service struct {
	mu sync.RWMutex

	// Core components
	store     repository.Store
	deduper   dedupe.Deduper
	changes   queue.Queue
	calc      *scoring.LowPointCalculator
	pool      *worker.Pool
	publisher worker.Publisher

	// Configuration
	workerCount int
	queueSize   int
	dedupeSize  int
	tieBreak    scoring.TieBreak

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of scoreboard workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the change queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many idempotency keys are remembered.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithTieBreak selects how equal totals are ordered.
func WithTieBreak(tb scoring.TieBreak) Option {
	return func(s *Service) {
		s.tieBreak = tb
	}
}

// WithStore replaces the default in-memory store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithPublisher sets where recomputed scoreboards are sent.
func WithPublisher(p worker.Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.publisher = p
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount: 2,
		queueSize:   1024,
		dedupeSize:  10000,
		tieBreak:    scoring.TieBreakSailNumber,
		publisher:   nopPublisher{},
	}

	for _, opt := range opts {
		opt(s)
	}

	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.calc = scoring.NewCalculator(scoring.WithTieBreak(s.tieBreak))
	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	// Initialize logger if not already set
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.logger.Info(ctx, "starting regatta service...")

	if s.store == nil {
		s.store = repository.NewMemStore(ctx)
		s.logger.Info(ctx, "using in-memory store")
	}
	s.changes = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.pool = worker.NewPool(s.workerCount, s.changes, s.store, s.calc, s.publisher,
		worker.WithNotFound(func(err error) bool { return errors.Is(err, repository.ErrNotFound) }),
	)
	s.pool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "regatta service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.String("tieBreak", string(s.calc.TieBreak())),
	)

	return nil
}

// Stop drains the change queue and shuts the workers down. The store keeps
// its contents, so a stopped service can be started again.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	s.logger.Info(ctx, "stopping regatta service...")

	if s.pool != nil {
		if err := s.pool.Shutdown(ctx); err != nil {
			s.logger.Warn(ctx, "worker pool shutdown incomplete", logger.Error(err))
		}
	}

	s.started = false
	s.logger.Info(ctx, "regatta service stopped")
}

// SeenAndRecord atomically checks if an idempotency key was seen and
// records it if not.
func (s *Service) SeenAndRecord(ctx context.Context, key string) bool {
	return s.deduper.SeenAndRecord(ctx, key)
}

// Unrecord forgets a key so a failed request can be retried.
func (s *Service) Unrecord(ctx context.Context, key string) {
	s.deduper.Unrecord(ctx, key)
}

// Size returns the current number of remembered keys.
func (s *Service) Size() int64 {
	return s.deduper.Size()
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
		"tieBreak":    string(s.calc.TieBreak()),
		"dedupeKeys":  s.deduper.Size(),
	}

	if s.started {
		queueLen := s.changes.Len(ctx)
		counts := s.store.Count(ctx)

		stats["queueLength"] = queueLen
		stats["skippers"] = counts.Skippers
		stats["regattas"] = counts.Regattas
		stats["races"] = counts.Races
		stats["scoreboardsPublished"] = s.pool.Processed()

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateDomainSize(counts.Skippers, counts.Regattas, counts.Races)
	}

	return stats
}

// repo returns the store once the service is running.
func (s *Service) repo() (repository.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.store, nil
}

// notify asks the workers to republish a regatta's scoreboard. A full
// queue only delays live updates; reads always compute fresh.
func (s *Service) notify(ctx context.Context, regattaID, reason string) {
	s.mu.RLock()
	changes := s.changes
	s.mu.RUnlock()
	if changes == nil {
		return
	}
	if !changes.Enqueue(ctx, queue.Change{RegattaID: regattaID, Reason: reason}) {
		s.logger.Warn(ctx, "scoreboard update dropped",
			logger.String("regatta", regattaID),
			logger.String("reason", reason),
		)
	}
}

// notifyAll republishes every regatta, used when the roster changes since
// fleet size drives the penalty.
func (s *Service) notifyAll(ctx context.Context, store repository.Store, reason string) {
	regattas, err := store.Regattas(ctx)
	if err != nil {
		s.logger.Warn(ctx, "cannot list regattas for update", logger.Error(err))
		return
	}
	for _, g := range regattas {
		s.notify(ctx, g.ID, reason)
	}
}
