// Package worker recomputes scoreboards for changed regattas and publishes
// them to live subscribers.
package worker

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/okian/regatta/internal/adapters/mq/queue"
	"github.com/okian/regatta/internal/domain/model"
	"github.com/okian/regatta/internal/domain/scoring"
	"github.com/okian/regatta/internal/domain/types"
	"github.com/okian/regatta/pkg/logger"
	"github.com/okian/regatta/pkg/metrics"
)

const (
	defaultWorkerCount  = 2
	poolShutdownTimeout = 30 * time.Second
	workerStopTimeout   = 5 * time.Second
)

// ErrRegattaGone is returned when a change refers to a deleted regatta.
var ErrRegattaGone = errors.New("regatta no longer exists")

// Loader reads the state a scoreboard is computed from.
type Loader interface {
	Regatta(ctx context.Context, id string) (*model.Regatta, error)
	Roster(ctx context.Context) (model.Roster, error)
}

// Publisher receives freshly computed scoreboards.
type Publisher interface {
	Publish(ctx context.Context, sb types.Scoreboard) error
}

// Queue defines how workers receive changes.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Change
}

// NotFoundFunc reports whether a Loader error means the regatta is gone.
type NotFoundFunc func(error) bool

// Worker processes changes until stopped.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown stops the worker and waits for the current change to finish.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue     Queue
	loader    Loader
	calc      scoring.Calculator
	publisher Publisher
	notFound  NotFoundFunc
	name      string
	processed *atomic.Int64

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, loader Loader, calc scoring.Calculator, publisher Publisher, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:     q,
		loader:    loader,
		calc:      calc,
		publisher: publisher,
		notFound:  func(error) bool { return false },
		name:      "worker",
		processed: &atomic.Int64{},
		shutdown:  make(chan struct{}),
		done:      make(chan struct{}),
		logger:    logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	changes := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case c, ok := <-changes:
			if !ok {
				return
			}
			if err := w.Process(ctx, c); err != nil && !errors.Is(err, ErrRegattaGone) {
				w.logger.Error(ctx, "error processing change",
					logger.String("regatta", c.RegattaID),
					logger.String("reason", c.Reason),
					logger.Error(err),
				)
			}
		}
	}
}

// Shutdown stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	select {
	case <-w.shutdown:
	default:
		close(w.shutdown)
	}

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Process recomputes and publishes one regatta's scoreboard.
func (w *InMemoryWorker) Process(ctx context.Context, c queue.Change) error {
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	g, err := w.loader.Regatta(ctx, c.RegattaID)
	if err != nil {
		if w.notFound(err) {
			w.logger.Debug(ctx, "skipping change for deleted regatta", logger.String("regatta", c.RegattaID))
			return fmt.Errorf("%s: %w", c.RegattaID, ErrRegattaGone)
		}
		metrics.RecordWorkerError("load_regatta")
		return fmt.Errorf("load regatta %s: %w", c.RegattaID, err)
	}

	// A roster failure degrades to an empty roster, which yields no scores.
	roster, err := w.loader.Roster(ctx)
	if err != nil {
		metrics.RecordWorkerError("load_roster")
		w.logger.Warn(ctx, "roster unavailable, publishing empty scoreboard", logger.Error(err))
		roster = nil
	}

	sb, res := Compute(w.calc, g, roster, start)

	if err := w.publisher.Publish(ctx, sb); err != nil {
		metrics.RecordWorkerError("publish")
		return fmt.Errorf("publish scoreboard %s: %w", c.RegattaID, err)
	}
	w.processed.Add(1)
	w.logger.Debug(ctx, "scoreboard published",
		logger.String("regatta", c.RegattaID),
		logger.String("reason", c.Reason),
		logger.Int("rows", len(res.Scores)),
	)
	return nil
}

// Compute renders a scoreboard and records the scoring metrics, measuring
// latency from start.
func Compute(calc scoring.Calculator, g *model.Regatta, roster model.Roster, start time.Time) (types.Scoreboard, scoring.Result) {
	sb, res := types.Compute(calc, g, roster)
	penalties := 0
	for _, s := range res.Scores {
		if s.HasAbsencePenalty {
			penalties++
		}
	}
	metrics.RecordScoreboard(float64(time.Since(start).Milliseconds()), penalties, res.DiscardCount, len(res.UncompletedRaces))
	return sb, res
}

// Pool manages multiple workers sharing one queue.
type Pool struct {
	workers   []*InMemoryWorker
	queue     Queue
	processed atomic.Int64
	stopped   atomic.Bool

	logger logger.Logger
}

// NewPool creates a new worker pool. workerCount < 1 uses the default.
func NewPool(workerCount int, q Queue, loader Loader, calc scoring.Calculator, publisher Publisher, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = defaultWorkerCount
	}
	p := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := 0; i < workerCount; i++ {
		wopts := append([]Option{WithName("worker-" + strconv.Itoa(i))}, opts...)
		w := NewInMemoryWorker(q, loader, calc, publisher, wopts...)
		w.processed = &p.processed
		p.workers[i] = w
	}
	metrics.UpdateWorkerCount(workerCount)
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Processed returns how many scoreboards the pool has published.
func (p *Pool) Processed() int64 { return p.processed.Load() }

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
	p.logger.Info(ctx, "worker pool started", logger.Int("workers", len(p.workers)))
}

// Stop signals every worker and waits briefly for each to exit.
func (p *Pool) Stop() {
	if !p.stopped.CompareAndSwap(false, true) {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), workerStopTimeout)
	defer cancel()
	for _, w := range p.workers {
		_ = w.Shutdown(ctx)
	}
	metrics.UpdateWorkerCount(0)
}

// Shutdown closes the queue, then stops every worker.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}
	if !p.stopped.CompareAndSwap(false, true) {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()
	var errs []error
	for i, w := range p.workers {
		if err := w.Shutdown(shutdownCtx); err != nil {
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
			errs = append(errs, err)
		}
	}
	metrics.UpdateWorkerCount(0)
	return errors.Join(errs...)
}
