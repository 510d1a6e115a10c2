package worker

import (
	"github.com/okian/regatta/pkg/logger"
)

// Option applies a configuration option to the InMemoryWorker.
type Option func(*InMemoryWorker)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *InMemoryWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(l logger.Logger) Option {
	return func(w *InMemoryWorker) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithNotFound lets the worker tell a deleted regatta from a load failure.
func WithNotFound(fn NotFoundFunc) Option {
	return func(w *InMemoryWorker) {
		if fn != nil {
			w.notFound = fn
		}
	}
}
