package navgraph

import (
	"log/slog"

	"github.com/hupe1980/navgraph/hnsw"
	"github.com/hupe1980/navgraph/nsg"
)

// options configures an Index constructor. Today options primarily exist
// to avoid exploding the constructor surface with one parameter per
// engine-specific tunable.
//
// Breaking changes are expected while navgraph is pre-release.
type options struct {
	logger     *Logger
	fetchCount bool

	hnswOptions []func(*hnsw.Options)
	nsgOptions  []func(*nsg.Options)
}

// Option configures an Index at construction time.
type Option func(*options)

// WithLogger configures structured logging for operations. Pass nil to
// disable logging.
//
// Example with JSON logging:
//
//	logger := navgraph.NewJSONLogger(slog.LevelInfo)
//	idx := navgraph.NewHNSW(storage, navgraph.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger at the given level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithFetchCount enables the "last search fetch count" instrumentation
// (§4.7): an atomic counter of distance evaluations, off by default, read
// back via Index.FetchCount.
func WithFetchCount() Option {
	return func(o *options) {
		o.fetchCount = true
	}
}

// WithMaxThreads bounds concurrent build/insert/search goroutines on
// whichever engine the Index wraps. <=0 means unbounded.
func WithMaxThreads(n int) Option {
	return func(o *options) {
		o.hnswOptions = append(o.hnswOptions, func(ho *hnsw.Options) { ho.MaxThreads = n })
		o.nsgOptions = append(o.nsgOptions, func(no *nsg.Options) { no.MaxThreads = n })
	}
}

// WithHNSWOptions passes engine-specific functional options through to
// hnsw.New (M, M0, EfConstruction, EfSearch, Heuristic, ...). A no-op for
// an Index backed by NSG.
func WithHNSWOptions(fns ...func(*hnsw.Options)) Option {
	return func(o *options) {
		o.hnswOptions = append(o.hnswOptions, fns...)
	}
}

// WithNSGOptions passes engine-specific functional options through to
// nsg.New (R, L, C, GK, SeedGraphBuilder, ...). A no-op for an Index
// backed by HNSW.
func WithNSGOptions(fns ...func(*nsg.Options)) Option {
	return func(o *options) {
		o.nsgOptions = append(o.nsgOptions, fns...)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		logger: NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
