package uncompute

import (
	"io"
	"log/slog"
	"sync"

	"github.com/djdv/go-uncompute/meter"
)

type (
	// Space holds the state shared by a set of values:
	// the memory counter and probe stack, the registry of
	// evictable values, and reporting hooks.
	// Concurrent access must be guarded by the caller;
	// every call into values of a space must be serialized.
	// Constructed by [NewSpace] or obtained from [Default].
	Space struct {
		counter  meter.Counter
		logger   *slog.Logger
		observer Observer
		registry Registry
		frames   []frame
		lastID   uint64
	}
	// SpaceOption configures a [Space].
	SpaceOption func(*Space)

	// Observer is notified of residency events.
	// Eviction policies that rank by access history
	// implement it to learn about accesses.
	Observer interface {
		// Materialized is called after a recipe ran for value id
		// and its own footprint was measured.
		Materialized(id, bytes uint64)
		// Accessed is called when a resident value is read.
		Accessed(id uint64)
		// Evicted is called after value id released bytes
		// (by eviction or by being stolen).
		Evicted(id, bytes uint64)
		// Detached is called when value id leaves its parent's accounting.
		Detached(id uint64)
	}
	// NoopObserver ignores every event.
	NoopObserver struct{}
)

func (NoopObserver) Materialized(uint64, uint64) {}
func (NoopObserver) Accessed(uint64)             {}
func (NoopObserver) Evicted(uint64, uint64)      {}
func (NoopObserver) Detached(uint64)             {}

var (
	defaultOnce  sync.Once
	defaultSpace *Space
)

// Default returns the process-wide space.
// It is created on first use with the runtime's allocation counter
// and is never reset.
func Default() *Space {
	defaultOnce.Do(func() {
		defaultSpace = NewSpace()
	})
	return defaultSpace
}

// NewSpace creates an independent space.
// Without options it measures with [meter.Runtime],
// discards logs, and ignores events.
func NewSpace(options ...SpaceOption) *Space {
	space := &Space{
		counter:  meter.Runtime(),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		observer: NoopObserver{},
	}
	for _, apply := range options {
		apply(space)
	}
	space.registry.logger = space.logger
	return space
}

// WithCounter sets the memory counter sampled by the probe.
func WithCounter(counter meter.Counter) SpaceOption {
	return func(s *Space) {
		if counter != nil {
			s.counter = counter
		}
	}
}

// WithLogger sets the logger used for debug events.
func WithLogger(logger *slog.Logger) SpaceOption {
	return func(s *Space) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithObserver sets the residency event observer.
func WithObserver(observer Observer) SpaceOption {
	return func(s *Space) {
		if observer != nil {
			s.observer = observer
		}
	}
}

// Registry returns the space's registry of evictable values.
func (s *Space) Registry() *Registry { return &s.registry }

func (s *Space) nextID() uint64 {
	s.lastID++
	return s.lastID
}
