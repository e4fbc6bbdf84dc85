package uncompute

// State is the residency of a value.
type State uint8

const (
	// Atomic values are always resident and never evictable.
	Atomic State = iota
	// Materialized values are resident and may be evicted.
	Materialized
	// Evicted values hold only their recipe.
	Evicted
)

func (s State) String() string {
	switch s {
	case Atomic:
		return "atomic"
	case Materialized:
		return "materialized"
	case Evicted:
		return "evicted"
	default:
		return "invalid"
	}
}

// Recipe computes a value. It is invoked to materialize a value
// and again each time an evicted value is accessed, so it should
// produce a value fit for the same consumers every time.
type Recipe[T any] func() (T, error)

type (
	// holder is the closed set of residency variants.
	// Transitions never mutate a holder; they produce a new one
	// which the owning node swaps in last.
	holder[T any] interface {
		state() State
	}
	atomicHolder[T any] struct {
		value T
		size  uint64
	}
	materializedHolder[T any] struct {
		value  T
		recipe Recipe[T]
		size   uint64
	}
	evictedHolder[T any] struct {
		recipe Recipe[T]
		// cost is the footprint measured the last time
		// the recipe ran.
		cost uint64
	}
)

func (*atomicHolder[T]) state() State       { return Atomic }
func (*materializedHolder[T]) state() State { return Materialized }
func (*evictedHolder[T]) state() State      { return Evicted }

// evict returns the evicted form of a materialized value.
func (mh *materializedHolder[T]) evict() *evictedHolder[T] {
	return &evictedHolder[T]{
		recipe: mh.recipe,
		cost:   mh.size,
	}
}

// materialize returns the resident form of an evicted value.
func (eh *evictedHolder[T]) materialize(value T, size uint64) *materializedHolder[T] {
	return &materializedHolder[T]{
		value:  value,
		recipe: eh.recipe,
		size:   size,
	}
}
