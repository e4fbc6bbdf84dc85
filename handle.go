package uncompute

type (
	// Handle is a reference to a value held in a [Space].
	// A handle starts out as the sole owner of its value;
	// additional owners must be created with [Handle.Clone],
	// never by copying the pointer, so that the value's
	// accounting can follow the change in ownership.
	Handle[T any] struct {
		node *node[T]
	}
	// Option configures a value at construction.
	Option   func(*settings)
	settings struct {
		parent   *account
		detached bool
	}
)

// WithParent accounts the new value as part of parent's subtree.
// By default, a value constructed while another value is being
// computed becomes that value's child.
func WithParent[P any](parent *Handle[P]) Option {
	return func(s *settings) {
		s.parent = parent.node.account
		s.detached = false
	}
}

// Detached accounts the new value on its own,
// as if it were already shared.
func Detached() Option {
	return func(s *settings) {
		s.parent = nil
		s.detached = true
	}
}

// NewAtomic measures build and holds its result permanently.
func NewAtomic[T any](space *Space, build func() (T, error), options ...Option) (*Handle[T], error) {
	if build == nil {
		return nil, ErrNilRecipe
	}
	n := newNode[T](space, options)
	value, size, err := measure(space, n.account, build)
	if err != nil {
		return nil, err
	}
	n.holder = &atomicHolder[T]{
		value: value,
		size:  size,
	}
	n.account.stage(int64(size))
	n.account.commit()
	return &Handle[T]{node: n}, nil
}

// NewMaterialized runs recipe and holds its result until evicted.
// Recipe failures are reported as [ErrRecompute].
func NewMaterialized[T any](space *Space, recipe Recipe[T], options ...Option) (*Handle[T], error) {
	if recipe == nil {
		return nil, ErrNilRecipe
	}
	var (
		n       = newNode[T](space, options)
		pending = &evictedHolder[T]{recipe: recipe}
	)
	n.holder = pending
	value, size, err := n.rematerialize(recipe)
	if err != nil {
		return nil, err
	}
	n.register()
	n.holder = pending.materialize(value, size)
	return &Handle[T]{node: n}, nil
}

// NewEvicted holds recipe without running it.
// The value is computed on first access.
func NewEvicted[T any](space *Space, recipe Recipe[T], options ...Option) (*Handle[T], error) {
	if recipe == nil {
		return nil, ErrNilRecipe
	}
	n := newNode[T](space, options)
	n.holder = &evictedHolder[T]{recipe: recipe}
	return &Handle[T]{node: n}, nil
}

// Get returns the value, recomputing it if it was evicted.
func (h *Handle[T]) Get() (T, error) { return h.node.get() }

// Steal returns the value and leaves it evicted,
// releasing its accounted memory to the caller.
func (h *Handle[T]) Steal() (T, error) { return h.node.steal() }

// Clone returns a new owner of the same value.
// The first clone detaches the value from its parent's accounting,
// permanently.
func (h *Handle[T]) Clone() *Handle[T] {
	h.node.deunique()
	return &Handle[T]{node: h.node}
}

// Detach removes the value from its parent's accounting,
// as Clone does, without creating another handle.
func (h *Handle[T]) Detach() { h.node.deunique() }

// Evict drops the value, keeping its recipe.
// Returns [ErrNotEvictable] unless the value is materialized.
func (h *Handle[T]) Evict() error { return h.node.Evict() }

// EvictCost estimates the bytes reclaimed by [Handle.Evict].
func (h *Handle[T]) EvictCost() (uint64, error) { return h.node.EvictCost() }

// Evictable is true only while the value is materialized.
func (h *Handle[T]) Evictable() bool { return h.node.Evictable() }

// RecomputeCost is the footprint measured the last time the
// value was computed, if it is currently evicted.
func (h *Handle[T]) RecomputeCost() uint64 {
	if evicted, ok := h.node.holder.(*evictedHolder[T]); ok {
		return evicted.cost
	}
	return 0
}

func (h *Handle[T]) State() State { return h.node.State() }

func (h *Handle[T]) ID() uint64 { return h.node.id }

// Memory returns the committed footprint of the value's subtree.
func (h *Handle[T]) Memory() uint64 { return h.node.account.memory }

// Shared reports whether the value has been cloned or detached.
func (h *Handle[T]) Shared() bool { return h.node.shared }

// Commit applies staged changes to this value and
// stages them on its parent.
func (h *Handle[T]) Commit() { h.node.account.commit() }

// Settle commits this value and every ancestor still accounting for it.
func (h *Handle[T]) Settle() { h.node.account.settle() }
