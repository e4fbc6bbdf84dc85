package uncompute

import (
	"fmt"
	"weak"
)

// node binds one value holder to its account.
// It is shared by every [Handle] to the value.
type node[T any] struct {
	holder  holder[T]
	account *account
	space   *Space
	// slot is the registry entry while materialized.
	slot       *slot
	id         uint64
	referenced bool
	shared     bool
}

func newNode[T any](space *Space, options []Option) *node[T] {
	var settings settings
	for _, apply := range options {
		apply(&settings)
	}
	n := &node[T]{
		account: new(account),
		space:   space,
		id:      space.nextID(),
	}
	switch {
	case settings.detached:
	case settings.parent != nil:
		n.account.attach(settings.parent)
	default:
		n.account.attach(space.owner())
	}
	return n
}

func (n *node[T]) ID() uint64 { return n.id }

func (n *node[T]) State() State { return n.holder.state() }

func (n *node[T]) Evictable() bool {
	_, ok := n.holder.(*materializedHolder[T])
	return ok
}

// EvictCost is the estimated size of the value's subtree;
// every descendant still attached is released with it.
// Values whose bytes were released with an evicted ancestor cost 0.
func (n *node[T]) EvictCost() (uint64, error) {
	if !n.Evictable() {
		return 0, notEvictableError(n.id, n.State())
	}
	if n.account.superseded() {
		return 0, nil
	}
	return n.account.estimate(), nil
}

func (n *node[T]) Evict() error {
	resident, ok := n.holder.(*materializedHolder[T])
	if !ok {
		return notEvictableError(n.id, n.State())
	}
	next := resident.evict()
	n.drop()
	n.holder = next
	return nil
}

func (n *node[T]) Referenced() bool { return n.referenced }

func (n *node[T]) ClearReferenced() { n.referenced = false }

// get returns the value, rematerializing it first if needed.
func (n *node[T]) get() (T, error) {
	n.referenced = true
	switch holder := n.holder.(type) {
	case *atomicHolder[T]:
		return holder.value, nil
	case *materializedHolder[T]:
		n.space.observer.Accessed(n.id)
		return holder.value, nil
	case *evictedHolder[T]:
		value, size, err := n.rematerialize(holder.recipe)
		if err != nil {
			return value, err
		}
		n.register()
		n.holder = holder.materialize(value, size)
		return value, nil
	default:
		panic(unexpectedHolder(holder))
	}
}

// steal returns the value and leaves it evicted;
// the stored copy is no longer accounted to this node.
// Atomic values have no recipe and are returned unchanged.
func (n *node[T]) steal() (T, error) {
	n.referenced = true
	switch holder := n.holder.(type) {
	case *atomicHolder[T]:
		return holder.value, nil
	case *materializedHolder[T]:
		next := holder.evict()
		n.drop()
		n.holder = next
		return holder.value, nil
	case *evictedHolder[T]:
		value, size, err := n.rematerialize(holder.recipe)
		if err != nil {
			return value, err
		}
		released := n.account.release()
		n.space.observer.Evicted(n.id, released)
		n.holder = &evictedHolder[T]{
			recipe: holder.recipe,
			cost:   size,
		}
		return value, nil
	default:
		panic(unexpectedHolder(holder))
	}
}

// rematerialize runs recipe under the probe and stages
// the measured footprint.
// On failure, anything staged by the attempt is discarded.
func (n *node[T]) rematerialize(recipe Recipe[T]) (T, uint64, error) {
	var (
		account = n.account
		staged  = account.pending
	)
	value, size, err := measure(n.space, account, recipe)
	if err != nil {
		account.pending = staged
		account.generation++
		n.space.logger.Debug("recompute failed",
			"id", n.id, "error", err)
		var zero T
		return zero, 0, recomputeError(n.id, err)
	}
	account.stage(int64(size))
	account.commit()
	n.space.observer.Materialized(n.id, size)
	n.space.logger.Debug("materialized",
		"id", n.id, "bytes", size)
	return value, size, nil
}

// drop accounts for a materialized value leaving memory.
// The caller swaps in the evicted holder afterwards.
func (n *node[T]) drop() {
	released := n.account.release()
	n.unregister()
	n.space.observer.Evicted(n.id, released)
	n.space.logger.Debug("evicted",
		"id", n.id, "bytes", released)
}

func (n *node[T]) register() {
	if debugging {
		assert(n.slot == nil, "value registered twice")
	}
	n.slot = n.space.registry.insert(n.id, weakNode[T]{
		pointer: weak.Make(n),
	})
}

func (n *node[T]) unregister() {
	if n.slot == nil {
		return
	}
	n.space.registry.remove(n.slot)
	n.slot = nil
}

// deunique detaches the node from its parent's accounting
// the first time it becomes shared.
func (n *node[T]) deunique() {
	if n.shared {
		return
	}
	n.shared = true
	hadParent := n.account.hasParent()
	n.account.deunique()
	if hadParent {
		n.space.observer.Detached(n.id)
		n.space.logger.Debug("detached",
			"id", n.id, "bytes", n.account.memory)
	}
}

func unexpectedHolder(holder any) error {
	return fmt.Errorf("unexpected value holder %T", holder)
}
