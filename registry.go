package uncompute

import (
	"iter"
	"log/slog"
	"weak"

	"github.com/djdv/go-uncompute/internal/ring"
)

type (
	// Candidate is an evictable value as seen by an eviction policy.
	Candidate interface {
		// ID identifies the value within its [Space].
		ID() uint64
		State() State
		// Evictable is true only while the value is materialized.
		Evictable() bool
		// EvictCost estimates the bytes reclaimed by [Candidate.Evict].
		// Returns [ErrNotEvictable] if the value is not evictable.
		EvictCost() (uint64, error)
		// Evict drops the value, keeping its recipe.
		// Returns [ErrNotEvictable] if the value is not evictable.
		Evict() error
		// Referenced is set whenever the value is accessed.
		Referenced() bool
		ClearReferenced()
	}

	// Registry holds weak references to every materialized value of
	// a [Space]. It never keeps a value alive and makes no decisions;
	// entries of collected values are pruned as they are encountered.
	// Obtained from [Space.Registry].
	Registry struct {
		hand   *slot
		index  map[uint64]*slot
		logger *slog.Logger
		count  int
		// scan numbers enumerations; entries remember
		// the last one that visited them.
		scan uint64
	}
	slot  = ring.Ring[entry]
	entry struct {
		reference reference
		id        uint64
		scan      uint64
	}
	reference interface {
		resolve() (Candidate, bool)
	}
	weakNode[T any] struct {
		pointer weak.Pointer[node[T]]
	}
)

func (wn weakNode[T]) resolve() (Candidate, bool) {
	if n := wn.pointer.Value(); n != nil {
		return n, true
	}
	return nil, false
}

// Len returns the number of entries, including any
// not yet pruned.
func (r *Registry) Len() int { return r.count }

// insert links a new entry behind the hand,
// making it the last visited by the next scan.
func (r *Registry) insert(id uint64, ref reference) *slot {
	if r.index == nil {
		r.index = make(map[uint64]*slot)
	}
	element := ring.New(entry{
		reference: ref,
		id:        id,
		scan:      r.scan,
	})
	if r.hand == nil {
		r.hand = element
	} else {
		r.hand.Prev().Link(element)
	}
	r.index[id] = element
	r.count++
	return element
}

func (r *Registry) remove(element *slot) {
	if debugging {
		assert(r.count > 0, "removing from an empty registry")
		assert(r.index[element.Value.id] == element, "removing an unindexed slot")
	}
	delete(r.index, element.Value.id)
	next := element.Detach()
	if r.hand == element {
		r.hand = next
	}
	if r.count--; r.count == 0 {
		r.hand = nil
	}
}

func (r *Registry) prune(element *slot) {
	r.logger.Debug("pruned stale registry entry",
		"id", element.Value.id)
	r.remove(element)
}

// Candidates returns an iterator over live entries, starting at the
// hand. The hand is left just past the last candidate yielded,
// so successive scans resume where the previous one stopped.
// Each entry is yielded at most once per scan. Candidates may be
// evicted while iterating; values materialized meanwhile are
// left for the next scan.
func (r *Registry) Candidates() iter.Seq[Candidate] {
	return func(yield func(Candidate) bool) {
		r.scan++
		scan := r.scan
		for r.hand != nil && r.hand.Value.scan != scan {
			element := r.hand
			element.Value.scan = scan
			r.hand = element.Next()
			candidate, alive := element.Value.reference.resolve()
			if !alive {
				r.prune(element)
				continue
			}
			if !yield(candidate) {
				return
			}
		}
	}
}

// Lookup returns the candidate with the given id if it is
// still registered and alive.
func (r *Registry) Lookup(id uint64) (Candidate, bool) {
	element, ok := r.index[id]
	if !ok {
		return nil, false
	}
	candidate, alive := element.Value.reference.resolve()
	if !alive {
		r.prune(element)
		return nil, false
	}
	return candidate, true
}

// Prune removes every entry whose value has been collected
// and returns how many were removed.
func (r *Registry) Prune() int {
	if r.hand == nil {
		return 0
	}
	var pruned int
	for element := range r.hand.Iter() {
		if _, alive := element.Value.reference.resolve(); !alive {
			r.prune(element)
			pruned++
		}
	}
	return pruned
}
