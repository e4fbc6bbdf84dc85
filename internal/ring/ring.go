// Package ring is a generic circular list tuned for the evictable registry.
//
// Unlike `container/ring`, elements are typed and removal of a single
// element is expressed directly with [Ring.Detach], since registry slots
// leave the ring one at a time as their holders stop being evictable.
package ring

import "iter"

// A Ring is an element of a circular list.
// A pointer to any element serves as a reference to the entire ring.
// The zero value is a one-element ring.
type Ring[Value any] struct {
	next, prev *Ring[Value]
	Value      Value
}

// New returns a one-element ring holding value.
func New[Value any](value Value) *Ring[Value] {
	r := &Ring[Value]{Value: value}
	return r.init()
}

func (r *Ring[Value]) init() *Ring[Value] {
	r.next = r
	r.prev = r
	return r
}

// Next returns the next ring element.
func (r *Ring[Value]) Next() *Ring[Value] {
	if r.next == nil {
		return r.init()
	}
	return r.next
}

// Prev returns the previous ring element.
func (r *Ring[Value]) Prev() *Ring[Value] {
	if r.next == nil {
		return r.init()
	}
	return r.prev
}

// Link inserts ring s after r, such that r.Next() becomes s,
// and returns the original value of r.Next().
func (r *Ring[Value]) Link(s *Ring[Value]) *Ring[Value] {
	n := r.Next()
	if s != nil {
		p := s.Prev()
		// Note: Cannot use multiple assignment because
		// evaluation order of LHS is not specified.
		r.next = s
		s.prev = r
		n.prev = p
		p.next = n
	}
	return n
}

// Detach removes r from the ring it belongs to, leaving r as
// a one-element ring, and returns the element that followed r
// (or nil if r was alone).
func (r *Ring[Value]) Detach() *Ring[Value] {
	if r.Alone() {
		return nil
	}
	next, prev := r.next, r.prev
	prev.next = next
	next.prev = prev
	r.init()
	return next
}

// Alone reports whether r is the only element of its ring.
func (r *Ring[Value]) Alone() bool {
	return r.Next() == r
}

// Len computes the number of elements in ring r.
// It executes in time proportional to the number of elements.
func (r *Ring[Value]) Len() int {
	n := 0
	if r != nil {
		n = 1
		for p := r.Next(); p != r; p = p.next {
			n++
		}
	}
	return n
}

// Iter yields each element of the ring in forward order, starting at r.
// The successor is read before yielding, so the yielded element
// may be detached by the consumer.
func (r *Ring[Value]) Iter() iter.Seq[*Ring[Value]] {
	return func(yield func(*Ring[Value]) bool) {
		if r == nil {
			return
		}
		var (
			count = r.Len()
			p     = r
		)
		for range count {
			next := p.Next()
			if !yield(p) {
				return
			}
			p = next
		}
	}
}
