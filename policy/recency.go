package policy

import (
	"fmt"

	"github.com/hashicorp/golang-lru/v2/simplelru"

	"github.com/djdv/go-uncompute"
)

// Recency evicts the least recently materialized or accessed
// candidates first. It learns about accesses as the space's
// [uncompute.Observer]; install it with [uncompute.WithObserver].
// Candidates it stopped tracking (beyond its capacity) are
// treated as the oldest.
type Recency struct {
	order *simplelru.LRU[uint64, struct{}]
}

var _ uncompute.Observer = (*Recency)(nil)

// NewRecency creates a [Recency] tracking up to capacity values.
func NewRecency(capacity int) (*Recency, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf(
			"%w: must be positive but %d was requested",
			ErrInvalidCapacity, capacity)
	}
	order, err := simplelru.NewLRU[uint64, struct{}](capacity, nil)
	if err != nil {
		return nil, err
	}
	return &Recency{order: order}, nil
}

func (r *Recency) Materialized(id, _ uint64) { r.order.Add(id, struct{}{}) }
func (r *Recency) Accessed(id uint64)        { r.order.Add(id, struct{}{}) }
func (r *Recency) Evicted(id, _ uint64)      { r.order.Remove(id) }
func (r *Recency) Detached(uint64)           {}

// Len returns the number of tracked values.
func (r *Recency) Len() int { return r.order.Len() }

func (r *Recency) Reclaim(source Source, need uint64) (uint64, error) {
	var freed uint64
	for candidate := range source.Candidates() {
		if freed >= need {
			return freed, nil
		}
		if r.order.Contains(candidate.ID()) {
			continue
		}
		cost, err := evict(candidate)
		if err != nil {
			return freed, err
		}
		freed += cost
	}
	for _, id := range r.order.Keys() { // Oldest first.
		if freed >= need {
			break
		}
		candidate, ok := source.Lookup(id)
		if !ok {
			r.order.Remove(id)
			continue
		}
		cost, err := evict(candidate)
		if err != nil {
			return freed, err
		}
		freed += cost
	}
	return finish(freed, need)
}
