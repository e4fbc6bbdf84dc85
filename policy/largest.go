package policy

import (
	"cmp"
	"slices"

	"github.com/djdv/go-uncompute"
)

// Largest evicts the most expensive candidates first,
// minimizing the number of values recomputed later.
type Largest struct{}

type ranked struct {
	candidate uncompute.Candidate
	cost      uint64
}

func (Largest) Reclaim(source Source, need uint64) (uint64, error) {
	var candidates []ranked
	for candidate := range source.Candidates() {
		cost, err := candidate.EvictCost()
		if err != nil {
			return 0, err
		}
		candidates = append(candidates, ranked{
			candidate: candidate,
			cost:      cost,
		})
	}
	slices.SortStableFunc(candidates, func(a, b ranked) int {
		return cmp.Compare(b.cost, a.cost)
	})
	var freed uint64
	for _, entry := range candidates {
		if freed >= need {
			break
		}
		cost, err := evict(entry.candidate)
		if err != nil {
			return freed, err
		}
		freed += cost
	}
	return finish(freed, need)
}
