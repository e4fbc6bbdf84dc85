package policy

// Clock evicts in registry order, giving referenced candidates
// a second chance: the hand clears their reference and moves on.
// The registry keeps the hand between calls.
type Clock struct{}

func (Clock) Reclaim(source Source, need uint64) (uint64, error) {
	const passes = 2 // The first may only clear references.
	var freed uint64
	for range passes {
		for candidate := range source.Candidates() {
			if candidate.Referenced() {
				candidate.ClearReferenced()
				continue
			}
			cost, err := evict(candidate)
			if err != nil {
				return freed, err
			}
			if freed += cost; freed >= need {
				return freed, nil
			}
		}
	}
	return finish(freed, need)
}
