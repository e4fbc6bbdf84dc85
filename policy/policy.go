package policy

import (
	"errors"
	"fmt"
	"iter"

	"github.com/djdv/go-uncompute"
)

type (
	constError string

	// Source enumerates eviction candidates.
	// [uncompute.Registry] satisfies it.
	Source interface {
		Candidates() iter.Seq[uncompute.Candidate]
		Lookup(id uint64) (uncompute.Candidate, bool)
	}

	// Policy evicts candidates from source until at least need
	// bytes were reclaimed, or no candidates remain.
	Policy interface {
		Reclaim(source Source, need uint64) (freed uint64, err error)
	}

	// Watermark triggers reclamation once usage exceeds High,
	// and asks for enough to bring usage back to Low.
	Watermark struct {
		High, Low uint64
	}
)

const (
	// ErrShortfall is returned when a policy ran out of candidates
	// before reclaiming the requested amount.
	ErrShortfall = constError("not enough evictable memory")
	// ErrInvalidWatermark may be returned from [NewWatermark].
	ErrInvalidWatermark = constError("invalid watermark")
	// ErrInvalidCapacity may be returned from [NewRecency].
	ErrInvalidCapacity = constError("invalid capacity")
)

func (errStr constError) Error() string { return string(errStr) }

func shortfallError(freed, need uint64) error {
	return fmt.Errorf(
		"%w: reclaimed %d of %d bytes",
		ErrShortfall, freed, need)
}

// NewWatermark validates that low does not exceed high.
func NewWatermark(high, low uint64) (Watermark, error) {
	if low > high {
		return Watermark{}, fmt.Errorf(
			"%w: low (%d) above high (%d)",
			ErrInvalidWatermark, low, high)
	}
	return Watermark{High: high, Low: low}, nil
}

// Need returns how many bytes should be reclaimed at usage.
func (w Watermark) Need(usage uint64) uint64 {
	if usage <= w.High {
		return 0
	}
	return usage - w.Low
}

// Enforce reclaims with policy whenever usage crosses the watermark.
func Enforce(policy Policy, source Source, mark Watermark, usage uint64) (uint64, error) {
	need := mark.Need(usage)
	if need == 0 {
		return 0, nil
	}
	return policy.Reclaim(source, need)
}

// evict reclaims a single candidate, reporting its cost at the
// time of eviction. Candidates which stopped being evictable
// since they were enumerated are skipped.
func evict(candidate uncompute.Candidate) (uint64, error) {
	cost, err := candidate.EvictCost()
	if err != nil {
		if errors.Is(err, uncompute.ErrNotEvictable) {
			return 0, nil
		}
		return 0, err
	}
	if err := candidate.Evict(); err != nil {
		return 0, err
	}
	return cost, nil
}

func finish(freed, need uint64) (uint64, error) {
	if freed < need {
		return freed, shortfallError(freed, need)
	}
	return freed, nil
}
