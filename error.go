package uncompute

import "fmt"

type constError string

const (
	// ErrNotEvictable is returned when eviction is requested
	// of a value that is not currently materialized.
	ErrNotEvictable = constError("value is not evictable")
	// ErrRecompute wraps failures of a recipe during rematerialization.
	// The value remains evicted and the call may be retried.
	ErrRecompute = constError("recompute failed")
	// ErrNilRecipe may be returned from constructors.
	ErrNilRecipe = constError("recipe must not be nil")
	// ErrUnderflow is the panic value (wrapped) raised when a commit
	// would subtract more memory than an account holds.
	// It indicates an accounting bug, never a runtime condition.
	ErrUnderflow = constError("accounting underflow")
	// ErrScopeOrder is the panic value (wrapped) raised when
	// probe scopes are released out of stack order.
	ErrScopeOrder = constError("probe scope released out of order")
)

func (errStr constError) Error() string { return string(errStr) }

func notEvictableError(id uint64, state State) error {
	return fmt.Errorf(
		"%w: value %d is %s",
		ErrNotEvictable, id, state)
}

func recomputeError(id uint64, err error) error {
	return fmt.Errorf(
		"%w: value %d: %w",
		ErrRecompute, id, err)
}

func underflowError(memory uint64, delta int64) error {
	return fmt.Errorf(
		"%w: committing %d against %d bytes",
		ErrUnderflow, delta, memory)
}

func scopeOrderError(depth, want int) error {
	return fmt.Errorf(
		"%w: releasing depth %d but innermost is %d",
		ErrScopeOrder, depth, want)
}
