package uncompute

// frame is one open probe extent.
type frame struct {
	// owner is the account whose value is being computed
	// within the extent, if any.
	owner *account
	start uint64
	// claimed counts bytes already attributed to nested extents.
	claimed uint64
}

// Scope is an open measurement extent; see [Space.Enter].
type Scope struct {
	space    *Space
	depth    int
	released bool
}

// Enter opens a measurement extent.
// Extents nest; each must be released before the one enclosing it.
func (s *Space) Enter() *Scope {
	return s.enter(nil)
}

func (s *Space) enter(owner *account) *Scope {
	s.frames = append(s.frames, frame{
		owner: owner,
		start: s.counter.Bytes(),
	})
	return &Scope{
		space: s,
		depth: len(s.frames),
	}
}

// Release closes the extent and returns the bytes attributed to it,
// excluding bytes already attributed to extents nested within it.
// Releasing twice returns 0.
// Panics with [ErrScopeOrder] if an inner extent is still open.
func (sc *Scope) Release() uint64 {
	if sc.released {
		return 0
	}
	var (
		space  = sc.space
		frames = space.frames
	)
	if innermost := len(frames); sc.depth != innermost {
		panic(scopeOrderError(sc.depth, innermost))
	}
	sc.released = true
	top := frames[len(frames)-1]
	space.frames = frames[:len(frames)-1]
	total := difference(space.counter.Bytes(), top.start)
	if outer := len(space.frames); outer > 0 {
		space.frames[outer-1].claimed += total
	}
	return difference(total, top.claimed)
}

// Measure runs fn within a new extent and returns its footprint.
// The extent is released on every exit path, including panics.
func (s *Space) Measure(fn func() error) (size uint64, err error) {
	scope := s.Enter()
	defer func() { size = scope.Release() }()
	err = fn()
	return size, err
}

// owner returns the account of the innermost value being computed.
func (s *Space) owner() *account {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if owner := s.frames[i].owner; owner != nil {
			return owner
		}
	}
	return nil
}

// measure runs recipe in an extent owned by owner, so that values
// constructed by the recipe attach to it.
func measure[T any](s *Space, owner *account, recipe func() (T, error)) (value T, size uint64, err error) {
	scope := s.enter(owner)
	defer func() { size = scope.Release() }()
	value, err = recipe()
	return value, size, err
}

// difference is a-b, or 0 if the counter went backwards.
func difference(a, b uint64) uint64 {
	if a < b {
		return 0
	}
	return a - b
}
