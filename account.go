package uncompute

import "weak"

// account is the accounting node of a single value.
// It holds the committed footprint of the value's subtree,
// a staged (uncommitted) delta, and a weak link to its parent.
//
// Memory changes for exactly four reasons:
// detachment from the parent, rematerialization,
// eviction, and (unsupported) reattachment.
type account struct {
	memory  uint64
	pending int64
	parent  parentLink
	// generation advances every time the value this account
	// describes is dropped, orphaning children attached before.
	generation uint64
	// orphaned is set when the parent dropped the value this
	// account was attached under. The parent released the bytes
	// of this subtree at that time.
	orphaned bool
}

type parentLink struct {
	account    weak.Pointer[account]
	generation uint64
	linked     bool
}

func (a *account) attach(parent *account) {
	if parent == nil {
		return
	}
	if debugging {
		assert(!a.parent.linked, "account attached twice")
		assert(parent != a, "account attached to itself")
	}
	a.parent = parentLink{
		account:    weak.Make(parent),
		generation: parent.generation,
		linked:     true,
	}
}

// liveParent returns the parent while it is alive and still
// holds the value this account was attached under.
// Otherwise the link is cleared permanently.
func (a *account) liveParent() *account {
	if !a.parent.linked {
		return nil
	}
	parent := a.parent.account.Value()
	if parent == nil {
		a.parent = parentLink{}
		return nil
	}
	if parent.generation != a.parent.generation {
		a.parent = parentLink{}
		a.orphaned = true
		return nil
	}
	return parent
}

// superseded reports whether the bytes of this account were
// already released along with an ancestor's value.
func (a *account) superseded() bool {
	for current := a; current != nil; {
		parent := current.liveParent()
		if current.orphaned {
			return true
		}
		current = parent
	}
	return false
}

func (a *account) hasParent() bool {
	return a.liveParent() != nil
}

// stage records delta for a later commit.
func (a *account) stage(delta int64) {
	a.pending += delta
}

// commit applies the pending delta to memory and stages it
// on the parent, one level up.
// Panics with [ErrUnderflow] if memory would become negative.
func (a *account) commit() {
	delta := a.pending
	if delta == 0 {
		return
	}
	if delta < 0 {
		released := uint64(-delta)
		if released > a.memory {
			panic(underflowError(a.memory, delta))
		}
		a.memory -= released
	} else {
		a.memory += uint64(delta)
	}
	a.pending = 0
	if parent := a.liveParent(); parent != nil {
		parent.stage(delta)
	}
}

// settle commits a and every live ancestor.
func (a *account) settle() {
	for current := a; current != nil; current = current.liveParent() {
		current.commit()
	}
}

// deunique removes this subtree from its parent's accounting
// and severs the link. There is no way to reattach.
func (a *account) deunique() {
	a.commit()
	if parent := a.liveParent(); parent != nil {
		parent.stage(-int64(a.memory))
		parent.settle()
	}
	a.parent = parentLink{}
}

// release accounts for the value being dropped:
// the entire subtree total is subtracted and committed up the
// live chain, and children attached so far are orphaned.
// Returns the number of bytes released, which is 0 if an
// ancestor already released them.
func (a *account) release() uint64 {
	superseded := a.superseded()
	a.commit()
	released := a.memory
	a.stage(-int64(released))
	a.settle()
	a.generation++
	if superseded {
		// Only bytes accounted from here on are new.
		a.orphaned = false
		return 0
	}
	return released
}

// estimate is the committed memory adjusted by pending changes.
func (a *account) estimate() uint64 {
	if a.pending < 0 {
		released := uint64(-a.pending)
		if released > a.memory {
			return 0
		}
		return a.memory - released
	}
	return a.memory + uint64(a.pending)
}
