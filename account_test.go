package uncompute

import (
	"errors"
	"math/rand"
	"testing"
)

func TestAccount(t *testing.T) {
	t.Run("stage then commit", stageThenCommit)
	t.Run("staging is associative", stagingAssociative)
	t.Run("underflow panics", underflowPanics)
	t.Run("commit propagates one level", commitOneLevel)
	t.Run("settle propagates to root", settleToRoot)
	t.Run("deunique moves subtree out", deuniqueMovesSubtree)
	t.Run("deunique without parent", deuniqueRoot)
	t.Run("release orphans children", releaseOrphans)
	t.Run("released subtree is not released again", releasedOnce)
	t.Run("deunique settles ancestors", deuniqueSettles)
	t.Run("collected parent", collectedParent)
}

func stageThenCommit(t *testing.T) {
	t.Parallel()
	a := new(account)
	a.stage(100)
	a.stage(-30)
	checkMemory(t, a, 0, "before commit")
	if a.pending != 70 {
		t.Fatalf("pending: got %d want %d", a.pending, 70)
	}
	a.commit()
	checkMemory(t, a, 70, "after commit")
	if a.pending != 0 {
		t.Fatalf("pending should be reset, got %d", a.pending)
	}
}

func stagingAssociative(t *testing.T) {
	t.Parallel()
	const rounds = 64
	rng := rand.New(rand.NewSource(1))
	for range rounds {
		var (
			stepwise = &account{memory: 1 << 20}
			summed   = &account{memory: 1 << 20}
			total    int64
		)
		for range rng.Intn(16) + 1 {
			delta := rng.Int63n(1<<16) - 1<<15
			stepwise.stage(delta)
			total += delta
		}
		summed.stage(total)
		stepwise.commit()
		summed.commit()
		if stepwise.memory != summed.memory {
			t.Fatalf("stepwise %d != summed %d",
				stepwise.memory, summed.memory)
		}
	}
}

func underflowPanics(t *testing.T) {
	t.Parallel()
	a := &account{memory: 10}
	a.stage(-20)
	defer func() {
		recovered := recover()
		err, ok := recovered.(error)
		if !ok || !errors.Is(err, ErrUnderflow) {
			t.Fatalf("expected %v panic, got: %v", ErrUnderflow, recovered)
		}
		checkMemory(t, a, 10, "after aborted commit")
		if a.pending != -20 {
			t.Fatalf("aborted commit should keep pending, got %d", a.pending)
		}
	}()
	a.commit()
}

func commitOneLevel(t *testing.T) {
	t.Parallel()
	var (
		root   = new(account)
		middle = new(account)
		leaf   = new(account)
	)
	middle.attach(root)
	leaf.attach(middle)
	leaf.stage(40)
	leaf.commit()
	checkMemory(t, leaf, 40, "leaf")
	checkMemory(t, middle, 0, "middle before its commit")
	if middle.pending != 40 {
		t.Fatalf("middle pending: got %d want 40", middle.pending)
	}
	if root.pending != 0 {
		t.Fatalf("root should not see uncommitted changes, got %d", root.pending)
	}
}

func settleToRoot(t *testing.T) {
	t.Parallel()
	var (
		root   = new(account)
		middle = new(account)
		leaf   = new(account)
	)
	middle.attach(root)
	leaf.attach(middle)
	leaf.stage(40)
	middle.stage(10)
	leaf.settle()
	checkMemory(t, leaf, 40, "leaf")
	checkMemory(t, middle, 50, "middle")
	checkMemory(t, root, 50, "root")
}

func deuniqueMovesSubtree(t *testing.T) {
	t.Parallel()
	var (
		parent = new(account)
		child  = new(account)
	)
	parent.stage(100)
	parent.commit()
	child.attach(parent)
	child.stage(40)
	child.commit()
	parent.commit()
	checkMemory(t, parent, 140, "parent before")
	child.stage(5) // Pending changes are committed first.
	child.deunique()
	checkMemory(t, parent, 100, "parent after")
	checkMemory(t, child, 45, "child after")
	if child.hasParent() {
		t.Fatal("child should be detached")
	}
	child.stage(-45)
	child.commit()
	checkMemory(t, parent, 100, "parent after detached child changed")
}

func deuniqueRoot(t *testing.T) {
	t.Parallel()
	a := new(account)
	a.stage(7)
	a.deunique()
	checkMemory(t, a, 7, "root")
}

func releaseOrphans(t *testing.T) {
	t.Parallel()
	var (
		parent = new(account)
		child  = new(account)
	)
	parent.stage(100)
	parent.commit()
	child.attach(parent)
	child.stage(40)
	child.commit()
	released := parent.release()
	if released != 140 {
		t.Fatalf("released: got %d want 140", released)
	}
	checkMemory(t, parent, 0, "released parent")
	child.stage(-40)
	child.commit()
	if child.hasParent() {
		t.Fatal("child of a released parent should be orphaned")
	}
	checkMemory(t, parent, 0, "parent after orphan change")
	if parent.pending != 0 {
		t.Fatalf("orphan staged on parent: %d", parent.pending)
	}
}

func releasedOnce(t *testing.T) {
	t.Parallel()
	var (
		parent     = new(account)
		child      = new(account)
		grandchild = new(account)
	)
	parent.stage(100)
	parent.commit()
	child.attach(parent)
	child.stage(40)
	child.commit()
	grandchild.attach(child)
	grandchild.stage(5)
	grandchild.settle()
	checkMemory(t, parent, 145, "parent before")
	if released := parent.release(); released != 145 {
		t.Fatalf("released: got %d want 145", released)
	}
	for _, a := range []*account{child, grandchild} {
		if !a.superseded() {
			t.Fatal("descendants of a released account should be superseded")
		}
	}
	if released := grandchild.release(); released != 0 {
		t.Fatalf("grandchild released %d bytes a second time", released)
	}
	checkMemory(t, child, 40, "child after grandchild release")
	if released := child.release(); released != 0 {
		t.Fatalf("child released %d bytes a second time", released)
	}
	// Bytes accounted after the release are new.
	child.stage(10)
	child.commit()
	if child.superseded() {
		t.Fatal("released child should be a plain root")
	}
	if released := child.release(); released != 10 {
		t.Fatalf("released: got %d want 10", released)
	}
	checkMemory(t, parent, 0, "parent after")
}

func deuniqueSettles(t *testing.T) {
	t.Parallel()
	var (
		root   = new(account)
		middle = new(account)
		leaf   = new(account)
	)
	middle.attach(root)
	leaf.attach(middle)
	leaf.stage(40)
	leaf.settle()
	checkMemory(t, root, 40, "root before")
	leaf.deunique()
	checkMemory(t, middle, 0, "middle")
	checkMemory(t, root, 0, "root")
	if root.pending != 0 {
		t.Fatalf("root pending should be committed, got %d", root.pending)
	}
}

func collectedParent(t *testing.T) {
	child := new(account)
	func() {
		parent := new(account)
		child.attach(parent)
	}()
	collectGarbage()
	child.stage(10)
	child.commit()
	if child.hasParent() {
		t.Fatal("link to a collected parent should be cleared")
	}
}

func checkMemory(tb testing.TB, a *account, want uint64, msg string) {
	tb.Helper()
	if got := a.memory; got != want {
		tb.Fatalf(
			"unexpected memory %s"+
				"\n\tgot: %d"+
				"\n\twant: %d",
			msg, got, want)
	}
}
