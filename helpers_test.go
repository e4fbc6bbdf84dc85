package uncompute

import "runtime"

// collectGarbage runs enough cycles for weak pointers
// to unreachable values to be cleared.
func collectGarbage() {
	runtime.GC()
	runtime.GC()
}
