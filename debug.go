//go:build uncompute_debug

package uncompute

const debugging = true

func assert(cond bool, message string) {
	if !cond {
		panic(message)
	}
}
