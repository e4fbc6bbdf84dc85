// Command uncompute-sim drives a synthetic workload through
// evictable values and reports how the accounting behaved.
package main

func main() {
	execute()
}
