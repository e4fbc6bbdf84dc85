package main

import "github.com/djdv/go-uncompute"

// stats counts residency events and forwards them to next, if set.
type stats struct {
	next              uncompute.Observer
	materialized      int
	accessed          int
	evicted           int
	materializedBytes uint64
	evictedBytes      uint64
}

func (s *stats) Materialized(id, bytes uint64) {
	s.materialized++
	s.materializedBytes += bytes
	if s.next != nil {
		s.next.Materialized(id, bytes)
	}
}

func (s *stats) Accessed(id uint64) {
	s.accessed++
	if s.next != nil {
		s.next.Accessed(id)
	}
}

func (s *stats) Evicted(id, bytes uint64) {
	s.evicted++
	s.evictedBytes += bytes
	if s.next != nil {
		s.next.Evicted(id, bytes)
	}
}

func (s *stats) Detached(id uint64) {
	if s.next != nil {
		s.next.Detached(id)
	}
}
