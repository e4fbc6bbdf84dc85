package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"

	"github.com/djdv/go-uncompute"
	"github.com/djdv/go-uncompute/checkpoint"
	"github.com/djdv/go-uncompute/meter"
	"github.com/djdv/go-uncompute/policy"
)

type (
	config struct {
		logger     *slog.Logger
		policy     string
		checkpoint string
		budget     uint64
		low        float64
		seed       int64
		groups     int
		leaves     int
		size       int
		rounds     int
		runtime    bool
	}
	group struct {
		leaves []*uncompute.Handle[[]byte]
	}
	report struct {
		Policy            string `json:"policy"`
		Materialized      int    `json:"materialized"`
		MaterializedBytes uint64 `json:"materialized_bytes"`
		Accessed          int    `json:"accessed"`
		Evicted           int    `json:"evicted"`
		EvictedBytes      uint64 `json:"evicted_bytes"`
		Reclaims          int    `json:"reclaims"`
		Shortfalls        int    `json:"shortfalls"`
		PeakUsage         uint64 `json:"peak_usage"`
		FinalUsage        uint64 `json:"final_usage"`
	}
)

func defaultConfig() config {
	return config{
		groups: 64,
		leaves: 4,
		size:   64 << 10,
		budget: 8 << 20,
		low:    0.75,
		policy: "clock",
		rounds: 10_000,
		seed:   1,
	}
}

func (c config) validate() error {
	switch {
	case c.groups <= 0, c.leaves <= 0, c.size <= 0:
		return fmt.Errorf("groups, leaves and size must be positive")
	case c.rounds < 0:
		return fmt.Errorf("rounds must not be negative, got %d", c.rounds)
	case c.low <= 0 || c.low > 1:
		return fmt.Errorf("low watermark must be in (0, 1], got %g", c.low)
	}
	return nil
}

func newPolicy(name string, capacity int) (policy.Policy, uncompute.Observer, error) {
	switch name {
	case "largest":
		return policy.Largest{}, nil, nil
	case "clock":
		return policy.Clock{}, nil, nil
	case "recency":
		recency, err := policy.NewRecency(capacity)
		if err != nil {
			return nil, nil, err
		}
		return recency, recency, nil
	default:
		return nil, nil, fmt.Errorf("unknown policy %q", name)
	}
}

func simulate(c config) (*report, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}
	if c.logger == nil {
		c.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	evictor, observer, err := newPolicy(c.policy, c.groups*(c.leaves+1))
	if err != nil {
		return nil, err
	}
	mark, err := policy.NewWatermark(c.budget, uint64(float64(c.budget)*c.low))
	if err != nil {
		return nil, err
	}
	var (
		manual  = new(meter.Manual)
		counter = meter.Counter(manual)
		events  = &stats{next: observer}
	)
	if c.runtime {
		counter = meter.Runtime()
	}
	space := uncompute.NewSpace(
		uncompute.WithCounter(counter),
		uncompute.WithLogger(c.logger),
		uncompute.WithObserver(events),
	)
	var store *checkpoint.Store
	if c.checkpoint != "" {
		if store, err = checkpoint.Open(c.checkpoint,
			checkpoint.WithLogger(c.logger)); err != nil {
			return nil, err
		}
		defer store.Close()
	}
	leafRecipe := func(g, l int) uncompute.Recipe[[]byte] {
		produce := func() ([]byte, error) {
			data := make([]byte, c.size)
			for i := range data {
				data[i] = byte(g + l + i)
			}
			return data, nil
		}
		if store != nil {
			key := fmt.Appendf(nil, "leaf/%d/%d", g, l)
			produce = checkpoint.Recipe[[]byte](store, key, checkpoint.Bytes{}, produce)
		}
		// Declared on every path, computed or loaded.
		return func() ([]byte, error) {
			data, err := produce()
			if err == nil {
				manual.Add(uint64(len(data)))
			}
			return data, err
		}
	}
	groups := make([]*uncompute.Handle[group], c.groups)
	for g := range groups {
		if groups[g], err = uncompute.NewEvicted(space, func() (group, error) {
			leaves := make([]*uncompute.Handle[[]byte], c.leaves)
			for l := range leaves {
				leaf, err := uncompute.NewMaterialized(space, leafRecipe(g, l))
				if err != nil {
					return group{}, err
				}
				leaves[l] = leaf
			}
			return group{leaves: leaves}, nil
		}); err != nil {
			return nil, err
		}
	}
	var (
		rng    = rand.New(rand.NewSource(c.seed))
		result = &report{Policy: c.policy}
	)
	for range c.rounds {
		value, err := groups[rng.Intn(len(groups))].Get()
		if err != nil {
			return nil, err
		}
		if _, err := value.leaves[rng.Intn(len(value.leaves))].Get(); err != nil {
			return nil, err
		}
		usage := totalUsage(groups)
		result.PeakUsage = max(result.PeakUsage, usage)
		if mark.Need(usage) == 0 {
			continue
		}
		result.Reclaims++
		if _, err := policy.Enforce(evictor, space.Registry(), mark, usage); err != nil {
			if !errors.Is(err, policy.ErrShortfall) {
				return nil, err
			}
			result.Shortfalls++
			c.logger.Warn("reclaim fell short", "usage", usage, "error", err)
		}
	}
	result.Materialized = events.materialized
	result.MaterializedBytes = events.materializedBytes
	result.Accessed = events.accessed
	result.Evicted = events.evicted
	result.EvictedBytes = events.evictedBytes
	result.FinalUsage = totalUsage(groups)
	return result, nil
}

func totalUsage(groups []*uncompute.Handle[group]) uint64 {
	var usage uint64
	for _, handle := range groups {
		handle.Settle()
		usage += handle.Memory()
	}
	return usage
}

func (r *report) print(w io.Writer) {
	fmt.Fprintf(w, "policy:        %s\n", r.Policy)
	fmt.Fprintf(w, "materialized:  %d (%d bytes)\n", r.Materialized, r.MaterializedBytes)
	fmt.Fprintf(w, "accessed:      %d\n", r.Accessed)
	fmt.Fprintf(w, "evicted:       %d (%d bytes)\n", r.Evicted, r.EvictedBytes)
	fmt.Fprintf(w, "reclaims:      %d (%d short)\n", r.Reclaims, r.Shortfalls)
	fmt.Fprintf(w, "peak usage:    %d\n", r.PeakUsage)
	fmt.Fprintf(w, "final usage:   %d\n", r.FinalUsage)
}
