// Package uncompute lets large values be dropped under memory pressure
// and recomputed on demand, while keeping a cheap, approximate estimate
// of how much memory each value and its dependents occupy.
//
// Values are held through a [Handle] in a [Space]. A value is either
// atomic (always resident), materialized (resident, evictable) or
// evicted (only its [Recipe] remains). An external eviction policy
// enumerates [Registry.Candidates], ranks them by [Candidate.EvictCost]
// and calls [Candidate.Evict]. Accessing an evicted value runs its recipe
// again.
//
// The following is a summary intended for maintainers.
//
// Glossary and invariants:
//
//   - Account
//
//     The accounting record of one value: committed memory of its
//     subtree, a pending (staged) signed delta, and at most one weak
//     link to a parent account.
//
//   - Stage
//
//     Add a delta to pending. Free; nothing propagates.
//
//   - Commit
//
//     Apply pending to memory and stage it on the parent, one level up.
//     Memory never goes negative: an underflow panics with [ErrUnderflow],
//     since it means bytes were released twice.
//
//   - Settle
//
//     Commit the account and every live ancestor. O(height).
//     Eviction settles so policies rank against fresh totals;
//     ordinary accesses commit one level only.
//
//   - Deuniquification
//
//     The first [Handle.Clone] of a value removes its whole subtree total
//     from the parent and cuts the link for good. A shared value may
//     outlive its former parent, so counting it there would let the
//     parent's eviction claim bytes that stay reachable. Values are never
//     reattached; at worst eviction decisions become coarser.
//
//   - Generation
//
//     Bumped whenever an account's value is dropped. Children remember
//     the generation they were attached under; a mismatch (or a collected
//     parent) detaches them at their next commit, so children of an
//     evicted value never release bytes a second time. Such values, and
//     their descendants, report an eviction cost of zero until they are
//     themselves evicted.
//
// Measurement:
//
//   - Probe
//
//     Footprints are the difference of a process-wide counter
//     ([meter.Counter]) across the extent that computes a value.
//     Nested extents report only their own bytes; the enclosing extent
//     is credited with what its children claimed. Garbage produced in an
//     extent is counted with it and goes away with it on eviction.
//
//   - Parenting
//
//     A value constructed while another value's recipe runs becomes its
//     child, unless constructed with [WithParent] or [Detached].
//
// Registry:
//
//   - Holds weak references only; entries of collected values are
//     pruned when scanned. The scan starts at a hand which is left past
//     the last candidate yielded. A scan yields each entry at most once.
//
// Values must not share memory with each other outside of handles;
// doing so makes the estimate of reclaimable memory optimistic.
package uncompute
