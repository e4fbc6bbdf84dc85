// Package policy provides reference eviction policies.
//
// A policy only reads candidates from a [Source]
// (normally a [uncompute.Registry]), ranks them, and evicts
// until the requested number of bytes has been reclaimed.
// When to reclaim, and how much, is decided by the host;
// [Watermark] implements the common dual-threshold trigger.
package policy
