// Package cmap provides a concurrent-safe sharded map keyed by string.
//
// Sharding reduces lock contention under concurrent opens and releases,
// which is the hot path for the session registry. Keys are distributed
// across shards with murmur3.
package cmap
