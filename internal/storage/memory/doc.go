// Package memory provides the in-memory session store.
//
// Sessions live only for the lifetime of the process. The store is a
// thin typed layer over the sharded concurrent map in pkg/cmap.
package memory
