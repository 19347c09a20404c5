// Package service implements the device operations on top of the
// domain model: open, read, write, control, release, and the
// management views. It owns the shared buffer and the session store
// and is the single entry point for every serving surface.
package service
