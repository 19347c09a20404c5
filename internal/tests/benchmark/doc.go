// Package benchmark holds performance benchmarks for the device hot
// paths: tokenization, session reads, and buffer replacement.
//
// Run with:
//
//	go test -bench=. -benchmem ./internal/tests/benchmark/
package benchmark
