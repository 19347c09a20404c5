// Package domain defines the core domain models for scand: the
// process-wide shared buffer, the per-handle session, control command
// codes and the structured error taxonomy.
//
// Domain models are pure value objects and entities without any IO
// dependencies or framework coupling.
package domain
