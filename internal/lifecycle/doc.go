// Package lifecycle holds the participant state machine: admission,
// enrollment, four-day attendance and tier progression.
//
// Every function is pure. It takes entity snapshots by value and returns the
// next snapshot, or the unchanged input together with an error. Persistence
// and per-entity serialisation live in the repository and service layers.
package lifecycle
