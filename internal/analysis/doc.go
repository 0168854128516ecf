// Package analysis manages the evaluation job lifecycle: requesting engine
// analysis for catalog games, priority changes, cancellation, retry, and the
// runner that drives a remote engine and journals progress back to the store.
package analysis
