// Package daemon coordinates the long-running rookery process.
//
// It wires configuration, the catalog store, the catalog and analysis
// services, the job dispatcher, and the HTTP API into a single lifecycle
// with flock-based locking to prevent multiple instances. Keep orchestration
// logic here: catalog and lifecycle semantics live in their own packages
// while the daemon focuses on startup, shutdown, and high level
// coordination.
package daemon
