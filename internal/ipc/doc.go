// Package ipc provides the unix-socket RPC surface between the rookery CLI
// and the daemon. The server registers a single "Rookery" service over
// JSON-RPC; the client wraps each method with a typed call.
package ipc
