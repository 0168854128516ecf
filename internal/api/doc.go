// Package api defines wire-format types and converters for the IPC and HTTP
// API layer. It translates internal catalog and job models into
// transport-friendly DTOs so consumers never couple to internal types.
//
// DTOs use camelCase JSON tags. Internal enums (games.Source, games.Status,
// games.JobStatus) are exposed as lowercase strings. Timestamps use RFC3339
// with milliseconds. Engine result payloads are passed through as raw JSON
// strings to avoid double-encoding.
package api
