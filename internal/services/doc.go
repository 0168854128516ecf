// Package services defines shared utilities consumed by the catalog
// orchestration and the collaborator integrations.
//
// Key responsibilities:
//   - Structured error markers plus the Wrap helper that keep failure
//     classification consistent across the catalog, the job lifecycle, and
//     the CLI surfaces.
//   - Context helpers that stamp game IDs, job IDs, and correlation
//     identifiers for logging.
//
// Use these helpers when wiring new operations so operational behaviour
// (error handling, observability) stays uniform across the service.
package services
