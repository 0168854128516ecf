// Package games persists the per-user game catalog and analysis jobs in
// SQLite and exposes helpers for driving their lifecycles.
//
// The Store manages database connections, schema initialization, catalog
// upserts, and the compare-and-set status transitions that back the analysis
// job state machine. Games capture the external identifier exactly as last
// seen from a source; canonical comparison keys are derived at reconcile
// time and never stored.
//
// The game status enum has no cancelled member. Cancelling a job returns
// its game to pending, so a cancelled game re-lists as awaiting evaluation
// and a later request starts a fresh cycle.
//
// Treat this package as the single source of truth for catalog semantics;
// when you add new statuses or columns, update schema.sql and bump
// schemaVersion.
package games
