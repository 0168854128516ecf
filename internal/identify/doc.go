// Package identify derives canonical comparison keys from raw external game
// identifiers.
//
// Each source publishes identifiers in its own shape: chess.com links embed a
// numeric game id in a /live/ or /daily/ path segment, lichess links carry an
// eight character token, and manual imports use locally generated opaque
// tokens. Normalize collapses all three onto a comparable key so the
// reconciler can match records across fetches. Keys are derived on demand and
// never persisted or shown to users.
package identify
