// Package pgn splits free-form multi-game PGN text into discrete entries.
//
// The parser is deliberately forgiving: it separates concatenated games on
// blank lines followed by a new tag block, tolerates malformed tag lines by
// dropping them from the tag set, and never fails on a single bad chunk.
// Deciding whether zero parsed entries constitutes an error belongs to the
// caller, not this package.
package pgn
