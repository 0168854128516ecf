package identify

import (
	"regexp"
	"strings"

	"github.com/google/uuid"

	"rookery/internal/games"
)

var (
	chessComPathPattern = regexp.MustCompile(`/(?:live|daily)/(\d+)`)
	lichessURLPattern   = regexp.MustCompile(`^https?://[^/]+/([A-Za-z0-9]{8})(?:[/?#].*)?$`)
)

// Normalize maps a raw external identifier to its canonical comparison key.
// The result is a pure function of (source, rawID): equal inputs always yield
// equal keys. An empty or whitespace-only identifier yields the empty key,
// which never matches anything.
func Normalize(source games.Source, rawID string) string {
	trimmed := strings.TrimSpace(rawID)
	if trimmed == "" {
		return ""
	}

	switch source {
	case games.SourceChessCom:
		if m := chessComPathPattern.FindStringSubmatch(trimmed); m != nil {
			return m[1]
		}
	case games.SourceLichess:
		if m := lichessURLPattern.FindStringSubmatch(trimmed); m != nil {
			return strings.ToLower(m[1])
		}
	case games.SourceManual:
		// Manual identifiers are locally generated opaque tokens and already
		// canonical.
		return strings.ToLower(trimmed)
	}

	return strings.ToLower(trimmed)
}

// IsUUID reports whether s is a bare UUID-shaped token (8-4-4-4-12 hex
// groups, case-insensitive). The reconciler uses this to detect external
// identifiers that are really another record's internal id.
func IsUUID(s string) bool {
	s = strings.TrimSpace(s)
	// uuid.Parse also accepts braced and urn-prefixed forms; only the plain
	// 36 character shape counts here.
	if len(s) != 36 {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}
