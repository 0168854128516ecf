package identify_test

import (
	"testing"

	"rookery/internal/games"
	"rookery/internal/identify"
)

func TestNormalizeChessCom(t *testing.T) {
	cases := []struct {
		name  string
		rawID string
		want  string
	}{
		{"live link", "https://www.chess.com/game/live/123456789", "123456789"},
		{"daily link", "https://www.chess.com/game/daily/987654", "987654"},
		{"live link with query", "https://www.chess.com/game/live/5550123?tab=analysis", "5550123"},
		{"bare digits fall through", "123456789", "123456789"},
		{"no match lowercases", "Some-Opaque-Token", "some-opaque-token"},
		{"whitespace trimmed", "  https://www.chess.com/game/live/42  ", "42"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := identify.Normalize(games.SourceChessCom, tc.rawID)
			if got != tc.want {
				t.Fatalf("Normalize(%q) = %q, want %q", tc.rawID, got, tc.want)
			}
		})
	}
}

func TestNormalizeLichess(t *testing.T) {
	cases := []struct {
		name  string
		rawID string
		want  string
	}{
		{"plain link", "https://lichess.org/AbCdEf12", "abcdef12"},
		{"link with fragment", "https://lichess.org/xYz12345#20", "xyz12345"},
		{"link with trailing path", "https://lichess.org/aaaa1111/white", "aaaa1111"},
		{"bare token lowercased", "AbCdEf12", "abcdef12"},
		{"nine character segment falls through", "https://lichess.org/abcdef123", "https://lichess.org/abcdef123"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := identify.Normalize(games.SourceLichess, tc.rawID)
			if got != tc.want {
				t.Fatalf("Normalize(%q) = %q, want %q", tc.rawID, got, tc.want)
			}
		})
	}
}

func TestNormalizeManualPassesThroughLowercased(t *testing.T) {
	got := identify.Normalize(games.SourceManual, "3F2504E0-4F89-11D3-9A0C-0305E82C3301")
	if got != "3f2504e0-4f89-11d3-9a0c-0305e82c3301" {
		t.Fatalf("unexpected manual key %q", got)
	}
}

func TestNormalizeEmptyYieldsEmptyKey(t *testing.T) {
	for _, source := range []games.Source{games.SourceChessCom, games.SourceLichess, games.SourceManual} {
		if got := identify.Normalize(source, "   "); got != "" {
			t.Fatalf("Normalize(%s, blank) = %q, want empty", source, got)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	cases := []struct {
		source games.Source
		rawID  string
	}{
		{games.SourceChessCom, "https://www.chess.com/game/live/123456789"},
		{games.SourceLichess, "https://lichess.org/AbCdEf12"},
		{games.SourceManual, "Token-X"},
	}
	for _, tc := range cases {
		key := identify.Normalize(tc.source, tc.rawID)
		again := identify.Normalize(tc.source, key)
		if key != again {
			t.Fatalf("Normalize(%s) not idempotent: %q then %q", tc.source, key, again)
		}
	}
}

func TestNormalizeDeterministic(t *testing.T) {
	first := identify.Normalize(games.SourceChessCom, "https://www.chess.com/game/live/777")
	for i := 0; i < 10; i++ {
		if got := identify.Normalize(games.SourceChessCom, "https://www.chess.com/game/live/777"); got != first {
			t.Fatalf("non-deterministic key on call %d: %q vs %q", i, got, first)
		}
	}
}

func TestIsUUID(t *testing.T) {
	cases := []struct {
		value string
		want  bool
	}{
		{"3f2504e0-4f89-11d3-9a0c-0305e82c3301", true},
		{"3F2504E0-4F89-11D3-9A0C-0305E82C3301", true},
		{"  3f2504e0-4f89-11d3-9a0c-0305e82c3301  ", true},
		{"{3f2504e0-4f89-11d3-9a0c-0305e82c3301}", false},
		{"urn:uuid:3f2504e0-4f89-11d3-9a0c-0305e82c3301", false},
		{"3f2504e04f8911d39a0c0305e82c3301", false},
		{"not-a-uuid", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := identify.IsUUID(tc.value); got != tc.want {
			t.Fatalf("IsUUID(%q) = %v, want %v", tc.value, got, tc.want)
		}
	}
}
