package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteFile writes content to path, creating parent directories as needed.
func WriteFile(t testing.TB, path, content string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// SamplePGN returns a two-game PGN document usable for import tests.
func SamplePGN() string {
	return `[Event "Casual Blitz"]
[White "Alice"]
[Black "Bob"]
[Result "1-0"]
[UTCDate "2026.01.15"]
[UTCTime "18:30:00"]
[WhiteElo "1820"]
[BlackElo "1795"]
[TimeControl "300"]

1. e4 e5 2. Nf3 Nc6 3. Bb5 a6 1-0

[Event "Casual Rapid"]
[White "Carol"]
[Black "Dave"]
[Result "0-1"]
[UTCDate "2026.01.16"]
[UTCTime "09:12:00"]
[WhiteElo "1610"]
[BlackElo "1644"]
[TimeControl "600"]

1. d4 d5 2. c4 e6 3. Nc3 Nf6 0-1
`
}
