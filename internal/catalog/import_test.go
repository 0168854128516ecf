package catalog_test

import (
	"errors"
	"strings"
	"testing"

	"rookery/internal/games"
	"rookery/internal/services"
	"rookery/internal/testsupport"
)

func TestImportBatchAcceptsTwoEntries(t *testing.T) {
	svc, store := newCatalog(t)

	report, err := svc.ImportBatch(t.Context(), "tester", testsupport.SamplePGN())
	if err != nil {
		t.Fatalf("ImportBatch: %v", err)
	}
	if report.Accepted != 2 || report.Rejected != 0 {
		t.Fatalf("report = %+v, want accepted 2 rejected 0", report)
	}

	persisted, err := store.ListGames(t.Context(), "tester")
	if err != nil {
		t.Fatalf("ListGames: %v", err)
	}
	if len(persisted) != 2 {
		t.Fatalf("expected 2 persisted games, got %d", len(persisted))
	}
	for _, game := range persisted {
		if game.Source != games.SourceManual {
			t.Fatalf("source = %q, want manual", game.Source)
		}
		if game.ExternalID == "" || game.ExternalID == game.ID {
			t.Fatalf("manual external id must be a distinct local token: %+v", game)
		}
		if game.Status != games.StatusPending {
			t.Fatalf("status = %q, want pending", game.Status)
		}
		if game.Moves == "" {
			t.Fatal("moves missing after import")
		}
	}
}

func TestImportBatchParsesMetadata(t *testing.T) {
	svc, store := newCatalog(t)

	if _, err := svc.ImportBatch(t.Context(), "tester", testsupport.SamplePGN()); err != nil {
		t.Fatalf("ImportBatch: %v", err)
	}
	persisted, err := store.ListGames(t.Context(), "tester")
	if err != nil {
		t.Fatalf("ListGames: %v", err)
	}

	var blitz *games.Game
	for _, game := range persisted {
		if game.White == "Alice" {
			blitz = game
		}
	}
	if blitz == nil {
		t.Fatalf("blitz game not found in %d entries", len(persisted))
	}
	if blitz.Black != "Bob" || blitz.Result != "1-0" || blitz.TimeControl != "300" {
		t.Fatalf("metadata lost: %+v", blitz)
	}
	if blitz.WhiteRating != 1820 || blitz.BlackRating != 1795 {
		t.Fatalf("ratings lost: %+v", blitz)
	}
	if blitz.PlayedAt.Year() != 2026 || blitz.PlayedAt.Month() != 1 || blitz.PlayedAt.Day() != 15 {
		t.Fatalf("played at not taken from tags: %v", blitz.PlayedAt)
	}
}

func TestImportBatchEmptyInputIsValidationFailure(t *testing.T) {
	svc, _ := newCatalog(t)

	for _, input := range []string{"", "   \n\n  \n"} {
		if _, err := svc.ImportBatch(t.Context(), "tester", input); !errors.Is(err, services.ErrValidation) {
			t.Fatalf("expected ErrValidation for %q, got %v", input, err)
		}
	}
}

func TestImportBatchSamplesRejections(t *testing.T) {
	svc, _ := newCatalog(t)

	// Header-only entries carry no move text and are rejected individually.
	var b strings.Builder
	for range 8 {
		b.WriteString("[Event \"Header Only\"]\n[White \"Alice\"]\n\n")
	}
	b.WriteString(testsupport.SamplePGN())

	report, err := svc.ImportBatch(t.Context(), "tester", b.String())
	if err != nil {
		t.Fatalf("ImportBatch: %v", err)
	}
	if report.Accepted != 2 || report.Rejected != 8 {
		t.Fatalf("report = %+v, want accepted 2 rejected 8", report)
	}
	if len(report.Errors) != 5 {
		t.Fatalf("error samples must be bounded at 5, got %d", len(report.Errors))
	}
}

func TestImportBatchRequiresUser(t *testing.T) {
	svc, _ := newCatalog(t)

	if _, err := svc.ImportBatch(t.Context(), "", testsupport.SamplePGN()); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}
