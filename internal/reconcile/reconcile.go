// Package reconcile merges freshly fetched external game records with the
// persisted catalog, producing one unified view with the best-known
// evaluation status per game. The pass is read-only: it never mutates its
// inputs and is safe to run concurrently for different users.
package reconcile

import (
	"sort"

	"rookery/internal/games"
	"rookery/internal/identify"
	"rookery/internal/sources"
)

// Unified is an externally fetched or manually imported game merged with its
// best-known evaluation status. ExternalID stays in its original raw form;
// canonical keys exist only inside a single Merge pass.
type Unified struct {
	sources.Record

	// GameID is the persisted internal identifier, empty when the record has
	// not been catalogued yet.
	GameID string
	Status games.Status
}

// Options controls Merge output shaping.
type Options struct {
	// ExcludeCompleted drops every entry whose resolved status is completed.
	ExcludeCompleted bool
}

// candidate is one persisted game's claim on a canonical key.
type candidate struct {
	id         string
	status     games.Status
	externalID string
}

// Merge reconciles external records against the persisted catalog.
//
// Persisted games are indexed two ways. The primary index maps canonical
// keys to the persisted game holding the most advanced status for that key.
// The secondary index covers completed games whose external identifier is
// UUID-shaped: upstream sometimes files analysis under another record's
// internal id, and the secondary lookup recovers that status at read time.
// Manual games have no external counterpart and join the output directly.
func Merge(records []sources.Record, persisted []*games.Game, opts Options) []Unified {
	primary := make(map[string]candidate)
	secondary := make(map[string]candidate)

	for _, game := range persisted {
		if game == nil || game.ExternalID == "" {
			continue
		}
		key := identify.Normalize(game.Source, game.ExternalID)
		if key != "" {
			next := candidate{id: game.ID, status: game.Status, externalID: game.ExternalID}
			if current, ok := primary[key]; !ok || next.status.Rank() > current.status.Rank() {
				primary[key] = next
			}
		}
		if game.Status == games.StatusCompleted && identify.IsUUID(game.ExternalID) {
			secondary[game.ExternalID] = candidate{id: game.ID, status: game.Status, externalID: game.ExternalID}
		}
	}

	unified := make([]Unified, 0, len(records)+len(persisted))
	for _, record := range records {
		entry := Unified{Record: record, Status: games.StatusPending}
		if key := identify.Normalize(record.Source, record.ExternalID); key != "" {
			if match, ok := primary[key]; ok {
				if match.status != games.StatusCompleted {
					if recovered, ok := secondary[match.id]; ok {
						match = recovered
					}
				}
				entry.GameID = match.id
				entry.Status = match.status
			}
		}
		unified = append(unified, entry)
	}

	for _, game := range persisted {
		if game == nil || game.Source != games.SourceManual {
			continue
		}
		unified = append(unified, Unified{
			Record: sources.Record{
				Source:      game.Source,
				ExternalID:  game.ExternalID,
				White:       game.White,
				Black:       game.Black,
				WhiteRating: game.WhiteRating,
				BlackRating: game.BlackRating,
				Result:      game.Result,
				TimeControl: game.TimeControl,
				PlayedAt:    game.PlayedAt,
				Moves:       game.Moves,
			},
			GameID: game.ID,
			Status: game.Status,
		})
	}

	sort.SliceStable(unified, func(i, j int) bool {
		return unified[i].PlayedAt.After(unified[j].PlayedAt)
	})

	if opts.ExcludeCompleted {
		filtered := unified[:0]
		for _, entry := range unified {
			if entry.Status != games.StatusCompleted {
				filtered = append(filtered, entry)
			}
		}
		unified = filtered
	}
	return unified
}
