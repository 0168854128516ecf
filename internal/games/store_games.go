package games

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrGameNotFound indicates a lookup for an unknown game identifier.
var ErrGameNotFound = errors.New("game not found")

// InsertGame persists a new catalog game. The caller supplies the opaque ID.
func (s *Store) InsertGame(ctx context.Context, game *Game) (*Game, error) {
	if game == nil {
		return nil, errors.New("game is nil")
	}
	if strings.TrimSpace(game.ID) == "" {
		return nil, errors.New("game id required")
	}
	if strings.TrimSpace(game.UserID) == "" {
		return nil, errors.New("user id required")
	}
	if _, ok := ParseSource(string(game.Source)); !ok {
		return nil, fmt.Errorf("unknown source %q", game.Source)
	}

	status := game.Status
	if status == "" {
		status = StatusPending
	}
	now := time.Now().UTC()
	timestamp := formatTime(now)

	_, err := s.execWithRetry(
		ctx,
		`INSERT INTO catalog_games (
            id, user_id, source, external_id, white, black, white_rating, black_rating,
            result, time_control, played_at, moves, status, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		game.ID,
		game.UserID,
		string(game.Source),
		nullableString(game.ExternalID),
		nullableString(game.White),
		nullableString(game.Black),
		game.WhiteRating,
		game.BlackRating,
		nullableString(game.Result),
		nullableString(game.TimeControl),
		nullableTime(&game.PlayedAt),
		nullableString(game.Moves),
		string(status),
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert game: %w", err)
	}

	return s.GetGame(ctx, game.ID)
}

// GetGame fetches a catalog game by identifier. Returns ErrGameNotFound when
// no row exists.
func (s *Store) GetGame(ctx context.Context, id string) (*Game, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+gameColumns+` FROM catalog_games WHERE id = ?`, id)
	game, err := scanGame(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrGameNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get game: %w", err)
	}
	return game, nil
}

// ListGames returns a user's catalog ordered by played timestamp descending.
func (s *Store) ListGames(ctx context.Context, userID string) ([]*Game, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+gameColumns+` FROM catalog_games WHERE user_id = ? ORDER BY played_at DESC, created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	defer rows.Close()

	var games []*Game
	for rows.Next() {
		game, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}
		games = append(games, game)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate games: %w", err)
	}
	return games, nil
}

// FindExternal returns the game last seen under the given raw external
// identifier, or nil when the catalog has no such row.
func (s *Store) FindExternal(ctx context.Context, userID string, source Source, externalID string) (*Game, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+gameColumns+` FROM catalog_games
         WHERE user_id = ? AND source = ? AND external_id = ? ORDER BY created_at LIMIT 1`,
		userID, string(source), externalID,
	)
	game, err := scanGame(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find external game: %w", err)
	}
	return game, nil
}

// EnsureExternal records an externally fetched game on first sight and
// refreshes last-seen metadata on subsequent sightings. The evaluation status
// is never touched here; only job transitions move it.
func (s *Store) EnsureExternal(ctx context.Context, game *Game) (*Game, error) {
	if game == nil {
		return nil, errors.New("game is nil")
	}
	if strings.TrimSpace(game.ExternalID) == "" {
		return nil, errors.New("external id required")
	}

	var resolvedID string
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(
			ctx,
			`SELECT id FROM catalog_games WHERE user_id = ? AND source = ? AND external_id = ? LIMIT 1`,
			game.UserID, string(game.Source), game.ExternalID,
		)
		var existingID string
		scanErr := row.Scan(&existingID)
		switch {
		case scanErr == nil:
			resolvedID = existingID
			_, err := tx.ExecContext(
				ctx,
				`UPDATE catalog_games
                 SET white = ?, black = ?, white_rating = ?, black_rating = ?,
                     result = ?, time_control = ?, played_at = ?, moves = ?, updated_at = ?
                 WHERE id = ?`,
				nullableString(game.White),
				nullableString(game.Black),
				game.WhiteRating,
				game.BlackRating,
				nullableString(game.Result),
				nullableString(game.TimeControl),
				nullableTime(&game.PlayedAt),
				nullableString(game.Moves),
				formatTime(time.Now().UTC()),
				existingID,
			)
			if err != nil {
				return fmt.Errorf("refresh external game: %w", err)
			}
			return nil
		case errors.Is(scanErr, sql.ErrNoRows):
			resolvedID = game.ID
			timestamp := formatTime(time.Now().UTC())
			status := game.Status
			if status == "" {
				status = StatusPending
			}
			_, err := tx.ExecContext(
				ctx,
				`INSERT INTO catalog_games (
                    id, user_id, source, external_id, white, black, white_rating, black_rating,
                    result, time_control, played_at, moves, status, created_at, updated_at
                ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				game.ID,
				game.UserID,
				string(game.Source),
				game.ExternalID,
				nullableString(game.White),
				nullableString(game.Black),
				game.WhiteRating,
				game.BlackRating,
				nullableString(game.Result),
				nullableString(game.TimeControl),
				nullableTime(&game.PlayedAt),
				nullableString(game.Moves),
				string(status),
				timestamp,
				timestamp,
			)
			if err != nil {
				return fmt.Errorf("insert external game: %w", err)
			}
			return nil
		default:
			return fmt.Errorf("probe external game: %w", scanErr)
		}
	})
	if err != nil {
		return nil, err
	}
	return s.GetGame(ctx, resolvedID)
}

// CountGames returns the total number of catalog rows for a user.
func (s *Store) CountGames(ctx context.Context, userID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM catalog_games WHERE user_id = ?`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count games: %w", err)
	}
	return count, nil
}
