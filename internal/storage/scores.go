package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vovakirdan/tui-memory/internal/games/memory"
)

// ScoreEntry represents a single finished game.
type ScoreEntry struct {
	ID        int64
	GameID    string
	Player    string
	Layout    string
	Score     int
	MaxCombo  int
	Moves     int
	Won       bool
	CreatedAt time.Time
}

// SaveScore records a finished game.
// Returns the ID of the inserted record.
func (s *Store) SaveScore(ctx context.Context, e ScoreEntry) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO scores (game_id, player, layout, score, max_combo, moves, won)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.GameID, e.Player, e.Layout, e.Score, e.MaxCombo, e.Moves, e.Won,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save score: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	return id, nil
}

// TopScores retrieves the top N scores for a layout, or for every layout
// when layout is empty. Results are ordered by score descending.
func (s *Store) TopScores(ctx context.Context, layout string, limit int) ([]ScoreEntry, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, game_id, player, layout, score, max_combo, moves, won, created_at
		 FROM scores
		 WHERE ? = '' OR layout = ?
		 ORDER BY score DESC, id ASC
		 LIMIT ?`,
		layout, layout, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query scores: %w", err)
	}
	defer rows.Close()

	var entries []ScoreEntry
	for rows.Next() {
		var e ScoreEntry
		var createdAt any
		if err := rows.Scan(&e.ID, &e.GameID, &e.Player, &e.Layout, &e.Score, &e.MaxCombo, &e.Moves, &e.Won, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		e.CreatedAt = parseTime(createdAt)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return entries, nil
}

// HighScore returns the highest score for a layout.
// Returns 0 if no scores exist.
func (s *Store) HighScore(ctx context.Context, layout string) (int, error) {
	var score sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		"SELECT MAX(score) FROM scores WHERE layout = ?",
		layout,
	).Scan(&score)

	if err != nil {
		return 0, fmt.Errorf("storage: cannot query high score: %w", err)
	}

	if !score.Valid {
		return 0, nil
	}

	return int(score.Int64), nil
}

// ClearScores deletes all scores for a layout, or every score when layout
// is empty.
func (s *Store) ClearScores(ctx context.Context, layout string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM scores WHERE ? = '' OR layout = ?", layout, layout)
	if err != nil {
		return fmt.Errorf("storage: cannot clear scores: %w", err)
	}
	return nil
}

// LayoutStats contains aggregated statistics for one layout.
type LayoutStats struct {
	Layout     string
	GamesCount int
	Wins       int
	HighScore  int
	BestCombo  int
	AvgScore   float64
	LastPlayed time.Time
}

// AllLayoutStats retrieves statistics for every layout that has been played,
// ordered by layout.
func (s *Store) AllLayoutStats(ctx context.Context) ([]LayoutStats, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT layout, COUNT(*), SUM(won), MAX(score), MAX(max_combo), AVG(score), MAX(created_at)
		 FROM scores
		 GROUP BY layout
		 ORDER BY layout`,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get layout stats: %w", err)
	}
	defer rows.Close()

	var stats []LayoutStats
	for rows.Next() {
		var st LayoutStats
		var lastPlayed any
		if err := rows.Scan(&st.Layout, &st.GamesCount, &st.Wins, &st.HighScore, &st.BestCombo, &st.AvgScore, &lastPlayed); err != nil {
			return nil, fmt.Errorf("storage: cannot scan stats row: %w", err)
		}
		st.LastPlayed = parseTime(lastPlayed)
		stats = append(stats, st)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return stats, nil
}

// Recorder adapts the store to memory.ScoreRecorder for one player.
type Recorder struct {
	Store  *Store
	Player string
}

// RecordScore implements memory.ScoreRecorder.
func (r Recorder) RecordScore(ctx context.Context, result memory.Result) error {
	if r.Store == nil {
		return errors.New("storage: recorder has no store")
	}
	_, err := r.Store.SaveScore(ctx, ScoreEntry{
		GameID:   result.GameID,
		Player:   r.Player,
		Layout:   result.Layout,
		Score:    result.Score,
		MaxCombo: result.MaxCombo,
		Moves:    result.Moves,
		Won:      result.Won,
	})
	return err
}

// Ensure Recorder implements ScoreRecorder
var _ memory.ScoreRecorder = Recorder{}
