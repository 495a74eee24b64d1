package daily

import (
	"context"
	"database/sql"
)

// Result is one player's finished daily puzzle.
type Result struct {
	UserID         string `json:"userId"`
	Date           string `json:"date"`
	Difficulty     string `json:"difficulty"`
	Score          int    `json:"score"`
	ElapsedSeconds int    `json:"elapsedSeconds"`
	WordsFound     int    `json:"wordsFound"`
}

// LBRow is one leaderboard entry.
type LBRow struct {
	UserID         string `json:"userId"`
	Username       string `json:"username,omitempty"`
	Score          int    `json:"score"`
	ElapsedSeconds int    `json:"elapsedSeconds"`
	WordsFound     int    `json:"wordsFound"`
}

// Store persists daily results in the daily_results table.
type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// AlreadyPlayed reports whether userID has a result for date.
func (s *Store) AlreadyPlayed(ctx context.Context, userID, date string) (bool, error) {
	var cnt int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM daily_results WHERE user_id=? AND date=?`,
		userID, date,
	).Scan(&cnt)
	return cnt > 0, err
}

// InsertResult records r. A second result for the same player and day is ignored.
func (s *Store) InsertResult(ctx context.Context, r Result) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO daily_results
			(user_id, date, difficulty, score, elapsed_seconds, words_found)
		VALUES (?, ?, ?, ?, ?, ?)`,
		r.UserID, r.Date, r.Difficulty, r.Score, r.ElapsedSeconds, r.WordsFound,
	)
	return err
}

// Leaderboard returns the best results for date: highest score, then fastest, then earliest.
func (s *Store) Leaderboard(ctx context.Context, date string, limit int) ([]LBRow, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT d.user_id, COALESCE(u.username, ''), d.score, d.elapsed_seconds, d.words_found
		FROM daily_results d
		LEFT JOIN users u ON u.id = d.user_id
		WHERE d.date=?
		ORDER BY d.score DESC, d.elapsed_seconds ASC, d.created_at ASC
		LIMIT ?`, date, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]LBRow, 0, limit)
	for rows.Next() {
		var r LBRow
		if err := rows.Scan(&r.UserID, &r.Username, &r.Score, &r.ElapsedSeconds, &r.WordsFound); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
