// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/stepcost/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for scored sessions.
type Store struct {
	db *sql.DB
}

// migrations are applied in order; PRAGMA user_version records how many ran.
var migrations = [][]string{
	{
		`CREATE TABLE IF NOT EXISTS sessions (
			id INTEGER PRIMARY KEY,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			name TEXT NOT NULL,
			source TEXT NOT NULL,
			layout TEXT NOT NULL,
			mouse_position TEXT NOT NULL,
			events INTEGER NOT NULL,
			key_presses INTEGER NOT NULL,
			mouse_clicks INTEGER NOT NULL,
			wheel_turns INTEGER NOT NULL,
			mouse_moves INTEGER NOT NULL,
			mouse_distance REAL NOT NULL,
			moving_ms INTEGER NOT NULL,
			in_motion_ms INTEGER NOT NULL,
			span_ms INTEGER NOT NULL,
			force_time REAL NOT NULL,
			score REAL NOT NULL,
			transition_score REAL NOT NULL,
			left_presses INTEGER NOT NULL,
			right_presses INTEGER NOT NULL,
			both_presses INTEGER NOT NULL,
			lookup_misses INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS session_key_stats (
			session_id INTEGER NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			key TEXT NOT NULL,
			presses INTEGER NOT NULL,
			cost_sum REAL NOT NULL,
			missed INTEGER NOT NULL,
			PRIMARY KEY (session_id, key)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_ended_at ON sessions(ended_at)`,
		`CREATE INDEX IF NOT EXISTS idx_session_key_stats_key ON session_key_stats(key)`,
	},
}

var sessionColumns = []string{
	"started_at", "ended_at", "name", "source", "layout", "mouse_position", "events",
	"key_presses", "mouse_clicks", "wheel_turns", "mouse_moves", "mouse_distance", "moving_ms",
	"in_motion_ms", "span_ms", "force_time", "score", "transition_score", "left_presses",
	"right_presses", "both_presses", "lookup_misses",
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection keeps PRAGMAs and the migration transaction on the same handle.
	db.SetMaxOpenConns(1)
	s := &Store{db: db}
	if err := s.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		return err
	}
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return err
	}
	for ; version < len(migrations); version++ {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		for _, stmt := range migrations[version] {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				_ = tx.Rollback()
				return err
			}
		}
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", version+1)); err != nil {
			_ = tx.Rollback()
			return err
		}
		if err := tx.Commit(); err != nil {
			return err
		}
	}
	return nil
}

// InsertSession stores a scored session and its per-key stats.
func (s *Store) InsertSession(ctx context.Context, st model.SessionStats, keys []model.KeyStats) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	// Rollback after Commit is a no-op.
	defer func() {
		_ = tx.Rollback()
	}()

	marks, _ := placeholders(sessionColumns)
	res, err := tx.ExecContext(ctx,
		fmt.Sprintf("INSERT INTO sessions (%s) VALUES (%s)", strings.Join(sessionColumns, ", "), marks),
		st.StartedAt.Format(time.RFC3339Nano), st.EndedAt.Format(time.RFC3339Nano),
		st.Name, st.Source, st.Layout, st.MousePosition, st.Events,
		st.KeyPresses, st.MouseClicks, st.WheelTurns, st.MouseMoves, st.MouseDistance, st.MovingMs,
		st.InMotionMs, st.SpanMs, st.ForceTime, st.Score, st.TransitionScore, st.LeftPresses,
		st.RightPresses, st.BothPresses, st.LookupMisses,
	)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	if len(keys) > 0 {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO session_key_stats (session_id, key, presses, cost_sum, missed) VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return 0, err
		}
		defer func() {
			_ = stmt.Close()
		}()
		for _, ks := range keys {
			if _, err := stmt.ExecContext(ctx, id, ks.Key, ks.Presses, ks.CostSum, ks.Missed); err != nil {
				return 0, fmt.Errorf("key %s: %w", ks.Key, err)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// GetCostliestKeys aggregates key stats over the window most recent sessions
// of a layout. An empty layout matches every session.
func (s *Store) GetCostliestKeys(ctx context.Context, window int, layout string) ([]model.KeyAggregate, error) {
	if window <= 0 {
		return nil, nil
	}
	return s.queryKeyAggregates(ctx, `WITH recent AS (
			SELECT id FROM sessions
			WHERE (? = '' OR layout = ?)
			ORDER BY ended_at DESC
			LIMIT ?
		)
		SELECT ks.key, SUM(ks.presses), SUM(ks.cost_sum), SUM(ks.missed)
		FROM session_key_stats ks
		JOIN recent r ON r.id = ks.session_id
		GROUP BY ks.key`, layout, layout, window)
}

// ListSessions returns session aggregates matching cfg, oldest first.
func (s *Store) ListSessions(ctx context.Context, cfg model.StatsConfig) ([]model.SessionAggregate, error) {
	where := []string{"1=1"}
	var args []any
	if cfg.Layout != "" {
		where = append(where, "layout = ?")
		args = append(args, cfg.Layout)
	}
	if cfg.Since != nil {
		where = append(where, "ended_at >= ?")
		args = append(args, cfg.Since.Format(time.RFC3339Nano))
	}
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`SELECT id, ended_at, name, events, key_presses, score,
			transition_score, span_ms, force_time, left_presses, right_presses, lookup_misses
		FROM sessions
		WHERE %s
		ORDER BY ended_at ASC`, strings.Join(where, " AND ")), args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	var sessions []model.SessionAggregate
	for rows.Next() {
		var agg model.SessionAggregate
		var endedAt string
		if err := rows.Scan(&agg.SessionID, &endedAt, &agg.Name, &agg.Events, &agg.KeyPresses, &agg.Score,
			&agg.TransitionScore, &agg.SpanMs, &agg.ForceTime, &agg.LeftPresses, &agg.RightPresses, &agg.LookupMisses); err != nil {
			return nil, err
		}
		if agg.EndedAt, err = time.Parse(time.RFC3339Nano, endedAt); err != nil {
			return nil, fmt.Errorf("session %d: %w", agg.SessionID, err)
		}
		sessions = append(sessions, agg)
	}
	return sessions, rows.Err()
}

// ListKeyAggregatesForSessions sums per-key stats across sessions.
func (s *Store) ListKeyAggregatesForSessions(ctx context.Context, sessionIDs []int64) ([]model.KeyAggregate, error) {
	if len(sessionIDs) == 0 {
		return nil, nil
	}
	marks, args := placeholders(sessionIDs)
	return s.queryKeyAggregates(ctx, fmt.Sprintf(`SELECT key, SUM(presses), SUM(cost_sum), SUM(missed)
		FROM session_key_stats
		WHERE session_id IN (%s)
		GROUP BY key`, marks), args...)
}

// ListKeyStatsForSessions returns the stats of the selected keys, by session.
func (s *Store) ListKeyStatsForSessions(ctx context.Context, sessionIDs []int64, keys []string) (map[int64]map[string]model.KeyAggregate, error) {
	result := map[int64]map[string]model.KeyAggregate{}
	if len(sessionIDs) == 0 || len(keys) == 0 {
		return result, nil
	}
	idMarks, args := placeholders(sessionIDs)
	keyMarks, keyArgs := placeholders(keys)
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`SELECT session_id, key, presses, cost_sum, missed
		FROM session_key_stats
		WHERE session_id IN (%s) AND key IN (%s)`, idMarks, keyMarks), append(args, keyArgs...)...)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	for rows.Next() {
		var id int64
		var agg model.KeyAggregate
		if err := rows.Scan(&id, &agg.Key, &agg.Presses, &agg.CostSum, &agg.Missed); err != nil {
			return nil, err
		}
		if result[id] == nil {
			result[id] = map[string]model.KeyAggregate{}
		}
		result[id][agg.Key] = agg
	}
	return result, rows.Err()
}

func (s *Store) queryKeyAggregates(ctx context.Context, query string, args ...any) ([]model.KeyAggregate, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()
	var result []model.KeyAggregate
	for rows.Next() {
		var agg model.KeyAggregate
		if err := rows.Scan(&agg.Key, &agg.Presses, &agg.CostSum, &agg.Missed); err != nil {
			return nil, err
		}
		result = append(result, agg)
	}
	return result, rows.Err()
}

// placeholders returns "?,?,..." for values along with them as query args.
func placeholders[T any](values []T) (string, []any) {
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	return strings.TrimSuffix(strings.Repeat("?,", len(values)), ","), args
}
