// Package sqlite keeps the game record in a single-row SQLite table and
// serializes writers with a compare-and-swap on the version column.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"bossfight/internal/state"
	"bossfight/internal/store"
	"bossfight/internal/store/sqlite/migrations"
)

const (
	backend        = "sqlite"
	maxCASAttempts = 8
)

type Store struct {
	sqlDB      *sql.DB
	defaults   state.Defaults
	OnFallback store.FallbackFunc
}

var _ store.Store = (*Store)(nil)

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens the database at path and applies embedded migrations.
func Open(ctx context.Context, path string, defaults state.Defaults) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	if defaults == nil {
		return nil, fmt.Errorf("defaults are required")
	}
	dsn := "file:" + filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(ctx, sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB, defaults: defaults}, nil
}

func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) Load(ctx context.Context) (state.GameState, error) {
	if err := ctx.Err(); err != nil {
		return state.GameState{}, err
	}
	st, _, err := s.read(ctx, s.sqlDB)
	if err != nil {
		s.fallback(ctx, err)
		// An out-of-range row keeps its version so pollers never see it drop.
		version := st.Version
		st = s.defaults()
		st.Version = version
		return st, nil
	}
	return st, nil
}

func (s *Store) Save(ctx context.Context, st state.GameState) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO game_state (id, level, current_hp, max_hp, last_updated, version)
		 VALUES (1, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   level = excluded.level,
		   current_hp = excluded.current_hp,
		   max_hp = excluded.max_hp,
		   last_updated = excluded.last_updated,
		   version = excluded.version`,
		st.Level, st.CurrentHP, st.MaxHP, toMillis(st.LastUpdated), st.Version,
	)
	return store.Wrap(backend, "save", err)
}

func (s *Store) Reset(ctx context.Context) (state.GameState, error) {
	if err := ctx.Err(); err != nil {
		return state.GameState{}, err
	}
	next := s.defaults()

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return next, store.Wrap(backend, "reset", err)
	}
	defer func() { _ = tx.Rollback() }()

	previous, _, err := s.read(ctx, tx)
	if err != nil {
		s.fallback(ctx, err)
	}
	next.Version = previous.Version + 1

	if _, err := tx.ExecContext(ctx, `DELETE FROM game_state WHERE id = 1`); err != nil {
		return next, store.Wrap(backend, "reset", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO game_state (id, level, current_hp, max_hp, last_updated, version) VALUES (1, ?, ?, ?, ?, ?)`,
		next.Level, next.CurrentHP, next.MaxHP, toMillis(next.LastUpdated), next.Version,
	); err != nil {
		return next, store.Wrap(backend, "reset", err)
	}
	return next, store.Wrap(backend, "reset", tx.Commit())
}

// Update retries the read-modify-write while another writer keeps winning
// the version race, and gives up with store.ErrConflict. A record that
// cannot be read fails with store.ErrUnavailable.
func (s *Store) Update(ctx context.Context, fn store.Mutation) (state.GameState, error) {
	var next state.GameState
	for attempt := 0; attempt < maxCASAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return state.GameState{}, err
		}
		current, exists, err := s.read(ctx, s.sqlDB)
		if errors.Is(err, errInvalidRecord) {
			// Overwrite the unusable row, still guarded by its version.
			s.fallback(ctx, err)
			version := current.Version
			current = s.defaults()
			current.Version = version
		} else if err != nil {
			return state.GameState{}, store.Fail(backend, "update", fmt.Errorf("%w: %w", store.ErrUnavailable, err))
		}

		next, err = fn(current)
		if err != nil {
			return current, err
		}
		next.Version = current.Version + 1

		var res sql.Result
		if exists {
			res, err = s.sqlDB.ExecContext(ctx,
				`UPDATE game_state
				 SET level = ?, current_hp = ?, max_hp = ?, last_updated = ?, version = ?
				 WHERE id = 1 AND version = ?`,
				next.Level, next.CurrentHP, next.MaxHP, toMillis(next.LastUpdated), next.Version, current.Version,
			)
		} else {
			res, err = s.sqlDB.ExecContext(ctx,
				`INSERT INTO game_state (id, level, current_hp, max_hp, last_updated, version)
				 VALUES (1, ?, ?, ?, ?, ?)
				 ON CONFLICT(id) DO NOTHING`,
				next.Level, next.CurrentHP, next.MaxHP, toMillis(next.LastUpdated), next.Version,
			)
		}
		if err != nil {
			return next, store.Wrap(backend, "update", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return next, store.Wrap(backend, "update", err)
		}
		if affected == 1 {
			return next, nil
		}
	}
	return state.GameState{}, store.Fail(backend, "update", store.ErrConflict)
}

var errInvalidRecord = errors.New("game_state record out of range")

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// read returns the stored record and whether a row exists. A missing row is
// not an error and yields the default record.
func (s *Store) read(ctx context.Context, q queryer) (state.GameState, bool, error) {
	var (
		st      state.GameState
		updated int64
	)
	err := q.QueryRowContext(ctx,
		`SELECT level, current_hp, max_hp, last_updated, version FROM game_state WHERE id = 1`,
	).Scan(&st.Level, &st.CurrentHP, &st.MaxHP, &updated, &st.Version)
	if errors.Is(err, sql.ErrNoRows) {
		return s.defaults(), false, nil
	}
	if err != nil {
		return state.GameState{}, false, fmt.Errorf("read game_state: %w", err)
	}
	st.LastUpdated = fromMillis(updated)
	if !st.Valid() {
		return state.GameState{Version: st.Version}, true, fmt.Errorf("%w: %+v", errInvalidRecord, st)
	}
	return st, true, nil
}

func (s *Store) fallback(ctx context.Context, err error) {
	if s.OnFallback != nil {
		s.OnFallback(ctx, err)
	}
}
