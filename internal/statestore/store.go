// Package statestore persists the between-runs check state in sqlite.
// A transaction per save replaces the write-to-temp-then-rename dance a
// flat file would need: a run killed mid-save leaves the previous state
// intact.
package statestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	"ticketwatch-backend/internal/checker"
	"ticketwatch-backend/lib/sqliteutil"

	_ "embed"
)

//go:embed schema.sql
var Schema string

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) Store {
	return Store{db: db}
}

// Open opens (and creates, if needed) the state database at path.
func Open(path string) (Store, error) {
	db, err := sqliteutil.OpenDB(Schema, path)
	if err != nil {
		return Store{}, &checker.PersistenceError{Op: "open", Err: err}
	}
	return Store{db: db}, nil
}

func (s Store) Close() error {
	return s.db.Close()
}

// Load returns the prior state, or the default state when none was ever
// written. An unreadable or corrupt record also downgrades to the
// default: a bad baseline costs at most one premature mail, while
// failing the run here would stall checking entirely.
func (s Store) Load(ctx context.Context) (checker.State, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT last_status, last_checked_at, last_notified_at, open_dates
		FROM check_state WHERE id = 1`)

	var status string
	var checkedAt int64
	var notifiedAt sql.NullInt64
	var openDatesRaw string
	err := row.Scan(&status, &checkedAt, &notifiedAt, &openDatesRaw)
	if err == sql.ErrNoRows {
		return checker.DefaultState(), nil
	}
	if err != nil {
		slog.WarnContext(ctx, "unreadable check state, treating as absent", "err", err)
		return checker.DefaultState(), nil
	}

	state := checker.State{
		LastStatus:    checker.Status(status),
		LastCheckedAt: time.Unix(checkedAt, 0),
	}
	if notifiedAt.Valid {
		state.LastNotifiedAt = time.Unix(notifiedAt.Int64, 0)
	}
	err = json.Unmarshal([]byte(openDatesRaw), &state.OpenDates)
	if err != nil {
		slog.WarnContext(ctx, "corrupt open_dates column, dropping", "err", err)
		state.OpenDates = nil
	}

	return state, nil
}

// Save overwrites the state row and appends a history entry, atomically.
func (s Store) Save(ctx context.Context, decision checker.Decision, result checker.Result) error {
	state := decision.NewState
	openDates, err := json.Marshal(keysOrEmpty(state.OpenDates))
	if err != nil {
		return &checker.PersistenceError{Op: "save", Err: err}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &checker.PersistenceError{Op: "save", Err: err}
	}
	defer tx.Rollback()

	var notifiedAt any
	if !state.LastNotifiedAt.IsZero() {
		notifiedAt = state.LastNotifiedAt.Unix()
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO check_state (id, last_status, last_checked_at, last_notified_at, open_dates)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			last_status = excluded.last_status,
			last_checked_at = excluded.last_checked_at,
			last_notified_at = excluded.last_notified_at,
			open_dates = excluded.open_dates`,
		string(state.LastStatus), state.LastCheckedAt.Unix(), notifiedAt, string(openDates))
	if err != nil {
		return &checker.PersistenceError{Op: "save", Err: err}
	}

	notified := 0
	if decision.ShouldNotify {
		notified = 1
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO check_history (status, checked_at, notified, sample)
		VALUES (?, ?, ?, ?)`,
		string(result.Status), result.FetchedAt.Unix(), notified, result.TextSample)
	if err != nil {
		return &checker.PersistenceError{Op: "save", Err: err}
	}

	err = tx.Commit()
	if err != nil {
		return &checker.PersistenceError{Op: "save", Err: err}
	}
	return nil
}

type HistoryEntry struct {
	Status    checker.Status
	CheckedAt time.Time
	Notified  bool
	Sample    string
}

// History returns the most recent checks, newest first.
func (s Store) History(ctx context.Context, limit int) ([]HistoryEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT status, checked_at, notified, sample
		FROM check_history ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, &checker.PersistenceError{Op: "history", Err: err}
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var status, sample string
		var checkedAt int64
		var notified int
		err = rows.Scan(&status, &checkedAt, &notified, &sample)
		if err != nil {
			return nil, &checker.PersistenceError{Op: "history", Err: err}
		}
		entries = append(entries, HistoryEntry{
			Status:    checker.Status(status),
			CheckedAt: time.Unix(checkedAt, 0),
			Notified:  notified == 1,
			Sample:    sample,
		})
	}
	return entries, rows.Err()
}

func keysOrEmpty(keys []string) []string {
	if keys == nil {
		return []string{}
	}
	return keys
}
