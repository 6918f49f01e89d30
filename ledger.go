package main

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ledgerKind selects one of the three independent progress logs.
type ledgerKind string

const (
	kindWeight  ledgerKind = "weight"
	kindWater   ledgerKind = "water"
	kindWorkout ledgerKind = "workout"
)

// validLedgerKinds guards the :kind route param — reject unknown kinds with
// 400 rather than querying a table that doesn't exist.
var validLedgerKinds = map[ledgerKind]bool{
	kindWeight:  true,
	kindWater:   true,
	kindWorkout: true,
}

// ledgerStore is the append-only progress log. The contract:
//
//   - Append writes exactly one entry and never overwrites or merges. A
//     successful append is durable with respect to concurrent appends from
//     other sessions — implementations must serialize or otherwise isolate
//     writes so no entry is ever lost to interleaving.
//   - History returns all of one user's entries for a kind in insertion
//     order. Insertion order is the only ordering guarantee; callers that
//     need chronological order sort on the At field themselves.
//   - There is no update and no delete. Corrections are new entries.
//
// An unknown user is not an error: History returns an empty slice.
type ledgerStore interface {
	Append(ctx context.Context, e ledgerEntry) (ledgerEntry, error)
	History(ctx context.Context, userID int, kind ledgerKind) ([]ledgerEntry, error)
}

/* ─── Postgres implementation ────────────────────────────────────────── */

// postgresLedger stores each kind in its own table. A single INSERT is atomic
// in Postgres, which satisfies the no-lost-appends contract without any
// application-level locking — concurrent sessions simply interleave whole
// rows.
type postgresLedger struct {
	pool *pgxpool.Pool
}

func newPostgresLedger(pool *pgxpool.Pool) *postgresLedger {
	return &postgresLedger{pool: pool}
}

func (l *postgresLedger) Append(ctx context.Context, e ledgerEntry) (ledgerEntry, error) {
	if e.At.IsZero() {
		e.At = time.Now()
	}

	var err error
	switch e.Kind {
	case kindWeight:
		err = l.pool.QueryRow(ctx,
			`INSERT INTO weight_log (user_id, at, weight_kg, bmi)
			 VALUES ($1, $2, $3, $4) RETURNING id`,
			e.UserID, e.At, e.WeightKG, e.BMI).Scan(&e.ID)
	case kindWater:
		err = l.pool.QueryRow(ctx,
			`INSERT INTO water_log (user_id, at, water_ml)
			 VALUES ($1, $2, $3) RETURNING id`,
			e.UserID, e.At, e.WaterML).Scan(&e.ID)
	case kindWorkout:
		err = l.pool.QueryRow(ctx,
			`INSERT INTO workout_log (user_id, at, exercise, duration_sec)
			 VALUES ($1, $2, $3, $4) RETURNING id`,
			e.UserID, e.At, e.Exercise, e.DurationSec).Scan(&e.ID)
	default:
		return ledgerEntry{}, fmt.Errorf("unknown ledger kind %q", e.Kind)
	}
	if err != nil {
		return ledgerEntry{}, fmt.Errorf("append %s entry: %w", e.Kind, err)
	}
	return e, nil
}

func (l *postgresLedger) History(ctx context.Context, userID int, kind ledgerKind) ([]ledgerEntry, error) {
	// The serial id column is the insertion order — timestamps may arrive
	// out of order when callers backfill.
	var sql string
	switch kind {
	case kindWeight:
		sql = "SELECT id, user_id, at, weight_kg, bmi FROM weight_log WHERE user_id = $1 ORDER BY id"
	case kindWater:
		sql = "SELECT id, user_id, at, water_ml FROM water_log WHERE user_id = $1 ORDER BY id"
	case kindWorkout:
		sql = "SELECT id, user_id, at, exercise, duration_sec FROM workout_log WHERE user_id = $1 ORDER BY id"
	default:
		return nil, fmt.Errorf("unknown ledger kind %q", kind)
	}

	rows, err := l.pool.Query(ctx, sql, userID)
	if err != nil {
		return nil, fmt.Errorf("query %s history: %w", kind, err)
	}
	defer rows.Close()

	entries := []ledgerEntry{}
	for rows.Next() {
		e := ledgerEntry{Kind: kind}
		switch kind {
		case kindWeight:
			err = rows.Scan(&e.ID, &e.UserID, &e.At, &e.WeightKG, &e.BMI)
		case kindWater:
			err = rows.Scan(&e.ID, &e.UserID, &e.At, &e.WaterML)
		case kindWorkout:
			err = rows.Scan(&e.ID, &e.UserID, &e.At, &e.Exercise, &e.DurationSec)
		}
		if err != nil {
			return nil, fmt.Errorf("scan %s entry: %w", kind, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

/* ─── In-memory implementation ───────────────────────────────────────── */

// memoryLedger keeps everything in one slice guarded by a mutex. Used by the
// tests and by the server when no DB_URL is configured. The mutex serializes
// appends, which is the whole concurrency contract for a single process.
type memoryLedger struct {
	mu      sync.Mutex
	entries []ledgerEntry
	nextID  int64
}

func newMemoryLedger() *memoryLedger {
	return &memoryLedger{nextID: 1}
}

func (l *memoryLedger) Append(ctx context.Context, e ledgerEntry) (ledgerEntry, error) {
	if !validLedgerKinds[e.Kind] {
		return ledgerEntry{}, fmt.Errorf("unknown ledger kind %q", e.Kind)
	}
	if e.At.IsZero() {
		e.At = time.Now()
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	e.ID = l.nextID
	l.nextID++
	l.entries = append(l.entries, e)
	return e, nil
}

func (l *memoryLedger) History(ctx context.Context, userID int, kind ledgerKind) ([]ledgerEntry, error) {
	if !validLedgerKinds[kind] {
		return nil, fmt.Errorf("unknown ledger kind %q", kind)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	out := []ledgerEntry{}
	for _, e := range l.entries {
		if e.UserID == userID && e.Kind == kind {
			out = append(out, e)
		}
	}
	return out, nil
}

/* ─── Shared helpers ─────────────────────────────────────────────────── */

// sumToday totals a numeric extraction over a user's entries whose timestamp
// falls on the given day (local time). Used for the water and workout
// achievement facts.
func sumToday(entries []ledgerEntry, day time.Time, value func(ledgerEntry) float64) float64 {
	y, m, d := day.Date()
	var total float64
	for _, e := range entries {
		ey, em, ed := e.At.Date()
		if ey == y && em == m && ed == d {
			total += value(e)
		}
	}
	return total
}
