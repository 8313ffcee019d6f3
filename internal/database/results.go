// internal/database/results.go
package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jason-s-yu/sketch/internal/cache"
)

// Schema creates the archive tables if they are missing.
const Schema = `
CREATE TABLE IF NOT EXISTS game_turns (
	id          BIGSERIAL PRIMARY KEY,
	game_id     TEXT        NOT NULL,
	room_code   TEXT        NOT NULL,
	round       INT         NOT NULL,
	word        TEXT        NOT NULL,
	difficulty  TEXT        NOT NULL,
	drawer_id   TEXT        NOT NULL,
	guessers    JSONB       NOT NULL,
	scores      JSONB       NOT NULL,
	ended_at    TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS game_turns_game_id_idx ON game_turns (game_id);

CREATE TABLE IF NOT EXISTS game_results (
	game_id     TEXT PRIMARY KEY,
	room_code   TEXT        NOT NULL,
	rounds      INT         NOT NULL,
	winners     JSONB       NOT NULL,
	scores      JSONB       NOT NULL,
	reason      TEXT        NOT NULL DEFAULT 'completed',
	finished_at TIMESTAMPTZ NOT NULL
);
`

const insertTurnQ = `
	INSERT INTO game_turns (
		game_id, room_code, round, word, difficulty, drawer_id, guessers, scores, ended_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`

const upsertResultQ = `
	INSERT INTO game_results (
		game_id, room_code, rounds, winners, scores, reason, finished_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (game_id)
	DO UPDATE SET winners = EXCLUDED.winners, scores = EXCLUDED.scores,
		reason = EXCLUDED.reason, finished_at = EXCLUDED.finished_at
`

// execer is the subset of pgx.Tx used to write a record.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// ResultStore archives finished turns and games in Postgres.
type ResultStore struct {
	pool *pgxpool.Pool
}

func NewResultStore(pool *pgxpool.Pool) *ResultStore {
	return &ResultStore{pool: pool}
}

// EnsureSchema applies Schema.
func (s *ResultStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// InsertResults writes a batch of records in a single transaction.
func (s *ResultStore) InsertResults(ctx context.Context, recs []cache.ResultRecord) error {
	if len(recs) == 0 {
		return nil
	}
	return beginTxFunc(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		for _, rec := range recs {
			if err := insertRecord(ctx, tx, rec); err != nil {
				return fmt.Errorf("insert %s record for game %s: %w", rec.Kind, rec.GameID, err)
			}
		}
		return nil
	})
}

func insertRecord(ctx context.Context, db execer, rec cache.ResultRecord) error {
	scores, err := json.Marshal(nonNilScores(rec.Scores))
	if err != nil {
		return err
	}
	at := time.UnixMilli(rec.Timestamp).UTC()

	switch rec.Kind {
	case cache.KindTurn:
		guessers, err := json.Marshal(nonNil(rec.Guessers))
		if err != nil {
			return err
		}
		_, err = db.Exec(ctx, insertTurnQ,
			rec.GameID, rec.RoomCode, rec.Round, rec.Word, rec.Difficulty, rec.DrawerID, guessers, scores, at,
		)
		return err

	case cache.KindGame:
		winners, err := json.Marshal(nonNil(rec.Winners))
		if err != nil {
			return err
		}
		reason := rec.Reason
		if reason == "" {
			reason = "completed"
		}
		_, err = db.Exec(ctx, upsertResultQ,
			rec.GameID, rec.RoomCode, rec.Round, winners, scores, reason, at,
		)
		return err
	}
	return fmt.Errorf("unknown record kind %q", rec.Kind)
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}

func nonNilScores(m map[string]int) map[string]int {
	if m == nil {
		return map[string]int{}
	}
	return m
}
