package store

import (
	"context"
	"embed"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schema embed.FS

type DB struct{ *pgxpool.Pool }

func Open(dsn string) (*DB, error) {
	p, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		return nil, err
	}
	return &DB{p}, nil
}

func (db *DB) Close(ctx context.Context)      { db.Pool.Close() }
func (db *DB) Ping(ctx context.Context) error { return db.Pool.Ping(ctx) }

func Migrate(ctx context.Context, db *DB) error {
	sqlBytes, err := schema.ReadFile("schema.sql")
	if err != nil {
		return err
	}
	_, err = db.Exec(ctx, string(sqlBytes))
	return err
}

// Decision is one audit row: what the arbiter answered for one /move call.
type Decision struct {
	ID        int64     `json:"id"`
	SessionID *string   `json:"session_id"`
	Provider  string    `json:"provider"`
	Model     string    `json:"model"`
	Action    string    `json:"action"`
	CardID    *string   `json:"card_id"`
	Color     *string   `json:"color"`
	Reasoning string    `json:"reasoning"`
	IsValid   bool      `json:"is_valid"`
	Message   string    `json:"message"`
	Attempts  int       `json:"attempts"`
	Fallback  bool      `json:"fallback"`
	LatencyMS int       `json:"latency_ms"`
	CreatedAt time.Time `json:"created_at"`
}

func (db *DB) InsertDecision(ctx context.Context, d Decision) error {
	_, err := db.Exec(ctx, `
        INSERT INTO decisions(session_id, provider, model, action, card_id, color,
                              reasoning, is_valid, message, attempts, fallback, latency_ms)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
    `, d.SessionID, d.Provider, d.Model, d.Action, d.CardID, d.Color,
		d.Reasoning, d.IsValid, d.Message, d.Attempts, d.Fallback, d.LatencyMS)
	return err
}

func (db *DB) RecentDecisions(ctx context.Context, limit int) ([]Decision, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	rows, err := db.Query(ctx, `
        SELECT id, session_id, provider, model, action, card_id, color,
               reasoning, is_valid, message, attempts, fallback, latency_ms, created_at
          FROM decisions
         ORDER BY id DESC
         LIMIT $1
    `, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Decision{}
	for rows.Next() {
		var d Decision
		if err := rows.Scan(&d.ID, &d.SessionID, &d.Provider, &d.Model, &d.Action, &d.CardID, &d.Color,
			&d.Reasoning, &d.IsValid, &d.Message, &d.Attempts, &d.Fallback, &d.LatencyMS, &d.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
