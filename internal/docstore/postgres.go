package docstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	model "github.com/ShopQuestApp/ShopQuest-backend/internal/models"
)

// Postgres implémente Store sur une table documents(collection, id, data).
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// Migrate crée la table documents si nécessaire.
func (s *Postgres) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS documents (
			collection TEXT NOT NULL,
			id TEXT NOT NULL,
			data JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (collection, id)
		)
	`)
	if err != nil {
		return fmt.Errorf("could not create documents table: %w", err)
	}
	return nil
}

func (s *Postgres) Create(ctx context.Context, collection, id string, doc interface{}) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("could not encode document: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO documents (collection, id, data)
		VALUES ($1, $2, $3)
	`, collection, id, data)
	if err != nil {
		return fmt.Errorf("could not insert document %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *Postgres) Get(ctx context.Context, collection, id string, dest interface{}) error {
	var data []byte
	err := s.pool.QueryRow(ctx, `
		SELECT data FROM documents
		WHERE collection = $1 AND id = $2
	`, collection, id).Scan(&data)
	if err != nil {
		return ErrNotFound
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("could not decode document %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *Postgres) Update(ctx context.Context, collection, id string, doc interface{}) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("could not encode document: %w", err)
	}

	tag, err := s.pool.Exec(ctx, `
		UPDATE documents
		SET data = $3, updated_at = now()
		WHERE collection = $1 AND id = $2
	`, collection, id, data)
	if err != nil {
		return fmt.Errorf("could not update document %s/%s: %w", collection, id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Postgres) IncrementField(ctx context.Context, collection, id, field string, delta int64) error {
	// jsonb_set fait l'incrément en une seule instruction côté store,
	// les incréments concurrents ne se perdent donc pas.
	tag, err := s.pool.Exec(ctx, `
		UPDATE documents
		SET data = jsonb_set(
			data,
			ARRAY[$3],
			to_jsonb(COALESCE((data->>$3)::bigint, 0) + $4)
		),
		updated_at = now()
		WHERE collection = $1 AND id = $2
	`, collection, id, field, delta)
	if err != nil {
		return fmt.Errorf("could not increment %s on %s/%s: %w", field, collection, id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Postgres) InsertErrorLog(ctx context.Context, entry model.LogEntry) error {
	return s.Create(ctx, model.CollectionErrorLogs, uuid.NewString(), entry)
}

func (s *Postgres) LeaderboardSource(ctx context.Context) ([]model.ScoreEntry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, COALESCE((data->>'totalXP')::bigint, 0)
		FROM documents
		WHERE collection = $1
	`, model.CollectionUsers)
	if err != nil {
		return nil, fmt.Errorf("could not query leaderboard source: %w", err)
	}
	defer rows.Close()

	var entries []model.ScoreEntry
	for rows.Next() {
		var entry model.ScoreEntry
		var xp int64
		if err := rows.Scan(&entry.UserID, &xp); err != nil {
			return nil, fmt.Errorf("could not scan leaderboard source row: %w", err)
		}
		entry.Score = float64(xp)
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
