package scoring

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hackgenix/fraudscore/internal/pagination"
)

// PostgresStore persists batch audit records in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a PostgreSQL-backed batch audit store.
// The score_batches table is created by the migrations in migrations/.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) RecordBatch(ctx context.Context, batch *Batch) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO score_batches
			(id, source, row_count, flagged_count, high_count, medium_count, low_count, duration_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		batch.ID,
		batch.Source,
		batch.RowCount,
		batch.FlaggedCount,
		batch.HighCount,
		batch.MediumCount,
		batch.LowCount,
		batch.DurationMS,
		batch.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record score batch: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListBatches(ctx context.Context, limit int, before *pagination.Cursor) ([]*Batch, error) {
	query := `
		SELECT id, source, row_count, flagged_count, high_count, medium_count, low_count, duration_ms, created_at
		FROM score_batches`
	args := []interface{}{limit}
	if before != nil {
		query += `
		WHERE (created_at, id) < ($2, $3)`
		args = append(args, before.CreatedAt, before.ID)
	}
	query += `
		ORDER BY created_at DESC, id DESC
		LIMIT $1`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list score batches: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var result []*Batch
	for rows.Next() {
		var b Batch
		if err := rows.Scan(
			&b.ID, &b.Source, &b.RowCount, &b.FlaggedCount,
			&b.HighCount, &b.MediumCount, &b.LowCount, &b.DurationMS, &b.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan score batch: %w", err)
		}
		result = append(result, &b)
	}
	return result, rows.Err()
}
