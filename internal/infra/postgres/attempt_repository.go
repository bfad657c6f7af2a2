package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4/pgxpool"

	"n5-drill-service/internal/domain"
)

// AttemptRepository appends answered exercises; created_at is set by the database.
type AttemptRepository struct {
	pool *pgxpool.Pool
}

func NewAttemptRepository(pool *pgxpool.Pool) *AttemptRepository {
	return &AttemptRepository{pool: pool}
}

func (r *AttemptRepository) SaveAttempt(ctx context.Context, attempt domain.Attempt) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO attempts (id, user_id, exercise_id, correct, elapsed_seconds, points, type)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		uuid.NewString(), attempt.UserID, attempt.ExerciseID, attempt.Correct,
		attempt.ElapsedSeconds, attempt.Points, string(attempt.Type))
	if err != nil {
		return fmt.Errorf("save attempt: %w", err)
	}
	return nil
}

func (r *AttemptRepository) AttemptsSince(ctx context.Context, since time.Time) ([]domain.AttemptRow, error) {
	rows, err := r.pool.Query(ctx, `SELECT user_id, points, correct FROM attempts WHERE created_at >= $1`, since)
	if err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	defer rows.Close()

	var out []domain.AttemptRow
	for rows.Next() {
		var row domain.AttemptRow
		if err := rows.Scan(&row.UserID, &row.Points, &row.Correct); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attempts: %w", err)
	}
	return out, nil
}
