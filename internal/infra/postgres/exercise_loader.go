package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"n5-drill-service/internal/domain"
)

// ExerciseLoader reads exercises from Postgres.
type ExerciseLoader struct {
	pool *pgxpool.Pool
}

func NewExerciseLoader(pool *pgxpool.Pool) *ExerciseLoader {
	return &ExerciseLoader{pool: pool}
}

// FetchExercises returns up to filter.Limit exercises of the level and types,
// newest id first. Callers shuffle the batch themselves.
func (l *ExerciseLoader) FetchExercises(ctx context.Context, filter domain.ExerciseFilter) ([]domain.Exercise, error) {
	query := `SELECT id, type, prompt, content, options, correct_answer, level, COALESCE(explanation, '')
		FROM exercises WHERE level = $1`
	args := []interface{}{filter.Level}
	if len(filter.Types) > 0 {
		types := make([]string, len(filter.Types))
		for i, t := range filter.Types {
			types[i] = string(t)
		}
		args = append(args, types)
		query += ` AND type = ANY($2)`
	}
	args = append(args, filter.Limit)
	query += fmt.Sprintf(` ORDER BY id DESC LIMIT $%d`, len(args))

	rows, err := l.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query exercises: %w", err)
	}
	defer rows.Close()

	var out []domain.Exercise
	for rows.Next() {
		var (
			ex      domain.Exercise
			typ     string
			content []byte
		)
		if err := rows.Scan(&ex.ID, &typ, &ex.Prompt, &content, &ex.Options, &ex.CorrectAnswer, &ex.Level, &ex.Explanation); err != nil {
			return nil, fmt.Errorf("scan exercise: %w", err)
		}
		ex.Type = domain.ExerciseType(typ)
		if len(content) > 0 {
			if err := json.Unmarshal(content, &ex.Content); err != nil {
				return nil, fmt.Errorf("unmarshal content of %s: %w", ex.ID, err)
			}
		}
		out = append(out, ex)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate exercises: %w", err)
	}
	return out, nil
}

// InsertExercise upserts one exercise; used for seeding.
func (l *ExerciseLoader) InsertExercise(ctx context.Context, ex domain.Exercise) error {
	content, err := json.Marshal(ex.Content)
	if err != nil {
		return fmt.Errorf("marshal content: %w", err)
	}
	var explanation *string
	if ex.Explanation != "" {
		explanation = &ex.Explanation
	}
	_, err = l.pool.Exec(ctx, `
		INSERT INTO exercises (id, type, prompt, content, options, correct_answer, level, explanation)
		VALUES ($1, $2, $3, $4::jsonb, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			type = EXCLUDED.type,
			prompt = EXCLUDED.prompt,
			content = EXCLUDED.content,
			options = EXCLUDED.options,
			correct_answer = EXCLUDED.correct_answer,
			level = EXCLUDED.level,
			explanation = EXCLUDED.explanation`,
		ex.ID, string(ex.Type), ex.Prompt, string(content), ex.Options, ex.CorrectAnswer, ex.Level, explanation)
	if err != nil {
		return fmt.Errorf("insert exercise %s: %w", ex.ID, err)
	}
	return nil
}
