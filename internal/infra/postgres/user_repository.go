package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"n5-drill-service/internal/domain"
)

const userColumns = `id, email, name, avatar_url, exp, streak, created_at`

// UserRepository provides access to user records. Rows are created by the
// identity provider; this service only reads them and updates stats/profile.
type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) GetUser(ctx context.Context, userID string) (domain.User, error) {
	user, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, domain.ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

func (r *UserRepository) GetUsers(ctx context.Context, userIDs []string) (map[string]domain.User, error) {
	out := make(map[string]domain.User, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users WHERE id = ANY($1)`, userIDs)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out[user.ID] = user
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return out, nil
}

// UpdateUser writes only the fields set in update.
func (r *UserRepository) UpdateUser(ctx context.Context, userID string, update domain.UserUpdate) error {
	if update.Empty() {
		return nil
	}

	var (
		sets []string
		args []interface{}
	)
	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if update.Experience != nil {
		add("exp", *update.Experience)
	}
	if update.Streak != nil {
		add("streak", *update.Streak)
	}
	if update.Name != nil {
		add("name", *update.Name)
	}
	if update.AvatarURL != nil {
		add("avatar_url", *update.AvatarURL)
	}
	args = append(args, userID)

	query := fmt.Sprintf(`UPDATE users SET %s WHERE id = $%d`, strings.Join(sets, ", "), len(args))
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// UpsertUser creates or refreshes the identity fields of a user; used for seeding.
func (r *UserRepository) UpsertUser(ctx context.Context, user domain.User) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO users (id, email, name, avatar_url)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			email = EXCLUDED.email,
			name = EXCLUDED.name,
			avatar_url = EXCLUDED.avatar_url`,
		user.ID, user.Email, user.Name, user.AvatarURL)
	if err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}

func scanUser(row pgx.Row) (domain.User, error) {
	var user domain.User
	err := row.Scan(&user.ID, &user.Email, &user.Name, &user.AvatarURL, &user.Experience, &user.Streak, &user.CreatedAt)
	return user, err
}
