package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/market-desk/internal/domain"
)

type userRepository struct {
	db DBTX
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(db DBTX) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id::text, email, password_hash, role, data, created_at`

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (email, password_hash, role, data)
        VALUES ($1, $2, $3, $4::jsonb)
        RETURNING id::text, created_at`

	data, err := json.Marshal(dataOrEmpty(user.Data))
	if err != nil {
		return fmt.Errorf("encode user data: %w", err)
	}

	if err := r.db.QueryRow(ctx, query,
		user.Email,
		user.PasswordHash,
		string(user.Role),
		data,
	).Scan(&user.ID, &user.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return err
	}
	user.EmailLower = domain.NormalizeEmail(user.Email)
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRow(ctx, query, id))
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE lower(email) = $1`
	return scanUser(r.db.QueryRow(ctx, query, domain.NormalizeEmail(email)))
}

func (r *userRepository) MergeData(ctx context.Context, id string, partial domain.UserData) (domain.UserData, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	const query = `
        UPDATE users SET data = data || $2::jsonb
        WHERE id = $1
        RETURNING data`

	patch, err := json.Marshal(dataOrEmpty(partial))
	if err != nil {
		return nil, fmt.Errorf("encode user data: %w", err)
	}

	var raw []byte
	if err := r.db.QueryRow(ctx, query, id, patch).Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return decodeData(raw)
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *userRepository) List(ctx context.Context) ([]domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var (
		user domain.User
		role string
		raw  []byte
	)
	if err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&role,
		&raw,
		&user.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	data, err := decodeData(raw)
	if err != nil {
		return nil, err
	}
	user.Role = domain.Role(role)
	user.Data = data
	user.EmailLower = domain.NormalizeEmail(user.Email)
	return &user, nil
}

func decodeData(raw []byte) (domain.UserData, error) {
	data := domain.UserData{}
	if len(raw) == 0 {
		return data, nil
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("decode user data: %w", err)
	}
	return data, nil
}

func dataOrEmpty(d domain.UserData) domain.UserData {
	if d == nil {
		return domain.UserData{}
	}
	return d
}

// cloneUser returns a copy whose data map can be handed to callers without
// exposing the stored instance.
func cloneUser(u *domain.User) *domain.User {
	out := *u
	out.Data = u.Data.Merge(nil)
	return &out
}
