package repository

import (
	"context"

	"github.com/spec-kit/market-desk/internal/domain"
)

type contactRepository struct {
	db DBTX
}

// NewContactRepository returns a Postgres-backed implementation.
func NewContactRepository(db DBTX) ContactRepository {
	return &contactRepository{db: db}
}

func (r *contactRepository) Append(ctx context.Context, msg *domain.ContactMessage) error {
	const query = `
        INSERT INTO contact_messages (id, name, email, message, ip, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.Exec(ctx, query,
		msg.ID,
		msg.Name,
		msg.Email,
		msg.Message,
		msg.IP,
		msg.Timestamp,
	)
	return err
}

func (r *contactRepository) List(ctx context.Context) ([]domain.ContactMessage, error) {
	const query = `
        SELECT id, name, email, message, ip, created_at
        FROM contact_messages ORDER BY created_at, id`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	msgs := []domain.ContactMessage{}
	for rows.Next() {
		var msg domain.ContactMessage
		if err := rows.Scan(
			&msg.ID,
			&msg.Name,
			&msg.Email,
			&msg.Message,
			&msg.IP,
			&msg.Timestamp,
		); err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}
	return msgs, rows.Err()
}

func (r *contactRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM contact_messages WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
