package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/market-desk/internal/domain"
	"github.com/spec-kit/market-desk/internal/persistence"
)

// userRecord is the on-disk shape; unlike domain.User it keeps the hash.
type userRecord struct {
	ID           string          `json:"id"`
	Email        string          `json:"email"`
	PasswordHash string          `json:"passwordHash"`
	Role         domain.Role     `json:"role"`
	Data         domain.UserData `json:"data"`
	CreatedAt    time.Time       `json:"createdAt"`
}

func (r userRecord) toDomain() *domain.User {
	role := r.Role
	if role == "" {
		role = domain.RoleUser
	}
	return &domain.User{
		ID:           r.ID,
		Email:        r.Email,
		EmailLower:   domain.NormalizeEmail(r.Email),
		PasswordHash: r.PasswordHash,
		Role:         role,
		Data:         dataOrEmpty(r.Data),
		CreatedAt:    r.CreatedAt,
	}
}

// FileUserRepository stores accounts in a single JSON file, rewritten atomically
// on every mutation. A corrupt file is an error, never silently reset.
type FileUserRepository struct {
	mu   sync.Mutex
	file *persistence.JSONFile
	now  func() time.Time
}

// NewFileUserRepository opens (or lazily creates) the users file at path.
func NewFileUserRepository(path string) (*FileUserRepository, error) {
	file, err := persistence.NewJSONFile(path)
	if err != nil {
		return nil, err
	}
	return &FileUserRepository{file: file, now: time.Now}, nil
}

func (r *FileUserRepository) load() ([]userRecord, error) {
	var records []userRecord
	if _, err := r.file.Load(&records); err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	return records, nil
}

func (r *FileUserRepository) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.load()
	if err != nil {
		return err
	}
	key := domain.NormalizeEmail(user.Email)
	for _, rec := range records {
		if domain.NormalizeEmail(rec.Email) == key {
			return ErrDuplicateEmail
		}
	}

	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = r.now().UTC()
	}
	user.EmailLower = key
	user.Data = dataOrEmpty(user.Data)

	records = append(records, userRecord{
		ID:           user.ID,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		Role:         user.Role,
		Data:         user.Data,
		CreatedAt:    user.CreatedAt,
	})
	return r.file.Save(records)
}

func (r *FileUserRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.load()
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		if rec.ID == id {
			return rec.toDomain(), nil
		}
	}
	return nil, ErrNotFound
}

func (r *FileUserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.load()
	if err != nil {
		return nil, err
	}
	key := domain.NormalizeEmail(email)
	for _, rec := range records {
		if domain.NormalizeEmail(rec.Email) == key {
			return rec.toDomain(), nil
		}
	}
	return nil, ErrNotFound
}

func (r *FileUserRepository) MergeData(_ context.Context, id string, partial domain.UserData) (domain.UserData, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.load()
	if err != nil {
		return nil, err
	}
	for i := range records {
		if records[i].ID != id {
			continue
		}
		records[i].Data = dataOrEmpty(records[i].Data).Merge(partial)
		if err := r.file.Save(records); err != nil {
			return nil, err
		}
		return records[i].Data, nil
	}
	return nil, ErrNotFound
}

func (r *FileUserRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.load()
	if err != nil {
		return err
	}
	for i := range records {
		if records[i].ID == id {
			records = append(records[:i], records[i+1:]...)
			return r.file.Save(records)
		}
	}
	return ErrNotFound
}

func (r *FileUserRepository) List(_ context.Context) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.load()
	if err != nil {
		return nil, err
	}
	users := make([]domain.User, 0, len(records))
	for _, rec := range records {
		users = append(users, *rec.toDomain())
	}
	sortUsers(users)
	return users, nil
}
