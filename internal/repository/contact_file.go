package repository

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/market-desk/internal/domain"
	"github.com/spec-kit/market-desk/internal/persistence"
)

// FileContactRepository stores contact submissions in a JSON array file.
// A missing or corrupt file reads as an empty list; a corrupt file is moved
// aside before the next write replaces it. Writers in other processes are not
// coordinated with.
type FileContactRepository struct {
	mu     sync.Mutex
	file   *persistence.JSONFile
	logger *zap.Logger
}

// NewFileContactRepository opens the contacts file at path.
func NewFileContactRepository(path string, logger *zap.Logger) (*FileContactRepository, error) {
	file, err := persistence.NewJSONFile(path)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileContactRepository{file: file, logger: logger}, nil
}

func (r *FileContactRepository) load() ([]domain.ContactMessage, error) {
	var msgs []domain.ContactMessage
	_, err := r.file.Load(&msgs)
	if err == nil {
		return msgs, nil
	}
	if !errors.Is(err, persistence.ErrCorrupt) {
		return nil, err
	}

	moved, qErr := r.file.Quarantine()
	r.logger.Warn("recovered from corrupt contacts file",
		zap.String("path", r.file.Path()),
		zap.String("quarantined_to", moved),
		zap.NamedError("quarantine_error", qErr),
		zap.Error(err),
	)
	return nil, nil
}

func (r *FileContactRepository) Append(_ context.Context, msg *domain.ContactMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	msgs, err := r.load()
	if err != nil {
		return err
	}
	msgs = append(msgs, *msg)
	return r.file.Save(msgs)
}

func (r *FileContactRepository) List(_ context.Context) ([]domain.ContactMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	msgs, err := r.load()
	if err != nil {
		return nil, err
	}
	if msgs == nil {
		msgs = []domain.ContactMessage{}
	}
	return msgs, nil
}

func (r *FileContactRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	msgs, err := r.load()
	if err != nil {
		return err
	}
	for i := range msgs {
		if msgs[i].ID == id {
			msgs = append(msgs[:i], msgs[i+1:]...)
			return r.file.Save(msgs)
		}
	}
	return ErrNotFound
}
