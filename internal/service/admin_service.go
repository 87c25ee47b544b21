package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/spec-kit/market-desk/internal/domain"
	"github.com/spec-kit/market-desk/internal/events"
	"github.com/spec-kit/market-desk/internal/repository"
	apperrors "github.com/spec-kit/market-desk/pkg/util"
)

const joinedLayout = "Jan 2, 2006"

// AdminService exposes the operator views over contacts and accounts. Callers
// gate access; the service itself does not check roles.
type AdminService struct {
	users      repository.UserRepository
	contacts   repository.ContactRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// AdminDependencies bundles repositories for the admin service.
type AdminDependencies struct {
	UserRepo    repository.UserRepository
	ContactRepo repository.ContactRepository
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// NewAdminService creates the service.
func NewAdminService(deps AdminDependencies) *AdminService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminService{
		users:      deps.UserRepo,
		contacts:   deps.ContactRepo,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// ListContacts returns every stored submission, oldest first.
func (s *AdminService) ListContacts(ctx context.Context) ([]domain.ContactMessage, error) {
	msgs, err := s.contacts.List(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if msgs == nil {
		msgs = []domain.ContactMessage{}
	}
	return msgs, nil
}

// DeleteContact removes a submission. Deleting an absent id succeeds.
func (s *AdminService) DeleteContact(ctx context.Context, actorID, id string) error {
	err := s.contacts.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	s.logger.Info("contact deleted", zap.String("contact_id", id), zap.String("actor", actorID))
	publish(ctx, s.dispatcher, s.logger, events.NewEvent(events.EventContactDeleted, id, actorID, nil))
	return nil
}

// ListUsers returns a summary of every account without credentials.
func (s *AdminService) ListUsers(ctx context.Context) ([]domain.UserSummary, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	summaries := make([]domain.UserSummary, 0, len(users))
	for _, u := range users {
		summaries = append(summaries, Summarize(u))
	}
	return summaries, nil
}

// DeleteUser permanently removes an account. Outstanding tokens stop verifying
// because verification loads the user. Deleting an absent id succeeds.
func (s *AdminService) DeleteUser(ctx context.Context, actorID, id string) error {
	err := s.users.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	s.logger.Info("user deleted", zap.String("user_id", id), zap.String("actor", actorID))
	publish(ctx, s.dispatcher, s.logger, events.NewEvent(events.EventUserDeleted, id, actorID, nil))
	return nil
}

// Summarize builds the admin view of a user.
func Summarize(u domain.User) domain.UserSummary {
	role := u.Role
	if role == "" {
		role = domain.RoleUser
	}
	return domain.UserSummary{
		ID:        u.ID,
		Email:     u.Email,
		Role:      role,
		Joined:    u.CreatedAt.Format(joinedLayout),
		CreatedAt: u.CreatedAt,
		DataCount: u.Data.EntryCount(),
	}
}
