package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/market-desk/internal/domain"
	"github.com/spec-kit/market-desk/internal/events"
	"github.com/spec-kit/market-desk/internal/repository"
	apperrors "github.com/spec-kit/market-desk/pkg/util"
)

// UserDataService reads and merges the per-user data blob.
type UserDataService struct {
	users      repository.UserRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewUserDataService creates the service.
func NewUserDataService(users repository.UserRepository, dispatcher events.Dispatcher, logger *zap.Logger) *UserDataService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserDataService{users: users, dispatcher: dispatcher, logger: logger}
}

// GetData returns the stored blob for userID.
func (s *UserDataService) GetData(ctx context.Context, userID string) (domain.UserData, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, mapUserLookupError(err)
	}
	return user.Data, nil
}

// UpdateData shallow-merges partial into the stored blob: every top-level key in
// partial replaces the stored value, other keys are kept. The merged blob is
// returned.
func (s *UserDataService) UpdateData(ctx context.Context, userID string, partial domain.UserData) (domain.UserData, error) {
	if err := ValidateDataPatch(partial); err != nil {
		return nil, err
	}

	merged, err := s.users.MergeData(ctx, userID, partial)
	if err != nil {
		return nil, mapUserLookupError(err)
	}

	keys := make([]string, 0, len(partial))
	for k := range partial {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	s.logger.Info("user data updated", zap.String("user_id", userID), zap.Strings("keys", keys))
	publish(ctx, s.dispatcher, s.logger, events.NewEvent(events.EventUserDataUpdated, userID, userID, events.UserDataUpdatedPayload{Keys: keys}))
	return merged, nil
}

// ValidateDataPatch rejects keys that cannot be stored safely in every backend
// and recognized keys whose values have the wrong shape.
func ValidateDataPatch(partial domain.UserData) error {
	if partial == nil {
		return apperrors.NewValidationError("Request body must be a JSON object", nil)
	}
	for key, value := range partial {
		if key == "" || strings.Contains(key, ".") || strings.HasPrefix(key, "$") {
			return apperrors.NewValidationError(fmt.Sprintf("Invalid data key %q", key), map[string]any{"key": key})
		}
		switch key {
		case domain.DataKeyWatchlist:
			if !isStringList(value) {
				return apperrors.NewValidationError("watchlist must be an array of strings", map[string]any{"key": key})
			}
		case domain.DataKeyEconEvents:
			if !isObjectList(value) {
				return apperrors.NewValidationError("econEvents must be an array of objects", map[string]any{"key": key})
			}
		}
	}
	return nil
}

func isStringList(v any) bool {
	switch list := v.(type) {
	case []string:
		return true
	case []any:
		for _, item := range list {
			if _, ok := item.(string); !ok {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func isObjectList(v any) bool {
	switch list := v.(type) {
	case []map[string]any:
		return true
	case []any:
		for _, item := range list {
			if _, ok := item.(map[string]any); !ok {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func mapUserLookupError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewNotFound("User", nil)
	}
	return apperrors.NewInternalError(err)
}
