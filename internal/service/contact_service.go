package service

import (
	"context"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/market-desk/internal/domain"
	"github.com/spec-kit/market-desk/internal/events"
	"github.com/spec-kit/market-desk/internal/repository"
	apperrors "github.com/spec-kit/market-desk/pkg/util"
)

const (
	minMessageLength = 10
	previewLength    = 80
)

// ContactInput is an unsanitized contact-form submission.
type ContactInput struct {
	Name    string
	Email   string
	Message string
	IP      string
}

// ContactService validates and stores contact-form submissions.
type ContactService struct {
	contacts   repository.ContactRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// NewContactService creates the service.
func NewContactService(contacts repository.ContactRepository, dispatcher events.Dispatcher, logger *zap.Logger) *ContactService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContactService{contacts: contacts, dispatcher: dispatcher, logger: logger, now: time.Now}
}

// Submit sanitizes the input, validates it and appends the message.
func (s *ContactService) Submit(ctx context.Context, input ContactInput) (*domain.ContactMessage, error) {
	name := Sanitize(input.Name)
	email := Sanitize(input.Email)
	message := Sanitize(input.Message)

	if name == "" || email == "" || message == "" {
		return nil, apperrors.NewValidationError("All fields are required and cannot be empty", nil)
	}
	if !IsValidEmail(email) {
		return nil, apperrors.NewValidationError("Please provide a valid email address", nil)
	}
	if utf8.RuneCountInString(message) < minMessageLength {
		return nil, apperrors.NewValidationError("Message must be at least 10 characters long", nil)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	msg := &domain.ContactMessage{
		ID:        id.String(),
		Name:      name,
		Email:     email,
		Message:   message,
		Timestamp: s.now().UTC(),
		IP:        input.IP,
	}
	if err := s.contacts.Append(ctx, msg); err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	s.logger.Info("contact message stored", zap.String("contact_id", msg.ID), zap.String("email", msg.Email))
	publish(ctx, s.dispatcher, s.logger, events.NewEvent(events.EventContactSubmitted, msg.ID, "", events.ContactSubmittedPayload{
		Name:           msg.Name,
		Email:          msg.Email,
		MessagePreview: preview(msg.Message, previewLength),
		IP:             msg.IP,
	}))
	return msg, nil
}

func preview(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}
