package service

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spec-kit/market-desk/internal/events"
)

const maxInputLength = 1000

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// IsValidEmail applies the permissive local@domain.tld check used for every
// address the service accepts.
func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// Sanitize trims whitespace, removes angle brackets and caps the length at
// 1000 characters.
func Sanitize(input string) string {
	cleaned := strings.TrimSpace(input)
	cleaned = strings.NewReplacer("<", "", ">", "").Replace(cleaned)
	if utf8.RuneCountInString(cleaned) > maxInputLength {
		cleaned = string([]rune(cleaned)[:maxInputLength])
	}
	return cleaned
}

func publish(ctx context.Context, dispatcher events.Dispatcher, logger *zap.Logger, event events.Event) {
	if dispatcher == nil {
		return
	}
	if err := dispatcher.Publish(ctx, event); err != nil {
		logger.Warn("event handler failed",
			zap.String("event_type", string(event.Type)),
			zap.String("subject_id", event.SubjectID),
			zap.Error(err))
	}
}
