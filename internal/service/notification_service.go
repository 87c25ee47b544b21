package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/spec-kit/market-desk/internal/config"
	"github.com/spec-kit/market-desk/internal/events"
	"github.com/spec-kit/market-desk/internal/observability"
)

const webhookTimeout = 5 * time.Second

// NotificationService handles emitting notifications for domain events.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics
	cfg        config.NotificationConfig
	throttle   *rate.Limiter
	wg         sync.WaitGroup
}

// NewNotificationService creates the service. Webhook deliveries are throttled
// to one per second with a burst of five.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, metrics *observability.Metrics, cfg config.NotificationConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		metrics:    metrics,
		cfg:        cfg,
		throttle:   rate.NewLimiter(rate.Every(time.Second), 5),
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	for _, t := range events.AllEventTypes {
		n.dispatcher.Subscribe(t, n.handleAudit)
	}
	n.dispatcher.Subscribe(events.EventContactSubmitted, n.handleContactSubmitted)
}

// Wait blocks until in-flight webhook deliveries finish.
func (n *NotificationService) Wait() {
	n.wg.Wait()
}

func (n *NotificationService) handleAudit(_ context.Context, event events.Event) error {
	n.metrics.RecordDomainEvent(string(event.Type))
	n.logger.Info("audit",
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)),
		zap.String("subject_id", event.SubjectID),
		zap.String("actor", event.Actor),
		zap.Time("at", event.Timestamp))
	return nil
}

func (n *NotificationService) handleContactSubmitted(ctx context.Context, event events.Event) error {
	n.sendEmailNotificationStub(ctx, event)
	n.sendWebhookNotification(event)
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Info("admin email notification queued",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("contact_id", event.SubjectID),
		zap.Any("payload", event.Payload))
}

// sendWebhookNotification posts the event asynchronously; failures are logged
// and never reach the submitter.
func (n *NotificationService) sendWebhookNotification(event events.Event) {
	url := strings.TrimSpace(n.cfg.WebhookURL)
	if url == "" {
		return
	}
	if !n.throttle.Allow() {
		n.logger.Warn("webhook throttled", zap.String("event_id", event.ID))
		return
	}

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		status, _, errs := fiber.Post(url).JSON(event).Timeout(webhookTimeout).Bytes()
		if len(errs) > 0 {
			n.logger.Warn("webhook delivery failed", zap.String("event_id", event.ID), zap.Errors("errors", errs))
			return
		}
		if status >= fiber.StatusBadRequest {
			n.logger.Warn("webhook rejected", zap.String("event_id", event.ID), zap.Int("status", status))
			return
		}
		n.logger.Debug("webhook delivered", zap.String("event_id", event.ID), zap.Int("status", status))
	}()
}
