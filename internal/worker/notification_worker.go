package worker

import (
	"github.com/spec-kit/market-desk/internal/service"
)

// StartNotificationWorker registers notification handlers and returns a stop
// function that waits for in-flight webhook deliveries.
func StartNotificationWorker(notificationService *service.NotificationService) func() {
	if notificationService == nil {
		return func() {}
	}
	notificationService.RegisterHandlers()
	return notificationService.Wait
}
