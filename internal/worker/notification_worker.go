package worker

import (
	"github.com/spec-kit/it-tracker/internal/events"
	"github.com/spec-kit/it-tracker/internal/service"
)

// StartNotificationWorker subscribes the dispatch service to ticket
// domain events. Dispatch runs inline in the publishing request; there
// is no background queue.
func StartNotificationWorker(dispatch *service.DispatchService, dispatcher events.Dispatcher) {
	if dispatch == nil {
		return
	}
	dispatch.RegisterHandlers(dispatcher)
}
