package consumer

import (
	"context"

	"go.uber.org/zap"
)

// AuditHandler writes consumed roster events to the structured log.
type AuditHandler struct {
	logger *zap.SugaredLogger
}

// NewAuditHandler constructs a handler logging through the provided logger.
func NewAuditHandler(logger *zap.SugaredLogger) *AuditHandler {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &AuditHandler{logger: logger}
}

// Handle records the roster change in the audit log.
func (h *AuditHandler) Handle(ctx context.Context, msg Message) error {
	h.logger.Infow("roster change",
		"event_id", msg.Event.EventID,
		"event_type", msg.EventType,
		"activity", msg.Event.Activity,
		"email", msg.Event.Email,
		"action", msg.Event.Action,
		"occurred_at", msg.Event.OccurredAt,
	)
	return nil
}
