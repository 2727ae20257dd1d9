package conversation

import (
	"context"

	domainevents "consumo_wpp_backend/internal/events"
	"consumo_wpp_backend/platform/events"
	"consumo_wpp_backend/platform/logger"
)

// NewSavedRecordAuditor returns the event handler that writes an audit
// line for every consumption the backend accepted. The log is the
// operational trace support uses to answer "was my registration saved".
func NewSavedRecordAuditor(log *logger.Logger) events.Handler {
	return events.HandlerFunc(func(_ context.Context, e events.Event) error {
		saved, ok := e.(domainevents.ConsumptionSaved)
		if !ok {
			return nil
		}
		log.Info("consumption recorded",
			"sender", saved.Phone,
			"product_id", saved.ProductID,
			"product", saved.ProductName,
		)
		return nil
	})
}
