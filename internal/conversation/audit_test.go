package conversation

import (
	"context"
	"testing"

	domainevents "consumo_wpp_backend/internal/events"
	"consumo_wpp_backend/platform/logger"
)

func TestSavedRecordAuditor(t *testing.T) {
	handler := NewSavedRecordAuditor(logger.New("test"))

	event := domainevents.NewConsumptionSaved("5511988887777", "77", "Tordon XT")
	if err := handler.Handle(context.Background(), event); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// unrelated events pass through untouched
	if err := handler.Handle(context.Background(), domainevents.NewConversationExpired("5511988887777")); err != nil {
		t.Fatalf("unexpected error on foreign event: %v", err)
	}
}
