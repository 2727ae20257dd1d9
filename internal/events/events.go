// Package events defines the domain events exchanged between modules.
package events

import (
	"consumo_wpp_backend/platform/events"
)

// Event names.
const (
	ConversationExpiredName = "conversation.expired"
	ConsumptionSavedName    = "consumption.saved"
)

// ConversationExpired is published when a conversation's memory TTL
// lapses before the exchange completed.
type ConversationExpired struct {
	events.BaseEvent
	Phone string `json:"phone"`
}

// EventName returns the unique event identifier.
func (e ConversationExpired) EventName() string { return ConversationExpiredName }

// NewConversationExpired creates a ConversationExpired event.
func NewConversationExpired(phone string) ConversationExpired {
	return ConversationExpired{BaseEvent: events.NewBaseEvent(), Phone: phone}
}

// ConsumptionSaved is published after a consumption record has been
// accepted by the farm-management backend.
type ConsumptionSaved struct {
	events.BaseEvent
	Phone       string `json:"phone"`
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
}

// EventName returns the unique event identifier.
func (e ConsumptionSaved) EventName() string { return ConsumptionSavedName }

// NewConsumptionSaved creates a ConsumptionSaved event.
func NewConsumptionSaved(phone, productID, productName string) ConsumptionSaved {
	return ConsumptionSaved{
		BaseEvent:   events.NewBaseEvent(),
		Phone:       phone,
		ProductID:   productID,
		ProductName: productName,
	}
}
