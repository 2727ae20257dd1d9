// Package webhook provides the inbound WhatsApp webhook module.
package webhook

import (
	apphttp "consumo_wpp_backend/internal/http"
	"consumo_wpp_backend/internal/scheduler"
	"consumo_wpp_backend/platform/logger"
	"consumo_wpp_backend/platform/validator"
)

// Module is the webhook bounded context module implementing http.Module.
type Module struct {
	handler *Handler
	token   string
}

// NewModule creates and initializes the webhook module.
func NewModule(enqueuer scheduler.MessageEnqueuer, token string, val *validator.Validator, log *logger.Logger) *Module {
	return &Module{
		handler: NewHandler(enqueuer, val, log),
		token:   token,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "webhook"
}

// RegisterRoutes mounts webhook routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.V1.Group("/webhook")
	group.Use(TokenAuthMiddleware(m.token))
	group.POST("/whatsapp", m.handler.HandleInboundMessage)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
