package webhook

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"consumo_wpp_backend/internal/preprocess"
	"consumo_wpp_backend/internal/scheduler"
	"consumo_wpp_backend/platform/httpkit"
	"consumo_wpp_backend/platform/logger"
	"consumo_wpp_backend/platform/phone"
	"consumo_wpp_backend/platform/validator"
)

// Handler receives Z-API message webhooks. The provider expects a fast
// acknowledgment, so the payload is queued and processed out of band.
type Handler struct {
	enqueuer scheduler.MessageEnqueuer
	val      *validator.Validator
	log      *logger.Logger
}

func NewHandler(enqueuer scheduler.MessageEnqueuer, val *validator.Validator, log *logger.Logger) *Handler {
	return &Handler{enqueuer: enqueuer, val: val, log: log}
}

// HandleInboundMessage processes an inbound WhatsApp message webhook.
// POST /api/v1/webhook/whatsapp
func (h *Handler) HandleInboundMessage(c *gin.Context) {
	var payload InboundPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := h.val.Struct(payload); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation error")
		return
	}

	task, ok := toTaskPayload(payload)
	if !ok {
		// unsupported types (stickers, reactions, delivery receipts)
		// are acknowledged and dropped
		h.log.Debug("ignoring unsupported webhook type", "type", payload.MessageType)
		httpkit.Accepted(c)
		return
	}

	if err := h.enqueuer.EnqueueInboundMessage(c.Request.Context(), task); err != nil {
		h.log.Error("failed to enqueue inbound message", "error", err, "sender", task.Phone)
		httpkit.Error(c, http.StatusInternalServerError, "failed to queue message")
		return
	}

	httpkit.Accepted(c)
}

func toTaskPayload(payload InboundPayload) (scheduler.InboundMessagePayload, bool) {
	base := scheduler.InboundMessagePayload{
		Phone: phone.Digits(payload.Phone),
	}

	switch payload.MessageType {
	case typeChat:
		if payload.Text == nil || payload.Text.Message == "" {
			return scheduler.InboundMessagePayload{}, false
		}
		base.Kind = preprocess.KindText
		base.Text = payload.Text.Message
		return base, true

	case typeImage:
		if payload.MediaURL == "" {
			return scheduler.InboundMessagePayload{}, false
		}
		base.Kind = preprocess.KindImage
		base.MediaURL = payload.MediaURL
		base.MimeType = payload.MimeType
		return base, true

	case typeAudio, typePTT:
		if payload.MediaURL == "" {
			return scheduler.InboundMessagePayload{}, false
		}
		base.Kind = preprocess.KindAudio
		base.MediaURL = payload.MediaURL
		base.MimeType = payload.MimeType
		return base, true

	default:
		return scheduler.InboundMessagePayload{}, false
	}
}
