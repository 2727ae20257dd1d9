package webhook

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"consumo_wpp_backend/internal/preprocess"
	"consumo_wpp_backend/internal/scheduler"
	"consumo_wpp_backend/platform/logger"
	"consumo_wpp_backend/platform/validator"
)

type fakeEnqueuer struct {
	enqueued []scheduler.InboundMessagePayload
	err      error
}

func (f *fakeEnqueuer) EnqueueInboundMessage(_ context.Context, payload scheduler.InboundMessagePayload) error {
	if f.err != nil {
		return f.err
	}
	f.enqueued = append(f.enqueued, payload)
	return nil
}

func newTestRouter(enqueuer *fakeEnqueuer, token string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewHandler(enqueuer, validator.New(), logger.New("test"))
	engine := gin.New()
	group := engine.Group("/api/v1/webhook")
	group.Use(TokenAuthMiddleware(token))
	group.POST("/whatsapp", handler.HandleInboundMessage)
	return engine
}

func postWebhook(engine *gin.Engine, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhook/whatsapp", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestHandleInboundMessage_TextEnqueued(t *testing.T) {
	enqueuer := &fakeEnqueuer{}
	engine := newTestRouter(enqueuer, "")

	rec := postWebhook(engine, `{"phone":"+55 (11) 98888-7777","type":"chat","text":{"message":"usei 5 litros de tordon"}}`, nil)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(enqueuer.enqueued) != 1 {
		t.Fatalf("expected 1 enqueued task, got %d", len(enqueuer.enqueued))
	}

	task := enqueuer.enqueued[0]
	if task.Phone != "5511988887777" {
		t.Fatalf("expected normalized phone, got %q", task.Phone)
	}
	if task.Kind != preprocess.KindText || task.Text != "usei 5 litros de tordon" {
		t.Fatalf("unexpected task %+v", task)
	}
}

func TestHandleInboundMessage_AudioAndPTTMapToAudio(t *testing.T) {
	for _, msgType := range []string{"audio", "ptt"} {
		enqueuer := &fakeEnqueuer{}
		engine := newTestRouter(enqueuer, "")

		body := `{"phone":"5511988887777","type":"` + msgType + `","mediaUrl":"https://cdn.example/voice.ogg","mimeType":"audio/ogg"}`
		rec := postWebhook(engine, body, nil)
		if rec.Code != http.StatusAccepted {
			t.Fatalf("%s: expected 202, got %d", msgType, rec.Code)
		}
		if len(enqueuer.enqueued) != 1 {
			t.Fatalf("%s: expected 1 task, got %d", msgType, len(enqueuer.enqueued))
		}
		task := enqueuer.enqueued[0]
		if task.Kind != preprocess.KindAudio || task.MediaURL != "https://cdn.example/voice.ogg" || task.MimeType != "audio/ogg" {
			t.Fatalf("%s: unexpected task %+v", msgType, task)
		}
	}
}

func TestHandleInboundMessage_ImageEnqueued(t *testing.T) {
	enqueuer := &fakeEnqueuer{}
	engine := newTestRouter(enqueuer, "")

	rec := postWebhook(engine, `{"phone":"5511988887777","type":"image","mediaUrl":"https://cdn.example/nota.jpg","mimeType":"image/jpeg"}`, nil)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}
	if len(enqueuer.enqueued) != 1 || enqueuer.enqueued[0].Kind != preprocess.KindImage {
		t.Fatalf("unexpected tasks %+v", enqueuer.enqueued)
	}
}

func TestHandleInboundMessage_UnsupportedTypeAcknowledged(t *testing.T) {
	enqueuer := &fakeEnqueuer{}
	engine := newTestRouter(enqueuer, "")

	rec := postWebhook(engine, `{"phone":"5511988887777","type":"sticker"}`, nil)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("unsupported types must still be acknowledged, got %d", rec.Code)
	}
	if len(enqueuer.enqueued) != 0 {
		t.Fatalf("unsupported types must not be enqueued, got %+v", enqueuer.enqueued)
	}
}

func TestHandleInboundMessage_EmptyTextDropped(t *testing.T) {
	enqueuer := &fakeEnqueuer{}
	engine := newTestRouter(enqueuer, "")

	rec := postWebhook(engine, `{"phone":"5511988887777","type":"chat","text":{"message":""}}`, nil)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}
	if len(enqueuer.enqueued) != 0 {
		t.Fatalf("empty text must be dropped, got %+v", enqueuer.enqueued)
	}
}

func TestHandleInboundMessage_MissingPhoneRejected(t *testing.T) {
	enqueuer := &fakeEnqueuer{}
	engine := newTestRouter(enqueuer, "")

	rec := postWebhook(engine, `{"type":"chat","text":{"message":"oi"}}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHandleInboundMessage_BogusPhoneRejected(t *testing.T) {
	enqueuer := &fakeEnqueuer{}
	engine := newTestRouter(enqueuer, "")

	rec := postWebhook(engine, `{"phone":"not-a-number","type":"chat","text":{"message":"oi"}}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a phoneless sender id, got %d", rec.Code)
	}
	if len(enqueuer.enqueued) != 0 {
		t.Fatalf("bogus phones must not be enqueued, got %+v", enqueuer.enqueued)
	}
}

func TestTokenAuthMiddleware(t *testing.T) {
	body := `{"phone":"5511988887777","type":"chat","text":{"message":"oi"}}`

	t.Run("missing token rejected", func(t *testing.T) {
		engine := newTestRouter(&fakeEnqueuer{}, "segredo")
		rec := postWebhook(engine, body, nil)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("header token accepted", func(t *testing.T) {
		enqueuer := &fakeEnqueuer{}
		engine := newTestRouter(enqueuer, "segredo")
		rec := postWebhook(engine, body, map[string]string{"Client-Token": "segredo"})
		if rec.Code != http.StatusAccepted {
			t.Fatalf("expected 202, got %d", rec.Code)
		}
		if len(enqueuer.enqueued) != 1 {
			t.Fatalf("expected task through, got %d", len(enqueuer.enqueued))
		}
	})

	t.Run("query token accepted", func(t *testing.T) {
		engine := newTestRouter(&fakeEnqueuer{}, "segredo")
		req := httptest.NewRequest(http.MethodPost, "/api/v1/webhook/whatsapp?token=segredo", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, req)
		if rec.Code != http.StatusAccepted {
			t.Fatalf("expected 202, got %d", rec.Code)
		}
	})

	t.Run("wrong token rejected", func(t *testing.T) {
		engine := newTestRouter(&fakeEnqueuer{}, "segredo")
		rec := postWebhook(engine, body, map[string]string{"Client-Token": "errado"})
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("empty configured token disables check", func(t *testing.T) {
		engine := newTestRouter(&fakeEnqueuer{}, "")
		rec := postWebhook(engine, body, nil)
		if rec.Code != http.StatusAccepted {
			t.Fatalf("expected 202, got %d", rec.Code)
		}
	})
}
