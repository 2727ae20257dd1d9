package whatsapp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"consumo_wpp_backend/platform/logger"
)

func TestSendText(t *testing.T) {
	var gotPath, gotToken string
	var gotBody sendTextRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotToken = r.Header.Get("Client-Token")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient(srv.URL+"/", "segredo", 100, logger.New("test"))
	err := client.SendText(context.Background(), "+55 (11) 98888-7777", "Seu registro foi salvo com sucesso!")
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	if gotPath != "/send-text" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if gotToken != "segredo" {
		t.Fatalf("unexpected token %q", gotToken)
	}
	if gotBody.Phone != "5511988887777" {
		t.Fatalf("expected digits-only phone, got %q", gotBody.Phone)
	}
	if gotBody.Message != "Seu registro foi salvo com sucesso!" {
		t.Fatalf("unexpected message %q", gotBody.Message)
	}
}

func TestSendText_ErrorStatusSurfacesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":"invalid client token"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "errado", 100, logger.New("test"))
	err := client.SendText(context.Background(), "5511988887777", "oi")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "403") || !strings.Contains(err.Error(), "invalid client token") {
		t.Fatalf("expected status and body in error, got %v", err)
	}
}

func TestSendText_CanceledContext(t *testing.T) {
	client := NewClient("http://localhost:0", "", 100, logger.New("test"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := client.SendText(ctx, "5511988887777", "oi"); err == nil {
		t.Fatal("expected error from canceled context")
	}
}
