// Package whatsapp sends outbound messages through a Z-API instance.
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"consumo_wpp_backend/platform/logger"
	"consumo_wpp_backend/platform/phone"
)

type Client struct {
	baseURL     string
	clientToken string
	http        *http.Client
	limiter     *rate.Limiter
	log         *logger.Logger
}

type sendTextRequest struct {
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

// NewClient builds a sender over a Z-API instance URL
// (https://api.z-api.io/instances/<id>/token/<token>). Messages are
// throttled to perSec to stay inside the provider's limits.
func NewClient(baseURL, clientToken string, perSec float64, log *logger.Logger) *Client {
	if perSec <= 0 {
		perSec = 1
	}
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		clientToken: clientToken,
		http:        &http.Client{Timeout: 15 * time.Second},
		limiter:     rate.NewLimiter(rate.Limit(perSec), 1),
		log:         log,
	}
}

func (c *Client) SendText(ctx context.Context, phoneNumber, message string) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	payload := sendTextRequest{
		Phone:   phone.Digits(phoneNumber),
		Message: message,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal whatsapp payload: %w", err)
	}

	url := c.baseURL + "/send-text"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")
	if c.clientToken != "" {
		req.Header.Set("Client-Token", c.clientToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("whatsapp request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("whatsapp service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	c.log.Debug("whatsapp sent", "phone", payload.Phone)
	return nil
}
