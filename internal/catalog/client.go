package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"consumo_wpp_backend/platform/logger"
)

// Client handles authentication and raw HTTP against the Agriwin API.
// Authentication is attempted against each base URL in order; the first
// that issues a token becomes the active base until a 401 forces
// re-login.
type Client struct {
	baseURLs []string
	user     string
	password string
	http     *http.Client
	log      *logger.Logger

	mu         sync.Mutex
	token      string
	activeBase string
}

type envelope struct {
	Data    json.RawMessage `json:"dados"`
	Message string          `json:"mensagem"`
}

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"senha"`
}

type loginData struct {
	Token string `json:"token"`
}

// NewClient creates an Agriwin API client. baseURLs must be non-empty.
func NewClient(baseURLs []string, user, password string, log *logger.Logger) (*Client, error) {
	if len(baseURLs) == 0 {
		return nil, fmt.Errorf("catalog: at least one base URL is required")
	}
	trimmed := make([]string, 0, len(baseURLs))
	for _, u := range baseURLs {
		trimmed = append(trimmed, strings.TrimRight(u, "/"))
	}
	return &Client{
		baseURLs: trimmed,
		user:     user,
		password: password,
		http:     &http.Client{Timeout: 30 * time.Second},
		log:      log,
	}, nil
}

func (c *Client) authenticate(ctx context.Context) error {
	body, err := json.Marshal(loginRequest{Login: c.user, Password: c.password})
	if err != nil {
		return fmt.Errorf("marshal login payload: %w", err)
	}

	for _, base := range c.baseURLs {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/api/v1/autenticacao", bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			c.log.CatalogError("authenticate", err)
			continue
		}

		var env envelope
		decodeErr := json.NewDecoder(resp.Body).Decode(&env)
		resp.Body.Close()

		if resp.StatusCode != http.StatusOK || decodeErr != nil {
			c.log.Warn("agriwin login rejected", "base", base, "status", resp.StatusCode)
			continue
		}

		var data loginData
		if err := json.Unmarshal(env.Data, &data); err != nil || data.Token == "" {
			c.log.Warn("agriwin login response missing token", "base", base)
			continue
		}

		c.token = data.Token
		c.activeBase = base
		c.log.Info("agriwin authenticated", "base", base)
		return nil
	}

	return fmt.Errorf("catalog: authentication failed on all base URLs")
}

// ensureAuth logs in lazily and returns the active base and token.
func (c *Client) ensureAuth(ctx context.Context) (string, string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token == "" || c.activeBase == "" {
		if err := c.authenticate(ctx); err != nil {
			return "", "", err
		}
	}
	return c.activeBase, c.token, nil
}

// invalidate drops the cached token so the next call re-authenticates.
func (c *Client) invalidate() {
	c.mu.Lock()
	c.token = ""
	c.activeBase = ""
	c.mu.Unlock()
}

// Get performs an authenticated GET and returns the decoded envelope.
// A 401 triggers one re-authentication and retry.
func (c *Client) Get(ctx context.Context, endpoint string, params url.Values) (*envelope, error) {
	return c.do(ctx, http.MethodGet, endpoint, params, nil, true)
}

// Post performs an authenticated POST with a JSON body and returns the
// HTTP status together with the decoded envelope, letting the caller
// decide how to treat non-2xx responses.
func (c *Client) Post(ctx context.Context, endpoint string, body any) (int, *envelope, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return 0, nil, fmt.Errorf("marshal payload: %w", err)
	}
	return c.doStatus(ctx, http.MethodPost, endpoint, nil, payload, true)
}

func (c *Client) do(ctx context.Context, method, endpoint string, params url.Values, body []byte, retry bool) (*envelope, error) {
	status, env, err := c.doStatus(ctx, method, endpoint, params, body, retry)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		msg := env.Message
		if msg == "" {
			msg = "unexpected response"
		}
		return nil, fmt.Errorf("catalog: %s %s returned %d: %s", method, endpoint, status, msg)
	}
	return env, nil
}

func (c *Client) doStatus(ctx context.Context, method, endpoint string, params url.Values, body []byte, retry bool) (int, *envelope, error) {
	base, token, err := c.ensureAuth(ctx)
	if err != nil {
		return 0, nil, err
	}

	reqURL := base + endpoint
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("catalog request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized && retry {
		io.Copy(io.Discard, resp.Body)
		c.invalidate()
		return c.doStatus(ctx, method, endpoint, params, body, false)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return resp.StatusCode, &envelope{}, nil
	}
	return resp.StatusCode, &env, nil
}
