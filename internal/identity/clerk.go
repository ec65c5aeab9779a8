package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// ClerkConfig wires the hosted identity provider.
type ClerkConfig struct {
	BaseURL   string
	SecretKey string
	Timeout   time.Duration
}

// Clerk talks to the Clerk backend API: look the email up first, create the
// user only when absent.
type Clerk struct {
	cfg    ClerkConfig
	client *http.Client
	logger *slog.Logger
}

func NewClerk(cfg ClerkConfig, logger *slog.Logger) *Clerk {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.clerk.com"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Clerk{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

type clerkUser struct {
	ID string `json:"id"`
}

func (c *Clerk) GetOrCreateIdentity(ctx context.Context, email string) (string, error) {
	start := time.Now()

	id, found, err := c.lookup(ctx, email)
	if err != nil {
		return "", err
	}
	if found {
		c.logger.Info("identity.resolve.ok",
			"outcome", "existing",
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return id, nil
	}

	id, err = c.create(ctx, email)
	if err != nil {
		return "", err
	}
	c.logger.Info("identity.resolve.ok",
		"outcome", "created",
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return id, nil
}

func (c *Clerk) lookup(ctx context.Context, email string) (string, bool, error) {
	u := fmt.Sprintf("%s/v1/users?email_address=%s", c.cfg.BaseURL, url.QueryEscape(email))
	raw, status, err := c.do(ctx, http.MethodGet, u, nil)
	if err != nil {
		c.logger.Error("identity.lookup.failed", "status", status, "error", err)
		return "", false, unavailable("lookup", err)
	}

	var users []clerkUser
	if err := json.Unmarshal(raw, &users); err != nil {
		return "", false, unavailable("decode lookup", err)
	}
	if len(users) == 0 {
		return "", false, nil
	}
	return users[0].ID, true, nil
}

func (c *Clerk) create(ctx context.Context, email string) (string, error) {
	body := map[string]any{
		"email_address":             []string{email},
		"skip_password_requirement": true,
	}
	raw, status, err := c.do(ctx, http.MethodPost, c.cfg.BaseURL+"/v1/users", body)
	if err != nil {
		c.logger.Error("identity.create.failed", "status", status, "error", err)
		return "", unavailable("create", err)
	}

	var user clerkUser
	if err := json.Unmarshal(raw, &user); err != nil {
		return "", unavailable("decode create", err)
	}
	if user.ID == "" {
		return "", unavailable("create", fmt.Errorf("provider returned no user id"))
	}
	return user.ID, nil
}

func (c *Clerk) do(ctx context.Context, method, url string, body any) ([]byte, int, error) {
	var reader io.Reader
	if body != nil {
		bs, err := json.Marshal(body)
		if err != nil {
			return nil, 0, fmt.Errorf("encode json: %w", err)
		}
		reader = bytes.NewReader(bs)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.SecretKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.Warn("identity.http.body_close_error", "error", err)
		}
	}()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode/100 != 2 {
		return raw, resp.StatusCode, fmt.Errorf("non-2xx status: %d", resp.StatusCode)
	}
	return raw, resp.StatusCode, nil
}
