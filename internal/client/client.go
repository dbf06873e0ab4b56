// Package client talks to the boss fight JSON API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"bossfight/internal/catalog"
)

const defaultTimeout = 5 * time.Second

// Game mirrors the /api/game response.
type Game struct {
	Level      int                `json:"level"`
	HP         int                `json:"hp"`
	MaxHP      int                `json:"max_hp"`
	Monster    string             `json:"monster"`
	Emoji      string             `json:"emoji"`
	Image      string             `json:"image"`
	Background catalog.Background `json:"background"`
	Timestamp  time.Time          `json:"timestamp"`
	Version    uint64             `json:"version"`
}

type Award struct {
	Damage   int    `json:"damage"`
	NewHP    int    `json:"new_hp"`
	MaxHP    int    `json:"max_hp"`
	BossDead bool   `json:"boss_dead"`
	Level    int    `json:"level"`
	Monster  string `json:"monster"`
}

type Advance struct {
	OldLevel     int                `json:"old_level"`
	NewLevel     int                `json:"new_level"`
	NewBoss      string             `json:"new_boss"`
	Emoji        string             `json:"emoji"`
	Image        string             `json:"image"`
	NewHP        int                `json:"new_hp"`
	NewMaxHP     int                `json:"new_max_hp"`
	LevelUpVideo string             `json:"level_up_video"`
	Background   catalog.Background `json:"background"`
}

// APIError is a non-2xx response. Message carries the server's error text.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("bossfight api: status %d", e.Status)
	}
	return fmt.Sprintf("bossfight api: status %d: %s", e.Status, e.Message)
}

// IsAlreadyFinal reports whether err is the clamp-policy rejection of an
// advance past the last stage.
func IsAlreadyFinal(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusConflict
}

// Client calls a single server. Locale, when set, is sent as the lang query
// parameter so boss names come back localized.
type Client struct {
	BaseURL    *url.URL
	HTTPClient *http.Client
	Locale     string
}

func New(baseURL string) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("client: base url is required")
	}
	parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("client: parse base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("client: unsupported scheme %q", parsed.Scheme)
	}
	return &Client{
		BaseURL:    parsed,
		HTTPClient: &http.Client{Timeout: defaultTimeout},
	}, nil
}

func (c *Client) Game(ctx context.Context) (Game, error) {
	var game Game
	err := c.do(ctx, http.MethodGet, "/api/game", nil, &game)
	return game, err
}

// Award submits a point award. The server derives the damage.
func (c *Client) Award(ctx context.Context, amount int64) (Award, error) {
	var award Award
	err := c.do(ctx, http.MethodPost, "/api/award-points", map[string]int64{"amount": amount}, &award)
	return award, err
}

func (c *Client) Advance(ctx context.Context) (Advance, error) {
	var advance Advance
	err := c.do(ctx, http.MethodPost, "/api/level-up", nil, &advance)
	return advance, err
}

func (c *Client) Reset(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/reset", nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	endpoint := c.BaseURL.JoinPath(path)
	if c.Locale != "" {
		query := endpoint.Query()
		query.Set("lang", c.Locale)
		endpoint.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("client: encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), reader)
	if err != nil {
		return fmt.Errorf("client: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("client: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var failure struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(data, &failure)
		return &APIError{Status: resp.StatusCode, Message: failure.Error}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("client: decode %s: %w", path, err)
	}
	return nil
}
