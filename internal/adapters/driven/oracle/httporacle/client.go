// Package httporacle provides a ranking oracle client that speaks JSON over HTTP.
package httporacle

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/mufti/internal/core/domain"
	"github.com/custodia-labs/mufti/internal/core/ports/driven"
)

// Ensure Client implements the interfaces.
var (
	_ driven.RankingOracle = (*Client)(nil)
	_ driven.OracleIndexer = (*Client)(nil)
)

// Default configuration values.
const (
	DefaultTimeout = 10 * time.Second
	DefaultRate    = 20.0
	DefaultBurst   = 40
)

// errRateLimited marks a 429 response.
var errRateLimited = errors.New("oracle: rate limited")

// Config holds configuration for the oracle client.
type Config struct {
	// BaseURL is the oracle endpoint (required).
	BaseURL string

	// APIKey is sent as a bearer token when set.
	APIKey string

	// Timeout is the per-request timeout (default: 10s).
	Timeout time.Duration

	// RatePerSecond and Burst pace outgoing requests (default: 20/s, burst 40).
	RatePerSecond float64
	Burst         int
}

// Client talks to the ranking oracle.
type Client struct {
	client  *http.Client
	baseURL string
	apiKey  string
	limiter *rateLimiter
}

// searchRequest is the /search request format.
type searchRequest struct {
	Query    string `json:"query"`
	Language string `json:"language"`
	Limit    int    `json:"limit"`
}

// searchResponse is the /search response format.
type searchResponse struct {
	IDs []int64 `json:"ids"`
}

// indexRequest is the /index request format.
type indexRequest struct {
	ID       int64  `json:"id"`
	Language string `json:"language"`
	Text     string `json:"text"`
}

// NewClient creates a new oracle client.
func NewClient(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RatePerSecond == 0 {
		cfg.RatePerSecond = DefaultRate
	}
	if cfg.Burst == 0 {
		cfg.Burst = DefaultBurst
	}

	return &Client{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		limiter: newRateLimiter(cfg.RatePerSecond, cfg.Burst),
	}
}

// FromSettings builds a client from application settings.
func FromSettings(settings domain.OracleSettings) *Client {
	return NewClient(Config{
		BaseURL:       settings.BaseURL,
		APIKey:        settings.APIKey,
		Timeout:       settings.Timeout,
		RatePerSecond: settings.RatePerSecond,
		Burst:         settings.Burst,
	})
}

// Rank returns fatwa ids ordered by similarity to the query.
func (c *Client) Rank(ctx context.Context, query string, lang domain.Language, limit int) ([]int64, error) {
	var resp searchResponse
	err := c.do(ctx, http.MethodPost, "/search", searchRequest{
		Query:    query,
		Language: lang.String(),
		Limit:    limit,
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("rank: %w", err)
	}
	if limit > 0 && len(resp.IDs) > limit {
		resp.IDs = resp.IDs[:limit]
	}
	return resp.IDs, nil
}

// Index adds or replaces a fatwa in the oracle index. Both languages are
// sent as one text so either can be matched.
func (c *Client) Index(ctx context.Context, fatwa domain.Fatwa) error {
	err := c.do(ctx, http.MethodPost, "/index", indexRequest{
		ID:       fatwa.ID,
		Language: domain.LanguagePrimary.String(),
		Text:     strings.Join(fatwa.SearchableText(), "\n"),
	}, nil)
	if err != nil {
		return fmt.Errorf("index fatwa %d: %w", fatwa.ID, err)
	}
	return nil
}

// Remove deletes a fatwa from the oracle index. A 404 is not an error.
func (c *Client) Remove(ctx context.Context, id int64) error {
	err := c.do(ctx, http.MethodDelete, "/index/"+strconv.FormatInt(id, 10), nil, nil)
	var statusErr *StatusError
	if errors.As(err, &statusErr) && statusErr.Code == http.StatusNotFound {
		return nil
	}
	if err != nil {
		return fmt.Errorf("remove fatwa %d: %w", id, err)
	}
	return nil
}

// Ping validates the oracle is reachable.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.do(ctx, http.MethodGet, "/health", nil, nil); err != nil {
		return fmt.Errorf("oracle: ping failed: %w", err)
	}
	return nil
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("oracle error (status %d): %s", e.Code, e.Body)
}

// do sends one request. A nil body sends no payload; a nil out discards the response.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if c.baseURL == "" {
		return domain.ErrOracleUnavailable
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("wait for rate limit: %w", err)
	}

	reqBody := io.Reader(http.NoBody)
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		c.limiter.recordRateLimit(resp)
		return errRateLimited
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if err != nil {
			return &StatusError{Code: resp.StatusCode, Body: "failed to read response"}
		}
		return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
