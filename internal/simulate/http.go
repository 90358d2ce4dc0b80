package simulate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"slices"

	"github.com/okian/swiss/internal/domain/types"
)

const idempotencyKeyHeader = "Idempotency-Key"

// client talks to the tournament HTTP API.
type client struct {
	http    *http.Client
	baseURL string
}

func newClient(cfg *Config) *client {
	return &client{
		http:    &http.Client{Timeout: cfg.Timeout},
		baseURL: cfg.BaseURL,
	}
}

// do sends a JSON request and decodes the response into out when it is set.
// Any status outside want is an error carrying the response body.
func (c *client) do(ctx context.Context, method, path string, body any, header http.Header, out any, want ...int) (int, error) {
	var reader io.Reader = http.NoBody
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("marshal %s body: %w", path, err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, fmt.Errorf("create %s request: %w", path, err)
	}
	for k, v := range header {
		req.Header[k] = v
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("read %s response: %w", path, err)
	}
	if !slices.Contains(want, resp.StatusCode) {
		return resp.StatusCode, fmt.Errorf("%s %s: HTTP %d: %s", method, path, resp.StatusCode, bytes.TrimSpace(data))
	}
	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return resp.StatusCode, fmt.Errorf("parse %s response: %w", path, err)
		}
	}
	return resp.StatusCode, nil
}

func (c *client) reset(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodPost, "/reset", nil, nil, nil, http.StatusNoContent)
	return err
}

func (c *client) register(ctx context.Context, name string) (types.Competitor, error) {
	var out types.Competitor
	_, err := c.do(ctx, http.MethodPost, "/competitors", types.NewCompetitor{Name: name}, nil, &out, http.StatusCreated)
	return out, err
}

func (c *client) count(ctx context.Context) (int, error) {
	var out types.Count
	_, err := c.do(ctx, http.MethodGet, "/competitors/count", nil, nil, &out, http.StatusOK)
	return out.Count, err
}

// report posts a result with an idempotency key. duplicate is true when the
// server had already seen the key.
func (c *client) report(ctx context.Context, winner, loser int64, key string) (duplicate bool, err error) {
	header := http.Header{}
	header.Set(idempotencyKeyHeader, key)
	status, err := c.do(ctx, http.MethodPost, "/matches",
		types.MatchReport{WinnerID: winner, LoserID: loser}, header, nil,
		http.StatusCreated, http.StatusOK)
	return status == http.StatusOK, err
}

func (c *client) standings(ctx context.Context) ([]types.Standing, error) {
	var out []types.Standing
	_, err := c.do(ctx, http.MethodGet, "/standings", nil, nil, &out, http.StatusOK)
	return out, err
}

func (c *client) pairings(ctx context.Context) ([]types.Pair, error) {
	var out []types.Pair
	_, err := c.do(ctx, http.MethodGet, "/pairings", nil, nil, &out, http.StatusOK)
	return out, err
}
