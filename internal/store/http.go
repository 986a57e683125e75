package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
)

var codec = jsoniter.ConfigCompatibleWithStandardLibrary

// HTTPConfig holds connection settings for the remote store.
type HTTPConfig struct {
	BaseURL string
	Timeout time.Duration
}

// HTTPClient talks to a json-server style REST store: collections are
// top-level paths, equality filters are query parameters, partial
// updates use PATCH.
type HTTPClient struct {
	base   string
	client *http.Client
	log    *zap.Logger
}

// NewHTTPClient creates a store client for the given base URL.
func NewHTTPClient(cfg HTTPConfig, log *zap.Logger) *HTTPClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPClient{
		base:   cfg.BaseURL,
		client: &http.Client{Timeout: timeout},
		log:    log,
	}
}

// List implements Client.
func (c *HTTPClient) List(ctx context.Context, collection string, filters Filters) ([]json.RawMessage, error) {
	u := c.base + "/" + collection
	if len(filters) > 0 {
		q := url.Values{}
		for k, v := range filters {
			q.Set(k, v)
		}
		u += "?" + q.Encode()
	}

	body, err := c.do(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	var records []json.RawMessage
	if err := codec.Unmarshal(body, &records); err != nil {
		return nil, fmt.Errorf("decode %s list: %w", collection, err)
	}
	return records, nil
}

// GetByID implements Client.
func (c *HTTPClient) GetByID(ctx context.Context, collection string, id int64) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, c.recordURL(collection, id), nil)
}

// Create implements Client.
func (c *HTTPClient) Create(ctx context.Context, collection string, fields any) (json.RawMessage, error) {
	payload, err := codec.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("encode %s record: %w", collection, err)
	}
	return c.do(ctx, http.MethodPost, c.base+"/"+collection, payload)
}

// Update implements Client. PATCH semantics: fields absent from the
// payload keep their stored values.
func (c *HTTPClient) Update(ctx context.Context, collection string, id int64, fields any) (json.RawMessage, error) {
	payload, err := codec.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("encode %s record: %w", collection, err)
	}
	return c.do(ctx, http.MethodPatch, c.recordURL(collection, id), payload)
}

// Delete implements Client.
func (c *HTTPClient) Delete(ctx context.Context, collection string, id int64) error {
	_, err := c.do(ctx, http.MethodDelete, c.recordURL(collection, id), nil)
	return err
}

func (c *HTTPClient) recordURL(collection string, id int64) string {
	return c.base + "/" + collection + "/" + strconv.FormatInt(id, 10)
}

func (c *HTTPClient) do(ctx context.Context, method, u string, payload []byte) (json.RawMessage, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Warn("store request failed",
			zap.String("method", method),
			zap.String("url", u),
			zap.Error(err),
		)
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	c.log.Debug("store request",
		zap.String("method", method),
		zap.String("url", u),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode >= 400:
		return nil, fmt.Errorf("store returned %d: %s", resp.StatusCode, truncate(data, 200))
	}
	return data, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
