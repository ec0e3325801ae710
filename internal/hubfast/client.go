// Package hubfast is a thin fasthttp client for the dataset hub: it lists
// the shard files of a year/month partition and pulls bounded row pages
// from individual shards. GETs are retried with exponential backoff on
// transient failures.
package hubfast

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
)

// HeaderProvider allows injecting per-request headers (auth tokens etc).
type HeaderProvider func() map[string]string

type Client struct {
	baseURL string
	dataset string
	http    *fasthttp.Client
	headers HeaderProvider

	defaultTimeout time.Duration
	retryMax       int
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.defaultTimeout = d }
}

func WithMaxConnsPerHost(n int) Option {
	return func(c *Client) { c.http.MaxConnsPerHost = n }
}

func WithHeaderProvider(h HeaderProvider) Option {
	return func(c *Client) { c.headers = h }
}

// WithToken sets a bearer token for gated datasets.
func WithToken(token string) Option {
	return func(c *Client) {
		t := strings.TrimSpace(token)
		if t == "" {
			return
		}
		prev := c.headers
		c.headers = func() map[string]string {
			h := map[string]string{}
			if prev != nil {
				for k, v := range prev() {
					h[k] = v
				}
			}
			h["Authorization"] = "Bearer " + t
			return h
		}
	}
}

func WithRetry(max int) Option {
	return func(c *Client) { c.retryMax = max }
}

func NewClient(baseURL, dataset string, opts ...Option) *Client {
	c := &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		dataset:        strings.Trim(dataset, "/"),
		http:           &fasthttp.Client{ReadTimeout: 15 * time.Second, WriteTimeout: 15 * time.Second, MaxConnsPerHost: 16},
		defaultTimeout: 15 * time.Second,
		retryMax:       3,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// PartitionPath renders the year/month partition template, zero-padding
// the month the way the hub lays out its directories.
func PartitionPath(year, month int) (string, error) {
	if month < 1 || month > 12 {
		return "", fmt.Errorf("month %d out of range", month)
	}
	if year < 0 {
		return "", fmt.Errorf("year %d out of range", year)
	}
	return fmt.Sprintf("data/year=%04d/month=%02d", year, month), nil
}

// ListShards returns the shard files of one partition. Only the selected
// month's directory is ever touched. A missing or empty partition yields
// ErrPartitionNotFound.
func (c *Client) ListShards(ctx context.Context, year, month int) ([]ShardInfo, error) {
	part, err := PartitionPath(year, month)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPartitionNotFound, err)
	}
	u := fmt.Sprintf("%s/api/datasets/%s/tree/main/%s", c.baseURL, c.dataset, part)

	var entries []ShardInfo
	if err := c.getJSON(ctx, u, &entries); err != nil {
		var se *statusError
		if errors.As(err, &se) && se.code == fasthttp.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", ErrPartitionNotFound, part)
		}
		return nil, err
	}

	shards := entries[:0]
	for _, e := range entries {
		if e.Type != "file" || !strings.HasSuffix(e.Path, ".parquet") {
			continue
		}
		shards = append(shards, e)
	}
	if len(shards) == 0 {
		return nil, fmt.Errorf("%w: %s has no shard files", ErrPartitionNotFound, part)
	}
	return shards, nil
}

// FetchRows pulls one bounded page of rows from a shard.
func (c *Client) FetchRows(ctx context.Context, shard string, offset, length int) (*RowsPage, error) {
	if length <= 0 {
		return nil, fmt.Errorf("length must be positive, got %d", length)
	}
	u := fmt.Sprintf("%s/api/datasets/%s/rows?file=%s&offset=%d&length=%d",
		c.baseURL, c.dataset, url.QueryEscape(shard), offset, length)

	var page RowsPage
	if err := c.getJSON(ctx, u, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// statusError is a non-2xx response that is not worth retrying.
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("hub api error: status=%d body=%s", e.code, e.body)
}

func (c *Client) getJSON(ctx context.Context, uri string, out any) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()

	req.Header.SetMethod(fasthttp.MethodGet)
	req.SetRequestURI(uri)
	req.Header.Set("Accept", "application/json")

	if c.headers != nil {
		for k, v := range c.headers() {
			if strings.TrimSpace(k) != "" && strings.TrimSpace(v) != "" {
				req.Header.Set(k, v)
			}
		}
	}

	attempts := c.retryMax
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	var lastStatus int
	for attempt := 1; attempt <= attempts; attempt++ {
		deadline := c.computeDeadline(ctx)
		err := c.http.DoDeadline(req, resp, deadline)
		if err != nil {
			lastErr = err
			lastStatus = 0
			if attempt == attempts {
				break
			}
			if sleepErr := sleepWithContext(ctx, backoffDuration(attempt)); sleepErr != nil {
				return &TransientError{Attempts: attempt, Err: lastErr}
			}
			continue
		}

		status := resp.StatusCode()
		if status < 200 || status >= 300 {
			if !shouldRetryStatus(status) {
				return &statusError{code: status, body: truncate(string(resp.Body()), 512)}
			}
			lastErr = fmt.Errorf("status %d: %s", status, truncate(string(resp.Body()), 512))
			lastStatus = status
			if attempt == attempts {
				break
			}
			if sleepErr := sleepWithContext(ctx, backoffDuration(attempt)); sleepErr != nil {
				return &TransientError{Status: status, Attempts: attempt, Err: lastErr}
			}
			continue
		}

		if out != nil {
			if err := json.Unmarshal(resp.Body(), out); err != nil {
				return fmt.Errorf("decode response: %w", err)
			}
		}
		return nil
	}

	return &TransientError{Status: lastStatus, Attempts: attempts, Err: lastErr}
}

func (c *Client) computeDeadline(ctx context.Context) time.Time {
	clientDL := time.Now().Add(c.defaultTimeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(clientDL) {
		return dl
	}
	return clientDL
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func backoffDuration(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if attempt > 6 {
		attempt = 6
	}
	base := 200 * time.Millisecond
	return time.Duration(1<<uint(attempt-1)) * base // 200ms, 400ms ...
}

func shouldRetryStatus(code int) bool {
	switch code {
	case 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
