// Package backend is the REST client for the wellness service that owns the
// daily records, diary entries and product catalogs.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"github.com/saadjs/kcal-sync/internal/metrics"
)

const (
	defaultBaseURL = "http://localhost:8000/api"
	userAgent      = "kcal-sync/1.0 (+https://github.com/saadjs/kcal-sync)"
)

type Client struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
	// Limiter throttles outgoing calls. Nil means unlimited.
	Limiter *rate.Limiter
	Logger  logrus.FieldLogger
}

// NewLimiter allows rps requests per second with the given burst. rps <= 0
// disables throttling.
func NewLimiter(rps float64, burst int) *rate.Limiter {
	if rps <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

func (c *Client) base() string {
	base := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if base == "" {
		base = defaultBaseURL
	}
	return base
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient == nil {
		return &http.Client{Timeout: 12 * time.Second}
	}
	return c.HTTPClient
}

func (c *Client) logger() logrus.FieldLogger {
	if c.Logger == nil {
		return logrus.StandardLogger()
	}
	return c.Logger
}

// do performs one request and classifies the outcome. A nil payload sends no
// body. The response body is returned for 2xx answers only.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, payload any) ([]byte, error) {
	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return nil, &Error{Kind: KindTransient, Op: op, Err: err}
		}
	}

	u := c.base() + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal %s payload: %w", op, err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("create %s request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := strings.TrimSpace(c.Token); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient().Do(req)
	if err != nil {
		metrics.ObserveBackendRequest(op, 0, time.Since(start))
		return nil, &Error{Kind: KindTransient, Op: op, Err: err}
	}
	defer resp.Body.Close()
	metrics.ObserveBackendRequest(op, resp.StatusCode, time.Since(start))

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Kind: KindTransient, Op: op, Status: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}
	c.logger().WithFields(logrus.Fields{
		"op":     op,
		"method": method,
		"status": resp.StatusCode,
		"took":   time.Since(start).String(),
	}).Debug("backend call")

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, &Error{Kind: KindNotFound, Op: op, Status: resp.StatusCode, Detail: errorDetail(raw)}
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, &Error{Kind: KindTransient, Op: op, Status: resp.StatusCode, Detail: errorDetail(raw)}
	}
	return raw, nil
}

func decode(op string, raw []byte, out any) error {
	if err := json.Unmarshal(raw, out); err != nil {
		return &Error{Kind: KindDecode, Op: op, Err: err}
	}
	return nil
}

// errorDetail pulls the human readable message out of the usual error bodies.
func errorDetail(raw []byte) string {
	if !gjson.ValidBytes(raw) {
		return ""
	}
	for _, path := range []string{"detail", "error", "message"} {
		if v := gjson.GetBytes(raw, path); v.Exists() && v.Type == gjson.String {
			return v.String()
		}
	}
	return ""
}

// flexFloat accepts numbers, numeric strings (decimal columns) and null.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid number %q", s)
	}
	*f = flexFloat(v)
	return nil
}
