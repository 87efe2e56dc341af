// Package upstream is the HTTP client for the alumni REST API. Every call
// carries the caller's bearer token and request id; failures are translated
// into typed application errors that keep the server's message.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/alumni-portal/pkg/config"
	appErrors "github.com/noah-isme/alumni-portal/pkg/errors"
	"github.com/noah-isme/alumni-portal/pkg/middleware/requestid"
)

const maxErrorBody = 64 << 10

// Observer receives per-call timings.
type Observer interface {
	ObserveUpstream(method, operation string, status int, duration time.Duration)
}

// Error is a non-2xx response from the upstream API.
type Error struct {
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("upstream returned status %d", e.Status)
	}
	return fmt.Sprintf("upstream returned status %d: %s", e.Status, e.Message)
}

// ServerMessage is the message the upstream API supplied, if any.
func (e *Error) ServerMessage() string {
	return e.Message
}

// IsNotFound reports whether err is an upstream 404.
func IsNotFound(err error) bool {
	var ue *Error
	return errors.As(err, &ue) && ue.Status == http.StatusNotFound
}

type envelope struct {
	Success *bool           `json:"success"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
	Data    json.RawMessage `json:"data"`
}

// Client talks to the upstream API.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
	metrics Observer
}

// New builds a client for cfg. A nil observer disables timing.
func New(cfg config.UpstreamConfig, logger *zap.Logger, metrics Observer) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
		metrics: metrics,
	}
}

// WithHTTPClient swaps the underlying transport client.
func (c *Client) WithHTTPClient(h *http.Client) *Client {
	if h != nil {
		c.http = h
	}
	return c
}

type call struct {
	method    string
	path      string
	operation string
	token     string
	query     url.Values
	body      interface{}
}

// do executes the call and decodes the envelope's data into out. It returns
// the envelope message.
func (c *Client) do(ctx context.Context, in call, out interface{}) (string, error) {
	target := c.baseURL + in.path
	if len(in.query) > 0 {
		target += "?" + in.query.Encode()
	}

	var body io.Reader
	if in.body != nil {
		raw, err := json.Marshal(in.body)
		if err != nil {
			return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode upstream request")
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, in.method, target, body)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build upstream request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if in.token != "" {
		req.Header.Set("Authorization", "Bearer "+in.token)
	}
	if id := requestid.FromContext(ctx); id != "" {
		req.Header.Set(requestid.HeaderKey, id)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	duration := time.Since(start)

	status := http.StatusServiceUnavailable
	if resp != nil {
		status = resp.StatusCode
	}
	if c.metrics != nil {
		c.metrics.ObserveUpstream(in.method, in.operation, status, duration)
	}

	if err != nil {
		c.logger.Warn("upstream call failed",
			zap.String("operation", in.operation),
			zap.String("method", in.method),
			zap.Duration("latency", duration),
			zap.Error(err),
		)
		return "", translateTransport(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		upErr := decodeError(resp)
		c.logger.Warn("upstream rejected call",
			zap.String("operation", in.operation),
			zap.Int("status", resp.StatusCode),
			zap.String("message", upErr.Message),
		)
		return "", translateStatus(upErr)
	}

	if resp.StatusCode == http.StatusNoContent {
		return "", nil
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		if errors.Is(err, io.EOF) {
			return "", nil
		}
		return "", appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, appErrors.ErrUpstream.Message)
	}
	if env.Success != nil && !*env.Success {
		upErr := &Error{Status: http.StatusBadRequest, Code: env.Code, Message: firstNonEmpty(env.Message, env.Error)}
		return "", translateStatus(upErr)
	}
	if out != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return "", appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, appErrors.ErrUpstream.Message)
		}
	}
	return env.Message, nil
}

func decodeError(resp *http.Response) *Error {
	upErr := &Error{Status: resp.StatusCode}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(raw) == 0 {
		return upErr
	}
	var env envelope
	if json.Unmarshal(raw, &env) == nil {
		upErr.Code = env.Code
		upErr.Message = firstNonEmpty(env.Message, env.Error)
	}
	return upErr
}

func translateStatus(upErr *Error) error {
	var base *appErrors.Error
	switch {
	case upErr.Status == http.StatusNotFound:
		base = appErrors.ErrNotFound
	case upErr.Status == http.StatusUnauthorized:
		base = appErrors.ErrUnauthorized
	case upErr.Status == http.StatusForbidden:
		base = appErrors.ErrForbidden
	case upErr.Status == http.StatusConflict:
		base = appErrors.ErrConflict
	case upErr.Status >= 400 && upErr.Status < 500:
		base = appErrors.ErrValidation
	default:
		base = appErrors.ErrUpstream
	}
	message := base.Message
	switch {
	case upErr.Message != "" && base.Status < http.StatusInternalServerError:
		message = upErr.Message
	case upErr.Status == http.StatusForbidden:
		message = appErrors.GenericMessage
	}
	return appErrors.Wrap(upErr, base.Code, base.Status, message)
}

func translateTransport(err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return appErrors.Wrap(err, appErrors.ErrUpstreamTimeout.Code, appErrors.ErrUpstreamTimeout.Status, appErrors.ErrUpstreamTimeout.Message)
	}
	return appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, appErrors.ErrUpstream.Message)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
