package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
)

const DefaultTimeout = 30 * time.Second

// Request describes one call to a registered endpoint.
type Request struct {
	Endpoint EndpointName
	// empty means the endpoint's default method
	Method  string
	Headers map[string]string
	JSON    any
	Query   map[string]string
	Expect  Shape
}

// Switch reports whether outbound calls are currently disabled.
type Switch interface {
	Disabled() bool
}

// Observer is told about every call that reached the network.
type Observer func(name EndpointName, took time.Duration, err error)

// Client issues single-attempt requests to registered endpoints and
// classifies the result.
type Client struct {
	registry *Registry
	http     *resty.Client
	ok       OKStatusSet
	timeout  time.Duration
	sw       Switch
	observe  Observer
	logger   *slog.Logger
}

type ClientOption func(*Client)

func WithOKStatusSet(ok OKStatusSet) ClientOption {
	return func(c *Client) {
		if len(ok) > 0 {
			c.ok = ok
		}
	}
}

// WithTimeout sets the deadline used when the caller's context has none.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithSwitch(sw Switch) ClientOption {
	return func(c *Client) {
		c.sw = sw
	}
}

func WithObserver(fn Observer) ClientOption {
	return func(c *Client) {
		c.observe = fn
	}
}

func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithTransport replaces the underlying round tripper.
func WithTransport(rt http.RoundTripper) ClientOption {
	return func(c *Client) {
		c.http.SetTransport(rt)
	}
}

func NewClient(registry *Registry, opts ...ClientOption) *Client {
	c := &Client{
		registry: registry,
		http:     resty.New().SetRetryCount(0),
		ok:       DefaultOKStatusSet(),
		timeout:  DefaultTimeout,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.http.SetLogger(restyLogger{c.logger.With("component", "resty")})
	return c
}

func (c *Client) Registry() *Registry {
	return c.registry
}

var allowedMethods = map[string]struct{}{
	http.MethodGet:    {},
	http.MethodPost:   {},
	http.MethodPatch:  {},
	http.MethodDelete: {},
}

// Call sends req and returns either a Response or an error. Classified
// failures are *Failure; anything else (unknown endpoint, unsupported
// method) is a programming error.
func (c *Client) Call(ctx context.Context, req Request) (*Response, error) {
	if c.sw != nil && c.sw.Disabled() {
		return nil, &Failure{
			Kind:     FailureNonOKStatus,
			Endpoint: req.Endpoint,
			Status:   http.StatusInternalServerError,
			Reason:   "system in recovery",
			Detail:   "system in recovery",
		}
	}

	ep, err := c.registry.Resolve(req.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("(*Client).Call: %w", err)
	}
	method := strings.ToUpper(strings.TrimSpace(req.Method))
	if method == "" {
		method = ep.Method
	}
	if _, ok := allowedMethods[method]; !ok {
		return nil, fmt.Errorf("(*Client).Call: unsupported method %q for %s", method, ep.Name)
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	r := c.http.R().
		SetContext(ctx).
		SetHeaders(MergeHeaders(ep.Headers(), req.Headers)).
		SetQueryParams(req.Query)
	if req.JSON != nil {
		r.SetHeader("Content-Type", "application/json").SetBody(req.JSON)
	}

	start := time.Now()
	resp, err := r.Execute(method, ep.URL)
	took := time.Since(start)
	if err != nil {
		failure := c.transportFailure(ctx, ep, err)
		c.report(ep.Name, took, failure)
		return nil, failure
	}

	status := resp.StatusCode()
	reason := statusReason(status, resp.Status())
	contentType := resp.Header().Get("Content-Type")
	raw := resp.Body()

	if !c.ok.Contains(status) {
		failure := &Failure{
			Kind:     FailureNonOKStatus,
			Endpoint: ep.Name,
			Status:   status,
			Reason:   reason,
			Detail:   reason,
			Body:     readBody(raw, contentType, ShapeAny),
		}
		c.report(ep.Name, took, failure)
		return nil, failure
	}

	body := readBody(raw, contentType, req.Expect)
	if req.Expect == ShapeJSON && body.Kind != BodyJSON {
		failure := &Failure{
			Kind:     FailureBadMimeType,
			Endpoint: ep.Name,
			Status:   status,
			Reason:   reason,
			Detail:   fmt.Sprintf("expected application/json, got %q", contentType),
		}
		c.report(ep.Name, took, failure)
		return nil, failure
	}

	c.report(ep.Name, took, nil)
	return &Response{
		Endpoint: ep.Name,
		Status:   status,
		Reason:   reason,
		Body:     body,
	}, nil
}

func (c *Client) transportFailure(ctx context.Context, ep Endpoint, err error) *Failure {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		c.logger.Debug("request timed out", "endpoint", ep.Name, "url", ep.URL)
		return &Failure{
			Kind:     FailureTimeout,
			Endpoint: ep.Name,
			Status:   http.StatusGatewayTimeout,
			Reason:   http.StatusText(http.StatusGatewayTimeout),
			Detail:   "deadline exceeded",
			Err:      err,
		}
	}
	c.logger.Warn("request failed", "endpoint", ep.Name, "url", ep.URL, "error", err)
	return &Failure{
		Kind:     FailureTransport,
		Endpoint: ep.Name,
		Detail:   err.Error(),
		Err:      err,
	}
}

func (c *Client) report(name EndpointName, took time.Duration, failure *Failure) {
	if c.observe == nil {
		return
	}
	if failure == nil {
		c.observe(name, took, nil)
		return
	}
	c.observe(name, took, failure)
}

// MergeHeaders layers call-specific headers over endpoint defaults. Keys
// are compared canonically so "authorization" overrides "Authorization".
func MergeHeaders(defaults, call map[string]string) map[string]string {
	merged := make(map[string]string, len(defaults)+len(call))
	for k, v := range defaults {
		merged[http.CanonicalHeaderKey(k)] = v
	}
	for k, v := range call {
		merged[http.CanonicalHeaderKey(k)] = v
	}
	return merged
}

func readBody(raw []byte, contentType string, expect Shape) Body {
	b := Body{ContentType: contentType, Raw: raw}
	switch {
	case expect == ShapeBytes:
		b.Kind = BodyBytes
	case len(raw) == 0:
		b.Kind = BodyEmpty
	case gjson.ValidBytes(raw):
		b.Kind = BodyJSON
	default:
		b.Kind = BodyText
	}
	return b
}

// statusReason extracts "Forbidden" out of "403 Forbidden".
func statusReason(code int, status string) string {
	reason := strings.TrimSpace(strings.TrimPrefix(status, strconv.Itoa(code)))
	if reason == "" {
		reason = http.StatusText(code)
	}
	return reason
}

type restyLogger struct {
	logger *slog.Logger
}

func (l restyLogger) Errorf(format string, v ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, v...))
}

func (l restyLogger) Warnf(format string, v ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, v...))
}

func (l restyLogger) Debugf(format string, v ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, v...))
}
