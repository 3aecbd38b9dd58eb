// Package rest fetches ArcGIS REST resources and hydrates them into Go values.
package rest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/tidwall/gjson"

	apperrors "github.com/geocrest/gateway/internal/errors"
)

// DefaultTimeout bounds a single remote request when no timeout is configured.
const DefaultTimeout = 30 * time.Second

// Observer is notified of every remote exchange and breaker transition.
type Observer interface {
	ObserveRequest(ctx context.Context, method, host string, statusCode int, duration time.Duration, err error)
	ObserveBreakerState(name, from, to string)
}

type noopObserver struct{}

func (noopObserver) ObserveRequest(context.Context, string, string, int, time.Duration, error) {}
func (noopObserver) ObserveBreakerState(string, string, string)                                {}

// Client performs requests against ArcGIS servers. It is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[[]byte]
	observer   Observer
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-request timeout of the underlying HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithObserver reports remote exchanges to observer.
func WithObserver(observer Observer) Option {
	return func(c *Client) {
		if observer != nil {
			c.observer = observer
		}
	}
}

// WithCircuitBreaker guards transport calls with a circuit breaker.
//
// Only transport failures (unreachable hosts, 5xx) count against the breaker.
// While open, requests fail fast with apperrors.ErrUnreachable.
func WithCircuitBreaker(name string) Option {
	return func(c *Client) {
		c.breaker = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
			Name:        name,
			MaxRequests: 3,
			Interval:    time.Minute,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				if counts.Requests < 10 {
					return false
				}
				return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
			},
			IsSuccessful: func(err error) bool {
				return err == nil || !apperrors.Is(err, apperrors.ErrUnreachable)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				c.logger.Warn("circuit breaker state changed",
					slog.String("name", name),
					slog.String("from", from.String()),
					slog.String("to", to.String()))
				c.observer.ObserveBreakerState(name, from.String(), to.String())
			},
		})
	}
}

// NewClient creates a Client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		observer:   noopObserver{},
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RequestOption adjusts a single request.
type RequestOption func(*requestOptions)

type requestOptions struct {
	proxyURL string
}

// WithProxy routes the request through proxyURL as proxyURL + "?" + target.
// An empty proxyURL is ignored.
func WithProxy(proxyURL string) RequestOption {
	return func(o *requestOptions) {
		o.proxyURL = proxyURL
	}
}

// ProxiedURL returns target rewritten through proxyURL, or target unchanged when proxyURL is empty.
func ProxiedURL(proxyURL, target string) string {
	if proxyURL == "" {
		return target
	}
	return proxyURL + "?" + target
}

// WithFormat returns target with f=json set, replacing any existing format.
func WithFormat(target string) (string, error) {
	u, err := url.Parse(target)
	if err != nil {
		return "", apperrors.Wrapf(apperrors.ErrInvalidInput, "invalid url %q", target)
	}
	q := u.Query()
	q.Set("f", "json")
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// IsServicesURL reports whether target addresses an ArcGIS REST services endpoint.
func IsServicesURL(target string) bool {
	return strings.Contains(strings.ToLower(target), "/rest/services")
}

// Get fetches target with f=json and returns the raw body after envelope checks.
func (c *Client) Get(ctx context.Context, target string, opts ...RequestOption) ([]byte, error) {
	o := applyOptions(opts)

	formatted, err := WithFormat(target)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ProxiedURL(o.proxyURL, formatted), nil)
	if err != nil {
		return nil, &RequestError{URL: target, Err: apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())}
	}

	body, err := c.execute(req, target)
	if err != nil {
		return nil, err
	}
	return body, checkEnvelope(target, body)
}

// Post sends form (plus f=json) to target as application/x-www-form-urlencoded.
func (c *Client) Post(ctx context.Context, target string, form url.Values, opts ...RequestOption) ([]byte, error) {
	o := applyOptions(opts)

	values := url.Values{}
	for k, v := range form {
		values[k] = v
	}
	values.Set("f", "json")

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		ProxiedURL(o.proxyURL, target),
		strings.NewReader(values.Encode()),
	)
	if err != nil {
		return nil, &RequestError{URL: target, Err: apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	body, err := c.execute(req, target)
	if err != nil {
		return nil, err
	}
	return body, checkEnvelope(target, body)
}

func applyOptions(opts []RequestOption) requestOptions {
	var o requestOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// execute runs the exchange through the breaker when one is configured.
func (c *Client) execute(req *http.Request, target string) ([]byte, error) {
	if c.breaker == nil {
		return c.do(req, target)
	}

	body, err := c.breaker.Execute(func() ([]byte, error) {
		return c.do(req, target)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, &RequestError{URL: target, Err: apperrors.Wrap(apperrors.ErrUnreachable, err.Error())}
	}
	return body, err
}

func (c *Client) do(req *http.Request, target string) (body []byte, err error) {
	start := time.Now()
	statusCode := 0
	defer func() {
		c.observer.ObserveRequest(req.Context(), req.Method, req.URL.Host, statusCode, time.Since(start), err)
	}()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return nil, &RequestError{URL: target, Err: ctxErr}
		}
		var dnsErr *net.DNSError
		if errors.As(err, &dnsErr) {
			return nil, &RequestError{URL: target, Err: fmt.Errorf("%w: %w", ErrHostUnresolvable, err)}
		}
		return nil, &RequestError{URL: target, Err: fmt.Errorf("%w: %w", apperrors.ErrUnreachable, err)}
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	statusCode = resp.StatusCode

	c.logger.Debug("arcgis request",
		slog.String("method", req.Method),
		slog.String("url", target),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)))

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, &RequestError{URL: target, StatusCode: resp.StatusCode, Err: ErrServiceNotFound}
	case resp.StatusCode == http.StatusBadGateway:
		return nil, &RequestError{URL: target, StatusCode: resp.StatusCode, Err: ErrHostUnresolvable}
	}

	// ArcGIS may report the failure in an envelope on the error status itself.
	if resp.StatusCode >= http.StatusBadRequest {
		errBody, readErr := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		if readErr == nil {
			if remote := checkEnvelope(target, errBody); remote != nil {
				return nil, remote
			}
		}
	}

	switch {
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, &RequestError{URL: target, StatusCode: resp.StatusCode, Err: apperrors.ErrUnreachable}
	case resp.StatusCode >= http.StatusBadRequest:
		return nil, &RequestError{URL: target, StatusCode: resp.StatusCode, Err: apperrors.ErrRemoteRejected}
	}

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RequestError{URL: target, StatusCode: resp.StatusCode, Err: fmt.Errorf("%w: %w", apperrors.ErrUnreachable, err)}
	}
	return body, nil
}

// maxErrorBody caps how much of an error response is read for an envelope.
const maxErrorBody = 64 << 10

// checkEnvelope turns an ArcGIS {"error": {...}} body into a RemoteError.
// Only services endpoints are checked; other hosts may legitimately return an "error" field.
func checkEnvelope(target string, body []byte) error {
	if !IsServicesURL(target) || len(body) == 0 {
		return nil
	}

	envelope := gjson.GetBytes(body, "error")
	if !envelope.IsObject() {
		return nil
	}

	remote := &RemoteError{
		Code:    int(envelope.Get("code").Int()),
		Message: envelope.Get("message").String(),
		URL:     target,
	}
	for _, d := range envelope.Get("details").Array() {
		if s := d.String(); s != "" {
			remote.Details = append(remote.Details, s)
		}
	}
	return remote
}

// decode unmarshals body into a T. An empty body yields the zero value.
func decode[T any](target string, body []byte) (T, error) {
	var out T
	if len(strings.TrimSpace(string(body))) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return out, &RequestError{URL: target, Err: fmt.Errorf("%w: %w", ErrMalformedResponse, err)}
	}
	return out, nil
}
