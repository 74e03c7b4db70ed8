// internal/pkg/httpclient/client.go
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// DefaultTimeout bounds every participant call. A participant that does not
// answer within it is treated as unavailable by the caller.
const DefaultTimeout = 5 * time.Second

// Resolver maps a logical service name to a base URL.
type Resolver interface {
	Resolve(serviceName string) (string, error)
}

// StaticResolver serves fixed URLs, used when discovery is disabled and in
// tests against httptest servers.
type StaticResolver map[string]string

func (r StaticResolver) Resolve(serviceName string) (string, error) {
	url, ok := r[serviceName]
	if !ok || url == "" {
		return "", errors.Errorf("no address configured for service %q", serviceName)
	}
	return url, nil
}

// Client is a traced HTTP client for participant calls. It owns a shared
// transport; per-call deadlines come from the timeout, not the transport.
type Client struct {
	tracer     trace.Tracer
	httpClient *http.Client
	resolver   Resolver
	timeout    time.Duration
}

func NewClient(tracer trace.Tracer, resolver Resolver) *Client {
	return &Client{
		tracer: tracer,
		httpClient: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 100,
			},
		},
		resolver: resolver,
		timeout:  DefaultTimeout,
	}
}

// Response carries what adapters need to classify an outcome.
type Response struct {
	StatusCode int
	Body       []byte
}

// DoJSON resolves serviceName, issues method path with an optional JSON body
// and the caller's bearer token, and returns the raw response. A transport
// error (including timeout) comes back as a non-nil error; any HTTP status is
// returned to the caller for classification.
func (c *Client) DoJSON(ctx context.Context, method, serviceName, path, token string, body interface{}) (*Response, error) {
	base, err := c.resolver.Resolve(serviceName)
	if err != nil {
		return nil, err
	}

	ctx, span := c.tracer.Start(ctx, "call-"+serviceName, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Wrap(err, "marshal request body")
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, base+path, reader)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	span.SetAttributes(
		attribute.String("http.url", base+path),
		attribute.String("http.method", method),
	)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, errors.Wrapf(err, "call %s %s%s", method, serviceName, path)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		span.RecordError(err)
		return nil, errors.Wrap(err, "read response body")
	}

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode >= http.StatusInternalServerError {
		span.SetStatus(codes.Error, resp.Status)
	}
	return &Response{StatusCode: resp.StatusCode, Body: raw}, nil
}
