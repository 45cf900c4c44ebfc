// Package clients talks to the sibling services that own users, route
// sessions, routes and statuses.
package clients

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/logicaltomy/CONDOR-BACK-TS/internal/contextutils"
)

var tracer = otel.Tracer("condor.clients")

// ErrNotFound is returned when a collaborator answers 404
var ErrNotFound = errors.New("collaborator resource not found")

// UnavailableError describes a collaborator call that failed for any reason
// other than a 404: transport errors, timeouts, 5xx and undecodable bodies.
type UnavailableError struct {
	Service    string
	Path       string
	StatusCode int
	Err        error
}

func (e *UnavailableError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s GET %s: unexpected status %d", e.Service, e.Path, e.StatusCode)
	}
	return fmt.Sprintf("%s GET %s: %v", e.Service, e.Path, e.Err)
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

const maxResponseBytes = 1 << 20

// jsonClient performs bounded JSON GETs against one collaborator base URL
type jsonClient struct {
	service    string
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	logger     *zap.Logger
}

func newJSONClient(service, baseURL string, timeout time.Duration, httpClient *http.Client, logger *zap.Logger) *jsonClient {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &jsonClient{
		service:    service,
		baseURL:    strings.TrimRight(baseURL, "/"),
		timeout:    timeout,
		httpClient: httpClient,
		logger:     logger.With(zap.String("collaborator", service)),
	}
}

// get fetches baseURL+path and decodes the body into out. Every call is
// bounded by the client timeout regardless of the caller's deadline.
func (c *jsonClient) get(ctx context.Context, path string, out interface{}) (err error) {
	ctx, span := tracer.Start(ctx, c.service+".get",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("collaborator.service", c.service),
			attribute.String("http.path", path),
		))
	start := time.Now()
	defer func() {
		outcome := outcomeLabel(err)
		requestDuration.WithLabelValues(c.service, outcome).Observe(time.Since(start).Seconds())
		if err != nil && !errors.Is(err, ErrNotFound) {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return &UnavailableError{Service: c.service, Path: path, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if requestID := contextutils.GetRequestID(ctx); requestID != "" {
		req.Header.Set("X-Request-ID", requestID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("Collaborator request failed",
			zap.String("path", path),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return &UnavailableError{Service: c.service, Path: path, Err: err}
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	switch {
	case resp.StatusCode == http.StatusNotFound:
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return ErrNotFound
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Warn("Collaborator returned unexpected status",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", body))
		return &UnavailableError{Service: c.service, Path: path, StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(out); err != nil {
		return &UnavailableError{Service: c.service, Path: path, Err: fmt.Errorf("decode response: %w", err)}
	}

	return nil
}

func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "error"
	}
}
