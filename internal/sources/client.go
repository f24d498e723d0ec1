// Happening - Local Event Aggregation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/happening

package sources

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/happening/internal/logging"
	"github.com/tomtom215/happening/internal/metrics"
	"github.com/tomtom215/happening/internal/models"
	"github.com/tomtom215/happening/internal/normalize"
)

const (
	// defaultMaxBodyBytes caps a single upstream page.
	defaultMaxBodyBytes = 16 << 20

	// maxErrorBodySize caps the error body snippet kept for logs.
	maxErrorBodySize = 256

	userAgent = "happening/1.0 (+https://github.com/tomtom215/happening)"
)

// client is the HTTP plumbing shared by every adapter: a circuit breaker,
// a page pacer and a size-capped JSON decoder.
type client struct {
	source     models.Source
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[[]byte]
	pacer      *rate.Limiter
	maxBody    int64
}

func newClient(source models.Source, timeout time.Duration, requestsPerSecond float64, settings BreakerSettings) *client {
	limit := rate.Inf
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
	}
	return &client{
		source:     source,
		httpClient: &http.Client{Timeout: timeout},
		breaker:    newBreaker(breakerName(source), settings),
		pacer:      rate.NewLimiter(limit, 1),
		maxBody:    defaultMaxBodyBytes,
	}
}

// circuitState returns the breaker state name.
func (c *client) circuitState() string {
	return stateToString(c.breaker.State())
}

// getJSON waits for the pacer, performs a GET through the breaker and
// decodes the body into out.
func (c *client) getJSON(ctx context.Context, rawURL string, out interface{}) error {
	if err := c.pacer.Wait(ctx); err != nil {
		return &UpstreamError{Source: c.source, URL: logging.SanitizeURL(rawURL), Reason: ReasonTimeout, Err: err}
	}

	body, err := c.execute(rawURL, func() ([]byte, error) {
		return c.get(ctx, rawURL)
	})
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &UpstreamError{Source: c.source, URL: logging.SanitizeURL(rawURL), Reason: ReasonDecode, Err: err}
	}
	return nil
}

// execute wraps an upstream call with circuit breaker protection
func (c *client) execute(rawURL string, fn func() ([]byte, error)) ([]byte, error) {
	name := c.breaker.Name()
	body, err := c.breaker.Execute(fn)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(name, "rejected").Inc()
			return nil, &UpstreamError{Source: c.source, URL: logging.SanitizeURL(rawURL), Reason: ReasonCircuitOpen, Err: err}
		}
		metrics.CircuitBreakerRequests.WithLabelValues(name, "failure").Inc()
		return nil, err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(name, "success").Inc()
	return body, nil
}

func (c *client) get(ctx context.Context, rawURL string) ([]byte, error) {
	safeURL := logging.SanitizeURL(rawURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, &UpstreamError{Source: c.source, URL: safeURL, Reason: ReasonTransport, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// url.Error repeats the full request URL, credentials included.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		reason := ReasonTransport
		var netErr net.Error
		if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
			reason = ReasonTimeout
		}
		return nil, &UpstreamError{Source: c.source, URL: safeURL, Reason: reason, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet := logging.SanitizeValue(string(readBodyForError(resp.Body)), maxErrorBodySize)
		return nil, &UpstreamError{
			Source: c.source,
			URL:    safeURL,
			Status: resp.StatusCode,
			Reason: ReasonStatus,
			Err:    fmt.Errorf("unexpected status: %s", snippet),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, &UpstreamError{Source: c.source, URL: safeURL, Reason: ReasonTransport, Err: fmt.Errorf("read body: %w", err)}
	}
	if int64(len(body)) > c.maxBody {
		return nil, &UpstreamError{Source: c.source, URL: safeURL, Reason: ReasonTooLarge, Err: fmt.Errorf("body exceeds %d bytes", c.maxBody)}
	}
	return body, nil
}

// readBodyForError reads a bounded prefix of an error response body
func readBodyForError(r io.Reader) []byte {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return []byte("(failed to read response body)")
	}
	return body
}

// run applies the adapter timeout, turns failures into an empty list and
// passes every candidate through the shared normalizer.
func (c *client) run(ctx context.Context, timeout time.Duration, norm *normalize.Normalizer, bounds *models.Bounds, fetch func(context.Context) ([]normalize.Candidate, error)) []models.NormalizedEvent {
	start := time.Now()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	logger := logging.Ctx(ctx).With().Str("source", string(c.source)).Logger()

	candidates, err := fetch(ctx)
	if err != nil {
		reason := ReasonOf(err)
		metrics.RecordSourceFetch(string(c.source), time.Since(start), 0, reason)
		if reason == ReasonCircuitOpen {
			logger.Debug().Msg("Circuit open, skipping source")
		} else {
			logger.Warn().Err(err).Str("reason", reason).Msg("Source fetch failed")
		}
		return []models.NormalizedEvent{}
	}

	events := make([]models.NormalizedEvent, 0, len(candidates))
	discarded := make(map[string]int)
	for i := range candidates {
		event, reason, ok := norm.Accept(&candidates[i], bounds)
		if !ok {
			discarded[reason]++
			continue
		}
		events = append(events, event)
	}
	for reason, n := range discarded {
		metrics.RecordDiscarded(string(c.source), reason, n)
	}

	duration := time.Since(start)
	metrics.RecordSourceFetch(string(c.source), duration, len(events), "")
	logger.Debug().
		Int("upstream", len(candidates)).
		Int("accepted", len(events)).
		Dur("duration", duration).
		Msg("Source fetch complete")

	return events
}
