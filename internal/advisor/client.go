// Package advisor talks to the external advisory service and turns its
// responses into domain values. Transport failures surface as retryable
// errors; malformed payloads are absorbed into documented conservative
// defaults, because an advisory tool must always return something
// actionable.
package advisor

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

// AdapterError reports a failure talking to the advisory service.
// Kind "transport" covers connection errors and non-success statuses
// and is retryable.
type AdapterError struct {
	Kind string
	Err  error
}

func (e *AdapterError) Error() string {
	return fmt.Sprintf("advisor %s error: %v", e.Kind, e.Err)
}

func (e *AdapterError) Unwrap() error { return e.Err }

// State describes the adapter's view of the most recent request.
type State int

const (
	StateIdle State = iota
	StateRequesting
	StateSucceeded
	StateFailed
)

// MetricsTracker receives adapter counters. Optional.
type MetricsTracker interface {
	SuggestionRequestsInc()
	SuggestionFallbacksInc()
	SuggestionTransportErrorsInc()
}

type suggestionRequest struct {
	TradingPair string `json:"tradingPair"`
}

type suggestionResponse struct {
	Suggestion *Advice `json:"suggestion"`
	Error      string  `json:"error"`
}

// Client is the AI suggestion adapter. Overlapping requests follow a
// supersede-by-latest policy: every request takes a sequence number and
// only the newest one is allowed to settle the observable state, so a
// slow stale response can never overwrite a fresher one.
type Client struct {
	rest   *resty.Client
	url    string
	apiKey string

	mu      sync.Mutex
	seq     uint64
	state   State
	last    *Advice
	lastErr error

	metrics MetricsTracker
}

// NewClient creates an adapter for the advisory endpoint at url. The
// API key is optional and sent as a bearer token when present.
func NewClient(url, apiKey string, timeout time.Duration) *Client {
	r := resty.New()
	if timeout > 0 {
		r.SetTimeout(timeout)
	} else {
		r.SetTimeout(10 * time.Second) // default fallback
	}
	return &Client{rest: r, url: url, apiKey: apiKey, state: StateIdle}
}

// SetMetrics attaches adapter counters.
func (c *Client) SetMetrics(m MetricsTracker) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.metrics = m
}

// State reports the adapter state for the latest request.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Last returns the advice and error from the most recently settled
// request, if any.
func (c *Client) Last() (*Advice, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last, c.lastErr
}

// RequestSuggestion issues one request for the trading pair and awaits
// the single response. No retry, no streaming. On transport failure or
// a non-success status it returns an AdapterError; an unusable payload
// is repaired into the conservative fallback and reported as success.
func (c *Client) RequestSuggestion(ctx context.Context, tradingPair string) (Advice, error) {
	seq := c.begin()

	advice, err := c.fetch(ctx, tradingPair)
	c.settle(seq, advice, err)

	if err != nil {
		return Advice{}, err
	}
	return advice, nil
}

func (c *Client) begin() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	c.state = StateRequesting
	if c.metrics != nil {
		c.metrics.SuggestionRequestsInc()
	}
	return c.seq
}

// settle records the outcome unless a newer request superseded this one.
func (c *Client) settle(seq uint64, advice Advice, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.seq {
		log.Debug().Uint64("seq", seq).Uint64("latest", c.seq).Msg("discarding superseded advisory response")
		return
	}
	if err != nil {
		c.state = StateFailed
		c.last = nil
		c.lastErr = err
		return
	}
	c.state = StateSucceeded
	c.last = &advice
	c.lastErr = nil
}

func (c *Client) fetch(ctx context.Context, tradingPair string) (Advice, error) {
	req := c.rest.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(suggestionRequest{TradingPair: tradingPair})
	if c.apiKey != "" {
		req.SetAuthToken(c.apiKey)
	}

	resp, err := req.Post(c.url)
	if err != nil {
		c.transportErrInc()
		return Advice{}, &AdapterError{Kind: "transport", Err: err}
	}
	if resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		c.transportErrInc()
		var body suggestionResponse
		if json.Unmarshal(resp.Body(), &body) == nil && body.Error != "" {
			return Advice{}, &AdapterError{Kind: "transport", Err: fmt.Errorf("status %d: %s", resp.StatusCode(), body.Error)}
		}
		return Advice{}, &AdapterError{Kind: "transport", Err: fmt.Errorf("status %d", resp.StatusCode())}
	}

	var body suggestionResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil || body.Suggestion == nil {
		log.Warn().Str("pair", tradingPair).Msg("unparseable advisory payload, using fallback suggestion")
		c.fallbackInc()
		return fallbackAdvice(tradingPair), nil
	}

	advice, repaired := normalize(*body.Suggestion, tradingPair)
	if repaired {
		log.Debug().Str("pair", tradingPair).Msg("advisory payload repaired with defaults")
		c.fallbackInc()
	}
	return advice, nil
}

func (c *Client) transportErrInc() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.metrics != nil {
		c.metrics.SuggestionTransportErrorsInc()
	}
}

func (c *Client) fallbackInc() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.metrics != nil {
		c.metrics.SuggestionFallbacksInc()
	}
}
