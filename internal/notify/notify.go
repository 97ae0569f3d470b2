// Package notify delivers fire-and-forget notifications to the host
// surface's webhook. Delivery failures are logged and never reach core
// state.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

// Notification is the title/body pair shown by the host.
type Notification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Sender posts notifications to a configured webhook. A Sender with an
// empty URL is valid and drops everything silently.
type Sender struct {
	rest *resty.Client
	url  string
}

func NewSender(url string, timeout time.Duration) *Sender {
	r := resty.New()
	if timeout > 0 {
		r.SetTimeout(timeout)
	} else {
		r.SetTimeout(5 * time.Second)
	}
	return &Sender{rest: r, url: url}
}

// Send delivers one notification. Always returns nil from the caller's
// point of view; failures are logged here.
func (s *Sender) Send(ctx context.Context, n Notification) {
	if s.url == "" {
		return
	}

	resp, err := s.rest.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(n).
		Post(s.url)
	if err != nil {
		log.Warn().Err(err).Str("title", n.Title).Msg("notification delivery failed")
		return
	}
	if resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		log.Warn().Int("status", resp.StatusCode()).Str("title", n.Title).Msg("notification rejected")
	}
}

// CalculationDone formats the calculation-complete notification the way
// the client surface words it.
func CalculationDone(positionUSD, positionUnits float64) Notification {
	return Notification{
		Title: "Position Calculated!",
		Body:  fmt.Sprintf("Position size: $%.2f (%.4f units)", positionUSD, positionUnits),
	}
}

// SuggestionReady formats the advisory-complete notification.
func SuggestionReady(tradingPair string, confidence float64) Notification {
	return Notification{
		Title: "AI Suggestion Ready!",
		Body:  fmt.Sprintf("%s analysis complete with %.0f%% confidence", tradingPair, confidence),
	}
}

// ParametersApplied formats the suggestion-accepted notification.
func ParametersApplied() Notification {
	return Notification{
		Title: "Parameters Applied!",
		Body:  "AI suggestions have been applied to the calculator",
	}
}
