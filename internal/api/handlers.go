package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"leverage-calc/internal/advisor"
	"leverage-calc/internal/notify"
	"leverage-calc/internal/params"
	"leverage-calc/internal/risk"

	"github.com/rs/zerolog/log"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGetParams(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Get())
}

// paramsUpdate is a partial parameter edit; absent fields are left
// untouched.
type paramsUpdate struct {
	AccountBalance *float64 `json:"accountBalance"`
	RiskPercentage *float64 `json:"riskPercentage"`
	EntryPrice     *float64 `json:"entryPrice"`
	StopLossPrice  *float64 `json:"stopLossPrice"`
	ActiveView     *string  `json:"activeView"`
}

// handlePutParams applies field edits in the order balance, risk,
// entry, stop, view. Each numeric edit passes the field-level gate;
// risk is clamped to the slider bounds. Cross-field rules are enforced
// when a calculation or suggestion acceptance is attempted, matching
// the edit-as-you-type behavior of the client surface.
func (s *Server) handlePutParams(w http.ResponseWriter, r *http.Request) {
	var update paramsUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var changes []params.Change
	numeric := []struct {
		field params.Field
		value *float64
	}{
		{params.FieldAccountBalance, update.AccountBalance},
		{params.FieldRiskPercentage, update.RiskPercentage},
		{params.FieldEntryPrice, update.EntryPrice},
		{params.FieldStopLossPrice, update.StopLossPrice},
	}
	for _, n := range numeric {
		if n.value == nil {
			continue
		}
		if err := risk.ValidateField(n.field, *n.value); err != nil {
			s.validationFailed(w, err)
			return
		}
		v := *n.value
		if n.field == params.FieldRiskPercentage {
			v = risk.ClampRisk(v)
		}
		changes = append(changes, params.Change{Field: n.field, Value: v})
	}
	if update.ActiveView != nil {
		changes = append(changes, params.Change{Field: params.FieldActiveView, Value: params.ParseView(*update.ActiveView)})
	}

	s.store.SetMany(changes)
	s.broadcastParams()
	writeJSON(w, http.StatusOK, s.store.Get())
}

// handleCalculate runs the current parameter set through the validation
// gate and the sizing engine, caches the result for redisplay, and
// fires the completion notification.
func (s *Server) handleCalculate(w http.ResponseWriter, _ *http.Request) {
	validated, err := risk.Validate(s.store.Get())
	if err != nil {
		s.validationFailed(w, err)
		return
	}

	result, err := risk.Calculate(validated)
	if err != nil {
		if s.metrics != nil {
			s.metrics.CalculationErrors.Inc()
		}
		writeError(w, http.StatusInternalServerError, "calculation failed")
		return
	}

	if s.metrics != nil {
		s.metrics.CalculationsTotal.Inc()
	}
	s.store.SetResult(result)
	s.sendNotification(notify.CalculationDone(result.PositionSizeUSD, result.PositionSizeUnits))

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleResult(w http.ResponseWriter, _ *http.Request) {
	result, ok := s.store.Result()
	if !ok {
		writeError(w, http.StatusNotFound, "no cached result")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type suggestionRequest struct {
	TradingPair  string  `json:"tradingPair"`
	CurrentPrice float64 `json:"currentPrice"`
}

type suggestionResponse struct {
	Advice     advisor.Advice      `json:"advice"`
	Suggestion *advisor.Suggestion `json:"suggestion,omitempty"`
}

// handleSuggestions requests advice for a trading pair. When the caller
// supplies a current price the advice is synthesized into concrete
// entry/stop/target levels as well.
func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	var req suggestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.TradingPair == "" {
		writeError(w, http.StatusBadRequest, "trading pair is required")
		return
	}

	started := time.Now()
	advice, err := s.advisor.RequestSuggestion(r.Context(), req.TradingPair)
	if s.metrics != nil {
		s.metrics.SuggestionLatency.Observe(time.Since(started).Seconds())
	}
	if err != nil {
		var ae *advisor.AdapterError
		if errors.As(err, &ae) {
			writeError(w, http.StatusBadGateway, "advisory service unavailable")
			return
		}
		writeError(w, http.StatusInternalServerError, "suggestion request failed")
		return
	}

	resp := suggestionResponse{Advice: advice}
	if req.CurrentPrice > 0 {
		suggestion := advisor.Synthesize(advice, req.CurrentPrice)
		resp.Suggestion = &suggestion
		s.sendNotification(notify.SuggestionReady(req.TradingPair, suggestion.Confidence))
	}

	writeJSON(w, http.StatusOK, resp)
}

type applyRequest struct {
	EntryPrice float64 `json:"entryPrice"`
	StopLoss   float64 `json:"stopLoss"`
}

// handleApplySuggestion writes a suggestion's entry and stop into the
// parameter store. The candidate passes through the validation gate
// exactly like a manual edit, so a suggestion that violates an
// invariant is rejected here rather than silently applied. The write
// is batched, and the active view flips back to the calculator the way
// the client surface does after acceptance.
func (s *Server) handleApplySuggestion(w http.ResponseWriter, r *http.Request) {
	var req applyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	candidate := s.store.Get()
	candidate.EntryPrice = req.EntryPrice
	candidate.StopLossPrice = req.StopLoss
	candidate.ActiveView = params.ViewCalculator

	validated, err := risk.Validate(candidate)
	if err != nil {
		s.validationFailed(w, err)
		return
	}

	s.store.WriteAll(validated.Params())
	s.broadcastParams()
	s.sendNotification(notify.ParametersApplied())

	writeJSON(w, http.StatusOK, s.store.Get())
}

func (s *Server) validationFailed(w http.ResponseWriter, err error) {
	if s.metrics != nil {
		s.metrics.ValidationFailures.Inc()
	}

	var ve *risk.ValidationError
	if errors.As(err, &ve) {
		writeJSON(w, http.StatusUnprocessableEntity, ve)
		return
	}
	writeError(w, http.StatusUnprocessableEntity, err.Error())
}

func (s *Server) sendNotification(n notify.Notification) {
	if s.notifier == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.notifier.Send(ctx, n)
	}()
}
