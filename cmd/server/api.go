package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Simplici0/pouch.works/internal/export"
	"github.com/Simplici0/pouch.works/internal/pricing"
	"github.com/Simplici0/pouch.works/internal/quote"
	"github.com/Simplici0/pouch.works/internal/ratecard"
)

const (
	maxBodyBytes = 1 << 20
	maxDelay     = 10 * time.Second
)

type estimateResponse struct {
	Quantity      int     `json:"quantity"`
	HighVolume    bool    `json:"highVolume"`
	MaterialRate  float64 `json:"materialRate"`
	MaterialCost  float64 `json:"materialCost"`
	SetupPerUnit  float64 `json:"setupPerUnit"`
	ProcessingFee float64 `json:"processingFee"`
	Offset        float64 `json:"offset"`
	UnitPrice     float64 `json:"unitPrice"`
	TotalPrice    float64 `json:"totalPrice"`
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func (s *server) handlePrice(w http.ResponseWriter, r *http.Request) {
	var input pricing.PriceCalculationInput
	if !decodeJSON(w, r, &input) {
		return
	}

	result, err := s.engine.CalculatePrice(r.Context(), input)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *server) handleQuotes(w http.ResponseWriter, r *http.Request) {
	_, results, ok := s.calculateQuotes(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (s *server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	state, results, ok := s.calculateQuotes(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, state, results); err != nil {
		s.requestLogger(r).Error().Err(err).Msg("xlsx export failed")
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="quotes.xlsx"`)
	_, _ = w.Write(buf.Bytes())
}

func (s *server) handleExportText(w http.ResponseWriter, r *http.Request) {
	state, results, ok := s.calculateQuotes(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := export.WriteText(&buf, export.ParseLang(r.URL.Query().Get("lang")), state, results); err != nil {
		s.requestLogger(r).Error().Err(err).Msg("text export failed")
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// calculateQuotes decodes a simulation state and prices it. On failure the
// response has already been written.
func (s *server) calculateQuotes(w http.ResponseWriter, r *http.Request) (quote.SimulationState, []quote.QuotationResult, bool) {
	var state quote.SimulationState
	if !decodeJSON(w, r, &state) {
		return state, nil, false
	}

	delay, err := parseDelay(r.URL.Query().Get("delayMs"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return state, nil, false
	}

	results, err := s.quotes.Calculate(r.Context(), state, delay)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			writeError(w, http.StatusServiceUnavailable, "request canceled")
			return state, nil, false
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return state, nil, false
	}
	return state, results, true
}

func (s *server) handleEstimate(w http.ResponseWriter, r *http.Request) {
	var input ratecard.Input
	if !decodeJSON(w, r, &input) {
		return
	}

	est, err := s.ratecard.Estimate(input)
	if errors.Is(err, ratecard.ErrInvalidInput) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, estimateResponse{
		Quantity:      est.Quantity,
		HighVolume:    est.HighVolume,
		MaterialRate:  est.MaterialRate.InexactFloat64(),
		MaterialCost:  est.MaterialCost.InexactFloat64(),
		SetupPerUnit:  est.SetupPerUnit.InexactFloat64(),
		ProcessingFee: est.ProcessingFee.InexactFloat64(),
		Offset:        est.Offset.InexactFloat64(),
		UnitPrice:     est.UnitPrice.InexactFloat64(),
		TotalPrice:    est.TotalPrice.InexactFloat64(),
	})
}

func parseDelay(raw string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}
	ms, err := strconv.Atoi(raw)
	if err != nil || ms < 0 {
		return 0, fmt.Errorf("delayMs must be a non-negative integer")
	}
	d := time.Duration(ms) * time.Millisecond
	if d > maxDelay {
		d = maxDelay
	}
	return d, nil
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
