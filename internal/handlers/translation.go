package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/voulezvous/translation-ledger/internal/models"
	"github.com/voulezvous/translation-ledger/internal/provider"
	"github.com/voulezvous/translation-ledger/internal/schema"
	"github.com/voulezvous/translation-ledger/internal/services"
)

type TranslationHandler struct {
	pipeline *services.PipelineService
	prov     provider.Provider
}

func NewTranslationHandler(pipeline *services.PipelineService, prov provider.Provider) *TranslationHandler {
	return &TranslationHandler{
		pipeline: pipeline,
		prov:     prov,
	}
}

func (h *TranslationHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/translations", h.handleTranslate)
	mux.HandleFunc("/ledger", h.handleLedger)
	mux.HandleFunc("/logs", h.handleLogs)
	mux.HandleFunc("/healthz", h.handleHealth)
}

func (h *TranslationHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *TranslationHandler) handleTranslate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST only", http.StatusMethodNotAllowed)
		return
	}

	var req models.TranslationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if req.ReqID == "" {
		req.ReqID = ulid.Make().String()
	}

	if traceID := r.Header.Get("X-Trace-ID"); traceID != "" {
		req.TraceID = traceID
	}

	start := time.Now()
	env, err := h.pipeline.Process(r.Context(), h.prov, req, "http.translations", "http-worker")
	if err != nil {
		h.writeError(w, req.ReqID, start, err)
		return
	}

	resp := services.TranslationResponse{
		ReqID:      req.ReqID,
		ContractID: env.Contract.ID,
		Envelope:   env,
		DurationMs: time.Since(start).Milliseconds(),
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// writeError maps pipeline failures onto status codes: request/schema
// violations are the caller's fault, provider failures are a bad gateway,
// anything else (persistence) is internal.
func (h *TranslationHandler) writeError(w http.ResponseWriter, reqID string, start time.Time, err error) {
	code := http.StatusInternalServerError

	var valErr *schema.ValidationError
	var reqErr *schema.RequiredFieldError
	var rangeErr *schema.RangeError
	var provErr *services.ProviderError
	switch {
	case errors.As(err, &valErr), errors.As(err, &reqErr), errors.As(err, &rangeErr):
		code = http.StatusBadRequest
	case errors.As(err, &provErr):
		code = http.StatusBadGateway
	}

	resp := services.TranslationResponse{
		ReqID:      reqID,
		DurationMs: time.Since(start).Milliseconds(),
		Error:      err.Error(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(resp)
}

func (h *TranslationHandler) handleLedger(w http.ResponseWriter, r *http.Request) {
	envelopes, err := h.pipeline.Ledger().ReadAll()
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to read ledger: %v", err), http.StatusInternalServerError)
		return
	}
	if envelopes == nil {
		envelopes = []models.Envelope{}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(envelopes)
}

func (h *TranslationHandler) handleLogs(w http.ResponseWriter, r *http.Request) {
	// Non-positive limits fall back to the default; sqlite would treat a
	// negative LIMIT as unbounded.
	limit := 50
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			limit = n
		}
	}

	logs, err := h.pipeline.GetRecordLogs(r.Context(), limit)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to get logs: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(logs)
}
