package api

import (
	"encoding/json"
	"net/http"
	"time"

	"selfheal/internal/advisor"
	"selfheal/internal/fault"
	"selfheal/internal/logs"
	"selfheal/internal/metrics"
	"selfheal/internal/state"
	"selfheal/internal/supervisor"
)

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	shared  *state.Shared
	metrics *metrics.Registry
	advisor *advisor.Advisor
	workers *supervisor.Registry
	log     *logs.Scope
	runID   string
}

// NewHandler creates a new API handler.
func NewHandler(
	shared *state.Shared,
	metrics *metrics.Registry,
	advisor *advisor.Advisor,
	workers *supervisor.Registry,
	logger *logs.Logger,
	runID string,
) *Handler {
	return &Handler{
		shared:  shared,
		metrics: metrics,
		advisor: advisor,
		workers: workers,
		log:     logger.For("api"),
		runID:   runID,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

/* ---------------- GET /health ---------------- */

func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	report := h.advisor.Evaluate(h.shared.Snapshot(), time.Now())
	writeJSON(w, http.StatusOK, report)
}

/* ---------------- GET /state ---------------- */

type stateResponse struct {
	RunID string `json:"run_id"`
	state.Snapshot
	FaultBand fault.Band `json:"fault_band,omitempty"`
}

func (h *Handler) currentState() stateResponse {
	resp := stateResponse{RunID: h.runID, Snapshot: h.shared.Snapshot()}
	if resp.FaultRaised {
		resp.FaultBand = resp.FaultCode.Band()
	}
	return resp
}

func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.currentState())
}

/* ---------------- GET /metrics ---------------- */

func (h *Handler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.metrics.Snapshot())
}

/* ---------------- GET /admin/workers ---------------- */

func (h *Handler) GetWorkers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.workers.Snapshot())
}

/* ---------------- POST /admin/faults ---------------- */

type injectRequest struct {
	Code *int `json:"code"`
}

// InjectFault raises the fault signal with a caller-chosen code, exactly as
// the detector would.
func (h *Handler) InjectFault(w http.ResponseWriter, r *http.Request) {
	var req injectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	if req.Code == nil {
		http.Error(w, "missing code", http.StatusBadRequest)
		return
	}

	code := fault.Code(*req.Code)
	if !code.Known() {
		http.Error(w, "code "+code.String()+" is outside every fault band", http.StatusBadRequest)
		return
	}

	h.shared.Signal.Raise(code)
	h.metrics.Inc(metrics.FaultsInjectedTotal)
	h.metrics.Inc(metrics.FaultsRaisedTotal)
	h.log.Warnf("fault %d (%s) injected", code, code.Band())

	writeJSON(w, http.StatusAccepted, h.currentState())
}
