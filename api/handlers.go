package api

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"sort"
	"time"

	"waitlist-edge/fx"
	"waitlist-edge/localization"
	"waitlist-edge/location"
	"waitlist-edge/location/providers"
	"waitlist-edge/middleware/throttle"
	"waitlist-edge/middleware/throttle/infra"

	"github.com/go-chi/chi/v5"
)

type handlers struct {
	Deps
}

func (h *handlers) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ---- throttle

type policyView struct {
	Action        string `json:"action"`
	MaxRequests   int    `json:"max_requests"`
	WindowMs      int64  `json:"window_ms"`
	BlockDuration int64  `json:"block_duration_ms"`
}

func (h *handlers) listActions(w http.ResponseWriter, _ *http.Request) {
	if h.Guard == nil {
		writeJSON(w, http.StatusOK, []policyView{})
		return
	}
	out := make([]policyView, 0)
	for action, p := range h.Guard.Actions() {
		out = append(out, policyView{
			Action:        action,
			MaxRequests:   p.MaxRequests,
			WindowMs:      p.Window.Milliseconds(),
			BlockDuration: p.BlockDuration.Milliseconds(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Action < out[j].Action })
	writeJSON(w, http.StatusOK, out)
}

type actionResult struct {
	Action    string `json:"action"`
	Allowed   bool   `json:"allowed"`
	Remaining int    `json:"remaining"`
}

func (h *handlers) performAction(w http.ResponseWriter, r *http.Request) {
	res := actionResult{Action: actionParam(r), Allowed: true, Remaining: -1}
	if dec, ok := throttle.DecisionFrom(r.Context()); ok {
		res.Remaining = dec.Remaining
	}
	writeJSON(w, http.StatusOK, res)
}

type statusView struct {
	Action    string     `json:"action"`
	Count     int        `json:"count"`
	Remaining int        `json:"remaining"`
	Blocked   bool       `json:"blocked"`
	ResetTime *time.Time `json:"reset_time,omitempty"`
}

func (h *handlers) actionStatus(w http.ResponseWriter, r *http.Request) {
	action := actionParam(r)
	if h.Guard == nil {
		writeError(w, http.StatusNotFound, "unknown_action", action)
		return
	}
	if _, ok := h.Guard.Policy(action); !ok {
		writeError(w, http.StatusNotFound, "unknown_action", action)
		return
	}

	st := h.Guard.Status(h.Throttle.KeyFn(r), action)
	v := statusView{Action: action, Count: st.Count, Remaining: st.Remaining, Blocked: st.Blocked}
	if !st.ResetTime.IsZero() {
		reset := st.ResetTime.UTC()
		v.ResetTime = &reset
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *handlers) resetAction(w http.ResponseWriter, r *http.Request) {
	if h.Guard != nil {
		h.Guard.Reset(h.Throttle.KeyFn(r), actionParam(r))
	}
	w.WriteHeader(http.StatusNoContent)
}

// statsReader é implementado pelo infra.MemoryStatsStore; o store Redis é consultado direto no Redis.
type statsReader interface {
	Total() infra.Counters
	ByAction() map[string]infra.Counters
}

type statsView struct {
	Total    infra.Counters            `json:"total"`
	ByAction map[string]infra.Counters `json:"by_action"`
}

func (h *handlers) stats(w http.ResponseWriter, _ *http.Request) {
	sr, ok := h.Throttle.Stats.(statsReader)
	if !ok {
		writeError(w, http.StatusNotFound, "stats_unavailable", "")
		return
	}
	writeJSON(w, http.StatusOK, statsView{Total: sr.Total(), ByAction: sr.ByAction()})
}

// ---- location

type locationView struct {
	Record   location.Record    `json:"record"`
	Attempts []location.Attempt `json:"attempts,omitempty"`
}

func (h *handlers) location(w http.ResponseWriter, r *http.Request) {
	if h.Resolver == nil {
		writeJSON(w, http.StatusOK, locationView{Record: location.DefaultRecord()})
		return
	}
	rec := h.Resolver.Resolve(r.Context())
	writeJSON(w, http.StatusOK, locationView{Record: rec, Attempts: h.Resolver.LastAttempts()})
}

func (h *handlers) invalidateLocation(w http.ResponseWriter, r *http.Request) {
	if h.Resolver == nil {
		writeJSON(w, http.StatusOK, locationView{Record: location.DefaultRecord()})
		return
	}
	h.Resolver.Invalidate()
	h.location(w, r)
}

type sensorReport struct {
	Latitude  *float64  `json:"latitude"`
	Longitude *float64  `json:"longitude"`
	Accuracy  float64   `json:"accuracy"`
	Timestamp time.Time `json:"timestamp"`
	// Denied indica que o usuário negou a permissão do sensor.
	Denied bool `json:"denied"`
}

func (h *handlers) reportSensor(w http.ResponseWriter, r *http.Request) {
	if h.Sensor == nil {
		writeError(w, http.StatusNotFound, "sensor_disabled", "")
		return
	}

	var body sensorReport
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4<<10))
	if err := dec.Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}

	switch {
	case body.Denied:
		h.Sensor.Deny()
	case body.Latitude == nil || body.Longitude == nil:
		writeError(w, http.StatusBadRequest, "invalid_body", "latitude and longitude are required")
		return
	default:
		h.Sensor.Report(providers.Position{
			Latitude:  *body.Latitude,
			Longitude: *body.Longitude,
			Accuracy:  body.Accuracy,
			Timestamp: body.Timestamp,
		})
	}

	// a nova posição só aparece depois de invalidar a memória
	if h.Resolver != nil {
		h.Resolver.Invalidate()
	}
	w.WriteHeader(http.StatusAccepted)
}

func (h *handlers) lookupIP(w http.ResponseWriter, r *http.Request) {
	ip := net.ParseIP(chi.URLParam(r, "ip"))
	if ip == nil {
		writeError(w, http.StatusBadRequest, "invalid_ip", chi.URLParam(r, "ip"))
		return
	}
	if h.IPLocator == nil {
		writeError(w, http.StatusNotFound, "ip_lookup_disabled", "")
		return
	}
	rec, attempts := h.IPLocator.Lookup(location.WithClientIP(r.Context(), ip))
	writeJSON(w, http.StatusOK, locationView{Record: rec, Attempts: attempts})
}

// ---- fx / localization

type ratesView struct {
	Rates     map[string]float64 `json:"rates"`
	FetchedAt *time.Time         `json:"fetched_at,omitempty"`
	Source    fx.Source          `json:"source"`
}

func (h *handlers) rates(w http.ResponseWriter, r *http.Request) {
	if h.Rates == nil {
		writeJSON(w, http.StatusOK, ratesView{Rates: fx.SeedRates(), Source: fx.SourceStatic})
		return
	}
	rates := h.Rates.Rates(r.Context())
	snap := h.Rates.Snapshot()

	v := ratesView{Rates: rates, Source: snap.Source}
	if !snap.FetchedAt.IsZero() {
		at := snap.FetchedAt.UTC()
		v.FetchedAt = &at
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *handlers) pricing(w http.ResponseWriter, r *http.Request) {
	if h.Facade == nil {
		writeError(w, http.StatusServiceUnavailable, "pricing_unavailable", "")
		return
	}
	p, err := h.Facade.LocalizedPricing(r.Context(),
		chi.URLParam(r, "segment"),
		chi.URLParam(r, "tier"),
		r.URL.Query().Get("country"),
	)
	if errors.Is(err, localization.ErrUnknownPlan) {
		writeError(w, http.StatusNotFound, "unknown_plan", err.Error())
		return
	}
	if err != nil {
		h.Logger.Error("api: pricing failed", "err", err)
		writeError(w, http.StatusInternalServerError, "internal", "")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type bucketsView struct {
	Buckets []string `json:"buckets"`
}

func (h *handlers) budgetBuckets(w http.ResponseWriter, r *http.Request) {
	country := r.URL.Query().Get("country")
	if h.Facade == nil {
		writeJSON(w, http.StatusOK, bucketsView{Buckets: localization.BudgetBuckets(country)})
		return
	}
	writeJSON(w, http.StatusOK, bucketsView{Buckets: h.Facade.BudgetBuckets(r.Context(), country)})
}
