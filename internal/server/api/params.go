package api

import (
	"encoding/json"
	"net/http"

	"github.com/tznthou/day-07-neon-drum/internal/detector"
	"github.com/tznthou/day-07-neon-drum/internal/synth"
)

// ParamsHandler exposes the live tuning parameters of the detector and the
// drum engine: detection threshold, per-cell cooldown and master volume.
type ParamsHandler struct {
	detector *detector.Detector
	engine   *synth.Engine
}

// NewParamsHandler creates a ParamsHandler over the given detector and engine.
func NewParamsHandler(d *detector.Detector, e *synth.Engine) *ParamsHandler {
	return &ParamsHandler{detector: d, engine: e}
}

type paramsResponse struct {
	detector.Params
	Volume float64 `json:"volume"`
	Audio  string  `json:"audio"`
}

// updateParamsRequest uses pointers so absent fields leave the current value
// untouched.
type updateParamsRequest struct {
	Threshold  *int     `json:"threshold"`
	CooldownMs *int     `json:"cooldown_ms"`
	Volume     *float64 `json:"volume"`
}

// ServeHTTP routes GET and PUT requests for /api/params.
func (h *ParamsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.get(w, r)
	case http.MethodPut:
		h.update(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (h *ParamsHandler) snapshot() paramsResponse {
	return paramsResponse{
		Params: h.detector.Params(),
		Volume: h.engine.Volume(),
		Audio:  h.engine.Status().String(),
	}
}

// get handles GET /api/params and returns the current parameter values.
func (h *ParamsHandler) get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.snapshot())
}

// update handles PUT /api/params. Out-of-range values are clamped, not
// rejected; the response echoes the values actually in effect.
func (h *ParamsHandler) update(w http.ResponseWriter, r *http.Request) {
	var req updateParamsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Threshold != nil {
		h.detector.SetThreshold(*req.Threshold)
	}
	if req.CooldownMs != nil {
		h.detector.SetCooldown(*req.CooldownMs)
	}
	if req.Volume != nil {
		h.engine.SetVolume(*req.Volume)
	}

	writeJSON(w, http.StatusOK, h.snapshot())
}
