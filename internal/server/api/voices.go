package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/tznthou/day-07-neon-drum/internal/synth"
)

// VoicesHandler lists the drum voices and previews them on demand.
type VoicesHandler struct {
	engine *synth.Engine
}

// NewVoicesHandler creates a VoicesHandler over the given engine.
func NewVoicesHandler(e *synth.Engine) *VoicesHandler {
	return &VoicesHandler{engine: e}
}

type voiceResponse struct {
	Cell  int    `json:"cell"`
	Voice string `json:"voice"`
}

type listVoicesResponse struct {
	Voices []voiceResponse `json:"voices"`
}

// List handles GET /api/voices and returns the cell-to-voice mapping.
func (h *VoicesHandler) List(w http.ResponseWriter, r *http.Request) {
	response := listVoicesResponse{Voices: make([]voiceResponse, 0, len(synth.CellVoices))}
	for cell, voice := range synth.CellVoices {
		response.Voices = append(response.Voices, voiceResponse{Cell: cell, Voice: voice})
	}
	writeJSON(w, http.StatusOK, response)
}

// Play handles POST /api/voices/{name}/play and triggers one hit of the
// named voice, bypassing the detector.
func (h *VoicesHandler) Play(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	if !synth.IsVoice(name) {
		writeError(w, http.StatusNotFound, "Unknown voice")
		return
	}

	switch h.engine.Status() {
	case synth.StatusRunning, synth.StatusSuspended:
		h.engine.Play(name)
		writeJSON(w, http.StatusAccepted, map[string]string{"voice": name})
	default:
		writeError(w, http.StatusServiceUnavailable, "Audio not initialized")
	}
}
