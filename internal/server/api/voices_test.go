package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"

	"github.com/tznthou/day-07-neon-drum/internal/synth"
)

func TestVoicesHandler_List(t *testing.T) {
	h := NewVoicesHandler(synth.NewEngine())

	req := httptest.NewRequest(http.MethodGet, "/api/voices", nil)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var got listVoicesResponse
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if len(got.Voices) != len(synth.CellVoices) {
		t.Fatalf("got %d voices, want %d", len(got.Voices), len(synth.CellVoices))
	}
	for i, v := range got.Voices {
		if v.Cell != i {
			t.Errorf("entry %d cell = %d, want %d", i, v.Cell, i)
		}
		if v.Voice != synth.CellVoices[i] {
			t.Errorf("cell %d voice = %q, want %q", i, v.Voice, synth.CellVoices[i])
		}
	}
}

func TestVoicesHandler_Play(t *testing.T) {
	t.Run("unknown voice returns 404", func(t *testing.T) {
		h := NewVoicesHandler(synth.NewEngine())

		req := httptest.NewRequest(http.MethodPost, "/api/voices/bongo/play", nil)
		req = mux.SetURLVars(req, map[string]string{"name": "bongo"})
		rec := httptest.NewRecorder()
		h.Play(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
		}
	})

	t.Run("known voice without audio returns 503", func(t *testing.T) {
		h := NewVoicesHandler(synth.NewEngine())

		req := httptest.NewRequest(http.MethodPost, "/api/voices/kick/play", nil)
		req = mux.SetURLVars(req, map[string]string{"name": "kick"})
		rec := httptest.NewRecorder()
		h.Play(rec, req)

		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("expected status %d, got %d", http.StatusServiceUnavailable, rec.Code)
		}
	})
}
