package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/curesight/triage-platform/internal/capability"
	"github.com/curesight/triage-platform/pkg/logging"
)

// TTSHandler streams synthesized speech for recommendation text.
type TTSHandler struct {
	synth  capability.Synthesizer
	logger *logging.Logger
}

func NewTTSHandler(synth capability.Synthesizer, logger *logging.Logger) *TTSHandler {
	if synth == nil {
		synth = capability.UnavailableSynthesizer{}
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &TTSHandler{synth: synth, logger: logger}
}

// GET /api/tts?text=...&lang=...
func (h *TTSHandler) Speak(w http.ResponseWriter, r *http.Request) {
	text := strings.TrimSpace(r.URL.Query().Get("text"))
	if text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}
	lang := language(r.URL.Query().Get("lang"))

	audio, err := h.synth.Synthesize(r.Context(), text, lang)
	if err != nil {
		if errors.Is(err, capability.ErrUnavailable) {
			writeError(w, http.StatusServiceUnavailable, "text-to-speech is not configured; set a TTS provider to enable speech output")
			return
		}
		h.logger.Error("tts synthesis failed", "error", err)
		writeError(w, http.StatusInternalServerError, "speech synthesis failed")
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(audio)
}
