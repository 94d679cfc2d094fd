package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/curesight/triage-platform/internal/capability"
	"github.com/curesight/triage-platform/internal/observability/metrics"
	"github.com/curesight/triage-platform/internal/queries"
	"github.com/curesight/triage-platform/internal/redact"
	"github.com/curesight/triage-platform/internal/relevance"
	"github.com/curesight/triage-platform/internal/triage"
	"github.com/curesight/triage-platform/pkg/logging"
)

const defaultLanguage = "en-US"

// Classifier is the triage engine surface the handler needs.
type Classifier interface {
	Classify(ctx context.Context, text string) (triage.Classification, error)
}

// QueryRecorder persists analysis records, best effort.
type QueryRecorder interface {
	Record(ctx context.Context, rec *queries.Record) queries.Outcome
}

// AnalyzeHandler runs the redaction and triage pipeline for the three input
// modalities.
type AnalyzeHandler struct {
	engine      Classifier
	recorder    QueryRecorder
	images      capability.ImageExtractor
	transcriber capability.Transcriber
	metrics     *metrics.TriageMetrics
	logger      *logging.Logger
}

// NewAnalyzeHandler wires the pipeline. Absent capability providers default
// to their unavailable variants.
func NewAnalyzeHandler(engine Classifier, recorder QueryRecorder, images capability.ImageExtractor, transcriber capability.Transcriber, m *metrics.TriageMetrics, logger *logging.Logger) *AnalyzeHandler {
	if engine == nil {
		panic("handlers: classifier cannot be nil")
	}
	if recorder == nil {
		panic("handlers: query recorder cannot be nil")
	}
	if images == nil {
		images = capability.UnavailableImageExtractor{}
	}
	if transcriber == nil {
		transcriber = capability.UnavailableTranscriber{}
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &AnalyzeHandler{
		engine:      engine,
		recorder:    recorder,
		images:      images,
		transcriber: transcriber,
		metrics:     m,
		logger:      logger,
	}
}

type analyzeTextRequest struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

type analyzeResponse struct {
	Category       triage.Category `json:"category"`
	Severity       triage.Severity `json:"severity"`
	Recommendation string          `json:"recommendation"`
	Reason         string          `json:"reason,omitempty"`
	QueryID        string          `json:"query_id,omitempty"`
}

// POST /api/analyze/text
func (h *AnalyzeHandler) Text(w http.ResponseWriter, r *http.Request) {
	var req analyzeTextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	h.classifyAndRespond(w, r, "text", language(req.Language), text, "")
}

// POST /api/analyze/audio
//
// Accepts raw audio bytes; language and symptoms come in as query
// parameters. Transcription falls back to the symptoms field when the
// speech-to-text provider is absent.
func (h *AnalyzeHandler) Audio(w http.ResponseWriter, r *http.Request) {
	lang := language(r.URL.Query().Get("language"))
	symptoms := strings.TrimSpace(r.URL.Query().Get("symptoms"))

	audio, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read audio payload")
		return
	}

	transcript := ""
	if len(audio) > 0 {
		transcript, err = h.transcriber.Transcribe(r.Context(), audio, lang)
		if err != nil {
			if !errors.Is(err, capability.ErrUnavailable) {
				h.logger.Warn("transcription failed", "error", err)
			}
			transcript = ""
		}
	}

	base := strings.TrimSpace(strings.TrimSpace(symptoms + " " + transcript))
	if base == "" {
		writeError(w, http.StatusBadRequest, "no transcribed text available; configure a speech-to-text engine or provide symptoms text")
		return
	}

	h.classifyAndRespond(w, r, "audio", lang, base, "")
}

// POST /api/analyze/image
//
// Accepts raw image bytes. OCR output is redacted and filtered before being
// combined with the symptoms text; an absent OCR provider degrades to the
// symptoms text alone.
func (h *AnalyzeHandler) Image(w http.ResponseWriter, r *http.Request) {
	lang := language(r.URL.Query().Get("language"))
	symptoms := strings.TrimSpace(r.URL.Query().Get("symptoms"))

	image, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read image payload")
		return
	}

	extracted := ""
	if len(image) > 0 {
		extracted, err = h.images.Extract(r.Context(), image)
		if err != nil {
			if !errors.Is(err, capability.ErrUnavailable) {
				h.logger.Warn("image extraction failed", "error", err)
			}
			extracted = ""
		}
	}

	relevantRx := ""
	if extracted = strings.TrimSpace(extracted); extracted != "" {
		redacted, counts := redact.RedactCounted(extracted)
		h.metrics.ObserveRedactions(counts)
		relevantRx = relevance.Filter(redacted)
	}

	if symptoms == "" && relevantRx == "" {
		writeError(w, http.StatusBadRequest, "no text available from image or symptoms; configure an image-to-text engine or provide symptoms text")
		return
	}

	h.classifyAndRespond(w, r, "image", lang, symptoms, relevantRx)
}

// classifyAndRespond runs redaction, relevance filtering and triage over the
// symptom text, joins pre-filtered OCR text if present, records the outcome
// best effort and writes the response. A persistence failure only costs the
// caller the query id.
func (h *AnalyzeHandler) classifyAndRespond(w http.ResponseWriter, r *http.Request, inputType, lang, symptomText, ocrText string) {
	redacted := ""
	relevant := ""
	if symptomText != "" {
		var counts map[string]int
		redacted, counts = redact.RedactCounted(symptomText)
		h.metrics.ObserveRedactions(counts)
		relevant = relevance.Filter(redacted)
	}

	combined := strings.TrimSpace(relevant + "\n" + ocrText)

	result, err := h.engine.Classify(r.Context(), combined)
	if err != nil {
		h.logger.Error("classification failed", "error", err, "input_type", inputType)
		writeError(w, http.StatusInternalServerError, "classification unavailable")
		return
	}
	h.metrics.ObserveAnalysis(inputType, string(result.Category), string(result.Severity), result.Reason != "")

	outcome := h.recorder.Record(r.Context(), &queries.Record{
		InputType:    inputType,
		Language:     lang,
		SymptomText:  redacted,
		OCRText:      ocrText,
		CombinedText: combined,
		Analysis:     result,
	})

	writeJSON(w, http.StatusOK, analyzeResponse{
		Category:       result.Category,
		Severity:       result.Severity,
		Recommendation: result.Recommendation,
		Reason:         result.Reason,
		QueryID:        outcome.QueryID,
	})
}

func language(lang string) string {
	if lang = strings.TrimSpace(lang); lang == "" {
		return defaultLanguage
	}
	return lang
}
