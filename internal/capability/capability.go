// Package capability models the optional external engines (image-to-text,
// audio-to-text, text-to-speech). Providers may be absent at runtime; callers
// branch on ErrUnavailable rather than on nil checks, and absence degrades
// per the endpoint contract instead of crashing the pipeline.
package capability

import (
	"context"
	"errors"
)

// ErrUnavailable marks a capability whose provider is absent or
// misconfigured. Handlers translate it into actionable guidance.
var ErrUnavailable = errors.New("capability: provider unavailable")

// ImageExtractor pulls text out of an uploaded image (OCR).
type ImageExtractor interface {
	Extract(ctx context.Context, image []byte) (string, error)
}

// Transcriber converts recorded audio to text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, lang string) (string, error)
}

// Synthesizer renders text to speech audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, lang string) ([]byte, error)
}

// UnavailableImageExtractor is the explicit absent variant.
type UnavailableImageExtractor struct{}

func (UnavailableImageExtractor) Extract(context.Context, []byte) (string, error) {
	return "", ErrUnavailable
}

// UnavailableTranscriber stands in until a speech-to-text engine is wired up,
// forcing reliance on the accompanying symptoms text field.
type UnavailableTranscriber struct{}

func (UnavailableTranscriber) Transcribe(context.Context, []byte, string) (string, error) {
	return "", ErrUnavailable
}

// UnavailableSynthesizer is the explicit absent variant. Absence is a hard
// failure for the speech-output endpoint only.
type UnavailableSynthesizer struct{}

func (UnavailableSynthesizer) Synthesize(context.Context, string, string) ([]byte, error) {
	return nil, ErrUnavailable
}
