package capability

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const extractPrompt = "Transcribe all text visible in this image exactly as written. " +
	"Return only the transcribed text with original line breaks, no commentary."

// GeminiImageExtractor implements ImageExtractor using Gemini vision.
type GeminiImageExtractor struct {
	client  *genai.Client
	modelID string
}

var _ ImageExtractor = (*GeminiImageExtractor)(nil)

// NewGeminiImageExtractor creates a Gemini-backed OCR provider.
func NewGeminiImageExtractor(ctx context.Context, apiKey, modelID string) (*GeminiImageExtractor, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("capability: gemini api key is required")
	}
	if strings.TrimSpace(modelID) == "" {
		modelID = "gemini-2.5-flash"
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("capability: failed to create gemini client: %w", err)
	}
	return &GeminiImageExtractor{client: client, modelID: modelID}, nil
}

// Extract sends the image to Gemini and returns the transcribed text.
func (g *GeminiImageExtractor) Extract(ctx context.Context, image []byte) (string, error) {
	if len(image) == 0 {
		return "", errors.New("capability: empty image")
	}

	model := g.client.GenerativeModel(g.modelID)
	model.SetTemperature(0)

	resp, err := model.GenerateContent(ctx,
		genai.ImageData(imageFormat(image), image),
		genai.Text(extractPrompt),
	)
	if err != nil {
		return "", fmt.Errorf("capability: gemini extraction failed: %w", err)
	}

	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if txt, ok := part.(genai.Text); ok {
				sb.WriteString(string(txt))
			}
		}
	}
	return strings.TrimSpace(sb.String()), nil
}

// Close releases the underlying API client.
func (g *GeminiImageExtractor) Close() error {
	return g.client.Close()
}

// imageFormat sniffs the image subtype Gemini expects alongside raw bytes.
func imageFormat(data []byte) string {
	switch http.DetectContentType(data) {
	case "image/jpeg":
		return "jpeg"
	case "image/webp":
		return "webp"
	case "image/gif":
		return "gif"
	default:
		return "png"
	}
}
