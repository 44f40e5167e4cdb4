package extract

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/splitroom-app/backend/internal/domain"
)

// DefaultModel is the Gemini model used for receipt extraction.
const DefaultModel = "gemini-1.5-flash"

// extractionInstruction is the fixed prompt sent alongside the image.
// Its wording is an external contract with the model, kept as-is.
const extractionInstruction = "This is a receipt of a resto bar, you have to identify the items for people to split the bills. Return a json format for it"

// Gemini is the google.golang.org/genai-backed Extractor.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini builds a Gemini extractor for the given API key.
// Pass model="" to use DefaultModel.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("extract: create gemini client: %w", err)
	}
	if model == "" {
		model = DefaultModel
	}
	return &Gemini{client: client, model: model}, nil
}

// Extract sends the image bytes plus the extraction instruction to Gemini
// and parses the text reply into a normalized receipt. Transport failures
// and unparseable replies both wrap domain.ErrUpstream.
func (g *Gemini) Extract(ctx context.Context, image []byte, mimeType string) (domain.Receipt, error) {
	parts := []*genai.Part{
		genai.NewPartFromBytes(image, mimeType),
		genai.NewPartFromText(extractionInstruction),
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](1),
		TopP:            genai.Ptr[float32](0.95),
		TopK:            genai.Ptr[float32](40),
		MaxOutputTokens: 8192,
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return domain.Receipt{}, fmt.Errorf("extract: gemini call failed: %w (%v)", domain.ErrUpstream, err)
	}

	text := resp.Text()
	if text == "" {
		return domain.Receipt{}, fmt.Errorf("extract: empty model response: %w", domain.ErrUpstream)
	}
	return ParseReceipt(text)
}
