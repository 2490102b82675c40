package oracle

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
)

// DefaultGeminiModel is the model used when none is configured.
const DefaultGeminiModel = "gemini-2.0-flash"

// Gemini generates text with a Gemini model.
type Gemini struct {
	model       *genai.GenerativeModel
	name        string
	temperature float32
}

// NewGemini wraps a model from client. The client is owned by the caller.
func NewGemini(client *genai.Client, model string, temperature float32) *Gemini {
	if model == "" {
		model = DefaultGeminiModel
	}
	m := client.GenerativeModel(model)
	m.SetTemperature(temperature)
	return &Gemini{model: m, name: model, temperature: temperature}
}

// Generate implements Oracle.
func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini: %w", err)
	}
	return geminiText(resp)
}

// System names the provider for tracing.
func (g *Gemini) System() string { return "gemini" }

// Model names the configured model.
func (g *Gemini) Model() string { return g.name }

// Temperature reports the sampling temperature.
func (g *Gemini) Temperature() float64 { return float64(g.temperature) }

func geminiText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", ErrEmptyResponse
	}
	content := resp.Candidates[0].Content
	if content == nil || len(content.Parts) == 0 {
		return "", ErrEmptyResponse
	}

	var b strings.Builder
	for _, part := range content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	if strings.TrimSpace(b.String()) == "" {
		return "", fmt.Errorf("%w: unexpected response type from Gemini", ErrEmptyResponse)
	}
	return b.String(), nil
}
