// Package gemini implements the ImageProvider boundary on the Google GenAI API.
package gemini

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/yukesh4349/Dreampix/internal/model"
	"github.com/yukesh4349/Dreampix/internal/provider"
)

// Default models.
const (
	TextModel  = "gemini-2.5-flash"
	ImageModel = "gemini-2.5-flash-image"
)

const enhanceInstruction = `You are an expert AI prompt engineer. Your task is to refine the user's idea into a professional image generation prompt while strictly adhering to their original intent.

Guidelines:
1. UNDERSTAND THE CORE IDEA: accurate subject, action, and setting from the original prompt are mandatory. Do not remove or alter key elements.
2. ENHANCE QUALITY: Add specific details about lighting (e.g., volumetric, cinematic), composition (e.g., wide angle, rule of thirds), art style (e.g., photorealistic, 3D render, oil painting), and texture/detail (e.g., 8k, highly detailed).
3. CLARITY: Ensure the prompt is structured clearly for an image generation model.

ONLY return the enhanced prompt text, nothing else.

Original Prompt: %q`

const explainInstruction = `Compare these two image prompts and explain briefly (in 2-3 sentences) why the enhanced version is likely to produce a better, more professional image while preserving the user's original idea.

Original: %q
Enhanced: %q`

// fallbackExplanation is returned when the model yields an empty comparison.
const fallbackExplanation = "Enhanced prompts usually include more specific details about lighting and style."

// Client calls the Gemini text and image models.
type Client struct {
	client     *genai.Client
	textModel  string
	imageModel string
}

var _ provider.ImageProvider = (*Client)(nil)

// New constructs a Gemini-backed provider with the given API key.
func New(ctx context.Context, apiKey string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini: api key is required")
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	return &Client{client: c, textModel: TextModel, imageModel: ImageModel}, nil
}

// GenerateImage asks the image model for one image. The model may legally
// answer with text-only candidates; that surfaces as (nil, nil).
func (c *Client) GenerateImage(ctx context.Context, prompt string, ratio model.AspectRatio, reference []byte) ([]byte, error) {
	var parts []*genai.Part
	if len(reference) > 0 {
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{MIMEType: "image/png", Data: reference},
		})
	}
	parts = append(parts, &genai.Part{Text: prompt})

	config := &genai.GenerateContentConfig{
		ImageConfig: &genai.ImageConfig{AspectRatio: string(ratio)},
	}
	resp, err := c.client.Models.GenerateContent(ctx, c.imageModel,
		[]*genai.Content{{Parts: parts}}, config)
	if err != nil {
		return nil, fmt.Errorf("gemini: generate image: %w", err)
	}

	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return part.InlineData.Data, nil
			}
		}
	}
	return nil, nil
}

// EnhancePrompt rewrites prompt via the text model.
func (c *Client) EnhancePrompt(ctx context.Context, prompt string) (string, error) {
	text, err := c.generateText(ctx, fmt.Sprintf(enhanceInstruction, prompt))
	if err != nil {
		return "", fmt.Errorf("gemini: enhance prompt: %w", err)
	}
	if text == "" {
		return prompt, nil
	}
	return text, nil
}

// Explain compares original and enhanced prompts via the text model.
func (c *Client) Explain(ctx context.Context, original, enhanced string) (string, error) {
	text, err := c.generateText(ctx, fmt.Sprintf(explainInstruction, original, enhanced))
	if err != nil {
		return "", fmt.Errorf("gemini: explain: %w", err)
	}
	if text == "" {
		return fallbackExplanation, nil
	}
	return text, nil
}

// generateText runs a single text-model call and concatenates the text parts
// of the first candidate.
func (c *Client) generateText(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.textModel,
		[]*genai.Content{{Parts: []*genai.Part{{Text: prompt}}}}, nil)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	if len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		for _, part := range resp.Candidates[0].Content.Parts {
			if part.Text != "" {
				b.WriteString(part.Text)
			}
		}
	}
	return strings.TrimSpace(b.String()), nil
}
