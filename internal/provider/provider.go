// Package provider defines the external generation capability consumed by the engine.
package provider

import (
	"context"

	"github.com/yukesh4349/Dreampix/internal/model"
)

// ImageProvider is the boundary to the generative model.
type ImageProvider interface {
	// GenerateImage produces a single image for prompt at the given aspect
	// ratio, optionally conditioned on a reference image. A (nil, nil)
	// return is a valid "no image this call" outcome, distinct from an
	// error: the engine filters it out of a batch without failing the run.
	GenerateImage(ctx context.Context, prompt string, ratio model.AspectRatio, reference []byte) ([]byte, error)

	// EnhancePrompt rewrites prompt into a more detailed generation prompt
	// preserving the original intent.
	EnhancePrompt(ctx context.Context, prompt string) (string, error)

	// Explain briefly compares the original and enhanced prompts.
	Explain(ctx context.Context, original, enhanced string) (string, error)
}
