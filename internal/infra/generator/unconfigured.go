package generator

import (
	"context"

	"github.com/tessely/summarizer/internal/domain/summarizer"
	apperrors "github.com/tessely/summarizer/pkg/errors"
)

// Unconfigured is wired when no LLM credentials are present. Every call
// reports a generation failure, which the orchestrator turns into a
// lower-tier result instead of an error.
type Unconfigured struct{}

// NewUnconfigured constructs the placeholder generator.
func NewUnconfigured() Unconfigured {
	return Unconfigured{}
}

// Generate always fails.
func (Unconfigured) Generate(context.Context, []string, int) (string, error) {
	return "", apperrors.Wrap(summarizer.CodeGenerationFailed, "generative model not configured", nil)
}

var _ summarizer.Generator = Unconfigured{}
