package summarizer

import (
	"context"
	"strings"
	"time"

	apperrors "github.com/tessely/summarizer/pkg/errors"
)

// Generator exposes the generative paraphrasing capability. Implementations
// wrap provider failures with CodeGenerationFailed and leave timeout policy
// to the orchestrator, which owns the stage deadline.
type Generator interface {
	Generate(ctx context.Context, sentences []string, targetWords int) (string, error)
}

// generateWithTimeout invokes the generator under the configured hard
// deadline. The call runs in its own goroutine writing to a buffered channel,
// so a result arriving after the deadline is simply discarded and can never
// touch shared state.
func generateWithTimeout(ctx context.Context, gen Generator, sentences []string, targetWords int, timeout time.Duration) (string, error) {
	genCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type outcome struct {
		text string
		err  error
	}
	done := make(chan outcome, 1)
	go func() {
		text, err := gen.Generate(genCtx, sentences, targetWords)
		done <- outcome{text: text, err: err}
	}()

	select {
	case <-genCtx.Done():
		return "", apperrors.Wrap(CodeGenerationTimeout, "generation timed out", genCtx.Err())
	case out := <-done:
		if out.err != nil {
			if apperrors.IsCode(out.err, CodeGenerationTimeout) || apperrors.IsCode(out.err, CodeGenerationFailed) {
				return "", out.err
			}
			return "", apperrors.Wrap(CodeGenerationFailed, "generation failed", out.err)
		}
		text := strings.TrimSpace(out.text)
		if text == "" {
			return "", apperrors.Wrap(CodeGenerationFailed, "generator returned empty output", nil)
		}
		return text, nil
	}
}
