package summarizer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	apperrors "github.com/tessely/summarizer/pkg/errors"
)

type stubGenerator struct {
	generateFn func(ctx context.Context, sentences []string, targetWords int) (string, error)
}

func (s *stubGenerator) Generate(ctx context.Context, sentences []string, targetWords int) (string, error) {
	if s.generateFn != nil {
		return s.generateFn(ctx, sentences, targetWords)
	}
	return "generated summary", nil
}

func TestGenerateWithTimeoutSuccess(t *testing.T) {
	gen := &stubGenerator{generateFn: func(_ context.Context, sentences []string, targetWords int) (string, error) {
		require.Equal(t, []string{"a", "b"}, sentences)
		require.Equal(t, 80, targetWords)
		return "  fluent summary  ", nil
	}}
	text, err := generateWithTimeout(context.Background(), gen, []string{"a", "b"}, 80, time.Second)
	require.NoError(t, err)
	require.Equal(t, "fluent summary", text)
}

func TestGenerateWithTimeoutExpires(t *testing.T) {
	gen := &stubGenerator{generateFn: func(_ context.Context, _ []string, _ int) (string, error) {
		time.Sleep(500 * time.Millisecond)
		return "too late", nil
	}}
	_, err := generateWithTimeout(context.Background(), gen, []string{"a"}, 80, 10*time.Millisecond)
	require.True(t, apperrors.IsCode(err, CodeGenerationTimeout), "got %v", err)
}

func TestGenerateWithTimeoutEmptyOutput(t *testing.T) {
	gen := &stubGenerator{generateFn: func(context.Context, []string, int) (string, error) {
		return "   ", nil
	}}
	_, err := generateWithTimeout(context.Background(), gen, []string{"a"}, 80, time.Second)
	require.True(t, apperrors.IsCode(err, CodeGenerationFailed))
}

func TestGenerateWithTimeoutWrapsProviderError(t *testing.T) {
	gen := &stubGenerator{generateFn: func(context.Context, []string, int) (string, error) {
		return "", errors.New("rate limited")
	}}
	_, err := generateWithTimeout(context.Background(), gen, []string{"a"}, 80, time.Second)
	require.True(t, apperrors.IsCode(err, CodeGenerationFailed))
	require.Contains(t, err.Error(), "rate limited")
}
