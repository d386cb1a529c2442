package summarizer

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	apperrors "github.com/tessely/summarizer/pkg/errors"
)

// Stage names as they appear in pipeline_stages.
const (
	stagePreprocess = "preprocess"
	stageTextRank   = "textrank"
	stageRerank     = "semantic_rerank"
	stageGeneration = "generation"
)

// Service orchestrates the summarization pipeline.
type Service interface {
	Summarize(ctx context.Context, req Request) (Result, error)
	Stats(ctx context.Context) (Stats, error)
}

type service struct {
	cfg       Config
	embedder  Embedder
	generator Generator
	store     ResultStore
	runs      RunRepository
	logger    *slog.Logger

	// flight coalesces concurrent computations per fingerprint: the first
	// caller computes, late arrivals block on the shared in-flight call.
	flight singleflight.Group
}

// NewService builds the pipeline orchestrator. The capability handles are
// initialized once at startup and treated as read-only afterwards; the
// orchestrator never mutates them.
func NewService(cfg Config, embedder Embedder, generator Generator, store ResultStore, runs RunRepository, logger *slog.Logger) Service {
	return &service{
		cfg:       cfg.withDefaults(),
		embedder:  embedder,
		generator: generator,
		store:     store,
		runs:      runs,
		logger:    logger.With("component", "summarizer.service"),
	}
}

// Summarize validates the request, consults the cache, and on a miss runs the
// stage subset for the requested mode under single-flight coalescing.
func (s *service) Summarize(ctx context.Context, req Request) (Result, error) {
	req, err := s.validate(req)
	if err != nil {
		return Result{}, err
	}

	fingerprint := Fingerprint(req)

	cached, ok, err := s.store.Get(ctx, fingerprint)
	if err != nil {
		// Cache trouble never fails the request; compute fresh instead.
		s.logger.Warn("cache lookup failed, bypassing cache", "error", err, "fingerprint", fingerprint)
	} else if ok {
		cached.CacheHit = true
		return cached, nil
	}

	value, err, _ := s.flight.Do(fingerprint, func() (any, error) {
		return s.compute(ctx, req, fingerprint)
	})
	if err != nil {
		return Result{}, err
	}
	result, ok := value.(Result)
	if !ok {
		return Result{}, apperrors.Wrap(CodeInternal, "unexpected computation result", nil)
	}
	// Late arrivals share one computation; everyone still gets their own copy.
	return result.Clone(), nil
}

// compute runs the pipeline for one fingerprint. Stage timings are recorded
// regardless of outcome; recoverable failures in the semantic or abstractive
// tier degrade the result to the best completed lower tier.
func (s *service) compute(ctx context.Context, req Request, fingerprint string) (Result, error) {
	started := time.Now()
	var stages []StageRecord

	stageStart := time.Now()
	sentences, err := splitSentences(req.Text)
	if err != nil {
		return Result{}, err
	}
	stages = append(stages, StageRecord{Name: stagePreprocess, DurationMs: msSince(stageStart), Status: StageOK})

	topK := req.TopK
	if topK > len(sentences) {
		topK = len(sentences)
	}

	stageStart = time.Now()
	rankSentences(sentences, s.cfg.Damping, s.cfg.MaxIterations, s.cfg.ConvergenceTol)
	stages = append(stages, StageRecord{Name: stageTextRank, DurationMs: msSince(stageStart), Status: StageOK})

	delivered := ModeExtractive
	pool := sentences
	var docEmbedding []float32

	if req.Mode.tier() >= ModeSemantic.tier() {
		stageStart = time.Now()
		candidates, docVec, rerankErr := rerank(ctx, s.embedder, req.Text, sentences, topK, s.cfg.CandidateMultiplier, s.cfg.BlendWeight)
		if rerankErr != nil {
			stages = append(stages, StageRecord{Name: stageRerank, DurationMs: msSince(stageStart), Status: StageDegraded})
			s.logger.Warn("semantic rerank unavailable, serving extractive scores",
				"error", rerankErr, "fingerprint", fingerprint)
		} else {
			stages = append(stages, StageRecord{Name: stageRerank, DurationMs: msSince(stageStart), Status: StageOK})
			delivered = ModeSemantic
			pool = candidates
			docEmbedding = docVec
		}
	}

	selected := selectTop(pool, topK)
	summary := joinSentences(selected)

	if req.Mode == ModeAbstractive {
		if delivered != ModeSemantic {
			// The generator input is defined as the semantic selection; with
			// the semantic tier gone there is nothing sound to paraphrase.
			stages = append(stages, StageRecord{Name: stageGeneration, Status: StageSkipped})
		} else {
			stageStart = time.Now()
			generated, genErr := generateWithTimeout(ctx, s.generator, sentenceTexts(selected), s.cfg.TargetSummaryWords, s.cfg.GenerationTimeout)
			if genErr != nil {
				stages = append(stages, StageRecord{Name: stageGeneration, DurationMs: msSince(stageStart), Status: StageFailed})
				s.logger.Warn("generation failed, falling back to semantic summary",
					"error", genErr, "code", apperrors.Code(genErr), "fingerprint", fingerprint)
			} else {
				stages = append(stages, StageRecord{Name: stageGeneration, DurationMs: msSince(stageStart), Status: StageOK})
				summary = generated
				delivered = ModeAbstractive
			}
		}
	}

	result := Result{
		Summary:            summary,
		SentencesExtracted: sentenceTexts(selected),
		Mode:               delivered,
		TotalDurationMs:    countedDuration(stages),
		PipelineStages:     stages,
	}
	if req.IncludeProvenance {
		result.Provenance = provenanceSpans(selected)
	}

	// Degraded results are not cached: once the failed capability recovers,
	// the next identical request should get the tier it asked for.
	if delivered == req.Mode {
		if err := s.store.Put(ctx, fingerprint, result, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("cache store failed, result not cached", "error", err, "fingerprint", fingerprint)
		}
	}

	s.recordRun(RunRecord{
		ID:            uuid.New(),
		Fingerprint:   fingerprint,
		RequestedMode: req.Mode,
		DeliveredMode: delivered,
		Degraded:      delivered != req.Mode,
		SentenceCount: len(sentences),
		SelectedCount: len(selected),
		DurationMs:    msSince(started),
		Embedding:     docEmbedding,
		CreatedAt:     time.Now().UTC(),
	})

	return result, nil
}

// Stats reports run history aggregates.
func (s *service) Stats(ctx context.Context) (Stats, error) {
	totals, err := s.runs.Totals(ctx)
	if err != nil {
		return Stats{}, apperrors.Wrap(CodeInternal, "load run totals", err)
	}
	recent, err := s.runs.Recent(ctx, 20)
	if err != nil {
		return Stats{}, apperrors.Wrap(CodeInternal, "load recent runs", err)
	}
	return Stats{Totals: totals, Recent: recent}, nil
}

func (s *service) validate(req Request) (Request, error) {
	if strings.TrimSpace(req.Text) == "" {
		return req, apperrors.Wrap(CodeInvalidInput, "text cannot be empty", nil)
	}
	if len(req.Text) > s.cfg.MaxInputChars {
		return req, apperrors.Wrap(CodeInvalidInput, "text exceeds maximum length", nil)
	}
	if _, err := ParseMode(string(req.Mode)); err != nil {
		return req, apperrors.Wrap(CodeInvalidInput, "unknown mode", err)
	}
	if req.TopK == 0 {
		req.TopK = s.cfg.DefaultTopK
	}
	if req.TopK < 1 || req.TopK > s.cfg.MaxTopK {
		return req, apperrors.Wrap(CodeInvalidInput, "top_k out of range", nil)
	}
	return req, nil
}

// recordRun persists run history without ever blocking or failing a request.
func (s *service) recordRun(record RunRecord) {
	if s.runs == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.runs.Record(ctx, record); err != nil {
			s.logger.Warn("record pipeline run failed", "error", err, "run_id", record.ID)
		}
	}()
}

func sentenceTexts(sentences []Sentence) []string {
	out := make([]string, len(sentences))
	for i, s := range sentences {
		out[i] = s.Text
	}
	return out
}

func joinSentences(sentences []Sentence) string {
	return strings.Join(sentenceTexts(sentences), " ")
}

// countedDuration sums the durations of stages that produced usable output.
func countedDuration(stages []StageRecord) float64 {
	var total float64
	for _, st := range stages {
		if st.Status == StageOK || st.Status == StageDegraded {
			total += st.DurationMs
		}
	}
	return total
}

func msSince(t time.Time) float64 {
	return float64(time.Since(t).Microseconds()) / 1000.0
}
