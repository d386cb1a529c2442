package summarizer

import "time"

// Config holds runtime knobs for the summarization pipeline. The constants
// are policy choices (see configs/config.yaml), not behavior requirements, so
// they arrive from outside and are read-only here.
type Config struct {
	Damping             float64
	MaxIterations       int
	ConvergenceTol      float64
	BlendWeight         float64
	CandidateMultiplier int
	DefaultTopK         int
	MaxTopK             int
	MaxInputChars       int
	TargetSummaryWords  int
	GenerationTimeout   time.Duration
	CacheTTL            time.Duration
}

func (c Config) withDefaults() Config {
	if c.Damping <= 0 || c.Damping >= 1 {
		c.Damping = 0.85
	}
	if c.MaxIterations <= 0 {
		c.MaxIterations = 100
	}
	if c.ConvergenceTol <= 0 {
		c.ConvergenceTol = 1e-6
	}
	if c.BlendWeight < 0 || c.BlendWeight > 1 {
		c.BlendWeight = 0.5
	}
	if c.CandidateMultiplier < 1 {
		c.CandidateMultiplier = 3
	}
	if c.DefaultTopK <= 0 {
		c.DefaultTopK = 3
	}
	if c.MaxTopK < c.DefaultTopK {
		c.MaxTopK = 10
	}
	if c.MaxInputChars <= 0 {
		c.MaxInputChars = 10000
	}
	if c.TargetSummaryWords <= 0 {
		c.TargetSummaryWords = 80
	}
	if c.GenerationTimeout <= 0 {
		c.GenerationTimeout = 30 * time.Second
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = time.Hour
	}
	return c
}
