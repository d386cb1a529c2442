package summarizer

import "fmt"

// Mode selects the pipeline tier used to produce a summary.
type Mode string

const (
	ModeExtractive  Mode = "extractive"
	ModeSemantic    Mode = "semantic"
	ModeAbstractive Mode = "abstractive"
)

// ParseMode validates a mode string from the transport layer.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeExtractive, ModeSemantic, ModeAbstractive:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown mode %q", s)
}

// tier orders modes so the orchestrator can compare requested vs delivered.
func (m Mode) tier() int {
	switch m {
	case ModeSemantic:
		return 1
	case ModeAbstractive:
		return 2
	default:
		return 0
	}
}

// Request is an immutable summarization request. Construct it through the
// transport layer so validation always runs before the pipeline does.
type Request struct {
	Text              string
	Mode              Mode
	TopK              int
	IncludeProvenance bool
}

// Sentence is one segmented sentence of a single pipeline run. Offsets index
// the original input text, so provenance stays valid regardless of any
// normalization applied for fingerprinting.
type Sentence struct {
	Index int
	Text  string
	Start int
	End   int
	Score float64
}

// StageStatus records the outcome of one pipeline stage.
type StageStatus string

const (
	StageOK       StageStatus = "ok"
	StageSkipped  StageStatus = "skipped"
	StageDegraded StageStatus = "degraded"
	StageFailed   StageStatus = "failed"
)

// StageRecord captures timing and outcome for one pipeline stage.
type StageRecord struct {
	Name       string      `json:"name"`
	DurationMs float64     `json:"duration_ms"`
	Status     StageStatus `json:"status"`
}

// Span is a byte offset range into the original request text.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Result is the complete outcome of one summarization. Mode is the tier that
// was actually delivered, which may be lower than the requested tier after
// degradation. A Result is built once per distinct computation and treated as
// read-only afterwards; stores hand out copies.
type Result struct {
	Summary            string        `json:"summary"`
	SentencesExtracted []string      `json:"sentences_extracted"`
	Mode               Mode          `json:"mode"`
	TotalDurationMs    float64       `json:"total_duration_ms"`
	CacheHit           bool          `json:"cache_hit"`
	PipelineStages     []StageRecord `json:"pipeline_stages"`
	Provenance         []Span        `json:"provenance,omitempty"`
}

// Clone returns an independent deep copy of the result.
func (r Result) Clone() Result {
	out := r
	out.SentencesExtracted = append([]string(nil), r.SentencesExtracted...)
	out.PipelineStages = append([]StageRecord(nil), r.PipelineStages...)
	if r.Provenance != nil {
		out.Provenance = append([]Span(nil), r.Provenance...)
	}
	return out
}
