package summarizer

// provenanceSpans resolves the source span of each selected sentence, in the
// same order as the selection. Resolution goes through the Sentence values
// themselves rather than text matching, so near-duplicate sentences map to
// their own spans. Callers skip this entirely when provenance is not
// requested.
func provenanceSpans(selected []Sentence) []Span {
	spans := make([]Span, len(selected))
	for i, s := range selected {
		spans[i] = Span{Start: s.Start, End: s.End}
	}
	return spans
}
