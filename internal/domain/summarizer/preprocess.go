package summarizer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	apperrors "github.com/tessely/summarizer/pkg/errors"
)

// Common support-mail boilerplate. Matching sentences are dropped before
// scoring; offsets of the surviving sentences are untouched.
var boilerplatePrefixes = []string{
	"sent from my",
	"get outlook for",
	"this email is confidential",
	"please do not reply to this email",
}

// splitSentences segments text into sentences with byte offsets into the
// original input. Segmentation is deterministic: identical input yields
// identical sentences and offsets, which the cache fingerprint and the
// provenance tracker both rely on.
func splitSentences(text string) ([]Sentence, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperrors.Wrap(CodeInvalidInput, "text cannot be empty", nil)
	}

	var out []Sentence
	push := func(start, end int) {
		trimmed := strings.TrimRightFunc(text[start:end], unicode.IsSpace)
		if trimmed == "" {
			return
		}
		end = start + len(trimmed)
		if isBoilerplate(trimmed) {
			return
		}
		out = append(out, Sentence{
			Index: len(out),
			Text:  trimmed,
			Start: start,
			End:   end,
		})
	}

	start := -1
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		if start < 0 {
			if !unicode.IsSpace(r) {
				start = i
			}
			i += size
			continue
		}
		if r == '\n' || r == '\r' {
			push(start, i)
			start = -1
			i += size
			continue
		}
		if isTerminator(r) {
			end := absorbTerminators(text, i)
			if end >= len(text) || nextIsSpace(text, end) {
				push(start, end)
				start = -1
			}
			i = end
			continue
		}
		i += size
	}
	if start >= 0 {
		push(start, len(text))
	}

	if len(out) == 0 {
		return nil, apperrors.Wrap(CodeInvalidInput, "no sentences found in text", nil)
	}
	return out, nil
}

func isTerminator(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

// absorbTerminators extends the sentence end past runs of terminators and any
// trailing closing quotes or brackets, so "Done...\"" stays one sentence.
func absorbTerminators(text string, i int) int {
	for i < len(text) {
		r, size := utf8.DecodeRuneInString(text[i:])
		if isTerminator(r) || r == '"' || r == '\'' || r == ')' || r == ']' || r == '”' || r == '’' {
			i += size
			continue
		}
		break
	}
	return i
}

func nextIsSpace(text string, i int) bool {
	r, _ := utf8.DecodeRuneInString(text[i:])
	return unicode.IsSpace(r)
}

func isBoilerplate(sentence string) bool {
	lowered := strings.ToLower(strings.TrimSpace(sentence))
	for _, prefix := range boilerplatePrefixes {
		if strings.HasPrefix(lowered, prefix) {
			return true
		}
	}
	return false
}

// tokenize lowercases and splits on anything that is not a letter or digit.
func tokenize(s string) []string {
	lowered := strings.ToLower(s)
	return strings.FieldsFunc(lowered, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
