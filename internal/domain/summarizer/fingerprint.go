package summarizer

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"unicode"
)

// Fingerprint derives the cache key for a request: a sha256 over the
// normalized text plus the mode, topK and provenance flag. Normalization is
// used only for keying; sentence offsets always index the original text.
func Fingerprint(req Request) string {
	h := sha256.New()
	h.Write([]byte(normalizeText(req.Text)))
	h.Write([]byte{0})
	h.Write([]byte(req.Mode))
	h.Write([]byte{0})
	h.Write([]byte(strconv.Itoa(req.TopK)))
	h.Write([]byte{0})
	h.Write([]byte(strconv.FormatBool(req.IncludeProvenance)))
	return hex.EncodeToString(h.Sum(nil))
}

// normalizeText lowercases and collapses whitespace and punctuation runs into
// single spaces, so cosmetic differences map to the same fingerprint.
func normalizeText(text string) string {
	lowered := strings.ToLower(strings.TrimSpace(text))
	var builder strings.Builder
	builder.Grow(len(lowered))
	lastSpace := true
	for _, r := range lowered {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			builder.WriteRune(r)
			lastSpace = false
			continue
		}
		if !lastSpace {
			builder.WriteRune(' ')
			lastSpace = true
		}
	}
	return strings.TrimSpace(builder.String())
}
