package summarizer

import "testing"

func TestFingerprintIgnoresCosmeticDifferences(t *testing.T) {
	base := Request{Text: "My order never arrived.", Mode: ModeExtractive, TopK: 3}
	variants := []string{
		"my order never arrived.",
		"  My   order\nnever arrived!  ",
		"My, order; never: arrived",
	}
	want := Fingerprint(base)
	for _, text := range variants {
		req := base
		req.Text = text
		if got := Fingerprint(req); got != want {
			t.Fatalf("variant %q: expected identical fingerprint", text)
		}
	}
}

func TestFingerprintSensitivity(t *testing.T) {
	base := Request{Text: "My order never arrived.", Mode: ModeExtractive, TopK: 3}
	variants := []Request{
		{Text: "My order finally arrived.", Mode: ModeExtractive, TopK: 3},
		{Text: base.Text, Mode: ModeSemantic, TopK: 3},
		{Text: base.Text, Mode: ModeExtractive, TopK: 5},
		{Text: base.Text, Mode: ModeExtractive, TopK: 3, IncludeProvenance: true},
	}
	want := Fingerprint(base)
	for i, req := range variants {
		if got := Fingerprint(req); got == want {
			t.Fatalf("variant %d: expected distinct fingerprint", i)
		}
	}
}

func TestNormalizeText(t *testing.T) {
	cases := []struct {
		in  string
		out string
	}{
		{"  Hello   World  ", "hello world"},
		{"What's, the problem?", "what s the problem"},
		{"A\n\tB", "a b"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := normalizeText(tc.in); got != tc.out {
			t.Fatalf("normalizeText(%q): expected %q got %q", tc.in, tc.out, got)
		}
	}
}
