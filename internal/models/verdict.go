package models

import "fmt"

// Verdict is the categorical safety classification assigned to a snippet.
type Verdict string

const (
	VerdictSafe   Verdict = "safe"
	VerdictUnsafe Verdict = "unsafe"
	// VerdictUnknown marks snippets whose model output could not be parsed
	// or whose labeling never resolved. It is a sentinel, never a source label.
	VerdictUnknown Verdict = "unknown"
)

// ParseVerdict converts a raw string into a Verdict.
func ParseVerdict(s string) (Verdict, error) {
	switch Verdict(s) {
	case VerdictSafe, VerdictUnsafe, VerdictUnknown:
		return Verdict(s), nil
	}
	return "", fmt.Errorf("invalid verdict %q", s)
}

// IsBinary reports whether the verdict is one of the two source labels.
// The labeling sources only ever produce safe/unsafe; unknown is reserved
// for unresolved rows.
func (v Verdict) IsBinary() bool {
	return v == VerdictSafe || v == VerdictUnsafe
}

func (v Verdict) String() string {
	return string(v)
}
