package labeler

import (
	"fmt"

	"github.com/vik-srinivasan/genie-compliance/internal/models"
)

// Resolution is the outcome of reconciling three source judgments.
type Resolution struct {
	FinalLabel  models.Verdict
	Confidence  float64
	NeedsReview bool
}

// Reconcile applies the majority rule to three source verdicts:
// unanimity wins with confidence 1.0, a 2-1 split takes the majority with
// confidence 2/3, and a full three-way disagreement falls back to the
// fail-safe label "unsafe" with confidence 1/3 and the review flag set.
// Source verdicts must come from the binary safe/unsafe domain; with only
// two values a three-way split cannot occur, so that branch is reachable
// only if the domain ever grows.
func Reconcile(a, b, c models.Verdict) (Resolution, error) {
	for _, v := range []models.Verdict{a, b, c} {
		if !v.IsBinary() {
			return Resolution{}, fmt.Errorf("source verdict %q outside the safe/unsafe domain", v)
		}
	}

	if a == b && b == c {
		return Resolution{FinalLabel: a, Confidence: 1.0}, nil
	}

	if a == b || a == c {
		return Resolution{FinalLabel: a, Confidence: 2.0 / 3.0}, nil
	}
	if b == c {
		return Resolution{FinalLabel: b, Confidence: 2.0 / 3.0}, nil
	}

	return Resolution{
		FinalLabel:  models.VerdictUnsafe,
		Confidence:  1.0 / 3.0,
		NeedsReview: true,
	}, nil
}
