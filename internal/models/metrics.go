package models

// Confusion counts predictions against gold labels with "safe" as the
// positive class. Rows predicted unknown contribute to neither cell.
type Confusion struct {
	TP int `json:"tp"`
	TN int `json:"tn"`
	FP int `json:"fp"`
	FN int `json:"fn"`
}

// ClassifierMetrics are the standard confusion-matrix-derived statistics
// for one classifier against the gold labels.
type ClassifierMetrics struct {
	NExamples     int       `json:"n_examples"`
	Accuracy      float64   `json:"accuracy"`
	PrecisionSafe float64   `json:"precision_safe"`
	RecallSafe    float64   `json:"recall_safe"`
	F1Safe        float64   `json:"f1_safe"`
	Confusion     Confusion `json:"confusion_matrix"`
}

// AgreementMetrics compare the two classifiers against each other,
// joined on snippet id.
type AgreementMetrics struct {
	NExamples               int     `json:"n_examples"`
	AgreementRate           float64 `json:"agreement_rate"`
	DisagreementRate        float64 `json:"disagreement_rate"`
	BaselineSafeSheetUnsafe int     `json:"baseline_safe_worksheet_unsafe"`
	BaselineUnsafeSheetSafe int     `json:"baseline_unsafe_worksheet_safe"`
}

// ComparisonSummary is the headline delta between the two strategies.
type ComparisonSummary struct {
	BaselineAccuracy    float64 `json:"baseline_accuracy"`
	WorksheetAccuracy   float64 `json:"worksheet_accuracy"`
	AccuracyImprovement float64 `json:"accuracy_improvement"`
	BaselineF1          float64 `json:"baseline_f1"`
	WorksheetF1         float64 `json:"worksheet_f1"`
	F1Improvement       float64 `json:"f1_improvement"`
}

// Comparison is the full evaluation record written by the evaluate stage.
type Comparison struct {
	BaselineVsGold      ClassifierMetrics `json:"baseline_vs_gold"`
	WorksheetVsGold     ClassifierMetrics `json:"worksheet_vs_gold"`
	WorksheetVsBaseline AgreementMetrics  `json:"worksheet_vs_baseline"`
	Summary             ComparisonSummary `json:"summary"`
}

// LabelingMetrics summarize one labeling run.
type LabelingMetrics struct {
	NSnippets         int     `json:"n_snippets"`
	AgreementRate     float64 `json:"agreement_rate"`
	AverageConfidence float64 `json:"average_confidence"`
	NeedsReviewCount  int     `json:"needs_review_count"`
}
