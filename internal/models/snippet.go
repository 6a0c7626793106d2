package models

import "time"

// Snippet is one generated code sample subject to classification.
// Created by the generator; immutable afterward.
type Snippet struct {
	ID   int    `json:"id"`
	Code string `json:"code"`
}

// LabelRecord holds the three source judgments for a snippet and the
// reconciled gold label derived from them.
type LabelRecord struct {
	ID          int     `json:"id"`
	Code        string  `json:"code"`
	LabelA      Verdict `json:"label_a"`
	LabelB      Verdict `json:"label_b"`
	LabelC      Verdict `json:"label_c"`
	FinalLabel  Verdict `json:"final_label"`
	Confidence  float64 `json:"confidence"`
	NeedsReview bool    `json:"needs_review"`
}

// Classification is a single-shot baseline prediction for a snippet.
type Classification struct {
	ID          int     `json:"id"`
	GoldLabel   Verdict `json:"gold_label"`
	Predicted   Verdict `json:"predicted"`
	Explanation string  `json:"explanation"`
}

// WorksheetClassification is a worksheet-guided prediction, with the
// itemized evidence the model reported for each checklist entry.
type WorksheetClassification struct {
	ID              int     `json:"id"`
	GoldLabel       Verdict `json:"gold_label"`
	Predicted       Verdict `json:"predicted"`
	Reasoning       string  `json:"reasoning"`
	EvidenceSummary string  `json:"evidence_summary"`
}

// EvidenceItem is one checklist entry's outcome in a worksheet reply.
type EvidenceItem struct {
	Passed   bool   `json:"passed"`
	Evidence string `json:"evidence"`
}

// StoredClassification is a classification persisted by the web service.
type StoredClassification struct {
	ID              int64     `json:"id" db:"id"`
	Code            string    `json:"code" db:"code"`
	Status          Verdict   `json:"status" db:"status"`
	Reasoning       string    `json:"reasoning" db:"reasoning"`
	EvidenceSummary string    `json:"evidence_summary" db:"evidence_summary"`
	ModelVersion    string    `json:"model_version" db:"model_version"`
	ClassifiedAt    time.Time `json:"classified_at" db:"classified_at"`
}

// Job tracks an async batch classification started over HTTP.
type Job struct {
	ID             string     `json:"id" db:"id"`
	Status         string     `json:"status" db:"status"` // pending, processing, completed, failed
	TotalCount     int        `json:"total_count" db:"total_count"`
	ProcessedCount int        `json:"processed_count" db:"processed_count"`
	FailedCount    int        `json:"failed_count" db:"failed_count"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty" db:"completed_at"`
}
