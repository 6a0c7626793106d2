package store

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/vik-srinivasan/genie-compliance/internal/models"
)

// Column layouts for the pipeline tables. Each table is written once,
// sequentially, by exactly one stage.
var (
	snippetHeader   = []string{"id", "code"}
	labeledHeader   = []string{"id", "code", "label_a", "label_b", "label_c", "final_label", "confidence", "needs_review"}
	baselineHeader  = []string{"id", "gold_label", "predicted", "explanation"}
	worksheetHeader = []string{"id", "gold_label", "predicted", "reasoning", "evidence_summary"}
)

func openTable(path string, header []string) (*csv.Reader, *os.File, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open table: %w", err)
	}

	r := csv.NewReader(file)
	got, err := r.Read()
	if err != nil {
		file.Close()
		return nil, nil, fmt.Errorf("failed to read header of %s: %w", path, err)
	}
	if len(got) != len(header) {
		file.Close()
		return nil, nil, fmt.Errorf("unexpected header in %s: got %d columns, want %d", path, len(got), len(header))
	}
	return r, file, nil
}

func writeTable(path string, header []string, rows [][]string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

// WriteSnippets writes the generated snippet table.
func WriteSnippets(path string, snippets []models.Snippet) error {
	rows := make([][]string, 0, len(snippets))
	for _, s := range snippets {
		rows = append(rows, []string{strconv.Itoa(s.ID), s.Code})
	}
	return writeTable(path, snippetHeader, rows)
}

// ReadSnippets reads the generated snippet table.
func ReadSnippets(path string) ([]models.Snippet, error) {
	r, file, err := openTable(path, snippetHeader)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	snippets := make([]models.Snippet, 0, len(records))
	for _, rec := range records {
		id, err := strconv.Atoi(rec[0])
		if err != nil {
			return nil, fmt.Errorf("invalid snippet id %q in %s: %w", rec[0], path, err)
		}
		snippets = append(snippets, models.Snippet{ID: id, Code: rec[1]})
	}
	return snippets, nil
}

// WriteLabelRecords writes the labeled table. Confidence is stored at full
// float precision so a round trip reproduces identical rows.
func WriteLabelRecords(path string, records []models.LabelRecord) error {
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		rows = append(rows, []string{
			strconv.Itoa(rec.ID),
			rec.Code,
			rec.LabelA.String(),
			rec.LabelB.String(),
			rec.LabelC.String(),
			rec.FinalLabel.String(),
			strconv.FormatFloat(rec.Confidence, 'g', -1, 64),
			strconv.FormatBool(rec.NeedsReview),
		})
	}
	return writeTable(path, labeledHeader, rows)
}

// ReadLabelRecords reads the labeled table.
func ReadLabelRecords(path string) ([]models.LabelRecord, error) {
	r, file, err := openTable(path, labeledHeader)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	records := make([]models.LabelRecord, 0, len(rows))
	for _, rec := range rows {
		id, err := strconv.Atoi(rec[0])
		if err != nil {
			return nil, fmt.Errorf("invalid id %q in %s: %w", rec[0], path, err)
		}
		labelA, err := models.ParseVerdict(rec[2])
		if err != nil {
			return nil, fmt.Errorf("row %d of %s: %w", id, path, err)
		}
		labelB, err := models.ParseVerdict(rec[3])
		if err != nil {
			return nil, fmt.Errorf("row %d of %s: %w", id, path, err)
		}
		labelC, err := models.ParseVerdict(rec[4])
		if err != nil {
			return nil, fmt.Errorf("row %d of %s: %w", id, path, err)
		}
		final, err := models.ParseVerdict(rec[5])
		if err != nil {
			return nil, fmt.Errorf("row %d of %s: %w", id, path, err)
		}
		confidence, err := strconv.ParseFloat(rec[6], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid confidence %q in %s: %w", rec[6], path, err)
		}
		needsReview, err := strconv.ParseBool(rec[7])
		if err != nil {
			return nil, fmt.Errorf("invalid needs_review %q in %s: %w", rec[7], path, err)
		}
		records = append(records, models.LabelRecord{
			ID:          id,
			Code:        rec[1],
			LabelA:      labelA,
			LabelB:      labelB,
			LabelC:      labelC,
			FinalLabel:  final,
			Confidence:  confidence,
			NeedsReview: needsReview,
		})
	}
	return records, nil
}

// WriteClassifications writes the baseline result table.
func WriteClassifications(path string, results []models.Classification) error {
	rows := make([][]string, 0, len(results))
	for _, res := range results {
		rows = append(rows, []string{
			strconv.Itoa(res.ID),
			res.GoldLabel.String(),
			res.Predicted.String(),
			res.Explanation,
		})
	}
	return writeTable(path, baselineHeader, rows)
}

// ReadClassifications reads the baseline result table.
func ReadClassifications(path string) ([]models.Classification, error) {
	r, file, err := openTable(path, baselineHeader)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	results := make([]models.Classification, 0, len(rows))
	for _, rec := range rows {
		id, err := strconv.Atoi(rec[0])
		if err != nil {
			return nil, fmt.Errorf("invalid id %q in %s: %w", rec[0], path, err)
		}
		gold, err := models.ParseVerdict(rec[1])
		if err != nil {
			return nil, fmt.Errorf("row %d of %s: %w", id, path, err)
		}
		predicted, err := models.ParseVerdict(rec[2])
		if err != nil {
			return nil, fmt.Errorf("row %d of %s: %w", id, path, err)
		}
		results = append(results, models.Classification{
			ID:          id,
			GoldLabel:   gold,
			Predicted:   predicted,
			Explanation: rec[3],
		})
	}
	return results, nil
}

// WriteWorksheetClassifications writes the worksheet result table.
func WriteWorksheetClassifications(path string, results []models.WorksheetClassification) error {
	rows := make([][]string, 0, len(results))
	for _, res := range results {
		rows = append(rows, []string{
			strconv.Itoa(res.ID),
			res.GoldLabel.String(),
			res.Predicted.String(),
			res.Reasoning,
			res.EvidenceSummary,
		})
	}
	return writeTable(path, worksheetHeader, rows)
}

// ReadWorksheetClassifications reads the worksheet result table.
func ReadWorksheetClassifications(path string) ([]models.WorksheetClassification, error) {
	r, file, err := openTable(path, worksheetHeader)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	results := make([]models.WorksheetClassification, 0, len(rows))
	for _, rec := range rows {
		id, err := strconv.Atoi(rec[0])
		if err != nil {
			return nil, fmt.Errorf("invalid id %q in %s: %w", rec[0], path, err)
		}
		gold, err := models.ParseVerdict(rec[1])
		if err != nil {
			return nil, fmt.Errorf("row %d of %s: %w", id, path, err)
		}
		predicted, err := models.ParseVerdict(rec[2])
		if err != nil {
			return nil, fmt.Errorf("row %d of %s: %w", id, path, err)
		}
		results = append(results, models.WorksheetClassification{
			ID:              id,
			GoldLabel:       gold,
			Predicted:       predicted,
			Reasoning:       rec[3],
			EvidenceSummary: rec[4],
		})
	}
	return results, nil
}
