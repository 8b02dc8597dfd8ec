// Package db holds the row mapping shared by the SQL repositories.
package db

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/bryanwahyu/componentlens/internal/domain/analysis"
	"github.com/bryanwahyu/componentlens/internal/domain/detection"
)

// AnalysisRow is the flat column form of an analysis.
type AnalysisRow struct {
	ID                 string
	TenantID           string
	ImageURL           string
	Text               string
	ClassificationJSON string
	DetectionsJSON     string
	StructuredJSON     string
	ModelUsed          string
	CreatedAt          time.Time
}

// EncodeAnalysis flattens an analysis, filling the defaults the
// NOT NULL columns need.
func EncodeAnalysis(a *analysis.Analysis) (AnalysisRow, error) {
	cls, err := json.Marshal(a.Classification)
	if err != nil {
		return AnalysisRow{}, fmt.Errorf("encode classification: %w", err)
	}
	dets := a.Detections
	if dets == nil {
		dets = []detection.Detection{}
	}
	detJSON, err := json.Marshal(dets)
	if err != nil {
		return AnalysisRow{}, fmt.Errorf("encode detections: %w", err)
	}
	structJSON, err := json.Marshal(a.Structured)
	if err != nil {
		return AnalysisRow{}, fmt.Errorf("encode structured data: %w", err)
	}
	created := a.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	return AnalysisRow{
		ID:                 string(a.ID),
		TenantID:           StringOrDash(a.TenantID),
		ImageURL:           a.ImageURL,
		Text:               a.Text,
		ClassificationJSON: string(cls),
		DetectionsJSON:     string(detJSON),
		StructuredJSON:     string(structJSON),
		ModelUsed:          StringOrDash(a.ModelUsed),
		CreatedAt:          created,
	}, nil
}

// Decode rebuilds the analysis. Empty JSON columns decode to empty values.
func (r AnalysisRow) Decode() (*analysis.Analysis, error) {
	a := &analysis.Analysis{
		ID:             analysis.ID(r.ID),
		TenantID:       r.TenantID,
		ImageURL:       r.ImageURL,
		Text:           r.Text,
		Classification: analysis.NewResult(),
		Detections:     []detection.Detection{},
		ModelUsed:      r.ModelUsed,
		CreatedAt:      r.CreatedAt,
	}
	if err := unmarshalColumn(r.ClassificationJSON, &a.Classification); err != nil {
		return nil, fmt.Errorf("decode classification of %s: %w", r.ID, err)
	}
	if err := unmarshalColumn(r.DetectionsJSON, &a.Detections); err != nil {
		return nil, fmt.Errorf("decode detections of %s: %w", r.ID, err)
	}
	if err := unmarshalColumn(r.StructuredJSON, &a.Structured); err != nil {
		return nil, fmt.Errorf("decode structured data of %s: %w", r.ID, err)
	}
	return a, nil
}

func unmarshalColumn(raw string, dst any) error {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return json.Unmarshal([]byte(raw), dst)
}

// StringOrDash returns "-" when the input is empty/whitespace
func StringOrDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// NormalizePage clamps pagination input and returns the row offset.
func NormalizePage(page, pageSize int) (int, int, int) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	return page, pageSize, (page - 1) * pageSize
}
