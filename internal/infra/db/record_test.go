package db

import (
	"reflect"
	"testing"
	"time"

	"github.com/bryanwahyu/componentlens/internal/domain/analysis"
	"github.com/bryanwahyu/componentlens/internal/domain/detection"
)

func TestEncodeDecodeAnalysis(t *testing.T) {
	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	dets := []detection.Detection{{Class: "RAM", Type: "DDR4", Position: "top", Size: "Medium", Confidence: 0.7}}
	in := &analysis.Analysis{
		ID:             "a-1",
		TenantID:       "acme",
		ImageURL:       "http://minio/images/acme/a-1.jpg",
		Text:           "* **RAM**: Confirmed",
		Classification: analysis.Classify("* **RAM**: Confirmed"),
		Detections:     dets,
		Structured:     detection.Structure(dets),
		ModelUsed:      "gemini-2.0-flash",
		CreatedAt:      created,
	}

	row, err := EncodeAnalysis(in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	out, err := row.Decode()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Fatalf("analysis changed through row mapping\n in: %+v\nout: %+v", in, out)
	}
}

func TestEncodeAnalysis_Defaults(t *testing.T) {
	row, err := EncodeAnalysis(&analysis.Analysis{ID: "x", Classification: analysis.NewResult()})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if row.TenantID != "-" || row.ModelUsed != "-" {
		t.Fatalf("expected dash defaults, got %+v", row)
	}
	if row.DetectionsJSON != "[]" {
		t.Fatalf("nil detections should encode as [], got %s", row.DetectionsJSON)
	}
	if row.CreatedAt.IsZero() {
		t.Fatalf("created_at should default to now")
	}
}

func TestDecode_EmptyColumns(t *testing.T) {
	a, err := AnalysisRow{ID: "y"}.Decode()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if a.Classification.Confirmed == nil || a.Detections == nil {
		t.Fatalf("empty columns should decode to empty, non-nil values: %+v", a)
	}
}

func TestNormalizePage(t *testing.T) {
	cases := []struct{ page, size, wantPage, wantSize, wantOffset int }{
		{0, 0, 1, 20, 0},
		{3, 10, 3, 10, 20},
		{-1, 5, 1, 5, 0},
	}
	for _, tc := range cases {
		p, s, o := NormalizePage(tc.page, tc.size)
		if p != tc.wantPage || s != tc.wantSize || o != tc.wantOffset {
			t.Errorf("NormalizePage(%d,%d) = %d,%d,%d", tc.page, tc.size, p, s, o)
		}
	}
}
