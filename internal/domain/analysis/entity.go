package analysis

import (
	"time"

	"github.com/bryanwahyu/componentlens/internal/domain/detection"
)

// ID identifier type
type ID string

// Analysis is one processed image: the raw model text, its classification
// and the structured detections, stored for retrieval.
type Analysis struct {
	ID             ID                       `json:"id"`
	TenantID       string                   `json:"tenant_id"`
	ImageURL       string                   `json:"image_url,omitempty"`
	Text           string                   `json:"analysis"`
	Classification Result                   `json:"classification"`
	Detections     []detection.Detection    `json:"detections"`
	Structured     detection.StructuredData `json:"structured_data"`
	ModelUsed      string                   `json:"model_used"`
	CreatedAt      time.Time                `json:"created_at"`
}

// Phase names the step of an analysis that failed.
type Phase string

const (
	PhaseUpload   Phase = "upload"
	PhaseDetect   Phase = "detect"
	PhaseDescribe Phase = "describe"
	PhasePersist  Phase = "persist"
)

// Failure is a persisted record of a step that went wrong. Describe
// failures are recorded even though the analysis itself succeeds.
type Failure struct {
	ID         int64     `json:"id"`
	TenantID   string    `json:"tenant_id"`
	AnalysisID ID        `json:"analysis_id"`
	Phase      Phase     `json:"phase"`
	Message    string    `json:"message"`
	CreatedAt  time.Time `json:"created_at"`
}
