package analysis

import (
	"errors"
	"fmt"

	domain "github.com/bryanwahyu/componentlens/internal/domain/analysis"
)

// StepError is a failed Analyze step. AnalysisID is the key its failure
// rows were recorded under, so callers can look them up.
type StepError struct {
	AnalysisID domain.ID
	Phase      domain.Phase
	Err        error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %v", stepNames[e.Phase], e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

var stepNames = map[domain.Phase]string{
	domain.PhaseUpload:   "upload image",
	domain.PhaseDetect:   "detect components",
	domain.PhaseDescribe: "describe components",
	domain.PhasePersist:  "save analysis",
}

// FailedAnalysisID returns the analysis ID carried by err, if any.
func FailedAnalysisID(err error) (domain.ID, bool) {
	var se *StepError
	if errors.As(err, &se) {
		return se.AnalysisID, true
	}
	return "", false
}
