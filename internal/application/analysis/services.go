package analysis

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/bryanwahyu/componentlens/internal/application"
	"github.com/bryanwahyu/componentlens/internal/domain/ai"
	domain "github.com/bryanwahyu/componentlens/internal/domain/analysis"
	"github.com/bryanwahyu/componentlens/internal/domain/detection"
)

// QuotaNotice replaces the detailed analysis when the provider is out of quota.
const QuotaNotice = "⚠️ Detailed analysis unavailable due to API quota limits. Basic component detection still works!"

const failureListLimit = 50

// Service implements the component analysis use-cases.
// Safe for concurrent use as long as its ports are.
type Service struct {
	Repo     domain.Repository
	Failures domain.FailureRepository
	Images   domain.ImageStore
	Vision   ai.Client
	Clock    application.Clock
	NewID    func() string
}

// AnalyzeCommand is one uploaded image to analyze.
type AnalyzeCommand struct {
	TenantID string
	Filename string
	Image    []byte
}

// AnalyzeResult is what the detect endpoint returns.
type AnalyzeResult struct {
	*domain.Analysis
	TotalComponents   int  `json:"total_components"`
	ComponentDetected bool `json:"component_detected"`
}

// ModelInfo is the active provider plus what the service can do with it.
type ModelInfo struct {
	ai.ModelInfo
	Capabilities []string `json:"capabilities"`
}

var capabilities = []string{
	"component_detection",
	"detailed_analysis",
	"status_classification",
	"upgrade_recommendations",
}

// Classify runs the text classifier without touching any port.
func (s *Service) Classify(text string) domain.Result {
	return domain.Classify(text)
}

// Analyze stores the image, runs detection and the detailed analysis,
// classifies the combined text and persists the result.
func (s *Service) Analyze(ctx context.Context, cmd AnalyzeCommand) (AnalyzeResult, error) {
	mimeType, err := sniffImage(cmd.Image)
	if err != nil {
		return AnalyzeResult{}, err
	}
	id := domain.ID(s.newID())
	img := ai.Image{Data: cmd.Image, MIMEType: mimeType}

	key := fmt.Sprintf("%s/%s%s", cmd.TenantID, id, imageExt(cmd.Filename, mimeType))
	url, err := s.Images.Put(ctx, key, cmd.Image, mimeType)
	if err != nil {
		return AnalyzeResult{}, s.fail(ctx, cmd.TenantID, id, domain.PhaseUpload, err)
	}

	raw, err := s.Vision.DetectComponents(ctx, img)
	if err != nil {
		return AnalyzeResult{}, s.fail(ctx, cmd.TenantID, id, domain.PhaseDetect, err)
	}
	detections := detection.Parse(raw)
	description := detection.Describe(detections)

	detailed, err := s.Vision.DescribeComponents(ctx, img, detection.Classes(detections))
	if err != nil {
		s.recordFailure(ctx, cmd.TenantID, id, domain.PhaseDescribe, err)
		detailed = unavailableNotice(err)
	}

	text := CombineText(description, detailed)
	a := &domain.Analysis{
		ID:             id,
		TenantID:       cmd.TenantID,
		ImageURL:       url,
		Text:           text,
		Classification: domain.Classify(text),
		Detections:     detections,
		Structured:     detection.Structure(detections),
		ModelUsed:      s.Vision.Info().DetectionModel,
		CreatedAt:      s.Clock.Now(),
	}
	if err := s.Repo.Save(ctx, a); err != nil {
		return AnalyzeResult{}, s.fail(ctx, cmd.TenantID, id, domain.PhasePersist, err)
	}

	return AnalyzeResult{
		Analysis:          a,
		TotalComponents:   len(detections),
		ComponentDetected: len(detections) > 0,
	}, nil
}

// Get returns one stored analysis.
func (s *Service) Get(ctx context.Context, tenant string, id domain.ID) (*domain.Analysis, error) {
	return s.Repo.Get(ctx, tenant, id)
}

// List returns a page of stored analyses, newest first.
func (s *Service) List(ctx context.Context, tenant string, page, pageSize int) (domain.PaginatedResult, error) {
	return s.Repo.Paginate(ctx, tenant, page, pageSize)
}

// ListFailures returns the failure log of an analysis.
func (s *Service) ListFailures(ctx context.Context, tenant string, id domain.ID) ([]*domain.Failure, error) {
	return s.Failures.ListByAnalysis(ctx, tenant, id, failureListLimit)
}

func (s *Service) ModelInfo() ModelInfo {
	return ModelInfo{ModelInfo: s.Vision.Info(), Capabilities: capabilities}
}

// CombineText joins the short description and the detailed analysis
// into the text that gets classified.
func CombineText(description, detailed string) string {
	if strings.TrimSpace(detailed) == "" {
		return description
	}
	return fmt.Sprintf("🔍 %s\n\n📋 Detailed Analysis:\n%s", description, detailed)
}

func unavailableNotice(err error) string {
	if errors.Is(err, ai.ErrQuotaExceeded) {
		return QuotaNotice
	}
	return fmt.Sprintf("Detailed analysis unavailable: %v", err)
}

// fail records the failure and returns it as a *StepError.
func (s *Service) fail(ctx context.Context, tenant string, id domain.ID, phase domain.Phase, cause error) error {
	s.recordFailure(ctx, tenant, id, phase, cause)
	return &StepError{AnalysisID: id, Phase: phase, Err: cause}
}

func (s *Service) recordFailure(ctx context.Context, tenant string, id domain.ID, phase domain.Phase, cause error) {
	log.Printf("analysis failed: tenant=%s id=%s phase=%s err=%v", tenant, id, phase, cause)
	if s.Failures == nil {
		return
	}
	f := &domain.Failure{
		TenantID:   tenant,
		AnalysisID: id,
		Phase:      phase,
		Message:    cause.Error(),
		CreatedAt:  s.Clock.Now(),
	}
	// the request context may already be canceled
	if err := s.Failures.Save(context.WithoutCancel(ctx), f); err != nil {
		log.Printf("failure record not saved: tenant=%s id=%s err=%v", tenant, id, err)
	}
}

func (s *Service) newID() string {
	if s.NewID != nil {
		return s.NewID()
	}
	return uuid.New().String()
}

func sniffImage(data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty upload", domain.ErrInvalidImage)
	}
	ct := http.DetectContentType(data)
	if !strings.HasPrefix(ct, "image/") {
		return "", fmt.Errorf("%w: content type %s", domain.ErrInvalidImage, ct)
	}
	return ct, nil
}

var extByMIME = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
	"image/bmp":  ".bmp",
}

func imageExt(filename, mimeType string) string {
	if ext := strings.ToLower(filepath.Ext(filename)); ext != "" {
		return ext
	}
	if ext, ok := extByMIME[mimeType]; ok {
		return ext
	}
	return ".img"
}
