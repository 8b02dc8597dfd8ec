package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bryanwahyu/componentlens/internal/application"
	"github.com/bryanwahyu/componentlens/internal/domain/ai"
	domain "github.com/bryanwahyu/componentlens/internal/domain/analysis"
)

var created = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

const detectReply = `COMPONENT: RAM
TYPE: DDR4 SODIMM
POSITION: center
---
COMPONENT: Battery
TYPE: Li-ion
POSITION: bottom
DETAILS: swollen
---`

const detailedReply = `* **RAM:** Confirmed
* Battery: not visible under the shield
* Fan: check the vents`

type fakeRepo struct {
	mu    sync.Mutex
	saved map[domain.ID]*domain.Analysis
	err   error
}

func (r *fakeRepo) Save(_ context.Context, a *domain.Analysis) error {
	if r.err != nil {
		return r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saved == nil {
		r.saved = map[domain.ID]*domain.Analysis{}
	}
	r.saved[a.ID] = a
	return nil
}

func (r *fakeRepo) Get(_ context.Context, tenant string, id domain.ID) (*domain.Analysis, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.saved[id]
	if !ok || a.TenantID != tenant {
		return nil, domain.ErrNotFound
	}
	return a, nil
}

func (r *fakeRepo) Paginate(_ context.Context, tenant string, page, size int) (domain.PaginatedResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*domain.Analysis{}
	for _, a := range r.saved {
		if a.TenantID == tenant {
			out = append(out, a)
		}
	}
	return domain.NewPaginatedResult(out, page, size, int64(len(out))), nil
}

type fakeFailures struct {
	mu   sync.Mutex
	rows []*domain.Failure
}

func (f *fakeFailures) Save(_ context.Context, fl *domain.Failure) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	fl.ID = int64(len(f.rows) + 1)
	f.rows = append(f.rows, fl)
	return nil
}

func (f *fakeFailures) ListByAnalysis(_ context.Context, tenant string, id domain.ID, _ int) ([]*domain.Failure, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*domain.Failure{}
	for _, fl := range f.rows {
		if fl.TenantID == tenant && fl.AnalysisID == id {
			out = append(out, fl)
		}
	}
	return out, nil
}

type fakeImages struct {
	keys []string
	err  error
}

func (s *fakeImages) Put(_ context.Context, key string, _ []byte, _ string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.keys = append(s.keys, key)
	return "http://minio.local/images/" + key, nil
}

type fakeVision struct {
	detect, describe       string
	detectErr, describeErr error
	gotDetected            []string
}

func (v *fakeVision) DetectComponents(context.Context, ai.Image) (string, error) {
	return v.detect, v.detectErr
}

func (v *fakeVision) DescribeComponents(_ context.Context, _ ai.Image, detected []string) (string, error) {
	v.gotDetected = detected
	return v.describe, v.describeErr
}

func (v *fakeVision) Info() ai.ModelInfo {
	return ai.ModelInfo{Provider: "fake", DetectionModel: "det-1", AnalysisModel: "ana-1"}
}

func newService(v *fakeVision) (*Service, *fakeRepo, *fakeFailures, *fakeImages) {
	repo := &fakeRepo{}
	fails := &fakeFailures{}
	imgs := &fakeImages{}
	return &Service{
		Repo:     repo,
		Failures: fails,
		Images:   imgs,
		Vision:   v,
		Clock:    application.ClockFunc(func() time.Time { return created }),
		NewID:    func() string { return "11111111-2222-3333-4444-555555555555" },
	}, repo, fails, imgs
}

func TestAnalyze_HappyPath(t *testing.T) {
	v := &fakeVision{detect: detectReply, describe: detailedReply}
	svc, repo, fails, imgs := newService(v)

	res, err := svc.Analyze(context.Background(), AnalyzeCommand{TenantID: "acme", Filename: "board.PNG", Image: pngBytes})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if res.TotalComponents != 2 || !res.ComponentDetected {
		t.Fatalf("counts: total=%d detected=%v", res.TotalComponents, res.ComponentDetected)
	}
	if got := imgs.keys; len(got) != 1 || got[0] != "acme/11111111-2222-3333-4444-555555555555.png" {
		t.Fatalf("image keys = %v", got)
	}
	if strings.Join(v.gotDetected, ",") != "RAM,Battery" {
		t.Fatalf("detailed prompt components = %v", v.gotDetected)
	}
	wantPrefix := "🔍 I identified: RAM (DDR4 SODIMM), Battery (Li-ion).\n\n📋 Detailed Analysis:\n"
	if !strings.HasPrefix(res.Text, wantPrefix) {
		t.Fatalf("combined text = %q", res.Text)
	}
	c := res.Classification
	if len(c.Confirmed) != 1 || c.Confirmed[0].Name != "RAM" {
		t.Fatalf("confirmed = %+v", c.Confirmed)
	}
	if len(c.NotVisible) != 1 || c.NotVisible[0].Name != "Battery" {
		t.Fatalf("notVisible = %+v", c.NotVisible)
	}
	if len(c.Notes) != 1 || c.Notes[0].Name != "Fan" {
		t.Fatalf("notes = %+v", c.Notes)
	}
	if !res.CreatedAt.Equal(created) {
		t.Fatalf("created_at = %v", res.CreatedAt)
	}
	if res.Structured.TotalCount != 2 || res.ModelUsed != "det-1" {
		t.Fatalf("structured=%+v model=%s", res.Structured, res.ModelUsed)
	}
	if _, err := repo.Get(context.Background(), "acme", res.ID); err != nil {
		t.Fatalf("analysis not persisted: %v", err)
	}
	if len(fails.rows) != 0 {
		t.Fatalf("unexpected failures: %+v", fails.rows)
	}
}

func TestAnalyze_QuotaOnDetailedAnalysisFallsBack(t *testing.T) {
	v := &fakeVision{
		detect:      detectReply,
		describeErr: fmt.Errorf("%w: 429", ai.ErrQuotaExceeded),
	}
	svc, _, fails, _ := newService(v)

	res, err := svc.Analyze(context.Background(), AnalyzeCommand{TenantID: "acme", Image: pngBytes})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if !strings.HasSuffix(res.Text, "\n"+QuotaNotice) {
		t.Fatalf("text = %q", res.Text)
	}
	if res.Classification.Len() != 0 {
		t.Fatalf("notice text must not classify: %+v", res.Classification)
	}
	if len(fails.rows) != 1 || fails.rows[0].Phase != domain.PhaseDescribe {
		t.Fatalf("failures = %+v", fails.rows)
	}
}

func TestAnalyze_OtherDescribeErrorNotice(t *testing.T) {
	v := &fakeVision{detect: detectReply, describeErr: errors.New("boom")}
	svc, _, _, _ := newService(v)

	res, err := svc.Analyze(context.Background(), AnalyzeCommand{TenantID: "acme", Image: pngBytes})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if !strings.HasSuffix(res.Text, "Detailed analysis unavailable: boom") {
		t.Fatalf("text = %q", res.Text)
	}
}

func TestAnalyze_DetectFailureIsRecordedAndReturned(t *testing.T) {
	v := &fakeVision{detectErr: fmt.Errorf("%w: limit", ai.ErrQuotaExceeded)}
	svc, repo, fails, _ := newService(v)

	_, err := svc.Analyze(context.Background(), AnalyzeCommand{TenantID: "acme", Image: pngBytes})
	if !errors.Is(err, ai.ErrQuotaExceeded) {
		t.Fatalf("err = %v, want quota", err)
	}
	id, ok := FailedAnalysisID(err)
	if !ok || id != "11111111-2222-3333-4444-555555555555" {
		t.Fatalf("FailedAnalysisID = %q, %v", id, ok)
	}
	if !strings.HasPrefix(err.Error(), "detect components: ") {
		t.Fatalf("err = %q", err)
	}
	if len(repo.saved) != 0 {
		t.Fatal("nothing should be persisted")
	}
	got, _ := svc.ListFailures(context.Background(), "acme", "11111111-2222-3333-4444-555555555555")
	if len(got) != 1 || got[0].Phase != domain.PhaseDetect || len(fails.rows) != 1 {
		t.Fatalf("failures = %+v", got)
	}
}

func TestAnalyze_RejectsNonImage(t *testing.T) {
	svc, _, _, imgs := newService(&fakeVision{})

	for _, data := range [][]byte{nil, []byte("just some text")} {
		_, err := svc.Analyze(context.Background(), AnalyzeCommand{TenantID: "acme", Image: data})
		if !errors.Is(err, domain.ErrInvalidImage) {
			t.Fatalf("err = %v, want ErrInvalidImage", err)
		}
		if _, ok := FailedAnalysisID(err); ok {
			t.Fatal("rejected uploads have no analysis id")
		}
	}
	if len(imgs.keys) != 0 {
		t.Fatal("invalid images must not be uploaded")
	}
}

func TestAnalyze_UploadAndPersistFailures(t *testing.T) {
	svc, _, fails, imgs := newService(&fakeVision{detect: detectReply})
	imgs.err = errors.New("bucket gone")
	if _, err := svc.Analyze(context.Background(), AnalyzeCommand{TenantID: "acme", Image: pngBytes}); err == nil {
		t.Fatal("expected upload error")
	}
	if fails.rows[0].Phase != domain.PhaseUpload {
		t.Fatalf("phase = %s", fails.rows[0].Phase)
	}

	svc, repo, fails, _ := newService(&fakeVision{detect: detectReply})
	repo.err = errors.New("db down")
	if _, err := svc.Analyze(context.Background(), AnalyzeCommand{TenantID: "acme", Image: pngBytes}); err == nil {
		t.Fatal("expected persist error")
	}
	if fails.rows[0].Phase != domain.PhasePersist {
		t.Fatalf("phase = %s", fails.rows[0].Phase)
	}
}

func TestCombineText(t *testing.T) {
	if got := CombineText("desc", ""); got != "desc" {
		t.Fatalf("got %q", got)
	}
	if got := CombineText("desc", "  \n"); got != "desc" {
		t.Fatalf("blank detailed: got %q", got)
	}
	want := "🔍 desc\n\n📋 Detailed Analysis:\nmore"
	if got := CombineText("desc", "more"); got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestImageExt(t *testing.T) {
	tests := []struct{ name, mime, want string }{
		{"a.JPEG", "image/jpeg", ".jpeg"},
		{"", "image/png", ".png"},
		{"noext", "image/jpeg", ".jpg"},
		{"", "image/x-icon", ".img"},
	}
	for _, tt := range tests {
		if got := imageExt(tt.name, tt.mime); got != tt.want {
			t.Errorf("imageExt(%q,%q) = %q, want %q", tt.name, tt.mime, got, tt.want)
		}
	}
}

func TestModelInfo(t *testing.T) {
	svc, _, _, _ := newService(&fakeVision{})
	mi := svc.ModelInfo()
	if mi.Provider != "fake" || mi.AnalysisModel != "ana-1" || len(mi.Capabilities) == 0 {
		t.Fatalf("model info = %+v", mi)
	}
}

func TestListAndGet(t *testing.T) {
	svc, _, _, _ := newService(&fakeVision{detect: detectReply, describe: detailedReply})
	res, err := svc.Analyze(context.Background(), AnalyzeCommand{TenantID: "acme", Image: pngBytes})
	if err != nil {
		t.Fatal(err)
	}

	page, err := svc.List(context.Background(), "acme", 1, 20)
	if err != nil || page.Total != 1 || len(page.Data) != 1 {
		t.Fatalf("List = %+v, %v", page, err)
	}
	if _, err := svc.Get(context.Background(), "globex", res.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("cross-tenant Get err = %v", err)
	}
}
