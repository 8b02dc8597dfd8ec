package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"

	"github.com/bryanwahyu/componentlens/internal/domain/ai"
)

func TestFirstText(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: nil},
			{Content: &genai.Content{Parts: []genai.Part{genai.Text("* **RAM**: "), genai.Text("Confirmed\n")}}},
			{Content: &genai.Content{Parts: []genai.Part{genai.Text("ignored")}}},
		},
	}
	if got := firstText(resp); got != "* **RAM**: Confirmed" {
		t.Fatalf("firstText = %q", got)
	}
	if got := firstText(nil); got != "" {
		t.Fatalf("nil response should give empty text, got %q", got)
	}
}

func TestIsQuotaError(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{&googleapi.Error{Code: http.StatusTooManyRequests}, true},
		{fmt.Errorf("wrapped: %w", &googleapi.Error{Code: http.StatusTooManyRequests}), true},
		{errors.New("Resource has been exhausted (e.g. check quota)."), true},
		{&googleapi.Error{Code: http.StatusInternalServerError, Message: "backend"}, false},
		{errors.New("connection reset"), false},
	}
	for _, tc := range cases {
		if got := isQuotaError(tc.err); got != tc.want {
			t.Errorf("isQuotaError(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}

func TestInfo_Defaults(t *testing.T) {
	info := NewClient(" key ", "", "").Info()
	want := ai.ModelInfo{Provider: "gemini", DetectionModel: defaultDetectionModel, AnalysisModel: defaultAnalysisModel}
	if info != want {
		t.Fatalf("Info = %+v, want %+v", info, want)
	}
}

func TestGenerate_MissingKey(t *testing.T) {
	_, err := NewClient("", "", "").DetectComponents(context.Background(), ai.Image{})
	if err == nil {
		t.Fatalf("expected error without API key")
	}
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

type codedErr int

func (c codedErr) Error() string { return fmt.Sprintf("rpc error %d", int(c)) }
func (c codedErr) HTTPCode() int { return int(c) }

func TestIsRetryable(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"server error", &googleapi.Error{Code: http.StatusServiceUnavailable}, true},
		{"wrapped server error", fmt.Errorf("call: %w", &googleapi.Error{Code: http.StatusInternalServerError}), true},
		{"bad request", &googleapi.Error{Code: http.StatusBadRequest}, false},
		{"forbidden", &googleapi.Error{Code: http.StatusForbidden}, false},
		{"transport 502", codedErr(http.StatusBadGateway), true},
		{"transport 401", codedErr(http.StatusUnauthorized), false},
		{"deadline", fmt.Errorf("call: %w", context.DeadlineExceeded), true},
		{"net timeout", timeoutErr{}, true},
		{"unknown", errors.New("invalid argument"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := isRetryable(tc.err); got != tc.want {
				t.Fatalf("isRetryable(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}
