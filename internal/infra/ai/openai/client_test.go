package openai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sashabaranov/go-openai"

	"github.com/bryanwahyu/componentlens/internal/domain/ai"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = srv.URL + "/v1"
	return &Client{Client: openai.NewClientWithConfig(cfg), DetectionModel: "gpt-4o", AnalysisModel: "o3-mini"}
}

func TestDescribeComponents_SendsImageAndPrompt(t *testing.T) {
	var body map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"index":0,"message":{"role":"assistant","content":"* **RAM**: Confirmed"}}]}`))
	})

	out, err := c.DescribeComponents(context.Background(), ai.Image{Data: []byte{0xFF, 0xD8}, MIMEType: "image/jpeg"}, []string{"RAM"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "* **RAM**: Confirmed" {
		t.Fatalf("unexpected content %q", out)
	}
	if body["model"] != "o3-mini" {
		t.Fatalf("expected analysis model, got %v", body["model"])
	}
	if _, ok := body["max_completion_tokens"]; !ok {
		t.Fatalf("reasoning model should use max_completion_tokens: %v", body)
	}
	raw, _ := json.Marshal(body["messages"])
	if !strings.Contains(string(raw), "data:image/jpeg;base64,/9g=") {
		t.Fatalf("image data URL missing from request: %s", raw)
	}
}

func TestDetectComponents_QuotaMapsToSentinel(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"You exceeded your current quota","type":"insufficient_quota"}}`))
	})

	_, err := c.DetectComponents(context.Background(), ai.Image{Data: []byte("x"), MIMEType: "image/png"})
	if !errors.Is(err, ai.ErrQuotaExceeded) {
		t.Fatalf("expected ErrQuotaExceeded, got %v", err)
	}
}

func TestInfo_Defaults(t *testing.T) {
	c := &Client{}
	info := c.Info()
	if info.Provider != "openai" || info.DetectionModel != defaultModel || info.AnalysisModel != defaultModel {
		t.Fatalf("unexpected info: %+v", info)
	}
}

func TestIsQuotaError(t *testing.T) {
	if !isQuotaError(&openai.APIError{HTTPStatusCode: http.StatusTooManyRequests}) {
		t.Fatalf("429 APIError should be quota")
	}
	if isQuotaError(&openai.APIError{HTTPStatusCode: http.StatusBadRequest}) {
		t.Fatalf("400 APIError should not be quota")
	}
	if isQuotaError(errors.New("boom")) {
		t.Fatalf("plain error should not be quota")
	}
}
