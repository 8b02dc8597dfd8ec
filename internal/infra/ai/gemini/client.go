package gemini

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/bryanwahyu/componentlens/internal/domain/ai"
	"github.com/bryanwahyu/componentlens/internal/infra/ai/prompt"
)

const (
	defaultDetectionModel = "gemini-2.0-flash"
	defaultAnalysisModel  = "gemini-2.5-flash"
	maxAttempts           = 3
)

type Client struct {
	APIKey         string
	DetectionModel string
	AnalysisModel  string
}

func NewClient(apiKey, detectionModel, analysisModel string) *Client {
	return &Client{
		APIKey:         strings.TrimSpace(apiKey),
		DetectionModel: strings.TrimSpace(detectionModel),
		AnalysisModel:  strings.TrimSpace(analysisModel),
	}
}

func (c *Client) Info() ai.ModelInfo {
	return ai.ModelInfo{
		Provider:       "gemini",
		DetectionModel: c.detectionModel(),
		AnalysisModel:  c.analysisModel(),
	}
}

func (c *Client) DetectComponents(ctx context.Context, img ai.Image) (string, error) {
	return c.generate(ctx, c.detectionModel(), prompt.GetDetectionPrompt(), img)
}

func (c *Client) DescribeComponents(ctx context.Context, img ai.Image, detected []string) (string, error) {
	return c.generate(ctx, c.analysisModel(), prompt.GetAnalysisPrompt(detected), img)
}

func (c *Client) generate(ctx context.Context, model, text string, img ai.Image) (string, error) {
	if c.APIKey == "" {
		return "", errors.New("GOOGLE_API_KEY is empty")
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(c.APIKey))
	if err != nil {
		return "", err
	}
	defer cl.Close()

	m := cl.GenerativeModel(model)
	m.SetTemperature(0)

	parts := []genai.Part{
		genai.Text(text),
		genai.Blob{MIMEType: img.MIMEType, Data: img.Data},
	}

	// retry 5xx and timeouts only
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		resp, err := m.GenerateContent(ctx, parts...)
		if err != nil {
			if isQuotaError(err) {
				return "", fmt.Errorf("%w: %v", ai.ErrQuotaExceeded, err)
			}
			if !isRetryable(err) {
				return "", fmt.Errorf("gemini %s: %w", model, err)
			}
			lastErr = err
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(time.Duration(attempt) * 300 * time.Millisecond):
			}
			continue
		}
		txt := firstText(resp)
		if txt == "" {
			return "", fmt.Errorf("gemini %s: empty response", model)
		}
		return txt, nil
	}
	return "", fmt.Errorf("gemini %s: %w", model, lastErr)
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, p := range cand.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				sb.WriteString(string(t))
			}
		}
		if sb.Len() > 0 {
			break
		}
	}
	return strings.TrimSpace(sb.String())
}

func isQuotaError(err error) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code == http.StatusTooManyRequests {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "quota") || strings.Contains(msg, "429")
}

// isRetryable reports whether a failed call may succeed on a second try.
func isRetryable(err error) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code >= http.StatusInternalServerError
	}
	// *apierror.APIError from the gRPC/REST transport
	var coded interface{ HTTPCode() int }
	if errors.As(err, &coded) && coded.HTTPCode() > 0 {
		return coded.HTTPCode() >= http.StatusInternalServerError
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var nerr net.Error
	return errors.As(err, &nerr) && nerr.Timeout()
}

func (c *Client) detectionModel() string {
	if c.DetectionModel == "" {
		return defaultDetectionModel
	}
	return c.DetectionModel
}

func (c *Client) analysisModel() string {
	if c.AnalysisModel == "" {
		return defaultAnalysisModel
	}
	return c.AnalysisModel
}
