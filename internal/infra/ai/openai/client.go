package openai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/bryanwahyu/componentlens/internal/domain/ai"
	"github.com/bryanwahyu/componentlens/internal/infra/ai/prompt"
)

const (
	maxTokens    = 2048
	defaultModel = "gpt-4o-mini"
)

type Client struct {
	*openai.Client
	DetectionModel string
	AnalysisModel  string
}

func NewClient(apiKey, detectionModel, analysisModel string) *Client {
	return &Client{Client: openai.NewClient(apiKey), DetectionModel: detectionModel, AnalysisModel: analysisModel}
}

func (c *Client) Info() ai.ModelInfo {
	return ai.ModelInfo{
		Provider:       "openai",
		DetectionModel: orDefault(c.DetectionModel),
		AnalysisModel:  orDefault(c.AnalysisModel),
	}
}

func (c *Client) DetectComponents(ctx context.Context, img ai.Image) (string, error) {
	return c.complete(ctx, orDefault(c.DetectionModel), prompt.GetDetectionPrompt(), img)
}

func (c *Client) DescribeComponents(ctx context.Context, img ai.Image, detected []string) (string, error) {
	return c.complete(ctx, orDefault(c.AnalysisModel), prompt.GetAnalysisPrompt(detected), img)
}

func (c *Client) complete(ctx context.Context, model, text string, img ai.Image) (string, error) {
	dataURL := "data:" + img.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
	req := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: text},
					{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{
						URL:    dataURL,
						Detail: openai.ImageURLDetailAuto,
					}},
				},
			},
		},
	}
	// For reasoning models (o1/o3/o4/gpt-5*) use MaxCompletionTokens instead of MaxTokens
	if isReasoningModel(model) {
		req.MaxCompletionTokens = maxTokens
	} else {
		req.MaxTokens = maxTokens
	}

	resp, err := c.CreateChatCompletion(ctx, req)
	if err != nil {
		if isQuotaError(err) {
			return "", fmt.Errorf("%w: %v", ai.ErrQuotaExceeded, err)
		}
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai: empty response")
	}
	return resp.Choices[0].Message.Content, nil
}

func isReasoningModel(model string) bool {
	for _, p := range []string{"o1", "o3", "o4", "gpt-5"} {
		if strings.HasPrefix(model, p) {
			return true
		}
	}
	return false
}

func isQuotaError(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
		return true
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode == http.StatusTooManyRequests {
		return true
	}
	return false
}

func orDefault(model string) string {
	if model == "" {
		return defaultModel
	}
	return model
}
