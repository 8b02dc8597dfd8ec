package ai

import "context"

// Image is an uploaded picture handed to a vision model.
type Image struct {
	Data     []byte
	MIMEType string
}

// ModelInfo describes the provider behind a Client.
type ModelInfo struct {
	Provider       string `json:"provider"`
	DetectionModel string `json:"detection_model"`
	AnalysisModel  string `json:"analysis_model"`
}

// Client is a vision model. DetectComponents returns the COMPONENT/TYPE/
// POSITION listing; DescribeComponents returns the free-text analysis that
// gets classified.
type Client interface {
	DetectComponents(ctx context.Context, img Image) (string, error)
	DescribeComponents(ctx context.Context, img Image, detected []string) (string, error)
	Info() ModelInfo
}
