package inference

import (
	"context"
	"encoding/base64"

	"github.com/openai/openai-go/v3"
)

// Image is an inline picture sent along with the user prompt.
type Image struct {
	Data     []byte
	MIMEType string
}

// DataURL encodes the image for APIs that take images as URLs.
func (i Image) DataURL() string {
	return "data:" + i.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(i.Data)
}

// Inferencer defines an interface for running model inference and verification.
type Inferencer interface {
	Infer(ctx context.Context, params *openai.ChatCompletionNewParams, system, user string, images ...Image) (string, error)
	Verify(ctx context.Context, result string) (bool, error)
}
