package inference

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/packages/param"

	"veoprompt/pkg/utils"
)

// Provider is an OpenAI-compatible endpoint with a default vision model.
type Provider struct {
	BaseURL string
	Model   string
}

var Providers = map[string]Provider{
	"openai": {Model: "gpt-4o-mini"},
	"grok":   {BaseURL: "https://api.x.ai/v1", Model: "grok-4-fast-reasoning"},
	"local":  {BaseURL: "http://localhost:1234/v1"},
}

// OpenAIInferencer implements Inferencer using OpenAI's official Go SDK.
type OpenAIInferencer struct {
	client *openai.Client
	apiKey string
	model  string
}

// NewOpenAIInferencer creates a new inferencer instance using OpenAI client.
func NewOpenAIInferencer(apiKey string, model string) *OpenAIInferencer {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIInferencer{
		client: &client,
		apiKey: apiKey,
		model:  model,
	}
}

// NewProviderInferencer configures an OpenAIInferencer for a named provider.
// An empty model falls back to the provider default.
func NewProviderInferencer(name, apiKey, model string) (*OpenAIInferencer, error) {
	p, ok := Providers[name]
	if !ok {
		return nil, fmt.Errorf("unknown inference provider %q", name)
	}
	o := NewOpenAIInferencer(apiKey, cmp.Or(model, p.Model))
	if p.BaseURL != "" {
		o.ChangeBaseURL(p.BaseURL)
	}
	return o, nil
}

func (o *OpenAIInferencer) ChangeBaseURL(baseURL string) {
	client := openai.NewClient(
		option.WithAPIKey(o.apiKey),
		option.WithBaseURL(baseURL),
	)
	o.client = &client
}

// Infer sends text and images to the chat completion endpoint and returns the output.
func (o *OpenAIInferencer) Infer(ctx context.Context, params *openai.ChatCompletionNewParams, system, user string, images ...Image) (string, error) {
	if params == nil {
		params = new(openai.ChatCompletionNewParams)
	} else {
		cp := *params
		params = &cp
	}

	content := openai.ChatCompletionUserMessageParamContentUnion{
		OfString: param.Opt[string]{Value: user},
	}
	if len(images) > 0 {
		parts := []openai.ChatCompletionContentPartUnionParam{openai.TextContentPart(user)}
		for _, img := range images {
			parts = append(parts, openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
				URL: img.DataURL(),
			}))
		}
		content = openai.ChatCompletionUserMessageParamContentUnion{OfArrayOfContentParts: parts}
	}

	params.Model = cmp.Or(params.Model, o.model)
	params.Messages = []openai.ChatCompletionMessageParamUnion{
		{
			OfSystem: &openai.ChatCompletionSystemMessageParam{
				Role: "system",
				Content: openai.ChatCompletionSystemMessageParamContentUnion{
					OfString: param.Opt[string]{Value: system},
				},
			}},
		{
			OfUser: &openai.ChatCompletionUserMessageParam{
				Role:    "user",
				Content: content,
			},
		},
	}

	params.MaxCompletionTokens = openai.Int(cmp.Or(params.MaxCompletionTokens.Value, 4096))
	params.Temperature = openai.Float(cmp.Or(params.Temperature.Value, 0.3))
	params.TopP = openai.Float(cmp.Or(params.TopP.Value, 1.0))

	resp, err := o.client.Chat.Completions.New(ctx, *params)
	if err != nil {
		return "", fmt.Errorf("openai inference error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no choices returned")
	}
	if resp.Choices[0].Message.Content == "" {
		return "", errors.New("empty completion content")
	}

	return resp.Choices[0].Message.Content, nil
}

// Verify checks that the result is non-empty JSON.
func (o *OpenAIInferencer) Verify(ctx context.Context, result string) (bool, error) {
	return verifyJSON(result)
}

func verifyJSON(result string) (bool, error) {
	if result == "" {
		return false, errors.New("empty result")
	}
	if !json.Valid([]byte(utils.CleanJSON(result))) {
		return false, errors.New("result is not valid json")
	}
	return true, nil
}
