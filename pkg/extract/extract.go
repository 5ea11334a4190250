// Package extract asks a vision model for the attributes of the person in a
// reference image.
package extract

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/openai/openai-go/v3"

	"veoprompt/pkg/flight"
	"veoprompt/pkg/inference"
	"veoprompt/pkg/preview"
	"veoprompt/pkg/schema"
	"veoprompt/pkg/utils"
)

// ParseError reports model output that could not be read as attributes, even
// after a repair attempt.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string { return "failed to parse attributes: " + e.Err.Error() }

func (e *ParseError) Unwrap() error { return e.Err }

// Scheduler runs one uncached analysis, usually by handing it to a queue.
type Scheduler func(context.Context, inference.Image) (schema.ImageAttributes, error)

type Extractor struct {
	Inferencer inference.Inferencer
	// Timeout bounds a shared analysis. It runs apart from any single
	// request, so request deadlines do not apply to it.
	Timeout time.Duration

	results  *flight.Cache[string, schema.ImageAttributes]
	schedule Scheduler
}

func New(inf inference.Inferencer) *Extractor {
	results := flight.NewCache[string, schema.ImageAttributes]()
	results.Expiry(30 * time.Minute)
	e := &Extractor{
		Inferencer: inf,
		Timeout:    2 * time.Minute,
		results:    results,
	}
	e.schedule = e.Analyze
	return e
}

// Schedule routes cache misses through run instead of calling Analyze
// directly.
func (e *Extractor) Schedule(run Scheduler) {
	e.schedule = run
}

// Extract returns best-effort attributes for img. Identical images share one
// analysis while it is running and reuse its result afterwards.
func (e *Extractor) Extract(ctx context.Context, img inference.Image) (schema.ImageAttributes, error) {
	if !preview.IsImage(img.MIMEType) {
		return schema.ImageAttributes{}, preview.ErrNotImage
	}
	if len(img.Data) == 0 {
		return schema.ImageAttributes{}, errors.New("empty image")
	}
	if e.Inferencer == nil {
		return schema.ImageAttributes{}, errors.New("no inferencer configured")
	}

	sum := sha256.Sum256(img.Data)
	key := hex.EncodeToString(sum[:])
	return e.results.Do(ctx, key, func(ctx context.Context) (schema.ImageAttributes, error) {
		if e.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, e.Timeout)
			defer cancel()
		}
		return e.schedule(ctx, img)
	})
}

// Analyze asks the model about img without consulting the result cache.
func (e *Extractor) Analyze(ctx context.Context, img inference.Image) (schema.ImageAttributes, error) {
	params := &openai.ChatCompletionNewParams{
		ResponseFormat:      schema.StructuredOutputsResponseFormat(),
		MaxCompletionTokens: openai.Int(1024),
		Temperature:         openai.Float(0.2),
	}

	var attrs schema.ImageAttributes
	raw, err := e.Inferencer.Infer(ctx, params, systemPrompt, userPrompt(), img)
	if err != nil {
		return attrs, fmt.Errorf("analysis failed: %w", err)
	}

	if ok, _ := e.Inferencer.Verify(ctx, raw); ok {
		if err := json.Unmarshal([]byte(utils.CleanJSON(raw)), &attrs); err == nil {
			return attrs, nil
		}
	}

	log.Warn("analysis returned malformed json, asking for a repair", "raw", utils.LimitStr(raw, 120))
	fixed, err := e.Inferencer.Infer(ctx, params, fixJSONPrompt, raw)
	if err != nil {
		return attrs, &ParseError{Raw: raw, Err: err}
	}
	if err := json.Unmarshal([]byte(utils.CleanJSON(fixed)), &attrs); err != nil {
		return attrs, &ParseError{Raw: fixed, Err: fmt.Errorf("repaired output: %w", err)}
	}
	return attrs, nil
}
