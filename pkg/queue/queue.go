// Package queue feeds reference images to a vision model one at a time.
// Local OpenAI-compatible servers usually serve a single request at once, so
// uploads wait their turn here instead of piling onto the endpoint.
package queue

import (
	"context"
	"errors"
	"sync"

	"github.com/charmbracelet/log"

	"veoprompt/pkg/inference"
	"veoprompt/pkg/schema"
)

var ErrFull = errors.New("analysis queue is full")

// Analyzer reads character attributes off an image.
type Analyzer interface {
	Extract(ctx context.Context, img inference.Image) (schema.ImageAttributes, error)
}

// AnalyzerFunc adapts a plain function to Analyzer.
type AnalyzerFunc func(ctx context.Context, img inference.Image) (schema.ImageAttributes, error)

func (f AnalyzerFunc) Extract(ctx context.Context, img inference.Image) (schema.ImageAttributes, error) {
	return f(ctx, img)
}

type Queue struct {
	analyzer Analyzer
	stop     chan struct{}
	items    chan *Item
	once     sync.Once
}

type Item struct {
	Ctx      context.Context
	Image    inference.Image
	Response chan schema.ImageAttributes
	Error    chan error
}

func New(analyzer Analyzer, size int) *Queue {
	return &Queue{
		analyzer: analyzer,
		items:    make(chan *Item, max(size, 1)),
		stop:     make(chan struct{}),
	}
}

func (q *Queue) Start() {
	go q.processLoop()
}

func (q *Queue) Stop() {
	q.once.Do(func() { close(q.stop) })
}

// Len reports how many images are waiting for their turn.
func (q *Queue) Len() int {
	return len(q.items)
}

// Add enqueues img. Exactly one of the returned channels receives a value.
func (q *Queue) Add(ctx context.Context, img inference.Image) (chan schema.ImageAttributes, chan error, error) {
	respCh := make(chan schema.ImageAttributes, 1)
	errCh := make(chan error, 1)

	select {
	case q.items <- &Item{
		Ctx:      ctx,
		Image:    img,
		Response: respCh,
		Error:    errCh,
	}:
		return respCh, errCh, nil
	default:
		return nil, nil, ErrFull
	}
}

// Extract enqueues img and waits for its turn to finish.
func (q *Queue) Extract(ctx context.Context, img inference.Image) (schema.ImageAttributes, error) {
	respCh, errCh, err := q.Add(ctx, img)
	if err != nil {
		return schema.ImageAttributes{}, err
	}
	select {
	case <-ctx.Done():
		return schema.ImageAttributes{}, ctx.Err()
	case err := <-errCh:
		return schema.ImageAttributes{}, err
	case attrs := <-respCh:
		return attrs, nil
	}
}

func (q *Queue) processLoop() {
	log.Info("analysis queue started")
	for {
		select {
		case <-q.stop:
			log.Info("analysis queue stopped")
			return
		case item := <-q.items:
			q.processItem(item)
		}
	}
}

func (q *Queue) processItem(item *Item) {
	// the uploader gave up while waiting
	if err := item.Ctx.Err(); err != nil {
		item.Error <- err
		return
	}

	log.Debug("processing analysis", "type", item.Image.MIMEType, "size", len(item.Image.Data), "backlog", len(q.items))

	attrs, err := q.analyzer.Extract(item.Ctx, item.Image)
	if err != nil {
		item.Error <- err
		return
	}
	item.Response <- attrs
}
