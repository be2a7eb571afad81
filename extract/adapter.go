// Package extract turns documents into the raw per-page text runs consumed
// by the page text index.
//
// An [Adapter] extracts synchronously and honours context cancellation.
// Services that report completion asynchronously implement [AsyncAdapter]
// and are bridged with [Await].
package extract

import (
	"context"
	"errors"
	"sync"

	"github.com/tsawler/pdfview/text"
)

// ErrUnsupportedLocator is returned for documents no adapter can read
var ErrUnsupportedLocator = errors.New("extract: unsupported locator")

// Adapter extracts the text of every page of a document
type Adapter interface {
	Extract(ctx context.Context, locator string) ([]text.RawPage, error)
}

// AdapterFunc adapts a function to the Adapter interface
type AdapterFunc func(ctx context.Context, locator string) ([]text.RawPage, error)

// Extract calls f(ctx, locator)
func (f AdapterFunc) Extract(ctx context.Context, locator string) ([]text.RawPage, error) {
	return f(ctx, locator)
}

// Job is an extraction in progress. Done is closed when Result is ready.
type Job interface {
	Done() <-chan struct{}
	Result() ([]text.RawPage, error)
}

// AsyncAdapter starts extractions that complete in the background
type AsyncAdapter interface {
	Start(locator string) Job
}

type canceler interface {
	Cancel()
}

// Await adapts an AsyncAdapter to the Adapter interface. Extract waits for
// the job's completion signal or for ctx; jobs that implement Cancel() are
// cancelled when ctx ends first.
func Await(a AsyncAdapter) Adapter {
	return AdapterFunc(func(ctx context.Context, locator string) ([]text.RawPage, error) {
		job := a.Start(locator)
		select {
		case <-job.Done():
			return job.Result()
		case <-ctx.Done():
			if c, ok := job.(canceler); ok {
				c.Cancel()
			}
			return nil, ctx.Err()
		}
	})
}

// Background runs a blocking Adapter as an AsyncAdapter
func Background(a Adapter) AsyncAdapter {
	return backgroundAdapter{a}
}

type backgroundAdapter struct {
	a Adapter
}

func (b backgroundAdapter) Start(locator string) Job {
	ctx, cancel := context.WithCancel(context.Background())
	j := &backgroundJob{done: make(chan struct{}), cancel: cancel}
	go func() {
		defer close(j.done)
		defer cancel()
		pages, err := b.a.Extract(ctx, locator)
		j.mu.Lock()
		j.pages, j.err = pages, err
		j.mu.Unlock()
	}()
	return j
}

type backgroundJob struct {
	done   chan struct{}
	cancel context.CancelFunc

	mu    sync.Mutex
	pages []text.RawPage
	err   error
}

func (j *backgroundJob) Done() <-chan struct{} { return j.done }

func (j *backgroundJob) Result() ([]text.RawPage, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.pages, j.err
}

func (j *backgroundJob) Cancel() { j.cancel() }
