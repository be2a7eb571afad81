package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/tsawler/pdfview/text"
)

// Common errors
var (
	ErrExtractionFailed  = errors.New("search: text extraction failed")
	ErrExtractionTimeout = errors.New("search: text extraction timed out")
	ErrEngineClosed      = errors.New("search: engine closed")
	ErrSearchCanceled    = errors.New("search: search canceled")
	errNoExtractor       = errors.New("no text extractor configured")
)

// DefaultExtractTimeout bounds a single extraction when Config leaves it unset.
const DefaultExtractTimeout = 2 * time.Minute

// Extractor produces the raw text of every page of a document. It must
// return promptly once ctx is done.
type Extractor interface {
	Extract(ctx context.Context, locator string) ([]text.RawPage, error)
}

// Callback receives the outcome of a search. results is never nil; err is
// non-nil only when the document text could not be extracted.
type Callback func(query string, results []Result, err error)

// State is the extraction state of an Engine.
type State int

const (
	// Idle means no text has been extracted and no extraction is running.
	Idle State = iota
	// Extracting means an extraction is queued or running.
	Extracting
	// Ready means the page text is available.
	Ready
)

func (s State) String() string {
	switch s {
	case Extracting:
		return "extracting"
	case Ready:
		return "ready"
	default:
		return "idle"
	}
}

// Config configures an Engine.
type Config struct {
	Extractor Extractor

	// ExtractTimeout bounds each extraction. Zero means DefaultExtractTimeout.
	ExtractTimeout time.Duration

	// Match controls result context. The zero value means
	// DefaultMatchOptions.
	Match MatchOptions

	// Dispatcher runs callbacks. Nil means a SerialDispatcher owned by the
	// engine.
	Dispatcher Dispatcher

	Logger *slog.Logger
}

// extraction is one run of the extractor. pages and err are written before
// done is closed and never change afterwards.
type extraction struct {
	done  chan struct{}
	pages []text.PageText
	err   error
}

type searchTask struct {
	query     string
	ctx       context.Context
	cancel    context.CancelFunc
	cb        Callback
	delivered bool
}

// Engine runs searches against the text of one document.
//
// Text is extracted on the first search and reused afterwards; concurrent
// searches share a single extraction. Extraction and searches run one at a
// time on a serial work queue. Starting a search cancels the previous one,
// and a cancelled search never calls its callback.
//
// An Engine is safe for concurrent use.
type Engine struct {
	cfg    Config
	log    *slog.Logger
	queue  *workQueue
	ownDis *SerialDispatcher

	ctx  context.Context
	stop context.CancelFunc

	mu            sync.Mutex
	locator       string
	ready         *extraction
	pending       *extraction
	cancelExtract context.CancelFunc
	current       *searchTask
	closed        bool
}

// NewEngine creates an engine for the document at locator
func NewEngine(locator string, cfg Config) *Engine {
	if cfg.ExtractTimeout <= 0 {
		cfg.ExtractTimeout = DefaultExtractTimeout
	}
	if cfg.Match == (MatchOptions{}) {
		cfg.Match = DefaultMatchOptions()
	}

	e := &Engine{
		cfg:     cfg,
		log:     cfg.Logger,
		queue:   newWorkQueue(),
		locator: locator,
	}
	if e.log == nil {
		e.log = slog.Default()
	}
	if cfg.Dispatcher == nil {
		e.ownDis = NewSerialDispatcher()
		e.cfg.Dispatcher = e.ownDis
	}
	e.ctx, e.stop = context.WithCancel(context.Background())
	return e
}

// Locator returns the current document locator
func (e *Engine) Locator() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.locator
}

// MatchOptions returns the result context settings used by searches
func (e *Engine) MatchOptions() MatchOptions { return e.cfg.Match }

// State returns the extraction state
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch {
	case e.ready != nil:
		return Ready
	case e.pending != nil:
		return Extracting
	default:
		return Idle
	}
}

// Searching reports whether a search is in flight
func (e *Engine) Searching() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	t := e.current
	return t != nil && !t.delivered && t.ctx.Err() == nil
}

// Search cancels the in-flight search and starts a new one. cb is called
// exactly once on the dispatcher unless the search is cancelled first. An
// empty query completes with no results without extracting text.
func (e *Engine) Search(query string, cb Callback) error {
	_, err := e.startSearch(query, cb)
	return err
}

func (e *Engine) startSearch(query string, cb Callback) (*searchTask, error) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil, ErrEngineClosed
	}
	e.cancelCurrentLocked()

	ctx, cancel := context.WithCancel(e.ctx)
	t := &searchTask{query: query, ctx: ctx, cancel: cancel, cb: cb}
	e.current = t

	if query != "" {
		src := e.ensureExtractionLocked()
		e.queue.push(func() { e.runSearch(t, src) })
	}
	e.mu.Unlock()

	if query == "" {
		e.deliver(t, []Result{}, nil)
	}
	return t, nil
}

// SearchSync runs a search and waits for its results. It fails with
// ErrSearchCanceled if another search supersedes it.
func (e *Engine) SearchSync(ctx context.Context, query string) ([]Result, error) {
	type outcome struct {
		results []Result
		err     error
	}
	ch := make(chan outcome, 1)

	t, err := e.startSearch(query, func(_ string, results []Result, err error) {
		ch <- outcome{results, err}
	})
	if err != nil {
		return nil, err
	}

	select {
	case o := <-ch:
		return o.results, o.err
	case <-t.ctx.Done():
		select {
		case o := <-ch:
			return o.results, o.err
		default:
			return nil, ErrSearchCanceled
		}
	case <-ctx.Done():
		e.cancelTask(t)
		return nil, ctx.Err()
	}
}

// Find searches on the caller's goroutine and returns the results. It shares
// the engine's extraction but is not the current search: Find calls never
// cancel each other or a search started with Search, and are never cancelled
// by one. An empty query returns no results without extracting text.
func (e *Engine) Find(ctx context.Context, query string) ([]Result, error) {
	if query == "" {
		e.mu.Lock()
		closed := e.closed
		e.mu.Unlock()
		if closed {
			return nil, ErrEngineClosed
		}
		return []Result{}, nil
	}

	pages, err := e.Pages(ctx)
	if err != nil {
		return nil, err
	}
	results, err := Find(ctx, pages, query, e.cfg.Match)
	if err != nil {
		return nil, err
	}
	e.log.Debug("search complete", "query", query, "results", len(results))
	return results, nil
}

// Pages returns the extracted page text, extracting it first if needed.
func (e *Engine) Pages(ctx context.Context) ([]text.PageText, error) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil, ErrEngineClosed
	}
	src := e.ensureExtractionLocked()
	e.mu.Unlock()

	select {
	case <-src.done:
		return src.pages, src.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Cancel cancels the in-flight search, if any
func (e *Engine) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancelCurrentLocked()
}

// SetLocator switches the engine to another document. The extracted text is
// dropped, and the running extraction and search are cancelled.
func (e *Engine) SetLocator(locator string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if locator == e.locator {
		return
	}
	e.cancelCurrentLocked()
	if e.cancelExtract != nil {
		e.cancelExtract()
		e.cancelExtract = nil
	}
	e.locator = locator
	e.pending = nil
	e.ready = nil
}

// Close cancels all work and stops the engine. Callbacks that have not yet
// started are never called.
func (e *Engine) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	e.cancelCurrentLocked()
	e.stop()
	e.mu.Unlock()

	e.queue.close()
	if e.ownDis != nil {
		e.ownDis.Close()
	}
}

func (e *Engine) cancelCurrentLocked() {
	if e.current != nil {
		e.current.cancel()
		e.current = nil
	}
}

func (e *Engine) cancelTask(t *searchTask) {
	e.mu.Lock()
	defer e.mu.Unlock()
	t.cancel()
	if e.current == t {
		e.current = nil
	}
}

// ensureExtractionLocked returns the completed or pending extraction,
// queueing a new one when there is neither.
func (e *Engine) ensureExtractionLocked() *extraction {
	if e.ready != nil {
		return e.ready
	}
	if e.pending != nil {
		return e.pending
	}

	x := &extraction{done: make(chan struct{})}
	ctx, cancel := context.WithCancel(e.ctx)
	e.pending = x
	e.cancelExtract = cancel

	locator := e.locator
	e.queue.push(func() { e.runExtraction(ctx, cancel, x, locator) })
	return x
}

func (e *Engine) runExtraction(ctx context.Context, cancel context.CancelFunc, x *extraction, locator string) {
	defer cancel()
	defer close(x.done)

	timeout := e.cfg.ExtractTimeout
	tctx, tcancel := context.WithTimeout(ctx, timeout)
	defer tcancel()

	start := time.Now()
	e.log.Info("extracting text", "locator", locator)

	var raw []text.RawPage
	err := errNoExtractor
	if e.cfg.Extractor != nil {
		raw, err = e.cfg.Extractor.Extract(tctx, locator)
	}

	if ctx.Err() != nil {
		// Abandoned by SetLocator or Close; leave engine state alone.
		x.err = ctx.Err()
		e.log.Debug("extraction abandoned", "locator", locator)
		return
	}

	switch {
	case err != nil && errors.Is(tctx.Err(), context.DeadlineExceeded):
		x.err = fmt.Errorf("%w: %w after %s", ErrExtractionFailed, ErrExtractionTimeout, timeout)
	case err != nil:
		x.err = fmt.Errorf("%w: %w", ErrExtractionFailed, err)
	default:
		x.pages = text.BuildPages(raw)
	}

	e.mu.Lock()
	if e.pending == x {
		e.pending = nil
		e.cancelExtract = nil
		if x.err == nil {
			e.ready = x
		}
	}
	e.mu.Unlock()

	if x.err != nil {
		e.log.Error("text extraction failed", "locator", locator, "error", x.err, "duration", time.Since(start))
		return
	}
	e.log.Info("text extracted", "locator", locator, "pages", len(x.pages), "duration", time.Since(start))
}

func (e *Engine) runSearch(t *searchTask, src *extraction) {
	select {
	case <-src.done:
	case <-t.ctx.Done():
		return
	}
	if t.ctx.Err() != nil {
		return
	}
	if src.err != nil {
		e.deliver(t, []Result{}, src.err)
		return
	}

	results, err := Find(t.ctx, src.pages, t.query, e.cfg.Match)
	if err != nil {
		return
	}
	e.log.Debug("search complete", "query", t.query, "results", len(results))
	e.deliver(t, results, nil)
}

// deliver posts the callback of t to the dispatcher. The callback is
// skipped if t was cancelled or the engine closed in the meantime.
func (e *Engine) deliver(t *searchTask, results []Result, err error) {
	e.cfg.Dispatcher.Dispatch(func() {
		e.mu.Lock()
		if e.closed || t.delivered || t.ctx.Err() != nil {
			e.mu.Unlock()
			return
		}
		t.delivered = true
		e.mu.Unlock()

		if t.cb != nil {
			t.cb(t.query, results, err)
		}
		t.cancel()
	})
}
