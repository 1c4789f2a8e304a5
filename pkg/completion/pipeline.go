package completion

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/semaphore"

	"github.com/bims2021/AI-Autocode-Completion/internal/logger"
	"github.com/bims2021/AI-Autocode-Completion/pkg/config"
	"github.com/bims2021/AI-Autocode-Completion/pkg/extractor"
	"github.com/bims2021/AI-Autocode-Completion/pkg/fingerprint"
)

// ContextSource produces code context snapshots from editor buffers.
// contextLines bounds the previous-line window and the scope scan.
type ContextSource interface {
	Extract(buffer string, pos extractor.Position, language string, contextLines int) extractor.CodeContext
}

// Dispatcher sends completion requests and acceptance feedback to the
// inference service.
type Dispatcher interface {
	Dispatch(ctx context.Context, code extractor.CodeContext, gen config.Generation, autoTrigger bool) (*Response, FailureKind)
	SendFeedback(suggestionIndex int, accepted bool, contextHash, language string)
}

// Store is the suggestion cache seen by the pipeline.
type Store interface {
	Get(fingerprint string) *Response
	Put(fingerprint, language string, resp *Response)
}

// Recorder receives usage observations.
type Recorder interface {
	RecordCompletion(language string, suggestionCount int, latency time.Duration, cacheHit bool)
	RecordAcceptance(language string)
	RecordError(kind string)
}

// Pipeline runs one trigger through extract, cache lookup, dispatch
// and ranking. One pipeline per document; a single-flight slot drops
// triggers that arrive while another is in flight.
type Pipeline struct {
	source     ContextSource
	resolver   *config.Resolver
	store      Store
	dispatcher Dispatcher
	recorder   Recorder
	slot       *semaphore.Weighted
	log        *log.Logger

	mu         sync.Mutex
	cancel     context.CancelFunc
	lastResult *Response
	lastLang   string
}

// NewPipeline wires the four collaborators together.
func NewPipeline(source ContextSource, resolver *config.Resolver, store Store, dispatcher Dispatcher, recorder Recorder) *Pipeline {
	return &Pipeline{
		source:     source,
		resolver:   resolver,
		store:      store,
		dispatcher: dispatcher,
		recorder:   recorder,
		slot:       semaphore.NewWeighted(1),
		log:        logger.New("pipeline"),
	}
}

// Complete runs one trigger. It always returns a response: empty when
// the trigger is dropped or the language is disabled, status=error
// when dispatch failed. Cancelling ctx aborts an outstanding network
// call and releases the single-flight slot.
func (p *Pipeline) Complete(ctx context.Context, buffer string, pos extractor.Position, language string) *Response {
	if !p.resolver.Enabled(language) {
		return Empty()
	}
	if !p.slot.TryAcquire(1) {
		p.log.Debugf("Trigger dropped, another completion is in flight")
		return Empty()
	}
	defer p.slot.Release(1)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	p.mu.Lock()
	p.cancel = cancel
	p.mu.Unlock()

	started := time.Now()

	code := p.source.Extract(buffer, pos, language, p.resolver.MaxContextLines(language))
	if !p.resolver.IsSupported(language) {
		p.recorder.RecordError(string(FailUnsupportedLanguage))
		return Errorf("language not supported: " + language)
	}

	// The snapshot carries the resolved style so the fingerprint
	// changes when the user reconfigures indentation.
	code.FileExtension = p.resolver.FileExtension(language)
	code.IndentStyle = p.resolver.IndentStyle(language)
	code.IndentSize = p.resolver.IndentSize(language)
	code.ContextWindow = p.resolver.ContextWindow(language)

	key := fingerprint.Compute(code)
	style := Style{
		IndentStyle:  code.IndentStyle,
		IndentSize:   code.IndentSize,
		CommentStyle: p.resolver.CommentStyle(language),
	}

	if cached := p.store.Get(key); cached != nil {
		result := presentable(cached, style)
		result.Metadata.CacheHit = true
		result.Metadata.ContextHash = key
		p.finish(result, language, started, true)
		return result
	}

	gen := p.resolver.Generation(language)
	resp, kind := p.dispatcher.Dispatch(ctx, code, gen, p.resolver.AutoTrigger())
	if kind != FailNone {
		p.recorder.RecordError(string(kind))
		return resp
	}
	if ctx.Err() != nil {
		return Empty()
	}

	resp.Metadata.ContextHash = key
	resp.Metadata.CacheHit = false
	p.store.Put(key, language, resp)

	result := presentable(resp, style)
	p.finish(result, language, started, false)
	return result
}

// presentable ranks and formats a copy, leaving the stored response
// untouched for future cache hits.
func presentable(resp *Response, style Style) *Response {
	out := &Response{
		Suggestions:  make([]Suggestion, len(resp.Suggestions)),
		Metadata:     resp.Metadata,
		Status:       resp.Status,
		ErrorMessage: resp.ErrorMessage,
	}
	copy(out.Suggestions, resp.Suggestions)
	Rank(out.Suggestions)
	for i := range out.Suggestions {
		ApplyStyle(&out.Suggestions[i], style)
	}
	return out
}

func (p *Pipeline) finish(result *Response, language string, started time.Time, cacheHit bool) {
	p.recorder.RecordCompletion(language, len(result.Suggestions), time.Since(started), cacheHit)
	p.mu.Lock()
	p.lastResult = result
	p.lastLang = language
	p.mu.Unlock()
}

// Cancel aborts the in-flight invocation, if any. The dropped call
// returns an empty response to its caller.
func (p *Pipeline) Cancel() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		p.cancel()
	}
}

// Accept reports that the user took a suggestion from the most recent
// result. Out-of-range indexes are ignored.
func (p *Pipeline) Accept(index int) {
	p.mu.Lock()
	result, language := p.lastResult, p.lastLang
	p.mu.Unlock()

	if result == nil || index < 0 || index >= len(result.Suggestions) {
		return
	}
	p.recorder.RecordAcceptance(language)
	p.dispatcher.SendFeedback(index, true, result.Metadata.ContextHash, language)
}
