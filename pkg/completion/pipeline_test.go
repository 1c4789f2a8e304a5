package completion

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bims2021/AI-Autocode-Completion/pkg/config"
	"github.com/bims2021/AI-Autocode-Completion/pkg/extractor"
)

type fakeSource struct{}

func (fakeSource) Extract(buffer string, pos extractor.Position, language string, contextLines int) extractor.CodeContext {
	return extractor.CodeContext{
		CurrentLine: "    return ",
		Position:    pos,
		Language:    language,
		Function:    &extractor.FunctionInfo{Name: "fibonacci", Parameters: []string{"n"}},
	}
}

type fakeDispatcher struct {
	mu       sync.Mutex
	calls    int
	resp     *Response
	kind     FailureKind
	lastCode extractor.CodeContext
	entered  chan struct{} // closed-once signal that a dispatch started
	release  chan struct{} // when non-nil, dispatch blocks until closed
	feedback []int
}

func (f *fakeDispatcher) Dispatch(ctx context.Context, code extractor.CodeContext, gen config.Generation, autoTrigger bool) (*Response, FailureKind) {
	f.mu.Lock()
	f.calls++
	f.lastCode = code
	if f.entered != nil {
		select {
		case <-f.entered:
		default:
			close(f.entered)
		}
	}
	release := f.release
	f.mu.Unlock()

	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			return Empty(), FailNone
		}
	}
	if f.kind != FailNone {
		return Errorf("dispatch failed"), f.kind
	}
	return f.resp, FailNone
}

func (f *fakeDispatcher) SendFeedback(index int, accepted bool, contextHash, language string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.feedback = append(f.feedback, index)
}

func (f *fakeDispatcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeStore struct {
	mu      sync.Mutex
	entries map[string]*Response
}

func newFakeStore() *fakeStore {
	return &fakeStore{entries: make(map[string]*Response)}
}

func (s *fakeStore) Get(fp string) *Response {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entries[fp]
}

func (s *fakeStore) Put(fp, language string, resp *Response) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if resp.Status == StatusSuccess {
		s.entries[fp] = resp
	}
}

type fakeRecorder struct {
	mu          sync.Mutex
	completions int
	cacheHits   int
	acceptances []string
	errors      []string
}

func (r *fakeRecorder) RecordCompletion(language string, suggestionCount int, latency time.Duration, cacheHit bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completions++
	if cacheHit {
		r.cacheHits++
	}
}

func (r *fakeRecorder) RecordAcceptance(language string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.acceptances = append(r.acceptances, language)
}

func (r *fakeRecorder) RecordError(kind string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, kind)
}

func serviceResponse() *Response {
	return &Response{
		Suggestions: []Suggestion{
			{Text: "fibonacci(n-1) + fibonacci(n-2)", Confidence: 0.92},
		},
		Metadata: Metadata{ProcessingTimeMs: 40, ModelVersion: "codegpt-1.2"},
		Status:   StatusSuccess,
	}
}

func newTestPipeline(d *fakeDispatcher) (*Pipeline, *fakeStore, *fakeRecorder, *config.Resolver) {
	resolver := config.NewResolver(config.DefaultConfig())
	store := newFakeStore()
	recorder := &fakeRecorder{}
	p := NewPipeline(fakeSource{}, resolver, store, d, recorder)
	return p, store, recorder, resolver
}

func TestCompleteCachesSecondCall(t *testing.T) {
	d := &fakeDispatcher{resp: serviceResponse()}
	p, _, recorder, _ := newTestPipeline(d)

	first := p.Complete(context.Background(), "def fibonacci(n):\n    return ", extractor.Position{Line: 1, Column: 11}, "python")
	if first.Status != StatusSuccess || len(first.Suggestions) != 1 {
		t.Fatalf("first response = %+v", first)
	}
	if first.Metadata.CacheHit {
		t.Error("first call must be a miss")
	}
	if first.Metadata.ContextHash == "" {
		t.Error("context hash should be stamped on the response")
	}

	second := p.Complete(context.Background(), "def fibonacci(n):\n    return ", extractor.Position{Line: 1, Column: 11}, "python")
	if !second.Metadata.CacheHit {
		t.Error("second identical call should be served from cache")
	}
	if d.callCount() != 1 {
		t.Errorf("dispatcher called %d times, want 1", d.callCount())
	}
	if recorder.completions != 2 || recorder.cacheHits != 1 {
		t.Errorf("recorder = %d completions %d cache hits, want 2/1", recorder.completions, recorder.cacheHits)
	}
}

func TestCompleteSingleFlight(t *testing.T) {
	d := &fakeDispatcher{
		resp:    serviceResponse(),
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	p, _, recorder, _ := newTestPipeline(d)

	results := make(chan *Response, 1)
	go func() {
		results <- p.Complete(context.Background(), "buf", extractor.Position{}, "python")
	}()
	<-d.entered

	// Second trigger while the first is unresolved: dropped, empty.
	dropped := p.Complete(context.Background(), "buf", extractor.Position{}, "python")
	if len(dropped.Suggestions) != 0 || dropped.Status != StatusSuccess {
		t.Errorf("dropped trigger = %+v, want empty success", dropped)
	}

	close(d.release)
	first := <-results
	if first.Status != StatusSuccess || len(first.Suggestions) != 1 {
		t.Errorf("first trigger = %+v", first)
	}

	if recorder.completions != 1 {
		t.Errorf("recorded %d completions, want exactly 1", recorder.completions)
	}
	if d.callCount() != 1 {
		t.Errorf("dispatcher called %d times, want 1", d.callCount())
	}
}

func TestCompleteCancellation(t *testing.T) {
	d := &fakeDispatcher{
		resp:    serviceResponse(),
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	p, store, _, _ := newTestPipeline(d)
	defer close(d.release)

	results := make(chan *Response, 1)
	go func() {
		results <- p.Complete(context.Background(), "buf", extractor.Position{}, "python")
	}()
	<-d.entered
	p.Cancel()

	select {
	case resp := <-results:
		if len(resp.Suggestions) != 0 {
			t.Errorf("cancelled completion = %+v, want empty", resp)
		}
	case <-time.After(time.Second):
		t.Fatal("cancel did not release the in-flight completion")
	}

	// The slot must be free again immediately.
	d.mu.Lock()
	d.entered, d.release = nil, nil
	d.mu.Unlock()
	next := p.Complete(context.Background(), "buf", extractor.Position{}, "python")
	if next.Status != StatusSuccess || len(next.Suggestions) != 1 {
		t.Errorf("completion after cancel = %+v, want fresh result", next)
	}
	if store.Get(next.Metadata.ContextHash) == nil {
		t.Error("fresh result should be cached")
	}
}

func TestCompleteDispatchFailure(t *testing.T) {
	d := &fakeDispatcher{kind: FailServerError}
	p, store, recorder, _ := newTestPipeline(d)

	resp := p.Complete(context.Background(), "buf", extractor.Position{}, "python")
	if resp.Status != StatusError {
		t.Errorf("status = %q, want error", resp.Status)
	}
	if len(recorder.errors) != 1 || recorder.errors[0] != string(FailServerError) {
		t.Errorf("recorded errors = %v", recorder.errors)
	}
	if recorder.completions != 0 {
		t.Errorf("failed dispatch must not count as a completion")
	}
	store.mu.Lock()
	stored := len(store.entries)
	store.mu.Unlock()
	if stored != 0 {
		t.Error("error responses must not be cached")
	}
}

func TestCompleteDisabledLanguage(t *testing.T) {
	d := &fakeDispatcher{resp: serviceResponse()}
	p, _, _, resolver := newTestPipeline(d)
	resolver.SetEnabled(false)

	resp := p.Complete(context.Background(), "buf", extractor.Position{}, "python")
	if len(resp.Suggestions) != 0 || resp.Status != StatusSuccess {
		t.Errorf("disabled completion = %+v, want empty success", resp)
	}
	if d.callCount() != 0 {
		t.Error("disabled language must not dispatch")
	}
}

func TestCompleteUnsupportedLanguage(t *testing.T) {
	d := &fakeDispatcher{resp: serviceResponse()}
	p, _, recorder, _ := newTestPipeline(d)

	resp := p.Complete(context.Background(), "buf", extractor.Position{}, "cobol")
	if resp.Status != StatusError {
		t.Errorf("status = %q, want error", resp.Status)
	}
	if len(recorder.errors) != 1 || recorder.errors[0] != string(FailUnsupportedLanguage) {
		t.Errorf("recorded errors = %v", recorder.errors)
	}
	if d.callCount() != 0 {
		t.Error("unsupported language must not dispatch")
	}
}

func TestCompleteHonorsContextLineBudget(t *testing.T) {
	d := &fakeDispatcher{resp: serviceResponse()}
	resolver := config.NewResolver(config.DefaultConfig())
	budget := 200
	resolver.Update("python", config.LanguageOverride{MaxContextLines: &budget})
	p := NewPipeline(extractor.New(), resolver, newFakeStore(), d, &fakeRecorder{})

	var sb strings.Builder
	for i := 0; i < 120; i++ {
		sb.WriteString("x = 1\n")
	}
	sb.WriteString("y = ")

	resp := p.Complete(context.Background(), sb.String(), extractor.Position{Line: 120, Column: 4}, "python")
	if resp.Status != StatusSuccess {
		t.Fatalf("response = %+v", resp)
	}

	d.mu.Lock()
	sent := len(d.lastCode.PreviousLines)
	d.mu.Unlock()
	if sent != 120 {
		t.Errorf("previous lines sent = %d, want all 120 under a budget of %d", sent, budget)
	}
}

func TestAcceptSendsFeedback(t *testing.T) {
	d := &fakeDispatcher{resp: serviceResponse()}
	p, _, recorder, _ := newTestPipeline(d)

	p.Complete(context.Background(), "buf", extractor.Position{}, "python")
	p.Accept(0)

	if len(recorder.acceptances) != 1 || recorder.acceptances[0] != "python" {
		t.Errorf("acceptances = %v", recorder.acceptances)
	}
	d.mu.Lock()
	feedback := len(d.feedback)
	d.mu.Unlock()
	if feedback != 1 {
		t.Errorf("feedback sends = %d, want 1", feedback)
	}

	// Out-of-range index is ignored.
	p.Accept(7)
	if len(recorder.acceptances) != 1 {
		t.Error("out-of-range accept must be ignored")
	}
}
