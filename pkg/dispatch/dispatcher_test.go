package dispatch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bims2021/AI-Autocode-Completion/pkg/completion"
	"github.com/bims2021/AI-Autocode-Completion/pkg/config"
	"github.com/bims2021/AI-Autocode-Completion/pkg/extractor"
)

var testIdentity = Identity{UserID: "user-1", SessionID: "session-1"}

func testContext() extractor.CodeContext {
	return extractor.CodeContext{
		CurrentLine: "    return ",
		Language:    "python",
		Function:    &extractor.FunctionInfo{Name: "fibonacci", Parameters: []string{"n"}},
	}
}

func testGeneration() config.Generation {
	return config.Generation{
		MaxSuggestions: 3,
		MaxNewTokens:   150,
		Temperature:    0.6,
		TopP:           0.85,
		TopK:           50,
		ContextWindow:  2048,
		Model:          "codegpt",
	}
}

const goodBody = `{
	"suggestions": [
		{"text": "fibonacci(n-1) + fibonacci(n-2)", "confidence": 0.92, "type": "single-line"}
	],
	"metadata": {"processingTimeMs": 45, "modelVersion": "codegpt-1.2", "cacheHit": false, "contextHash": "abc"},
	"status": "success"
}`

func TestDispatchSuccess(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != completionsPath {
			t.Errorf("path = %s, want %s", r.URL.Path, completionsPath)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decoding request body: %v", err)
		}
		w.Write([]byte(goodBody))
	}))
	defer srv.Close()

	d := New(srv.URL, time.Second, testIdentity)
	resp, kind := d.Dispatch(context.Background(), testContext(), testGeneration(), true)

	if kind != completion.FailNone {
		t.Fatalf("kind = %q, want success", kind)
	}
	if resp.Status != completion.StatusSuccess || len(resp.Suggestions) != 1 {
		t.Fatalf("response = %+v", resp)
	}
	if resp.Metadata.ModelVersion != "codegpt-1.2" {
		t.Errorf("model version = %q", resp.Metadata.ModelVersion)
	}

	if captured["user_id"] != "user-1" || captured["session_id"] != "session-1" {
		t.Errorf("identity not embedded: %v", captured)
	}
	prefs, _ := captured["preferences"].(map[string]any)
	if prefs["model"] != "codegpt" {
		t.Errorf("preferences = %v", prefs)
	}
	ctx, _ := captured["context"].(map[string]any)
	fn, _ := ctx["functionContext"].(map[string]any)
	if fn["name"] != "fibonacci" {
		t.Errorf("function context = %v", fn)
	}
}

func TestDispatchServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal", http.StatusInternalServerError)
	}))
	defer srv.Close()

	d := New(srv.URL, time.Second, testIdentity)
	resp, kind := d.Dispatch(context.Background(), testContext(), testGeneration(), true)

	if kind != completion.FailServerError {
		t.Fatalf("kind = %q, want server error", kind)
	}
	if resp.Status != completion.StatusError {
		t.Errorf("status = %q, want error", resp.Status)
	}
	if len(resp.Suggestions) != 0 {
		t.Errorf("suggestions = %v, want empty", resp.Suggestions)
	}
	if resp.ErrorMessage == "" {
		t.Error("error message should be populated")
	}
}

func TestDispatchNetworkUnreachable(t *testing.T) {
	// Reserved TEST-NET address, nothing listens there.
	d := New("http://192.0.2.1:9", 200*time.Millisecond, testIdentity)
	resp, kind := d.Dispatch(context.Background(), testContext(), testGeneration(), true)

	if kind != completion.FailNetworkUnreachable && kind != completion.FailTimeout {
		t.Fatalf("kind = %q, want a transport failure", kind)
	}
	if resp.Status != completion.StatusError {
		t.Errorf("status = %q, want error", resp.Status)
	}
}

func TestDispatchTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		w.Write([]byte(goodBody))
	}))
	defer srv.Close()

	d := New(srv.URL, 50*time.Millisecond, testIdentity)
	resp, kind := d.Dispatch(context.Background(), testContext(), testGeneration(), true)

	if kind != completion.FailTimeout {
		t.Fatalf("kind = %q, want timeout", kind)
	}
	if resp.Status != completion.StatusError {
		t.Errorf("status = %q, want error", resp.Status)
	}
}

func TestDispatchCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		w.Write([]byte(goodBody))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	d := New(srv.URL, 5*time.Second, testIdentity)
	resp, kind := d.Dispatch(ctx, testContext(), testGeneration(), true)

	if kind != completion.FailNone {
		t.Fatalf("kind = %q, cancellation should not classify as failure", kind)
	}
	if len(resp.Suggestions) != 0 || resp.Status != completion.StatusSuccess {
		t.Errorf("cancelled dispatch = %+v, want empty success", resp)
	}
}

func TestDispatchMalformedShape(t *testing.T) {
	cases := []struct {
		body        string
		description string
	}{
		{`not json at all`, "unparseable body"},
		{`{"metadata": {"processingTimeMs": 1, "modelVersion": "v", "cacheHit": false}, "status": "success"}`, "missing suggestions"},
		{`{"suggestions": [], "metadata": {"processingTimeMs": 1, "modelVersion": "v", "cacheHit": false}}`, "missing status"},
		{`{"suggestions": [], "status": "success"}`, "missing metadata"},
		{`{"suggestions": [], "metadata": {"modelVersion": "v", "cacheHit": false}, "status": "success"}`, "metadata missing processing time"},
		{`{"suggestions": [], "metadata": {"processingTimeMs": "fast", "modelVersion": "v", "cacheHit": false}, "status": "success"}`, "non-numeric processing time"},
		{`{"suggestions": {}, "metadata": {"processingTimeMs": 1, "modelVersion": "v", "cacheHit": false}, "status": "success"}`, "suggestions not a sequence"},
	}

	for _, tc := range cases {
		body := tc.body
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(body))
		}))

		d := New(srv.URL, time.Second, testIdentity)
		resp, kind := d.Dispatch(context.Background(), testContext(), testGeneration(), true)
		srv.Close()

		if kind != completion.FailInvalidResponseShape {
			t.Errorf("%s: kind = %q, want invalid shape", tc.description, kind)
		}
		if resp.Status != completion.StatusError || len(resp.Suggestions) != 0 {
			t.Errorf("%s: response = %+v, want empty error", tc.description, resp)
		}
	}
}

func TestHealthyCachesResult(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	d := New(srv.URL, time.Second, testIdentity)
	for i := 0; i < 3; i++ {
		if !d.Healthy(context.Background(), false) {
			t.Fatal("service should report healthy")
		}
	}
	if calls != 1 {
		t.Errorf("health endpoint hit %d times, want 1 (cached)", calls)
	}

	d.Healthy(context.Background(), true)
	if calls != 2 {
		t.Errorf("forced check should bypass the cache, calls = %d", calls)
	}
}
