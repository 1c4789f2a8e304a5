package cache

import (
	"fmt"
	"testing"

	"github.com/bims2021/AI-Autocode-Completion/pkg/completion"
)

func successResponse(text string) *completion.Response {
	return &completion.Response{
		Suggestions: []completion.Suggestion{{Text: text, Confidence: 0.9}},
		Status:      completion.StatusSuccess,
	}
}

func TestGetPut(t *testing.T) {
	c := New(10)

	if got := c.Get("missing"); got != nil {
		t.Errorf("Get on empty cache = %+v, want nil", got)
	}

	c.Put("fp1", "python", successResponse("a"))
	got := c.Get("fp1")
	if got == nil || got.Suggestions[0].Text != "a" {
		t.Fatalf("Get after Put = %+v", got)
	}

	snap := c.Snapshot()
	if snap.Hits != 1 || snap.Misses != 1 {
		t.Errorf("counters = %+v, want 1 hit 1 miss", snap)
	}
}

func TestOnlySuccessStored(t *testing.T) {
	c := New(10)

	c.Put("err", "python", completion.Errorf("boom"))
	c.Put("partial", "python", &completion.Response{Status: completion.StatusPartial})
	c.Put("nil", "python", nil)

	if c.Len() != 0 {
		t.Errorf("cache stored non-success responses, len = %d", c.Len())
	}
}

func TestBoundNeverExceeded(t *testing.T) {
	const capacity = 100
	c := New(capacity)

	for i := 0; i < 1000; i++ {
		c.Put(fmt.Sprintf("fp%04d", i), "python", successResponse("x"))
		if c.Len() > capacity {
			t.Fatalf("size %d exceeds capacity %d after %d insertions", c.Len(), capacity, i+1)
		}
	}
}

func TestBatchEvictionDropsOldestHalf(t *testing.T) {
	const capacity = 100
	c := New(capacity)

	for i := 0; i < capacity; i++ {
		c.Put(fmt.Sprintf("fp%04d", i), "python", successResponse("x"))
	}
	if c.Len() != capacity {
		t.Fatalf("len = %d, want %d before eviction", c.Len(), capacity)
	}

	// The insertion pushing past capacity evicts the oldest half first.
	c.Put("fp-new", "python", successResponse("y"))

	if c.Len() > capacity/2+1 {
		t.Errorf("len after eviction = %d, want <= %d", c.Len(), capacity/2+1)
	}
	for i := 0; i < capacity/2; i++ {
		if c.Get(fmt.Sprintf("fp%04d", i)) != nil {
			t.Fatalf("oldest entry fp%04d survived eviction", i)
		}
	}
	if c.Get(fmt.Sprintf("fp%04d", capacity-1)) == nil {
		t.Error("newest pre-eviction entry should survive")
	}
	if c.Get("fp-new") == nil {
		t.Error("triggering entry should be present")
	}
}

func TestClear(t *testing.T) {
	c := New(10)
	c.Put("fp1", "python", successResponse("a"))
	c.Put("fp2", "go", successResponse("b"))

	c.Clear()
	if c.Len() != 0 {
		t.Errorf("len after Clear = %d", c.Len())
	}
	snap := c.Snapshot()
	if snap.Hits != 0 || snap.Misses != 0 || snap.Evictions != 0 {
		t.Errorf("counters not reset: %+v", snap)
	}
}

func TestClearLanguage(t *testing.T) {
	c := New(20)
	for i := 0; i < 5; i++ {
		c.Put(fmt.Sprintf("py%d", i), "python", successResponse("p"))
	}
	for i := 0; i < 3; i++ {
		c.Put(fmt.Sprintf("go%d", i), "go", successResponse("g"))
	}

	if cleared := c.ClearLanguage("python"); cleared != 5 {
		t.Errorf("ClearLanguage(python) = %d, want 5", cleared)
	}
	if c.Len() != 3 {
		t.Errorf("len = %d, want the 3 go entries", c.Len())
	}
	if c.Get("go1") == nil {
		t.Error("go entries must survive a python clear")
	}
	if cleared := c.ClearLanguage("rust"); cleared != 0 {
		t.Errorf("ClearLanguage(rust) = %d, want 0", cleared)
	}
}

func TestPutSameFingerprintReplaces(t *testing.T) {
	c := New(10)
	c.Put("fp", "python", successResponse("old"))
	c.Put("fp", "python", successResponse("new"))

	if c.Len() != 1 {
		t.Errorf("len = %d, want 1", c.Len())
	}
	if got := c.Get("fp"); got.Suggestions[0].Text != "new" {
		t.Errorf("Get = %q, want replacement", got.Suggestions[0].Text)
	}
}
