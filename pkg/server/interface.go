/*
Package server implements msgpack IPC for the completion pipeline.

The server provides a minimal interface for AI code completion using msgpack serialization over stdin/stdout.

The protocol uses binary msgpack encoding and supports completion requests, acceptance feedback, cache management ops, and runtime toggles.
Messages are processed with timing info included in responses.

# IPC

The server operates on a request response model where editor clients send structured messages via stdin and receive responses through stdout.
Each message contains an ID field, an action field, and other fields based on the operation type.

Completion requests use mainly this structure:

	{"id": "req_001", "action": "complete", "b": "<buffer text>", "ln": 42, "col": 8, "lang": "python"}

The server responds with ranked suggestions:

	{"id": "req_001", "s": [{"t": "return fibonacci(n-1)", "c": 0.92, "k": "single-line"}], "n": 1, "status": "success", "ms": 145}

Management actions adjust runtime state without restart:

	{"id": "ctl_001", "action": "clear_cache", "lang": "python"}
	{"id": "ctl_002", "action": "toggle", "on": false}
	{"id": "ctl_003", "action": "stats"}

Response structures include status information and error details when an op fails.

Completion requests run off the read loop so a "cancel" action can abort
an in-flight network call; replies are serialized on the write side.

msgpack encoding has ~30 to 50% smaller message sizes compared to JSON.
binary format enables faster parsing and generation, less errors and reducing latency in editor round trips.
*/
package server

// Request is the single incoming message shape; Action selects the op:
// "complete", "accept", "cancel", "clear_cache", "toggle", "stats",
// "health".
type Request struct {
	ID       string `msgpack:"id"`
	Action   string `msgpack:"action"`
	Buffer   string `msgpack:"b,omitempty"`
	Line     int    `msgpack:"ln,omitempty"`
	Column   int    `msgpack:"col,omitempty"`
	Language string `msgpack:"lang,omitempty"`
	Index    *int   `msgpack:"idx,omitempty"`    // for "accept"
	Enabled  *bool  `msgpack:"on,omitempty"`     // for "toggle"
	Remote   bool   `msgpack:"remote,omitempty"` // "clear_cache" also clears service side
}

// ReplySuggestion - minimal suggestion payload
type ReplySuggestion struct {
	Text         string  `msgpack:"t"`
	Confidence   float64 `msgpack:"c"`
	Kind         string  `msgpack:"k"`
	Description  string  `msgpack:"d,omitempty"`
	CursorOffset int     `msgpack:"o,omitempty"`
}

// CompletionReply - completion response
type CompletionReply struct {
	ID          string            `msgpack:"id"`
	Suggestions []ReplySuggestion `msgpack:"s"`
	Count       int               `msgpack:"n"`
	Status      string            `msgpack:"status"`
	Error       string            `msgpack:"error,omitempty"`
	CacheHit    bool              `msgpack:"h,omitempty"`
	TimeTaken   int64             `msgpack:"ms"`
}

// StatusReply - generic op response
type StatusReply struct {
	ID      string `msgpack:"id"`
	Status  string `msgpack:"status"`
	Error   string `msgpack:"error,omitempty"`
	Cleared int    `msgpack:"cleared,omitempty"`
	Enabled *bool  `msgpack:"on,omitempty"`
}

// StatsReply - statistics snapshot response
type StatsReply struct {
	ID           string           `msgpack:"id"`
	Status       string           `msgpack:"status"`
	Completions  int64            `msgpack:"completions"`
	Suggestions  int64            `msgpack:"suggestions"`
	Acceptances  int64            `msgpack:"acceptances"`
	CacheHits    int64            `msgpack:"cache_hits"`
	AvgLatencyMs float64          `msgpack:"avg_latency_ms"`
	Errors       map[string]int64 `msgpack:"errors,omitempty"`
	ByLanguage   map[string]int64 `msgpack:"by_language,omitempty"`
	CacheSize    int              `msgpack:"cache_size"`
	CacheCap     int              `msgpack:"cache_cap"`
}
