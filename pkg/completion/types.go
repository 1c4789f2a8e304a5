// Package completion holds the core suggestion data model and the
// pipeline orchestrating extraction, caching, dispatch and ranking.
package completion

// Suggestion kinds describing the structural shape of a completion.
const (
	KindSingleLine = "single-line"
	KindMultiLine  = "multi-line"
	KindBlock      = "block"
)

// Response statuses as reported by the inference service.
const (
	StatusSuccess = "success"
	StatusPartial = "partial"
	StatusError   = "error"
)

// ReplaceRange marks the buffer span a suggestion replaces, when the
// service asks for replacement instead of plain insertion.
type ReplaceRange struct {
	StartLine int `json:"startLine"`
	StartCol  int `json:"startCol"`
	EndLine   int `json:"endLine"`
	EndCol    int `json:"endCol"`
}

// Suggestion is a single candidate completion.
type Suggestion struct {
	Text              string        `json:"text"`
	Confidence        float64       `json:"confidence"`
	Kind              string        `json:"type"`
	Description       string        `json:"description,omitempty"`
	CursorOffset      int           `json:"cursorOffset"`
	ReplaceRange      *ReplaceRange `json:"replaceRange,omitempty"`
	LanguageSpecific  bool          `json:"languageSpecific,omitempty"`
	FormattingApplied bool          `json:"formattingApplied,omitempty"`
}

// Metadata carries per-response bookkeeping from the service, augmented
// locally with the cache-hit flag and fingerprint.
type Metadata struct {
	ProcessingTimeMs int64  `json:"processingTimeMs"`
	ModelVersion     string `json:"modelVersion"`
	CacheHit         bool   `json:"cacheHit"`
	ContextHash      string `json:"contextHash"`
	LanguageDetected string `json:"languageDetected,omitempty"`
}

// Response is the ordered suggestion set for one trigger.
type Response struct {
	Suggestions  []Suggestion `json:"suggestions"`
	Metadata     Metadata     `json:"metadata"`
	Status       string       `json:"status"`
	ErrorMessage string       `json:"errorMessage,omitempty"`
}

// Empty returns a success response with no suggestions. Used for dropped
// triggers and administratively disabled languages.
func Empty() *Response {
	return &Response{
		Suggestions: []Suggestion{},
		Status:      StatusSuccess,
	}
}

// Errorf returns an error response with no suggestions.
func Errorf(message string) *Response {
	return &Response{
		Suggestions:  []Suggestion{},
		Status:       StatusError,
		ErrorMessage: message,
	}
}
