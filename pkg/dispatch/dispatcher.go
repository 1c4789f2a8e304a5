/*
Package dispatch talks to the inference service over HTTP/JSON. The
completion path converts every failure into a status=error response
classified by kind; callers never see transport errors.
*/
package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jellydator/ttlcache/v3"

	"github.com/bims2021/AI-Autocode-Completion/internal/logger"
	"github.com/bims2021/AI-Autocode-Completion/pkg/completion"
	"github.com/bims2021/AI-Autocode-Completion/pkg/config"
	"github.com/bims2021/AI-Autocode-Completion/pkg/extractor"
)

const (
	completionsPath = "/api/v1/completions"
	feedbackPath    = "/api/v1/feedback"
	healthPath      = "/health"
	modelsPath      = "/api/v1/models"
	langConfigPath  = "/api/v1/config/language/"
	cacheClearPath  = "/api/v1/cache/clear"

	// DefaultTimeout bounds one completion round trip. Deliberately
	// shorter than any editor-side timeout so the editor never gives
	// up first.
	DefaultTimeout = 5 * time.Second

	healthTTL = 30 * time.Second
	modelsTTL = 5 * time.Minute
)

// Dispatcher is the HTTP client for the inference service.
type Dispatcher struct {
	baseURL  string
	client   *http.Client
	identity Identity
	log      *log.Logger

	health   *ttlcache.Cache[string, bool]
	infoText *ttlcache.Cache[string, string]
}

// New creates a dispatcher for the service at baseURL. A non-positive
// timeout falls back to DefaultTimeout.
func New(baseURL string, timeout time.Duration, identity Identity) *Dispatcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	d := &Dispatcher{
		baseURL:  baseURL,
		client:   &http.Client{Timeout: timeout},
		identity: identity,
		log:      logger.New("dispatch"),
		health: ttlcache.New(
			ttlcache.WithTTL[string, bool](healthTTL),
			ttlcache.WithDisableTouchOnHit[string, bool](),
		),
		infoText: ttlcache.New(
			ttlcache.WithTTL[string, string](modelsTTL),
			ttlcache.WithDisableTouchOnHit[string, string](),
		),
	}
	// Janitors reclaim expired entries; Get alone only filters them.
	go d.health.Start()
	go d.infoText.Start()
	return d
}

// Identity returns the dispatcher's user/session identity.
func (d *Dispatcher) Identity() Identity { return d.identity }

// Wire shapes for POST /api/v1/completions.

type wirePosition struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

type wireFunction struct {
	Name       string   `json:"name"`
	Parameters []string `json:"parameters"`
	ReturnType string   `json:"returnType,omitempty"`
}

type wireClass struct {
	Name       string   `json:"name"`
	Methods    []string `json:"methods,omitempty"`
	Properties []string `json:"properties,omitempty"`
}

type wireVariable struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Scope string `json:"scope"`
}

type wireContext struct {
	CurrentLine     string         `json:"currentLine"`
	PreviousLines   []string       `json:"previousLines"`
	Position        wirePosition   `json:"position"`
	Language        string         `json:"language"`
	FunctionContext *wireFunction  `json:"functionContext,omitempty"`
	ClassContext    *wireClass     `json:"classContext,omitempty"`
	Imports         []string       `json:"imports,omitempty"`
	Variables       []wireVariable `json:"variables,omitempty"`
	FileExtension   string         `json:"fileExtension,omitempty"`
	IndentStyle     string         `json:"indentStyle,omitempty"`
	IndentSize      int            `json:"indentSize,omitempty"`
}

type wirePreferences struct {
	Model         string `json:"model"`
	AutoTrigger   bool   `json:"auto_trigger"`
	ContextWindow int    `json:"context_window"`
}

type wireRequest struct {
	Context        wireContext     `json:"context"`
	Language       string          `json:"language"`
	MaxSuggestions int             `json:"max_suggestions"`
	MaxLength      int             `json:"max_length"`
	Temperature    float64         `json:"temperature"`
	TopP           float64         `json:"top_p,omitempty"`
	TopK           int             `json:"top_k,omitempty"`
	RepetitionPen  float64         `json:"repetition_penalty,omitempty"`
	UserID         string          `json:"user_id"`
	SessionID      string          `json:"session_id"`
	Preferences    wirePreferences `json:"preferences"`
}

// Pointer fields mark what the contract requires; a missing field
// stays nil and fails shape validation instead of defaulting.
type wireMetadata struct {
	ProcessingTimeMs *int64  `json:"processingTimeMs"`
	ModelVersion     *string `json:"modelVersion"`
	CacheHit         *bool   `json:"cacheHit"`
	ContextHash      string  `json:"contextHash"`
	LanguageDetected string  `json:"languageDetected"`
}

type wireResponse struct {
	Suggestions  *[]completion.Suggestion `json:"suggestions"`
	Metadata     *wireMetadata            `json:"metadata"`
	Status       *string                  `json:"status"`
	ErrorMessage string                   `json:"errorMessage"`
}

// Dispatch sends one completion request. It always returns a usable
// response; the returned kind is FailNone on success and names the
// failure class otherwise. Cancelling ctx aborts the outstanding call.
func (d *Dispatcher) Dispatch(ctx context.Context, code extractor.CodeContext, gen config.Generation, autoTrigger bool) (*completion.Response, completion.FailureKind) {
	payload := wireRequest{
		Context:        buildWireContext(code),
		Language:       code.Language,
		MaxSuggestions: gen.MaxSuggestions,
		MaxLength:      gen.MaxNewTokens,
		Temperature:    gen.Temperature,
		TopP:           gen.TopP,
		TopK:           gen.TopK,
		RepetitionPen:  gen.RepetitionPenalty,
		UserID:         d.identity.UserID,
		SessionID:      d.identity.SessionID,
		Preferences: wirePreferences{
			Model:         gen.Model,
			AutoTrigger:   autoTrigger,
			ContextWindow: gen.ContextWindow,
		},
	}

	data, err := json.Marshal(payload)
	if err != nil {
		d.log.Errorf("Failed to encode completion request: %v", err)
		return completion.Errorf(message(completion.FailConfigurationInvalid, err.Error())), completion.FailConfigurationInvalid
	}

	req, err := http.NewRequestWithContext(ctx, "POST", d.baseURL+completionsPath, bytes.NewReader(data))
	if err != nil {
		return completion.Errorf(message(completion.FailConfigurationInvalid, err.Error())), completion.FailConfigurationInvalid
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		if ctx.Err() == context.Canceled {
			// Caller moved on; an empty success keeps the editor quiet.
			return completion.Empty(), completion.FailNone
		}
		kind := classifyTransport(err)
		d.log.Warnf("Completion request failed (%s): %v", kind, err)
		return completion.Errorf(message(kind, err.Error())), kind
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		kind := classifyTransport(err)
		return completion.Errorf(message(kind, err.Error())), kind
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		d.log.Warnf("Completion service returned status %d", resp.StatusCode)
		return completion.Errorf(message(completion.FailServerError, statusDetail(resp.StatusCode))), completion.FailServerError
	}

	parsed, shapeErr := decodeCompletion(body)
	if shapeErr != "" {
		d.log.Warnf("Malformed completion response: %s", shapeErr)
		return completion.Errorf(message(completion.FailInvalidResponseShape, shapeErr)), completion.FailInvalidResponseShape
	}
	return parsed, completion.FailNone
}

func buildWireContext(code extractor.CodeContext) wireContext {
	wc := wireContext{
		CurrentLine:   code.CurrentLine,
		PreviousLines: code.PreviousLines,
		Position:      wirePosition{Line: code.Position.Line, Character: code.Position.Column},
		Language:      code.Language,
		Imports:       code.Imports,
		FileExtension: code.FileExtension,
		IndentStyle:   code.IndentStyle,
		IndentSize:    code.IndentSize,
	}
	if wc.PreviousLines == nil {
		wc.PreviousLines = []string{}
	}
	if code.Function != nil {
		wc.FunctionContext = &wireFunction{
			Name:       code.Function.Name,
			Parameters: code.Function.Parameters,
			ReturnType: code.Function.ReturnType,
		}
	}
	if code.Class != nil {
		wc.ClassContext = &wireClass{
			Name:       code.Class.Name,
			Methods:    code.Class.Methods,
			Properties: code.Class.Properties,
		}
	}
	for _, v := range code.Variables {
		wc.Variables = append(wc.Variables, wireVariable{Name: v.Name, Type: v.Type, Scope: v.Scope})
	}
	return wc
}

// decodeCompletion validates the structural contract of a 2xx body.
// Returns the response and "" on success, or a shape complaint.
func decodeCompletion(body []byte) (*completion.Response, string) {
	var wire wireResponse
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, err.Error()
	}
	if wire.Suggestions == nil {
		return nil, "missing suggestions array"
	}
	if wire.Status == nil {
		return nil, "missing status field"
	}
	if wire.Metadata == nil {
		return nil, "missing metadata object"
	}
	md := wire.Metadata
	if md.ProcessingTimeMs == nil {
		return nil, "metadata missing processingTimeMs"
	}
	if md.ModelVersion == nil {
		return nil, "metadata missing modelVersion"
	}
	if md.CacheHit == nil {
		return nil, "metadata missing cacheHit"
	}

	out := &completion.Response{
		Suggestions: *wire.Suggestions,
		Metadata: completion.Metadata{
			ProcessingTimeMs: *md.ProcessingTimeMs,
			ModelVersion:     *md.ModelVersion,
			CacheHit:         *md.CacheHit,
			ContextHash:      md.ContextHash,
			LanguageDetected: md.LanguageDetected,
		},
		Status:       *wire.Status,
		ErrorMessage: wire.ErrorMessage,
	}
	if out.Suggestions == nil {
		out.Suggestions = []completion.Suggestion{}
	}
	return out, ""
}
