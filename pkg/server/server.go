package server

import (
	"context"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/bims2021/AI-Autocode-Completion/internal/logger"
	"github.com/bims2021/AI-Autocode-Completion/pkg/cache"
	"github.com/bims2021/AI-Autocode-Completion/pkg/completion"
	"github.com/bims2021/AI-Autocode-Completion/pkg/config"
	"github.com/bims2021/AI-Autocode-Completion/pkg/dispatch"
	"github.com/bims2021/AI-Autocode-Completion/pkg/extractor"
	"github.com/bims2021/AI-Autocode-Completion/pkg/stats"
)

// Server handles the IPC for code completions.
type Server struct {
	pipeline   *completion.Pipeline
	resolver   *config.Resolver
	store      *cache.Cache
	recorder   *stats.Recorder
	dispatcher *dispatch.Dispatcher

	decoder *msgpack.Decoder
	writer  io.Writer
	writeMu sync.Mutex
	log     *log.Logger
}

// NewServer creates a new completion server using stdin/stdout for IPC
func NewServer(pipeline *completion.Pipeline, resolver *config.Resolver, store *cache.Cache, recorder *stats.Recorder, dispatcher *dispatch.Dispatcher) *Server {
	return &Server{
		pipeline:   pipeline,
		resolver:   resolver,
		store:      store,
		recorder:   recorder,
		dispatcher: dispatcher,
		decoder:    msgpack.NewDecoder(os.Stdin),
		writer:     os.Stdout,
		log:        logger.New("server"),
	}
}

// Start begins listening for IPC requests. Returns nil on EOF.
func (s *Server) Start() error {
	s.log.Debug("Starting IPC server")
	s.send(StatusReply{ID: "startup", Status: "ready"})

	for {
		var request Request
		if err := s.decoder.Decode(&request); err != nil {
			if err == io.EOF {
				s.log.Debug("Client disconnected (EOF)")
				return nil
			}
			s.log.Errorf("Decoding request: %v", err)
			s.send(StatusReply{Status: "error", Error: "invalid msgpack request"})
			continue
		}
		s.handleRequest(request)
	}
}

func (s *Server) handleRequest(request Request) {
	switch request.Action {
	case "complete":
		// Off the read loop so "cancel" stays reachable while the
		// network call is outstanding.
		go s.handleComplete(request)
	case "cancel":
		s.pipeline.Cancel()
		s.send(StatusReply{ID: request.ID, Status: "ok"})
	case "accept":
		s.handleAccept(request)
	case "clear_cache":
		s.handleClearCache(request)
	case "toggle":
		s.handleToggle(request)
	case "stats":
		s.handleStats(request)
	case "health":
		s.handleHealth(request)
	default:
		s.send(StatusReply{ID: request.ID, Status: "error", Error: "unknown action: " + request.Action})
	}
}

func (s *Server) handleComplete(request Request) {
	if request.Language == "" {
		s.send(StatusReply{ID: request.ID, Status: "error", Error: "missing 'lang' parameter"})
		return
	}
	start := time.Now()
	pos := extractor.Position{Line: request.Line, Column: request.Column}
	result := s.pipeline.Complete(context.Background(), request.Buffer, pos, request.Language)
	elapsed := time.Since(start)

	reply := CompletionReply{
		ID:          request.ID,
		Suggestions: make([]ReplySuggestion, 0, len(result.Suggestions)),
		Count:       len(result.Suggestions),
		Status:      result.Status,
		Error:       result.ErrorMessage,
		CacheHit:    result.Metadata.CacheHit,
		TimeTaken:   elapsed.Milliseconds(),
	}
	for _, sg := range result.Suggestions {
		reply.Suggestions = append(reply.Suggestions, ReplySuggestion{
			Text:         sg.Text,
			Confidence:   sg.Confidence,
			Kind:         sg.Kind,
			Description:  sg.Description,
			CursorOffset: sg.CursorOffset,
		})
	}
	s.send(reply)
}

func (s *Server) handleAccept(request Request) {
	if request.Index == nil {
		s.send(StatusReply{ID: request.ID, Status: "error", Error: "missing 'idx' parameter"})
		return
	}
	s.pipeline.Accept(*request.Index)
	s.send(StatusReply{ID: request.ID, Status: "ok"})
}

func (s *Server) handleClearCache(request Request) {
	reply := StatusReply{ID: request.ID, Status: "ok"}
	if request.Language != "" {
		reply.Cleared = s.store.ClearLanguage(request.Language)
	} else {
		reply.Cleared = s.store.Len()
		s.store.Clear()
	}
	if request.Remote {
		ctx, cancel := context.WithTimeout(context.Background(), dispatch.DefaultTimeout)
		defer cancel()
		if err := s.dispatcher.ClearRemoteCache(ctx, request.Language); err != nil {
			s.log.Warnf("Remote cache clear failed: %v", err)
			reply.Status = "partial"
			reply.Error = err.Error()
		}
	}
	s.send(reply)
}

func (s *Server) handleToggle(request Request) {
	if request.Enabled == nil {
		s.send(StatusReply{ID: request.ID, Status: "error", Error: "missing 'on' parameter"})
		return
	}
	s.resolver.SetEnabled(*request.Enabled)
	s.send(StatusReply{ID: request.ID, Status: "ok", Enabled: request.Enabled})
}

func (s *Server) handleStats(request Request) {
	snap := s.recorder.Snapshot()
	cacheSnap := s.store.Snapshot()

	reply := StatsReply{
		ID:           request.ID,
		Status:       "ok",
		Completions:  snap.Totals.Completions,
		Suggestions:  snap.Totals.Suggestions,
		Acceptances:  snap.Totals.Acceptances,
		CacheHits:    snap.Totals.CacheHits,
		AvgLatencyMs: snap.AvgLatencyMs,
		CacheSize:    cacheSnap.Size,
		CacheCap:     cacheSnap.Capacity,
	}
	if len(snap.ErrorsByKind) > 0 {
		reply.Errors = snap.ErrorsByKind
	}
	if len(snap.ByLanguage) > 0 {
		reply.ByLanguage = make(map[string]int64, len(snap.ByLanguage))
		for lang, c := range snap.ByLanguage {
			reply.ByLanguage[lang] = c.Completions
		}
	}
	s.send(reply)
}

func (s *Server) handleHealth(request Request) {
	ctx, cancel := context.WithTimeout(context.Background(), dispatch.DefaultTimeout)
	defer cancel()
	if s.dispatcher.Healthy(ctx, false) {
		s.send(StatusReply{ID: request.ID, Status: "ok"})
		return
	}
	s.send(StatusReply{ID: request.ID, Status: "error", Error: "completion service unavailable"})
}

// send encodes one reply to stdout. Serialized; completion handlers
// run concurrently with the read loop.
func (s *Server) send(reply any) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	data, err := msgpack.Marshal(reply)
	if err != nil {
		s.log.Errorf("Encoding reply: %v", err)
		return
	}
	if _, err := s.writer.Write(data); err != nil {
		s.log.Errorf("Writing reply: %v", err)
	}
}
