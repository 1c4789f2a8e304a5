// Package cli handles cmd line input and suggestions for DBG and testing various features
package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/bims2021/AI-Autocode-Completion/pkg/cache"
	"github.com/bims2021/AI-Autocode-Completion/pkg/completion"
	"github.com/bims2021/AI-Autocode-Completion/pkg/config"
	"github.com/bims2021/AI-Autocode-Completion/pkg/extractor"
	"github.com/bims2021/AI-Autocode-Completion/pkg/stats"
)

// InputHandler builds up a scratch buffer from stdin lines and runs
// the completion pipeline against it. Colon commands control the
// session; anything else is appended as code.
type InputHandler struct {
	pipeline     *completion.Pipeline
	resolver     *config.Resolver
	store        *cache.Cache
	recorder     *stats.Recorder
	language     string
	buffer       []string
	requestCount int
}

// NewInputHandler handles initialization with the pipeline collaborators
func NewInputHandler(pipeline *completion.Pipeline, resolver *config.Resolver, store *cache.Cache, recorder *stats.Recorder, language string) *InputHandler {
	return &InputHandler{
		pipeline: pipeline,
		resolver: resolver,
		store:    store,
		recorder: recorder,
		language: language,
	}
}

// Start begins the interface loop.
// It continuously prompts for input, reads a line from stdin,
// and passes the trimmed input to handleInput() for processing.
// Loop terminates if an error occurs while reading from stdin
func (h *InputHandler) Start() error {
	log.Print("Autocode CLI [BETA]")
	reader := bufio.NewReader(os.Stdin)
	log.Printf("language: %s -- type code lines to complete, :help for commands (Ctrl+C to exit):", h.language)

	for {
		log.Print("> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return err
		}
		line = strings.TrimRight(line, "\r\n")
		if strings.TrimSpace(line) == "" {
			continue
		}
		h.handleInput(line)
	}
}

// handleInput routes one line: colon commands mutate session state,
// code lines extend the buffer and trigger a completion.
func (h *InputHandler) handleInput(line string) {
	if strings.HasPrefix(line, ":") {
		h.handleCommand(strings.TrimSpace(line))
		return
	}

	h.buffer = append(h.buffer, line)
	h.requestCount++

	pos := extractor.Position{
		Line:   len(h.buffer) - 1,
		Column: len(line),
	}

	start := time.Now()
	log.Debug("Processing request for", "line", pos.Line, "language", h.language)

	result := h.pipeline.Complete(context.Background(), strings.Join(h.buffer, "\n"), pos, h.language)
	elapsed := time.Since(start)
	log.Debugf("Took [ %v ] for line %d", elapsed, pos.Line)

	if result.Status == completion.StatusError {
		log.Errorf("Completion failed: %s", result.ErrorMessage)
		return
	}
	if len(result.Suggestions) == 0 {
		log.Warnf("No suggestions for line %d", pos.Line)
		return
	}

	hit := ""
	if result.Metadata.CacheHit {
		hit = " (cached)"
	}
	log.Printf("Found %d suggestions%s:", len(result.Suggestions), hit)
	for i, s := range result.Suggestions {
		clText := fmt.Sprintf("\033[38;5;75m%s\033[0m", firstLine(s.Text))
		log.Printf("%2d. %-50s (%.0f%%, %s)", i+1, clText, s.Confidence*100, s.Kind)
	}
}

func (h *InputHandler) handleCommand(cmd string) {
	fields := strings.Fields(cmd)
	switch fields[0] {
	case ":help":
		log.Print(":lang <id>   switch language")
		log.Print(":accept <n>  accept suggestion n from the last result")
		log.Print(":stats       show session statistics")
		log.Print(":clear       clear the cache (optionally :clear <lang>)")
		log.Print(":reset       drop the scratch buffer")
	case ":lang":
		if len(fields) < 2 {
			log.Errorf("Usage: :lang <identifier>")
			return
		}
		if !h.resolver.IsSupported(fields[1]) {
			log.Warnf("Language %q is not in the resolved table", fields[1])
		}
		h.language = fields[1]
		log.Printf("language set to %s", h.language)
	case ":accept":
		var n int
		if len(fields) < 2 || len(fields[1]) == 0 {
			log.Errorf("Usage: :accept <index>")
			return
		}
		fmt.Sscanf(fields[1], "%d", &n)
		h.pipeline.Accept(n - 1)
		log.Printf("accepted suggestion %d", n)
	case ":stats":
		fmt.Fprintln(os.Stderr, RenderStats(h.recorder.Snapshot(), h.store.Snapshot()))
	case ":clear":
		if len(fields) > 1 {
			cleared := h.store.ClearLanguage(fields[1])
			log.Printf("cleared %d entries for %s", cleared, fields[1])
			return
		}
		h.store.Clear()
		log.Print("cache cleared")
	case ":reset":
		h.buffer = h.buffer[:0]
		log.Print("buffer reset")
	default:
		log.Errorf("Unknown command: %s", fields[0])
	}
}

func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return s[:idx] + "..."
	}
	return s
}
