// Package stats aggregates completion usage counters with periodic
// JSON persistence.
package stats

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/bims2021/AI-Autocode-Completion/internal/logger"
	"github.com/bims2021/AI-Autocode-Completion/internal/utils"
)

// latencyWindow bounds the rolling latency sample. Oldest samples are
// overwritten first, keeping the moving average O(1) in memory.
const latencyWindow = 100

// Counters is one bucket of aggregate counts.
type Counters struct {
	Completions int64 `json:"completions"`
	Suggestions int64 `json:"suggestions"`
	Acceptances int64 `json:"acceptances"`
	CacheHits   int64 `json:"cacheHits"`
}

// Snapshot is a point-in-time copy of everything the recorder tracks.
type Snapshot struct {
	SessionStart time.Time           `json:"sessionStart"`
	Totals       Counters            `json:"totals"`
	ByLanguage   map[string]Counters `json:"byLanguage"`
	ByDay        map[string]Counters `json:"byDay"`
	ErrorsByKind map[string]int64    `json:"errorsByKind"`
	AvgLatencyMs float64             `json:"avgLatencyMs"`
}

type persisted struct {
	Totals       Counters            `json:"totals"`
	ByLanguage   map[string]Counters `json:"byLanguage"`
	ByDay        map[string]Counters `json:"byDay"`
	ErrorsByKind map[string]int64    `json:"errorsByKind"`
	SavedAt      time.Time           `json:"savedAt"`
}

// Recorder accumulates counters and persists them on a timer and on
// Close. Per-language and per-day buckets appear lazily on first
// observation.
type Recorder struct {
	mu           sync.Mutex
	filePath     string
	sessionStart time.Time
	totals       Counters
	byLanguage   map[string]*Counters
	byDay        map[string]*Counters
	errorsByKind map[string]int64

	latencies [latencyWindow]time.Duration
	latIdx    int
	latCount  int

	stop chan struct{}
	done chan struct{}
	log  *log.Logger
}

// NewRecorder loads any persisted aggregate from filePath and starts
// the autosave timer. The session start marker is always reset to now,
// even after a reload. An empty filePath disables persistence.
func NewRecorder(filePath string, autosave time.Duration) *Recorder {
	r := &Recorder{
		filePath:     filePath,
		sessionStart: time.Now(),
		byLanguage:   make(map[string]*Counters),
		byDay:        make(map[string]*Counters),
		errorsByKind: make(map[string]int64),
		stop:         make(chan struct{}),
		done:         make(chan struct{}),
		log:          logger.New("stats"),
	}
	r.load()

	if filePath != "" && autosave > 0 {
		go r.autosaveLoop(autosave)
	} else {
		close(r.done)
	}
	return r
}

func (r *Recorder) autosaveLoop(interval time.Duration) {
	defer close(r.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := r.Save(); err != nil {
				r.log.Warnf("Autosave failed: %v", err)
			}
		case <-r.stop:
			return
		}
	}
}

func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

func (r *Recorder) bucket(language string) (*Counters, *Counters) {
	lang, ok := r.byLanguage[language]
	if !ok {
		lang = &Counters{}
		r.byLanguage[language] = lang
	}
	key := dayKey(time.Now())
	day, ok := r.byDay[key]
	if !ok {
		day = &Counters{}
		r.byDay[key] = day
	}
	return lang, day
}

// RecordCompletion counts one resolved completion and its latency.
func (r *Recorder) RecordCompletion(language string, suggestionCount int, latency time.Duration, cacheHit bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	lang, day := r.bucket(language)
	for _, c := range []*Counters{&r.totals, lang, day} {
		c.Completions++
		c.Suggestions += int64(suggestionCount)
		if cacheHit {
			c.CacheHits++
		}
	}

	r.latencies[r.latIdx] = latency
	r.latIdx = (r.latIdx + 1) % latencyWindow
	if r.latCount < latencyWindow {
		r.latCount++
	}
}

// RecordAcceptance counts one accepted suggestion.
func (r *Recorder) RecordAcceptance(language string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	lang, day := r.bucket(language)
	r.totals.Acceptances++
	lang.Acceptances++
	day.Acceptances++
}

// RecordError counts one failure by classification.
func (r *Recorder) RecordError(kind string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errorsByKind[kind]++
}

// Snapshot copies the current aggregate.
func (r *Recorder) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := Snapshot{
		SessionStart: r.sessionStart,
		Totals:       r.totals,
		ByLanguage:   make(map[string]Counters, len(r.byLanguage)),
		ByDay:        make(map[string]Counters, len(r.byDay)),
		ErrorsByKind: make(map[string]int64, len(r.errorsByKind)),
	}
	for lang, c := range r.byLanguage {
		snap.ByLanguage[lang] = *c
	}
	for day, c := range r.byDay {
		snap.ByDay[day] = *c
	}
	for kind, n := range r.errorsByKind {
		snap.ErrorsByKind[kind] = n
	}
	if r.latCount > 0 {
		var sum time.Duration
		for i := 0; i < r.latCount; i++ {
			sum += r.latencies[i]
		}
		snap.AvgLatencyMs = float64(sum.Milliseconds()) / float64(r.latCount)
	}
	return snap
}

// load rehydrates persisted counters. The latency window is session
// scoped and never persisted.
func (r *Recorder) load() {
	if r.filePath == "" || !utils.FileExists(r.filePath) {
		return
	}
	data, err := os.ReadFile(r.filePath)
	if err != nil {
		r.log.Warnf("Cannot read stats file %s: %v", r.filePath, err)
		return
	}
	var p persisted
	if err := json.Unmarshal(data, &p); err != nil {
		r.log.Warnf("Ignoring malformed stats file %s: %v", r.filePath, err)
		return
	}
	r.totals = p.Totals
	for lang, c := range p.ByLanguage {
		cc := c
		r.byLanguage[lang] = &cc
	}
	for day, c := range p.ByDay {
		cc := c
		r.byDay[day] = &cc
	}
	if p.ErrorsByKind != nil {
		r.errorsByKind = p.ErrorsByKind
	}
	r.log.Debugf("Loaded stats from %s (saved %s)", r.filePath, p.SavedAt.Format(time.RFC3339))
}

// Save writes the aggregate to disk.
func (r *Recorder) Save() error {
	if r.filePath == "" {
		return nil
	}
	r.mu.Lock()
	p := persisted{
		Totals:       r.totals,
		ByLanguage:   make(map[string]Counters, len(r.byLanguage)),
		ByDay:        make(map[string]Counters, len(r.byDay)),
		ErrorsByKind: make(map[string]int64, len(r.errorsByKind)),
		SavedAt:      time.Now(),
	}
	for lang, c := range r.byLanguage {
		p.ByLanguage[lang] = *c
	}
	for day, c := range r.byDay {
		p.ByDay[day] = *c
	}
	for kind, n := range r.errorsByKind {
		p.ErrorsByKind[kind] = n
	}
	r.mu.Unlock()

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	if err := utils.EnsureDir(filepath.Dir(r.filePath)); err != nil {
		return err
	}
	return os.WriteFile(r.filePath, data, 0644)
}

// Close stops the autosave timer and writes a final save.
func (r *Recorder) Close() error {
	select {
	case <-r.stop:
	default:
		close(r.stop)
	}
	<-r.done
	return r.Save()
}
