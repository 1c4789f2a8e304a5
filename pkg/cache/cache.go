// Package cache holds ranked suggestion responses keyed by context
// fingerprint, bounded by entry count.
package cache

import (
	"sync"

	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"

	"github.com/bims2021/AI-Autocode-Completion/internal/logger"
	"github.com/bims2021/AI-Autocode-Completion/pkg/completion"
)

// DefaultMaxEntries bounds the cache when no capacity is configured.
const DefaultMaxEntries = 100

type entry struct {
	fingerprint string
	language    string
	response    *completion.Response
}

// Stats are cumulative counters since construction or the last Clear.
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Size      int
	Capacity  int
}

// Cache is a bounded fingerprint-keyed store. Eviction is a coarse
// batch: at capacity the oldest-inserted half is dropped before the
// new entry goes in. A patricia trie keyed language\x00fingerprint
// backs the language-scoped clear without a full scan.
type Cache struct {
	mu        sync.Mutex
	entries   map[string]*entry
	order     []string
	byLang    *patricia.Trie
	max       int
	hits      int64
	misses    int64
	evictions int64
	log       *log.Logger
}

// New returns a cache bounded to maxEntries; non-positive values fall
// back to DefaultMaxEntries.
func New(maxEntries int) *Cache {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Cache{
		entries: make(map[string]*entry),
		byLang:  patricia.NewTrie(),
		max:     maxEntries,
		log:     logger.New("cache"),
	}
}

func langKey(language, fingerprint string) patricia.Prefix {
	return patricia.Prefix(language + "\x00" + fingerprint)
}

// Get returns the stored response for a fingerprint, or nil on a miss.
func (c *Cache) Get(fingerprint string) *completion.Response {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[fingerprint]; ok {
		c.hits++
		return e.response
	}
	c.misses++
	return nil
}

// Put stores a response under its fingerprint. Only successful
// responses are worth keeping; everything else is ignored.
func (c *Cache) Put(fingerprint, language string, resp *completion.Response) {
	if resp == nil || resp.Status != completion.StatusSuccess {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.entries[fingerprint]; ok {
		existing.response = resp
		return
	}
	if len(c.entries) >= c.max {
		c.evictOldestHalf()
	}
	e := &entry{fingerprint: fingerprint, language: language, response: resp}
	c.entries[fingerprint] = e
	c.order = append(c.order, fingerprint)
	c.byLang.Insert(langKey(language, fingerprint), fingerprint)
}

// evictOldestHalf drops the older half of entries in insertion order.
// Caller holds the lock.
func (c *Cache) evictOldestHalf() {
	drop := len(c.order) / 2
	if drop == 0 {
		drop = 1
	}
	for _, fp := range c.order[:drop] {
		if e, ok := c.entries[fp]; ok {
			c.byLang.Delete(langKey(e.language, fp))
			delete(c.entries, fp)
			c.evictions++
		}
	}
	c.order = append(c.order[:0], c.order[drop:]...)
	c.log.Debugf("evicted %d oldest entries, %d remain", drop, len(c.entries))
}

// Clear empties the cache and resets the counters.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*entry)
	c.order = c.order[:0]
	c.byLang = patricia.NewTrie()
	c.hits, c.misses, c.evictions = 0, 0, 0
}

// ClearLanguage removes only entries stored for one language.
func (c *Cache) ClearLanguage(language string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	var victims []string
	prefix := patricia.Prefix(language + "\x00")
	c.byLang.VisitSubtree(prefix, func(_ patricia.Prefix, item patricia.Item) error {
		victims = append(victims, item.(string))
		return nil
	})
	if len(victims) == 0 {
		return 0
	}
	dropped := make(map[string]struct{}, len(victims))
	for _, fp := range victims {
		delete(c.entries, fp)
		dropped[fp] = struct{}{}
	}
	c.byLang.DeleteSubtree(prefix)

	kept := c.order[:0]
	for _, fp := range c.order {
		if _, gone := dropped[fp]; !gone {
			kept = append(kept, fp)
		}
	}
	c.order = kept
	return len(victims)
}

// Len returns the current entry count.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Snapshot returns the current counters.
func (c *Cache) Snapshot() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
		Size:      len(c.entries),
		Capacity:  c.max,
	}
}
