package config

import (
	"sort"
	"strings"
	"sync"
)

// Generation is the resolved parameter set for one dispatch.
type Generation struct {
	MaxSuggestions    int
	MaxNewTokens      int
	Temperature       float64
	TopP              float64
	TopK              int
	RepetitionPenalty float64
	ContextWindow     int
	Model             string
}

// Resolver answers per-language configuration questions through the
// cascade: [languages.X] override, then the global [completion]
// section, then the builtin table. Lookups never fail; a language
// absent everywhere resolves to the global defaults.
type Resolver struct {
	mu  sync.RWMutex
	cfg *Config
}

// NewResolver wraps a loaded Config. The Config is owned by the
// resolver afterwards; mutate it only through Update/Remove.
func NewResolver(cfg *Config) *Resolver {
	if cfg.Languages == nil {
		cfg.Languages = make(map[string]LanguageOverride)
	}
	return &Resolver{cfg: cfg}
}

// IsSupported reports whether the language exists in the resolved
// table, builtin or configured at runtime.
func (r *Resolver) IsSupported(language string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if _, ok := r.cfg.Languages[language]; ok {
		return true
	}
	_, ok := builtinLanguages[language]
	return ok
}

// Languages returns the sorted union of builtin and overridden
// language identifiers.
func (r *Resolver) Languages() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set := make(map[string]struct{}, len(builtinLanguages)+len(r.cfg.Languages))
	for lang := range builtinLanguages {
		set[lang] = struct{}{}
	}
	for lang := range r.cfg.Languages {
		set[lang] = struct{}{}
	}
	langs := make([]string, 0, len(set))
	for lang := range set {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}

// LanguageForExtension maps a file extension (with leading dot,
// case-insensitive) to its language, or "" when unknown.
func (r *Resolver) LanguageForExtension(ext string) string {
	ext = strings.ToLower(ext)
	for lang, defaults := range builtinLanguages {
		for _, e := range defaults.FileExtensions {
			if e == ext {
				return lang
			}
		}
	}
	return ""
}

// FileExtension returns the primary extension for a language, or "".
func (r *Resolver) FileExtension(language string) string {
	if defaults, ok := builtinLanguages[language]; ok && len(defaults.FileExtensions) > 0 {
		return defaults.FileExtensions[0]
	}
	return ""
}

func (r *Resolver) builtin(language string) LanguageDefaults {
	if defaults, ok := builtinLanguages[language]; ok {
		return defaults
	}
	return fallbackLanguage
}

// Enabled reports whether completions run for the language. The global
// switch wins when off; the override can disable a single language.
func (r *Resolver) Enabled(language string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.cfg.Completion.Enabled {
		return false
	}
	if ov, ok := r.cfg.Languages[language]; ok && ov.Enabled != nil {
		return *ov.Enabled
	}
	return true
}

// AutoTrigger reports whether trigger characters fire completions.
func (r *Resolver) AutoTrigger() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cfg.Completion.AutoTrigger
}

// SetEnabled flips the global completion switch.
func (r *Resolver) SetEnabled(enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cfg.Completion.Enabled = enabled
}

// MaxSuggestions resolves the suggestion count cap for a language.
func (r *Resolver) MaxSuggestions(language string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if ov, ok := r.cfg.Languages[language]; ok && ov.MaxSuggestions != nil {
		return *ov.MaxSuggestions
	}
	return r.cfg.Completion.MaxSuggestions
}

// MaxContextLines resolves how many preceding lines go into a request.
func (r *Resolver) MaxContextLines(language string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if ov, ok := r.cfg.Languages[language]; ok && ov.MaxContextLines != nil {
		return *ov.MaxContextLines
	}
	return r.cfg.Completion.MaxContextLines
}

// Temperature cascades override, global, builtin.
func (r *Resolver) Temperature(language string) float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if ov, ok := r.cfg.Languages[language]; ok && ov.Temperature != nil {
		return *ov.Temperature
	}
	if _, ok := builtinLanguages[language]; ok {
		return r.builtin(language).Temperature
	}
	return r.cfg.Completion.Temperature
}

// TopP cascades override, builtin, global.
func (r *Resolver) TopP(language string) float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if ov, ok := r.cfg.Languages[language]; ok && ov.TopP != nil {
		return *ov.TopP
	}
	if _, ok := builtinLanguages[language]; ok {
		return r.builtin(language).TopP
	}
	return r.cfg.Completion.TopP
}

// TopK resolves override then global; the builtin table carries no
// per-language top-k.
func (r *Resolver) TopK(language string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if ov, ok := r.cfg.Languages[language]; ok && ov.TopK != nil {
		return *ov.TopK
	}
	return r.cfg.Completion.TopK
}

// RepetitionPenalty resolves override then global.
func (r *Resolver) RepetitionPenalty(language string) float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if ov, ok := r.cfg.Languages[language]; ok && ov.RepetitionPenalty != nil {
		return *ov.RepetitionPenalty
	}
	return r.cfg.Completion.RepetitionPenalty
}

// ContextWindow cascades override, builtin, global.
func (r *Resolver) ContextWindow(language string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if ov, ok := r.cfg.Languages[language]; ok && ov.ContextWindow != nil {
		return *ov.ContextWindow
	}
	if _, ok := builtinLanguages[language]; ok {
		return r.builtin(language).ContextWindow
	}
	return r.cfg.Completion.ContextWindow
}

// MaxNewTokens cascades override then builtin.
func (r *Resolver) MaxNewTokens(language string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if ov, ok := r.cfg.Languages[language]; ok && ov.MaxNewTokens != nil {
		return *ov.MaxNewTokens
	}
	return r.builtin(language).MaxNewTokens
}

// Model resolves the backend model identifier.
func (r *Resolver) Model(language string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if ov, ok := r.cfg.Languages[language]; ok && ov.Model != nil {
		return *ov.Model
	}
	return r.cfg.Completion.Model
}

// CommentStyle resolves override then builtin.
func (r *Resolver) CommentStyle(language string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if ov, ok := r.cfg.Languages[language]; ok && ov.CommentStyle != nil {
		return *ov.CommentStyle
	}
	return r.builtin(language).CommentStyle
}

// IndentStyle resolves override then builtin ("spaces" or "tabs").
func (r *Resolver) IndentStyle(language string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if ov, ok := r.cfg.Languages[language]; ok && ov.IndentStyle != nil {
		return *ov.IndentStyle
	}
	return r.builtin(language).IndentStyle
}

// IndentSize resolves override then builtin.
func (r *Resolver) IndentSize(language string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if ov, ok := r.cfg.Languages[language]; ok && ov.IndentSize != nil {
		return *ov.IndentSize
	}
	return r.builtin(language).IndentSize
}

// Generation resolves the full parameter set for one dispatch.
func (r *Resolver) Generation(language string) Generation {
	return Generation{
		MaxSuggestions:    r.MaxSuggestions(language),
		MaxNewTokens:      r.MaxNewTokens(language),
		Temperature:       r.Temperature(language),
		TopP:              r.TopP(language),
		TopK:              r.TopK(language),
		RepetitionPenalty: r.RepetitionPenalty(language),
		ContextWindow:     r.ContextWindow(language),
		Model:             r.Model(language),
	}
}

// Update merges an override into the language layer. Only non-nil
// fields replace existing ones.
func (r *Resolver) Update(language string, override LanguageOverride) {
	r.mu.Lock()
	defer r.mu.Unlock()
	current := r.cfg.Languages[language]
	mergeOverride(&current, override)
	r.cfg.Languages[language] = current
}

// Remove drops the override layer for a language; the builtin defaults
// apply again afterwards.
func (r *Resolver) Remove(language string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.cfg.Languages, language)
}

// Save persists the wrapped config to the given path.
func (r *Resolver) Save(configPath string) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return SaveConfig(r.cfg, configPath)
}

func mergeOverride(dst *LanguageOverride, src LanguageOverride) {
	if src.Enabled != nil {
		dst.Enabled = src.Enabled
	}
	if src.MaxSuggestions != nil {
		dst.MaxSuggestions = src.MaxSuggestions
	}
	if src.Temperature != nil {
		dst.Temperature = src.Temperature
	}
	if src.MaxContextLines != nil {
		dst.MaxContextLines = src.MaxContextLines
	}
	if src.Model != nil {
		dst.Model = src.Model
	}
	if src.TopP != nil {
		dst.TopP = src.TopP
	}
	if src.TopK != nil {
		dst.TopK = src.TopK
	}
	if src.RepetitionPenalty != nil {
		dst.RepetitionPenalty = src.RepetitionPenalty
	}
	if src.ContextWindow != nil {
		dst.ContextWindow = src.ContextWindow
	}
	if src.MaxNewTokens != nil {
		dst.MaxNewTokens = src.MaxNewTokens
	}
	if src.CommentStyle != nil {
		dst.CommentStyle = src.CommentStyle
	}
	if src.IndentStyle != nil {
		dst.IndentStyle = src.IndentStyle
	}
	if src.IndentSize != nil {
		dst.IndentSize = src.IndentSize
	}
}
