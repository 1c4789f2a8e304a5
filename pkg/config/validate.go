package config

import "fmt"

// ValidationResult carries the outcome of a validation pass. Errors is
// a structured message list, one entry per violated bound.
type ValidationResult struct {
	Valid  bool
	Errors []string
}

func (v *ValidationResult) add(format string, args ...any) {
	v.Valid = false
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}

// Validate checks every numeric bound and the model identifier for the
// global section and all language overrides. It reports violations; it
// never mutates the config.
func (c *Config) Validate() ValidationResult {
	result := ValidationResult{Valid: true}

	validateCompletion(&result, "completion", c.Completion)
	for lang, override := range c.Languages {
		validateOverride(&result, "languages."+lang, override)
	}
	if c.Cache.MaxEntries < 1 {
		result.add("cache.max_entries must be at least 1, got %d", c.Cache.MaxEntries)
	}
	if c.Service.TimeoutMs < 1 {
		result.add("service.timeout_ms must be at least 1, got %d", c.Service.TimeoutMs)
	}
	return result
}

func validateCompletion(result *ValidationResult, section string, cc CompletionConfig) {
	if cc.MaxSuggestions < 1 || cc.MaxSuggestions > 10 {
		result.add("%s.max_suggestions must be between 1 and 10, got %d", section, cc.MaxSuggestions)
	}
	if cc.Temperature < 0.0 || cc.Temperature > 2.0 {
		result.add("%s.temperature must be between 0.0 and 2.0, got %g", section, cc.Temperature)
	}
	if cc.MaxContextLines < 10 || cc.MaxContextLines > 200 {
		result.add("%s.max_context_lines must be between 10 and 200, got %d", section, cc.MaxContextLines)
	}
	if cc.TopP < 0.0 || cc.TopP > 1.0 {
		result.add("%s.top_p must be between 0.0 and 1.0, got %g", section, cc.TopP)
	}
	if cc.TopK < 1 || cc.TopK > 100 {
		result.add("%s.top_k must be between 1 and 100, got %d", section, cc.TopK)
	}
	if cc.RepetitionPenalty < 0.5 || cc.RepetitionPenalty > 2.0 {
		result.add("%s.repetition_penalty must be between 0.5 and 2.0, got %g", section, cc.RepetitionPenalty)
	}
	if cc.ContextWindow < 256 || cc.ContextWindow > 4096 {
		result.add("%s.context_window must be between 256 and 4096, got %d", section, cc.ContextWindow)
	}
	if !isKnownModel(cc.Model) {
		result.add("%s.model must be one of %v, got %q", section, knownModels, cc.Model)
	}
}

func validateOverride(result *ValidationResult, section string, ov LanguageOverride) {
	if ov.MaxSuggestions != nil && (*ov.MaxSuggestions < 1 || *ov.MaxSuggestions > 10) {
		result.add("%s.max_suggestions must be between 1 and 10, got %d", section, *ov.MaxSuggestions)
	}
	if ov.Temperature != nil && (*ov.Temperature < 0.0 || *ov.Temperature > 2.0) {
		result.add("%s.temperature must be between 0.0 and 2.0, got %g", section, *ov.Temperature)
	}
	if ov.MaxContextLines != nil && (*ov.MaxContextLines < 10 || *ov.MaxContextLines > 200) {
		result.add("%s.max_context_lines must be between 10 and 200, got %d", section, *ov.MaxContextLines)
	}
	if ov.TopP != nil && (*ov.TopP < 0.0 || *ov.TopP > 1.0) {
		result.add("%s.top_p must be between 0.0 and 1.0, got %g", section, *ov.TopP)
	}
	if ov.TopK != nil && (*ov.TopK < 1 || *ov.TopK > 100) {
		result.add("%s.top_k must be between 1 and 100, got %d", section, *ov.TopK)
	}
	if ov.RepetitionPenalty != nil && (*ov.RepetitionPenalty < 0.5 || *ov.RepetitionPenalty > 2.0) {
		result.add("%s.repetition_penalty must be between 0.5 and 2.0, got %g", section, *ov.RepetitionPenalty)
	}
	if ov.ContextWindow != nil && (*ov.ContextWindow < 256 || *ov.ContextWindow > 4096) {
		result.add("%s.context_window must be between 256 and 4096, got %d", section, *ov.ContextWindow)
	}
	if ov.IndentSize != nil && (*ov.IndentSize < 1 || *ov.IndentSize > 8) {
		result.add("%s.indent_size must be between 1 and 8, got %d", section, *ov.IndentSize)
	}
	if ov.IndentStyle != nil && *ov.IndentStyle != "spaces" && *ov.IndentStyle != "tabs" {
		result.add("%s.indent_style must be \"spaces\" or \"tabs\", got %q", section, *ov.IndentStyle)
	}
	if ov.Model != nil && !isKnownModel(*ov.Model) {
		result.add("%s.model must be one of %v, got %q", section, knownModels, *ov.Model)
	}
}

func isKnownModel(model string) bool {
	for _, m := range knownModels {
		if m == model {
			return true
		}
	}
	return false
}
