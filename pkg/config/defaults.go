package config

// LanguageDefaults is the builtin per-language layer of the cascade.
// Values here are the last resort after the [languages.X] override and
// the global [completion] section.
type LanguageDefaults struct {
	MaxNewTokens   int
	Temperature    float64
	TopP           float64
	ContextWindow  int
	CommentStyle   string
	IndentStyle    string
	IndentSize     int
	FileExtensions []string
}

// builtinLanguages maps language identifiers to their builtin defaults.
// The table is treated as immutable; runtime changes go through the
// override layer instead.
var builtinLanguages = map[string]LanguageDefaults{
	"python": {
		MaxNewTokens:   150,
		Temperature:    0.6,
		TopP:           0.85,
		ContextWindow:  2048,
		CommentStyle:   "#",
		IndentStyle:    "spaces",
		IndentSize:     4,
		FileExtensions: []string{".py", ".pyx", ".pyi"},
	},
	"javascript": {
		MaxNewTokens:   120,
		Temperature:    0.7,
		TopP:           0.9,
		ContextWindow:  1536,
		CommentStyle:   "//",
		IndentStyle:    "spaces",
		IndentSize:     2,
		FileExtensions: []string{".js", ".jsx", ".mjs"},
	},
	"typescript": {
		MaxNewTokens:   120,
		Temperature:    0.7,
		TopP:           0.9,
		ContextWindow:  1536,
		CommentStyle:   "//",
		IndentStyle:    "spaces",
		IndentSize:     2,
		FileExtensions: []string{".ts", ".tsx"},
	},
	"java": {
		MaxNewTokens:   140,
		Temperature:    0.6,
		TopP:           0.85,
		ContextWindow:  1800,
		CommentStyle:   "//",
		IndentStyle:    "spaces",
		IndentSize:     4,
		FileExtensions: []string{".java"},
	},
	"cpp": {
		MaxNewTokens:   130,
		Temperature:    0.6,
		TopP:           0.85,
		ContextWindow:  1800,
		CommentStyle:   "//",
		IndentStyle:    "spaces",
		IndentSize:     4,
		FileExtensions: []string{".cpp", ".cc", ".cxx", ".c++"},
	},
	"c": {
		MaxNewTokens:   130,
		Temperature:    0.6,
		TopP:           0.85,
		ContextWindow:  1800,
		CommentStyle:   "//",
		IndentStyle:    "spaces",
		IndentSize:     4,
		FileExtensions: []string{".c", ".h"},
	},
	"csharp": {
		MaxNewTokens:   130,
		Temperature:    0.6,
		TopP:           0.85,
		ContextWindow:  1800,
		CommentStyle:   "//",
		IndentStyle:    "spaces",
		IndentSize:     4,
		FileExtensions: []string{".cs"},
	},
	"go": {
		MaxNewTokens:   120,
		Temperature:    0.6,
		TopP:           0.85,
		ContextWindow:  1600,
		CommentStyle:   "//",
		IndentStyle:    "tabs",
		IndentSize:     1,
		FileExtensions: []string{".go"},
	},
	"rust": {
		MaxNewTokens:   140,
		Temperature:    0.6,
		TopP:           0.85,
		ContextWindow:  1800,
		CommentStyle:   "//",
		IndentStyle:    "spaces",
		IndentSize:     4,
		FileExtensions: []string{".rs"},
	},
	"php": {
		MaxNewTokens:   120,
		Temperature:    0.7,
		TopP:           0.9,
		ContextWindow:  1536,
		CommentStyle:   "//",
		IndentStyle:    "spaces",
		IndentSize:     4,
		FileExtensions: []string{".php", ".phtml"},
	},
	"ruby": {
		MaxNewTokens:   120,
		Temperature:    0.7,
		TopP:           0.9,
		ContextWindow:  1536,
		CommentStyle:   "#",
		IndentStyle:    "spaces",
		IndentSize:     2,
		FileExtensions: []string{".rb", ".rbw"},
	},
	"html": {
		MaxNewTokens:   100,
		Temperature:    0.5,
		TopP:           0.9,
		ContextWindow:  1024,
		CommentStyle:   "<!-- -->",
		IndentStyle:    "spaces",
		IndentSize:     2,
		FileExtensions: []string{".html", ".htm", ".xhtml"},
	},
	"css": {
		MaxNewTokens:   80,
		Temperature:    0.5,
		TopP:           0.9,
		ContextWindow:  1024,
		CommentStyle:   "/* */",
		IndentStyle:    "spaces",
		IndentSize:     2,
		FileExtensions: []string{".css", ".scss", ".sass", ".less"},
	},
	"sql": {
		MaxNewTokens:   100,
		Temperature:    0.5,
		TopP:           0.9,
		ContextWindow:  1024,
		CommentStyle:   "--",
		IndentStyle:    "spaces",
		IndentSize:     2,
		FileExtensions: []string{".sql"},
	},
}

// fallbackLanguage fills fields for languages configured at runtime
// that have no builtin entry.
var fallbackLanguage = LanguageDefaults{
	MaxNewTokens:  120,
	Temperature:   0.7,
	TopP:          0.9,
	ContextWindow: 1024,
	CommentStyle:  "//",
	IndentStyle:   "spaces",
	IndentSize:    4,
}

// Valid model identifiers for the completion backend.
var knownModels = []string{"codegpt", "codebert", "auto"}
