package extractor

import (
	"regexp"
	"strings"
)

// languageParser is one pattern family. The registry picks exactly one
// per language; there is no cross-language fallback.
type languageParser interface {
	// Function returns the nearest enclosing function header scanning
	// lines from the end backwards, or nil.
	Function(lines []string) *FunctionInfo
	// Class returns the nearest enclosing class-like header scanning
	// backwards, or nil.
	Class(lines []string) *ClassInfo
	// IsImport reports whether a trimmed line is an import statement.
	IsImport(line string) bool
	// Assignment splits a trimmed line into binding name and RHS.
	Assignment(line string) (name, value string, ok bool)
}

var (
	rePyFunc    = regexp.MustCompile(`^def\s+(\w+)\s*\((.*?)\)\s*(?:->\s*(.+?))?\s*:`)
	rePyClass   = regexp.MustCompile(`^class\s+(\w+)(?:\((.*?)\))?\s*:`)
	rePyAssign  = regexp.MustCompile(`^(\w+)\s*=\s*(.+)$`)
	rePyMethod  = regexp.MustCompile(`^\s+def\s+(\w+)\s*\(`)
	rePySelfVar = regexp.MustCompile(`^\s+self\.(\w+)\s*=`)
)

// pythonParser matches the def/class grammar.
type pythonParser struct{}

func (pythonParser) Function(lines []string) *FunctionInfo {
	for i := len(lines) - 1; i >= 0; i-- {
		m := rePyFunc.FindStringSubmatch(strings.TrimSpace(lines[i]))
		if m == nil {
			continue
		}
		return &FunctionInfo{
			Name:       m[1],
			Parameters: splitParams(m[2]),
			ReturnType: strings.TrimSpace(m[3]),
		}
	}
	return nil
}

func (pythonParser) Class(lines []string) *ClassInfo {
	for i := len(lines) - 1; i >= 0; i-- {
		m := rePyClass.FindStringSubmatch(strings.TrimSpace(lines[i]))
		if m == nil {
			continue
		}
		info := &ClassInfo{Name: m[1]}
		// Members live on indented lines below the header.
		for _, line := range lines[i+1:] {
			if mm := rePyMethod.FindStringSubmatch(line); mm != nil {
				info.Methods = append(info.Methods, mm[1])
			} else if mv := rePySelfVar.FindStringSubmatch(line); mv != nil {
				info.Properties = append(info.Properties, mv[1])
			}
		}
		return info
	}
	return nil
}

func (pythonParser) IsImport(line string) bool {
	return strings.HasPrefix(line, "import ") || strings.HasPrefix(line, "from ")
}

func (pythonParser) Assignment(line string) (string, string, bool) {
	if strings.HasPrefix(line, "#") {
		return "", "", false
	}
	m := rePyAssign.FindStringSubmatch(line)
	if m == nil {
		return "", "", false
	}
	// Comparison operators also contain '='; skip those.
	if strings.HasPrefix(m[2], "=") {
		return "", "", false
	}
	return m[1], strings.TrimSpace(m[2]), true
}

var (
	reJSFunc    = regexp.MustCompile(`^(?:async\s+)?function\s+(\w+)\s*\((.*?)\)`)
	reJSArrow   = regexp.MustCompile(`^(?:const|let|var)\s+(\w+)\s*=\s*(?:async\s+)?\((.*?)\)\s*=>`)
	reJSMethod  = regexp.MustCompile(`^\s+(?:async\s+)?(\w+)\s*\((.*?)\)\s*\{`)
	reJSClass   = regexp.MustCompile(`^class\s+(\w+)(?:\s+extends\s+\w+)?\s*\{?`)
	reJSAssign  = regexp.MustCompile(`^(?:const|let|var)\s+(\w+)\s*=\s*(.+?);?$`)
	reTSFunc    = regexp.MustCompile(`^(?:async\s+)?function\s+(\w+)\s*\((.*?)\)\s*:\s*([\w<>\[\], .|]+)`)
	reJSProp    = regexp.MustCompile(`^\s+this\.(\w+)\s*=`)
	reTSField   = regexp.MustCompile(`^\s+(?:private\s+|public\s+|protected\s+|readonly\s+)*(\w+)\s*[:=]`)
)

// javascriptParser covers both JS and TS; TS adds return-type capture.
type javascriptParser struct {
	typescript bool
}

func (p javascriptParser) Function(lines []string) *FunctionInfo {
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if p.typescript {
			if m := reTSFunc.FindStringSubmatch(line); m != nil {
				return &FunctionInfo{Name: m[1], Parameters: splitParams(m[2]), ReturnType: strings.TrimSpace(m[3])}
			}
		}
		if m := reJSFunc.FindStringSubmatch(line); m != nil {
			return &FunctionInfo{Name: m[1], Parameters: splitParams(m[2])}
		}
		if m := reJSArrow.FindStringSubmatch(line); m != nil {
			return &FunctionInfo{Name: m[1], Parameters: splitParams(m[2])}
		}
	}
	return nil
}

func (p javascriptParser) Class(lines []string) *ClassInfo {
	for i := len(lines) - 1; i >= 0; i-- {
		m := reJSClass.FindStringSubmatch(strings.TrimSpace(lines[i]))
		if m == nil {
			continue
		}
		info := &ClassInfo{Name: m[1]}
		for _, line := range lines[i+1:] {
			if mm := reJSMethod.FindStringSubmatch(line); mm != nil {
				info.Methods = append(info.Methods, mm[1])
			} else if mv := reJSProp.FindStringSubmatch(line); mv != nil {
				info.Properties = append(info.Properties, mv[1])
			} else if p.typescript {
				if mf := reTSField.FindStringSubmatch(line); mf != nil {
					info.Properties = append(info.Properties, mf[1])
				}
			}
		}
		return info
	}
	return nil
}

func (p javascriptParser) IsImport(line string) bool {
	if strings.HasPrefix(line, "import ") {
		return true
	}
	return strings.HasPrefix(line, "const ") && strings.Contains(line, "require(")
}

func (p javascriptParser) Assignment(line string) (string, string, bool) {
	if strings.HasPrefix(line, "//") {
		return "", "", false
	}
	m := reJSAssign.FindStringSubmatch(line)
	if m == nil || strings.Contains(m[2], "=>") {
		return "", "", false
	}
	return m[1], strings.TrimSuffix(strings.TrimSpace(m[2]), ";"), true
}

var (
	reJavaMethod = regexp.MustCompile(`^(?:public|private|protected)\s+(?:static\s+)?([\w<>\[\]]+)\s+(\w+)\s*\((.*?)\)`)
	reJavaClass  = regexp.MustCompile(`^(?:public\s+|final\s+|abstract\s+)*class\s+(\w+)`)
	reJavaVar    = regexp.MustCompile(`^(?:final\s+)?[\w<>\[\]]+\s+(\w+)\s*=\s*(.+?);`)
)

type javaParser struct{}

func (javaParser) Function(lines []string) *FunctionInfo {
	for i := len(lines) - 1; i >= 0; i-- {
		m := reJavaMethod.FindStringSubmatch(strings.TrimSpace(lines[i]))
		if m == nil {
			continue
		}
		return &FunctionInfo{Name: m[2], Parameters: splitParams(m[3]), ReturnType: m[1]}
	}
	return nil
}

func (javaParser) Class(lines []string) *ClassInfo {
	for i := len(lines) - 1; i >= 0; i-- {
		m := reJavaClass.FindStringSubmatch(strings.TrimSpace(lines[i]))
		if m == nil {
			continue
		}
		info := &ClassInfo{Name: m[1]}
		for _, line := range lines[i+1:] {
			if mm := reJavaMethod.FindStringSubmatch(strings.TrimSpace(line)); mm != nil {
				info.Methods = append(info.Methods, mm[2])
			}
		}
		return info
	}
	return nil
}

func (javaParser) IsImport(line string) bool {
	return strings.HasPrefix(line, "import ")
}

func (javaParser) Assignment(line string) (string, string, bool) {
	m := reJavaVar.FindStringSubmatch(line)
	if m == nil {
		return "", "", false
	}
	return m[1], strings.TrimSpace(m[2]), true
}

var (
	reGoFunc   = regexp.MustCompile(`^func\s+(?:\([^)]*\)\s+)?(\w+)\s*\((.*?)\)\s*(?:\(?([\w.*\[\]{} ,]*)\)?)?\s*\{`)
	reGoType   = regexp.MustCompile(`^type\s+(\w+)\s+struct\s*\{`)
	reGoField  = regexp.MustCompile(`^\s+(\w+)\s+[\w.*\[\]]+`)
	reGoAssign = regexp.MustCompile(`^(\w+)\s*:?=\s*(.+)$`)
)

type goParser struct{}

func (goParser) Function(lines []string) *FunctionInfo {
	for i := len(lines) - 1; i >= 0; i-- {
		m := reGoFunc.FindStringSubmatch(strings.TrimSpace(lines[i]))
		if m == nil {
			continue
		}
		return &FunctionInfo{
			Name:       m[1],
			Parameters: splitParams(m[2]),
			ReturnType: strings.TrimSpace(m[3]),
		}
	}
	return nil
}

func (goParser) Class(lines []string) *ClassInfo {
	for i := len(lines) - 1; i >= 0; i-- {
		m := reGoType.FindStringSubmatch(strings.TrimSpace(lines[i]))
		if m == nil {
			continue
		}
		info := &ClassInfo{Name: m[1]}
		for _, line := range lines[i+1:] {
			if strings.TrimSpace(line) == "}" {
				break
			}
			if mf := reGoField.FindStringSubmatch(line); mf != nil {
				info.Properties = append(info.Properties, mf[1])
			}
		}
		return info
	}
	return nil
}

func (goParser) IsImport(line string) bool {
	return strings.HasPrefix(line, "import ") || strings.HasPrefix(line, `"`) && strings.HasSuffix(line, `"`)
}

func (goParser) Assignment(line string) (string, string, bool) {
	if strings.HasPrefix(line, "//") {
		return "", "", false
	}
	m := reGoAssign.FindStringSubmatch(line)
	if m == nil || strings.HasPrefix(m[2], "=") {
		return "", "", false
	}
	return m[1], strings.TrimSpace(m[2]), true
}

// splitParams splits a comma separated parameter list, dropping empties.
func splitParams(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	params := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			params = append(params, p)
		}
	}
	return params
}

// defaultParsers is the builtin registry. Adding a language means adding
// one parser here, nothing else changes.
func defaultParsers() map[string]languageParser {
	return map[string]languageParser{
		"python":     pythonParser{},
		"javascript": javascriptParser{},
		"typescript": javascriptParser{typescript: true},
		"java":       javaParser{},
		"go":         goParser{},
	}
}
