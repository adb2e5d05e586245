package parser

import (
	"regexp"
	"strings"

	t "archmap/internal/types"
)

var pyExtensions = map[string]struct{}{".py": {}, ".pyw": {}, ".pyi": {}}

var (
	rePyTriple = regexp.MustCompile(`(?s)('''.*?'''|""".*?""")`)
	rePyString = regexp.MustCompile(`('([^'\\]|\\.)*'|"([^"\\]|\\.)*")`)
	rePyImport = regexp.MustCompile(`^\s*import\s+(.+)$`)
	rePyFrom   = regexp.MustCompile(`^\s*from\s+(\S+)\s+import\s+(.*)$`)
	rePyAll    = regexp.MustCompile(`(?s)__all__\s*=\s*[\[\(](.*?)[\]\)]`)
	rePyQuoted = regexp.MustCompile(`['"]([^'"]+)['"]`)
)

// PythonParser is a lexical import scanner: imports occupy a restricted
// grammar, so a comment/string-stripping pre-pass followed by per-line
// pattern matching recovers them without a full AST.
type PythonParser struct{}

func NewPythonParser() *PythonParser { return &PythonParser{} }

func (*PythonParser) CanParse(path string) bool {
	_, ok := pyExtensions[extOf(path)]
	return ok
}

func (p *PythonParser) Parse(content []byte, file t.SourceFile) t.ParsedFile {
	pf := t.ParsedFile{File: file}
	stripped := stripPython(string(content))
	lines := strings.Split(stripped, "\n")

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		startLine := i + 1

		if m := rePyFrom.FindStringSubmatch(line); m != nil {
			names := m[2]
			// A parenthesized import list may span lines; join until the
			// closing paren.
			if strings.Contains(names, "(") && !strings.Contains(names, ")") {
				for i+1 < len(lines) {
					i++
					names += " " + lines[i]
					if strings.Contains(lines[i], ")") {
						break
					}
				}
			}
			pf.Imports = append(pf.Imports, pythonFrom(m[1], names, startLine))
			continue
		}

		if m := rePyImport.FindStringSubmatch(line); m != nil {
			for _, part := range strings.Split(m[1], ",") {
				part = strings.TrimSpace(part)
				if part == "" {
					continue
				}
				module, alias := splitAs(part)
				if module == "" {
					continue
				}
				rec := t.ImportRecord{
					Source: module,
					Kind:   t.KindPythonImport,
					Line:   startLine,
				}
				if alias != "" {
					rec.Names = []string{alias}
				}
				classifyPython(&rec)
				pf.Imports = append(pf.Imports, rec)
			}
		}
	}

	pf.Exports = pythonAll(string(content))
	return pf
}

func pythonFrom(pkg, rawNames string, line int) t.ImportRecord {
	rec := t.ImportRecord{
		Source: pkg,
		Kind:   t.KindPythonFrom,
		Line:   line,
	}
	rawNames = strings.Trim(rawNames, "() \t")
	for _, part := range strings.Split(rawNames, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, _ := splitAs(part)
		if name != "" {
			rec.Names = append(rec.Names, name)
		}
	}
	classifyPython(&rec)
	return rec
}

// classifyPython: relative iff the module path starts with '.'; external
// iff not relative and the module path is a bare top-level name.
func classifyPython(rec *t.ImportRecord) {
	rec.IsRelative = strings.HasPrefix(rec.Source, ".")
	rec.IsExternal = !rec.IsRelative && !strings.Contains(rec.Source, ".")
}

func splitAs(s string) (name, alias string) {
	fields := strings.Fields(s)
	switch {
	case len(fields) >= 3 && fields[1] == "as":
		return fields[0], fields[2]
	case len(fields) >= 1:
		return fields[0], ""
	default:
		return "", ""
	}
}

// stripPython removes triple-quoted strings, then comments, then
// single-line strings, preserving the line count so import line numbers
// survive the pre-pass.
func stripPython(src string) string {
	src = rePyTriple.ReplaceAllStringFunc(src, func(m string) string {
		return strings.Repeat("\n", strings.Count(m, "\n"))
	})
	lines := strings.Split(src, "\n")
	for i, line := range lines {
		if idx := strings.Index(line, "#"); idx >= 0 {
			line = line[:idx]
		}
		line = rePyString.ReplaceAllString(line, `""`)
		lines[i] = line
	}
	return strings.Join(lines, "\n")
}

// pythonAll extracts the module-level __all__ export list from the
// original content (the strip pass would erase the string values).
func pythonAll(src string) []string {
	m := rePyAll.FindStringSubmatch(src)
	if m == nil {
		return nil
	}
	var exports []string
	for _, q := range rePyQuoted.FindAllStringSubmatch(m[1], -1) {
		exports = append(exports, q[1])
	}
	return exports
}
