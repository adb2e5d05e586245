package parser

import (
	"regexp"
	"strings"

	t "archmap/internal/types"
)

var (
	reJavaImport  = regexp.MustCompile(`^\s*import\s+(static\s+)?([\w.]+?)(\.\*)?\s*;`)
	reJavaPackage = regexp.MustCompile(`^\s*package\s+([\w.]+)\s*;`)
	reJavaType    = regexp.MustCompile(`\bpublic\s+(?:abstract\s+|final\s+)?(?:class|interface|enum)\s+(\w+)`)
	reJavaComment = regexp.MustCompile(`(?s)/\*.*?\*/`)
)

// javaStdRoots are import roots that always belong to the platform.
var javaStdRoots = map[string]struct{}{
	"java": {}, "javax": {}, "sun": {},
}

// JavaParser is a lexical scanner for Java import and public type
// declarations.
type JavaParser struct{}

func NewJavaParser() *JavaParser { return &JavaParser{} }

func (*JavaParser) CanParse(path string) bool {
	return extOf(path) == ".java"
}

func (p *JavaParser) Parse(content []byte, file t.SourceFile) t.ParsedFile {
	pf := t.ParsedFile{File: file}
	src := stripJavaComments(string(content))
	lines := strings.Split(src, "\n")

	pkgRoot := ""
	for _, line := range lines {
		if m := reJavaPackage.FindStringSubmatch(line); m != nil {
			pkgRoot = firstDotSegment(m[1])
			break
		}
	}

	for i, line := range lines {
		lineNo := i + 1
		if m := reJavaImport.FindStringSubmatch(line); m != nil {
			source := m[2]
			rec := t.ImportRecord{
				Source: source,
				Kind:   t.KindJavaImport,
				Line:   lineNo,
			}
			if m[3] != "" {
				rec.Names = []string{"*"}
			} else if idx := strings.LastIndex(source, "."); idx >= 0 {
				rec.Names = []string{source[idx+1:]}
			} else {
				rec.Names = []string{source}
			}
			rec.IsExternal = javaExternal(source, pkgRoot)
			pf.Imports = append(pf.Imports, rec)
			continue
		}
		if m := reJavaType.FindStringSubmatch(line); m != nil {
			pf.Exports = append(pf.Exports, m[1])
		}
	}
	return pf
}

// javaExternal: external iff the import root is a platform namespace or
// its top-level segment differs from the file's package root.
func javaExternal(source, pkgRoot string) bool {
	root := firstDotSegment(source)
	if _, std := javaStdRoots[root]; std {
		return true
	}
	if strings.HasPrefix(source, "com.sun.") || source == "com.sun" {
		return true
	}
	return pkgRoot == "" || root != pkgRoot
}

func firstDotSegment(s string) string {
	if idx := strings.Index(s, "."); idx >= 0 {
		return s[:idx]
	}
	return s
}

func stripJavaComments(src string) string {
	src = reJavaComment.ReplaceAllStringFunc(src, func(m string) string {
		return strings.Repeat("\n", strings.Count(m, "\n"))
	})
	lines := strings.Split(src, "\n")
	for i, line := range lines {
		if idx := indexOutsideStrings(line, "//"); idx >= 0 {
			lines[i] = line[:idx]
		}
	}
	return strings.Join(lines, "\n")
}
