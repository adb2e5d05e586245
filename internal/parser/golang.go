package parser

import (
	"regexp"
	"strings"

	t "archmap/internal/types"
)

var (
	reGoImportSingle = regexp.MustCompile(`^\s*import\s+(?:([\w.]+)\s+)?"([^"]+)"`)
	reGoImportBlock  = regexp.MustCompile(`^\s*import\s*\(`)
	reGoImportLine   = regexp.MustCompile(`^\s*(?:([\w.]+)\s+)?"([^"]+)"`)
	reGoFunc         = regexp.MustCompile(`^func\s+(?:\([^)]*\)\s*)?([A-Z]\w*)`)
	reGoType         = regexp.MustCompile(`^type\s+([A-Z]\w*)`)
	reGoBlockComment = regexp.MustCompile(`(?s)/\*.*?\*/`)
)

// goHostingPrefixes marks import roots that always point at remote modules
// even when the heuristic first-segment check would not fire.
var goHostingPrefixes = []string{
	"github.com/", "gitlab.com/", "bitbucket.org/",
	"golang.org/", "google.golang.org/", "gopkg.in/", "go.uber.org/",
	"k8s.io/", "sigs.k8s.io/",
}

// goStdlib is the fixed standard-library package list consulted when the
// first path segment carries no dot. Covers the top-level namespaces of
// the distribution.
var goStdlib = map[string]struct{}{
	"archive": {}, "bufio": {}, "builtin": {}, "bytes": {}, "cmp": {},
	"compress": {}, "container": {}, "context": {}, "crypto": {},
	"database": {}, "debug": {}, "embed": {}, "encoding": {}, "errors": {},
	"expvar": {}, "flag": {}, "fmt": {}, "go": {}, "hash": {}, "html": {},
	"image": {}, "index": {}, "io": {}, "iter": {}, "log": {}, "maps": {},
	"math": {}, "mime": {}, "net": {}, "os": {}, "path": {}, "plugin": {},
	"reflect": {}, "regexp": {}, "runtime": {}, "slices": {}, "sort": {},
	"strconv": {}, "strings": {}, "structs": {}, "sync": {}, "syscall": {},
	"testing": {}, "text": {}, "time": {}, "unicode": {}, "unique": {},
	"unsafe": {},
}

// GoParser is a lexical scanner for Go import blocks and exported
// top-level identifiers.
type GoParser struct{}

func NewGoParser() *GoParser { return &GoParser{} }

func (*GoParser) CanParse(path string) bool {
	return extOf(path) == ".go"
}

func (p *GoParser) Parse(content []byte, file t.SourceFile) t.ParsedFile {
	pf := t.ParsedFile{File: file}
	src := stripGoComments(string(content))
	lines := strings.Split(src, "\n")

	inBlock := false
	for i, line := range lines {
		lineNo := i + 1
		if inBlock {
			if strings.HasPrefix(strings.TrimSpace(line), ")") {
				inBlock = false
				continue
			}
			if m := reGoImportLine.FindStringSubmatch(line); m != nil {
				pf.Imports = append(pf.Imports, goImport(m[1], m[2], lineNo))
			}
			continue
		}
		if reGoImportBlock.MatchString(line) {
			inBlock = true
			continue
		}
		if m := reGoImportSingle.FindStringSubmatch(line); m != nil {
			pf.Imports = append(pf.Imports, goImport(m[1], m[2], lineNo))
			continue
		}
		if m := reGoFunc.FindStringSubmatch(line); m != nil {
			pf.Exports = append(pf.Exports, m[1])
			continue
		}
		if m := reGoType.FindStringSubmatch(line); m != nil {
			pf.Exports = append(pf.Exports, m[1])
		}
	}
	return pf
}

func goImport(alias, path string, line int) t.ImportRecord {
	rec := t.ImportRecord{
		Source: path,
		Kind:   t.KindGoImport,
		Line:   line,
	}
	switch {
	case alias != "" && alias != "_" && alias != ".":
		rec.Names = []string{alias}
	default:
		if idx := strings.LastIndex(path, "/"); idx >= 0 {
			rec.Names = []string{path[idx+1:]}
		} else {
			rec.Names = []string{path}
		}
	}
	rec.IsRelative = strings.HasPrefix(path, "./") || strings.HasPrefix(path, "../")
	rec.IsExternal = !rec.IsRelative && goExternal(path)
	return rec
}

// goExternal reports whether path names a remote module: the first slash
// segment contains a dot (module-path form) or matches a known hosting
// prefix. Bare first segments resolve against the standard-library list
// and are never external.
func goExternal(path string) bool {
	for _, prefix := range goHostingPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	first := path
	if idx := strings.Index(path, "/"); idx >= 0 {
		first = path[:idx]
	}
	if strings.Contains(first, ".") {
		return true
	}
	if _, std := goStdlib[first]; std {
		return false
	}
	// Bare non-stdlib roots are treated as project-local paths.
	return false
}

func stripGoComments(src string) string {
	src = reGoBlockComment.ReplaceAllStringFunc(src, func(m string) string {
		return strings.Repeat("\n", strings.Count(m, "\n"))
	})
	lines := strings.Split(src, "\n")
	for i, line := range lines {
		// Cut line comments outside string literals.
		if idx := indexOutsideStrings(line, "//"); idx >= 0 {
			lines[i] = line[:idx]
		}
	}
	return strings.Join(lines, "\n")
}

func indexOutsideStrings(line, marker string) int {
	inStr := false
	var quote byte
	for i := 0; i+len(marker) <= len(line); i++ {
		c := line[i]
		if inStr {
			if c == '\\' {
				i++
				continue
			}
			if c == quote {
				inStr = false
			}
			continue
		}
		switch c {
		case '"', '\'', '`':
			inStr = true
			quote = c
		default:
			if line[i:i+len(marker)] == marker {
				return i
			}
		}
	}
	return -1
}
