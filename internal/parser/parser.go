package parser

import (
	"path/filepath"
	"strings"

	t "archmap/internal/types"
)

// Parser extracts imports and exports from one source language family.
//
// Parse must never fail on malformed input: problems are recorded as
// strings in ParsedFile.Errors and whatever was recovered is returned.
type Parser interface {
	// CanParse reports whether this parser handles the file's extension.
	CanParse(path string) bool
	// Parse extracts a ParsedFile from raw content. Line numbers are
	// 1-based over the original bytes.
	Parse(content []byte, file t.SourceFile) t.ParsedFile
}

// Registry dispatches files to parsers by extension.
type Registry struct {
	parsers []Parser
}

// NewRegistry returns a registry with the default parser set.
func NewRegistry() *Registry {
	return &Registry{parsers: []Parser{
		NewTypeScriptParser(),
		NewPythonParser(),
		NewGoParser(),
		NewJavaParser(),
	}}
}

// Register appends a parser; later registrations do not override earlier
// ones for extensions both claim.
func (r *Registry) Register(p Parser) {
	if p == nil {
		return
	}
	r.parsers = append(r.parsers, p)
}

// For returns the first parser claiming path's extension.
func (r *Registry) For(path string) (Parser, bool) {
	for _, p := range r.parsers {
		if p.CanParse(path) {
			return p, true
		}
	}
	return nil, false
}

// Empty reports whether no parsers are registered.
func (r *Registry) Empty() bool {
	return r == nil || len(r.parsers) == 0
}

// Supports reports whether any registered parser claims at least one of
// the given extensions.
func (r *Registry) Supports(exts []string) bool {
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		for _, p := range r.parsers {
			if p.CanParse("probe" + ext) {
				return true
			}
		}
	}
	return false
}

func extOf(path string) string {
	return strings.ToLower(filepath.Ext(path))
}
