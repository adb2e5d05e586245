package parser

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	t "archmap/internal/types"
)

// maxSyntaxErrors bounds how many error messages one file can accumulate.
const maxSyntaxErrors = 10

var tsExtensions = map[string]struct{}{
	".ts": {}, ".tsx": {}, ".js": {}, ".jsx": {},
	".mjs": {}, ".cjs": {}, ".mts": {}, ".cts": {},
}

// TypeScriptParser extracts imports/exports from TypeScript and JavaScript
// sources using a full error-recovering grammar, so partially broken files
// still yield whatever could be parsed.
type TypeScriptParser struct{}

func NewTypeScriptParser() *TypeScriptParser { return &TypeScriptParser{} }

func (*TypeScriptParser) CanParse(path string) bool {
	_, ok := tsExtensions[extOf(path)]
	return ok
}

// grammarFor picks the grammar flavor from the extension: .tsx gets the JSX
// variant, other TS extensions the plain TypeScript grammar, and JS
// extensions the JavaScript grammar (which includes JSX).
func grammarFor(ext string) *sitter.Language {
	switch ext {
	case ".tsx":
		return tsx.GetLanguage()
	case ".ts", ".mts", ".cts":
		return typescript.GetLanguage()
	default:
		return javascript.GetLanguage()
	}
}

func (p *TypeScriptParser) Parse(content []byte, file t.SourceFile) t.ParsedFile {
	pf := t.ParsedFile{File: file}

	parser := sitter.NewParser()
	parser.SetLanguage(grammarFor(extOf(file.RelPath)))
	tree, err := parser.ParseCtx(context.Background(), nil, content)
	if err != nil {
		pf.Errors = append(pf.Errors, fmt.Sprintf("parse %s: %v", file.RelPath, err))
		return pf
	}
	defer tree.Close()

	root := tree.RootNode()
	p.walk(root, content, &pf)
	return pf
}

func (p *TypeScriptParser) walk(n *sitter.Node, src []byte, pf *t.ParsedFile) {
	switch n.Type() {
	case "import_statement":
		p.importStatement(n, src, pf)
	case "export_statement":
		p.exportStatement(n, src, pf)
	case "call_expression":
		p.callExpression(n, src, pf)
	case "ERROR":
		if len(pf.Errors) < maxSyntaxErrors {
			pf.Errors = append(pf.Errors,
				fmt.Sprintf("syntax error at line %d", n.StartPoint().Row+1))
		}
	}
	if n.IsMissing() && len(pf.Errors) < maxSyntaxErrors {
		pf.Errors = append(pf.Errors,
			fmt.Sprintf("missing %s at line %d", n.Type(), n.StartPoint().Row+1))
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		p.walk(n.Child(i), src, pf)
	}
}

// importStatement handles static `import ... from 'x'` declarations and
// side-effect imports.
func (p *TypeScriptParser) importStatement(n *sitter.Node, src []byte, pf *t.ParsedFile) {
	source, ok := stringValue(n.ChildByFieldName("source"), src)
	if !ok {
		return
	}
	rec := t.ImportRecord{
		Source: source,
		Kind:   t.KindES6Named, // side-effect imports record as named with no names
		Line:   int(n.StartPoint().Row) + 1,
	}
	if clause := childOfType(n, "import_clause"); clause != nil {
		for i := 0; i < int(clause.NamedChildCount()); i++ {
			c := clause.NamedChild(i)
			switch c.Type() {
			case "identifier":
				rec.Kind = t.KindES6Default
				rec.Names = append(rec.Names, c.Content(src))
			case "namespace_import":
				if rec.Kind != t.KindES6Default {
					rec.Kind = t.KindES6Namespace
				}
				if id := childOfType(c, "identifier"); id != nil {
					rec.Names = append(rec.Names, id.Content(src))
				}
			case "named_imports":
				if rec.Kind != t.KindES6Default {
					rec.Kind = t.KindES6Named
				}
				rec.Names = append(rec.Names, specifierNames(c, src, "import_specifier")...)
			}
		}
	}
	classifyJS(&rec)
	pf.Imports = append(pf.Imports, rec)
}

// exportStatement handles re-exports (`export ... from 'x'`) and export
// declarations.
func (p *TypeScriptParser) exportStatement(n *sitter.Node, src []byte, pf *t.ParsedFile) {
	if source, ok := stringValue(n.ChildByFieldName("source"), src); ok {
		rec := t.ImportRecord{
			Source: source,
			Kind:   t.KindReExport,
			Line:   int(n.StartPoint().Row) + 1,
		}
		if clause := childOfType(n, "export_clause"); clause != nil {
			names := specifierNames(clause, src, "export_specifier")
			rec.Names = names
			pf.Exports = append(pf.Exports, names...)
		}
		classifyJS(&rec)
		pf.Imports = append(pf.Imports, rec)
		return
	}

	if hasChildToken(n, "default") {
		pf.Exports = append(pf.Exports, "default")
		return
	}

	if clause := childOfType(n, "export_clause"); clause != nil {
		pf.Exports = append(pf.Exports, specifierNames(clause, src, "export_specifier")...)
		return
	}

	decl := n.ChildByFieldName("declaration")
	if decl == nil {
		return
	}
	switch decl.Type() {
	case "function_declaration", "generator_function_declaration",
		"class_declaration", "abstract_class_declaration",
		"interface_declaration", "enum_declaration", "type_alias_declaration":
		if name := decl.ChildByFieldName("name"); name != nil {
			pf.Exports = append(pf.Exports, name.Content(src))
		}
	case "lexical_declaration", "variable_declaration":
		for i := 0; i < int(decl.NamedChildCount()); i++ {
			d := decl.NamedChild(i)
			if d.Type() != "variable_declarator" {
				continue
			}
			if name := d.ChildByFieldName("name"); name != nil && name.Type() == "identifier" {
				pf.Exports = append(pf.Exports, name.Content(src))
			}
		}
	}
}

// callExpression handles require('x') and dynamic import('x').
func (p *TypeScriptParser) callExpression(n *sitter.Node, src []byte, pf *t.ParsedFile) {
	fn := n.ChildByFieldName("function")
	if fn == nil {
		return
	}
	var kind t.ImportKind
	switch {
	case fn.Type() == "identifier" && fn.Content(src) == "require":
		kind = t.KindCommonJS
	case fn.Type() == "import":
		kind = t.KindDynamic
	default:
		return
	}
	args := n.ChildByFieldName("arguments")
	if args == nil || args.NamedChildCount() == 0 {
		return
	}
	source, ok := stringValue(args.NamedChild(0), src)
	if !ok {
		return
	}
	rec := t.ImportRecord{
		Source: source,
		Kind:   kind,
		Line:   int(n.StartPoint().Row) + 1,
	}
	classifyJS(&rec)
	pf.Imports = append(pf.Imports, rec)
}

// classifyJS applies the relative/external rule for ECMAScript sources:
// relative iff the source starts with '.' or '/', external otherwise
// (including scoped packages starting with '@').
func classifyJS(rec *t.ImportRecord) {
	rec.IsRelative = strings.HasPrefix(rec.Source, ".") || strings.HasPrefix(rec.Source, "/")
	rec.IsExternal = !rec.IsRelative
}

func stringValue(n *sitter.Node, src []byte) (string, bool) {
	if n == nil || n.Type() != "string" {
		return "", false
	}
	raw := n.Content(src)
	if len(raw) >= 2 {
		raw = raw[1 : len(raw)-1]
	}
	return raw, true
}

// specifierNames collects exported/imported names from a clause, preferring
// the alias when one is present.
func specifierNames(clause *sitter.Node, src []byte, specType string) []string {
	var names []string
	for i := 0; i < int(clause.NamedChildCount()); i++ {
		spec := clause.NamedChild(i)
		if spec.Type() != specType {
			continue
		}
		if alias := spec.ChildByFieldName("alias"); alias != nil {
			names = append(names, alias.Content(src))
			continue
		}
		if name := spec.ChildByFieldName("name"); name != nil {
			names = append(names, name.Content(src))
		}
	}
	return names
}

func childOfType(n *sitter.Node, typ string) *sitter.Node {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if c := n.NamedChild(i); c.Type() == typ {
			return c
		}
	}
	return nil
}

func hasChildToken(n *sitter.Node, token string) bool {
	for i := 0; i < int(n.ChildCount()); i++ {
		if n.Child(i).Type() == token {
			return true
		}
	}
	return false
}
