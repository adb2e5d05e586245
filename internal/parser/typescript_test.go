package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	t "archmap/internal/types"
)

func parseTS(src string, rel string) t.ParsedFile {
	p := NewTypeScriptParser()
	return p.Parse([]byte(src), t.SourceFile{
		AbsPath:  "/repo/" + rel,
		RelPath:  rel,
		Size:     int64(len(src)),
		Language: t.LangTypeScript,
	})
}

func TestTypeScriptImportKinds(tt *testing.T) {
	src := `import def from './b';
import { one, two as alias } from './c';
import * as ns from 'lodash';
import '@scope/pkg/styles.css';
const legacy = require('./d');
const lazy = import('./e');
export * from './f';
export { g as gee } from './g';
`
	pf := parseTS(src, "src/a.ts")
	require.Empty(tt, pf.Errors)
	require.Len(tt, pf.Imports, 8)

	assert.Equal(tt, t.KindES6Default, pf.Imports[0].Kind)
	assert.Equal(tt, "./b", pf.Imports[0].Source)
	assert.Equal(tt, []string{"def"}, pf.Imports[0].Names)
	assert.Equal(tt, 1, pf.Imports[0].Line)
	assert.True(tt, pf.Imports[0].IsRelative)
	assert.False(tt, pf.Imports[0].IsExternal)

	assert.Equal(tt, t.KindES6Named, pf.Imports[1].Kind)
	assert.Equal(tt, []string{"one", "alias"}, pf.Imports[1].Names)
	assert.Equal(tt, 2, pf.Imports[1].Line)

	assert.Equal(tt, t.KindES6Namespace, pf.Imports[2].Kind)
	assert.Equal(tt, "lodash", pf.Imports[2].Source)
	assert.True(tt, pf.Imports[2].IsExternal)

	// Side-effect import: named kind, no names.
	assert.Equal(tt, t.KindES6Named, pf.Imports[3].Kind)
	assert.Empty(tt, pf.Imports[3].Names)
	assert.True(tt, pf.Imports[3].IsExternal)

	assert.Equal(tt, t.KindCommonJS, pf.Imports[4].Kind)
	assert.Equal(tt, "./d", pf.Imports[4].Source)
	assert.Equal(tt, 5, pf.Imports[4].Line)

	assert.Equal(tt, t.KindDynamic, pf.Imports[5].Kind)
	assert.Equal(tt, "./e", pf.Imports[5].Source)

	assert.Equal(tt, t.KindReExport, pf.Imports[6].Kind)
	assert.Equal(tt, "./f", pf.Imports[6].Source)
	assert.Empty(tt, pf.Imports[6].Names)

	assert.Equal(tt, t.KindReExport, pf.Imports[7].Kind)
	assert.Equal(tt, []string{"gee"}, pf.Imports[7].Names)
}

func TestTypeScriptExports(tt *testing.T) {
	src := `export default function run() {}
export const a = 1, b = 2;
export function helper() {}
export class Widget {}
export { g as gee } from './g';
`
	pf := parseTS(src, "src/mod.ts")
	require.Empty(tt, pf.Errors)
	assert.Contains(tt, pf.Exports, "default")
	assert.Contains(tt, pf.Exports, "a")
	assert.Contains(tt, pf.Exports, "b")
	assert.Contains(tt, pf.Exports, "helper")
	assert.Contains(tt, pf.Exports, "Widget")
	assert.Contains(tt, pf.Exports, "gee")
}

func TestTypeScriptBrokenFileStillYieldsImports(tt *testing.T) {
	src := `import ok from './b';
import { from './broken
const x = 1;
`
	pf := parseTS(src, "src/broken.ts")
	assert.NotEmpty(tt, pf.Errors)

	found := false
	for _, imp := range pf.Imports {
		if imp.Source == "./b" {
			found = true
		}
	}
	assert.True(tt, found, "recovered import './b' expected, got %v", pf.Imports)
}

func TestTypeScriptJSXAndDecorators(tt *testing.T) {
	src := `import React from 'react';

@observer
export class View extends React.Component {
  render() {
    return <div onClick={() => import('./lazy')}>hi</div>;
  }
}
`
	pf := parseTS(src, "src/view.tsx")
	require.Len(tt, pf.Imports, 2)
	assert.Equal(tt, "react", pf.Imports[0].Source)
	assert.Equal(tt, t.KindDynamic, pf.Imports[1].Kind)
	assert.Equal(tt, "./lazy", pf.Imports[1].Source)
	assert.Contains(tt, pf.Exports, "View")
}

func TestTypeScriptScopedPackageIsExternal(tt *testing.T) {
	pf := parseTS(`import { x } from '@scope/pkg/sub';`, "src/a.ts")
	require.Len(tt, pf.Imports, 1)
	assert.True(tt, pf.Imports[0].IsExternal)
	assert.False(tt, pf.Imports[0].IsRelative)
}

func TestTypeScriptCanParse(tt *testing.T) {
	p := NewTypeScriptParser()
	for _, path := range []string{"a.ts", "a.tsx", "a.js", "a.jsx", "a.mjs", "a.cjs", "a.mts", "a.cts"} {
		assert.True(tt, p.CanParse(path), path)
	}
	assert.False(tt, p.CanParse("a.py"))
}
