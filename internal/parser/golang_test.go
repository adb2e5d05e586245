package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	t "archmap/internal/types"
)

func parseGo(src, rel string) t.ParsedFile {
	p := NewGoParser()
	return p.Parse([]byte(src), t.SourceFile{
		AbsPath:  "/repo/" + rel,
		RelPath:  rel,
		Size:     int64(len(src)),
		Language: t.LangGo,
	})
}

func TestGoImportBlock(tt *testing.T) {
	src := `package main

import (
	"fmt"
	"net/http"

	lru "github.com/hashicorp/golang-lru/v2"
	_ "github.com/jackc/pgx/v5/stdlib"
)

import "strings"
`
	pf := parseGo(src, "main.go")
	require.Len(tt, pf.Imports, 5)

	assert.Equal(tt, "fmt", pf.Imports[0].Source)
	assert.Equal(tt, t.KindGoImport, pf.Imports[0].Kind)
	assert.Equal(tt, []string{"fmt"}, pf.Imports[0].Names)
	assert.False(tt, pf.Imports[0].IsExternal)
	assert.Equal(tt, 4, pf.Imports[0].Line)

	assert.Equal(tt, "net/http", pf.Imports[1].Source)
	assert.Equal(tt, []string{"http"}, pf.Imports[1].Names)
	assert.False(tt, pf.Imports[1].IsExternal)

	assert.Equal(tt, "github.com/hashicorp/golang-lru/v2", pf.Imports[2].Source)
	assert.Equal(tt, []string{"lru"}, pf.Imports[2].Names)
	assert.True(tt, pf.Imports[2].IsExternal)

	// Blank alias falls back to the last path segment.
	assert.Equal(tt, []string{"stdlib"}, pf.Imports[3].Names)
	assert.True(tt, pf.Imports[3].IsExternal)

	assert.Equal(tt, "strings", pf.Imports[4].Source)
	assert.Equal(tt, 11, pf.Imports[4].Line)
}

func TestGoRelativeAndExternalRules(tt *testing.T) {
	src := `package x

import (
	"./local"
	"k8s.io/client-go/kubernetes"
	"myproject/internal/util"
)
`
	pf := parseGo(src, "x.go")
	require.Len(tt, pf.Imports, 3)
	assert.True(tt, pf.Imports[0].IsRelative)
	assert.False(tt, pf.Imports[0].IsExternal)
	assert.True(tt, pf.Imports[1].IsExternal)
	// Bare non-stdlib roots count as project-local paths.
	assert.False(tt, pf.Imports[2].IsExternal)
	assert.False(tt, pf.Imports[2].IsRelative)
}

func TestGoExports(tt *testing.T) {
	src := `package store

// Comment with import "fake" inside.

type Store struct{}

type internalThing struct{}

func New() *Store { return nil }

func (s *Store) Get(key string) string { return "" }

func (s *Store) unexported() {}

func helper() {}
`
	pf := parseGo(src, "store.go")
	assert.Equal(tt, []string{"Store", "New", "Get"}, pf.Exports)
	assert.Empty(tt, pf.Imports)
}

func TestGoCommentsStripped(tt *testing.T) {
	src := `package x

/*
import "hidden"
*/
// import "also-hidden"
import "fmt" // trailing comment
`
	pf := parseGo(src, "x.go")
	require.Len(tt, pf.Imports, 1)
	assert.Equal(tt, "fmt", pf.Imports[0].Source)
	assert.Equal(tt, 7, pf.Imports[0].Line)
}
