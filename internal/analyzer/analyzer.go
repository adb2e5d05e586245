package analyzer

import (
	"context"
	"fmt"
	"log"
	"os"
	"runtime"
	"sort"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"archmap/internal/config"
	"archmap/internal/graph"
	"archmap/internal/health"
	"archmap/internal/layer"
	"archmap/internal/parser"
	"archmap/internal/scan"
	t "archmap/internal/types"
)

// parseCacheSize bounds the number of ParsedFiles kept across runs.
const parseCacheSize = 2048

type cacheKey struct {
	path  string
	size  int64
	mtime int64
}

// Analyzer runs the scan→parse→graph→layers→health pipeline. It is safe
// for repeated use; parse results are cached across runs keyed by
// (path, size, mtime) so watch-mode re-analysis only re-parses changes.
type Analyzer struct {
	cfg      config.Project
	registry *parser.Registry
	workers  int

	// cache is goroutine-safe; workers share it directly.
	cache *lru.Cache[cacheKey, t.ParsedFile]
}

// New builds an Analyzer for the given project configuration.
func New(cfg config.Project) (*Analyzer, error) {
	registry := parser.NewRegistry()
	if registry.Empty() {
		return nil, fmt.Errorf("analyzer: empty parser registry")
	}
	if !registry.Supports(cfg.Extensions) {
		return nil, fmt.Errorf("analyzer: no parser handles any of the configured extensions %v", cfg.Extensions)
	}
	cache, err := lru.New[cacheKey, t.ParsedFile](parseCacheSize)
	if err != nil {
		return nil, err
	}
	workers := runtime.NumCPU()
	if workers > 8 {
		workers = 8
	}
	if workers < 1 {
		workers = 1
	}
	return &Analyzer{
		cfg:      cfg,
		registry: registry,
		workers:  workers,
		cache:    cache,
	}, nil
}

// Analyze runs the full pipeline over root. Per-file parse failures are
// collected, never raised; only an unreadable root or a misconfigured
// registry is fatal. An empty scan yields an empty result with a
// warning, not an error.
func (a *Analyzer) Analyze(ctx context.Context, root string) (*t.AnalysisResult, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("analyzer: root %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("analyzer: root %s is not a directory", root)
	}
	fs, err := scan.NewSafeFS(root)
	if err != nil {
		return nil, fmt.Errorf("analyzer: %w", err)
	}

	files, err := scan.Files(root, scan.Options{
		Extensions: a.cfg.Extensions,
		Ignore:     a.cfg.Ignore,
	})
	if err != nil {
		return nil, fmt.Errorf("analyzer: scan: %w", err)
	}
	if len(files) == 0 {
		log.Printf("analyzer: no matching files under %s", root)
	}

	parsed := a.parseAll(ctx, fs, files)

	g := graph.Build(parsed)
	layers := layer.Classify(g, a.cfg.GroupingRules(), a.cfg.Styles)
	summary := health.Summarize(g, layers)

	return &t.AnalysisResult{
		Root:        root,
		Graph:       g,
		Layers:      layers,
		GeneratedAt: time.Now().UTC(),
		FileCount:   len(g.Nodes),
		EdgeCount:   len(g.Edges),
		Health:      summary,
	}, nil
}

// parseAll dispatches files to parsers on a bounded worker pool. Per-file
// work is pure given the content, so order of completion does not matter;
// results are re-sorted by path for deterministic output.
func (a *Analyzer) parseAll(ctx context.Context, fs *scan.SafeFS, files []t.SourceFile) []t.ParsedFile {
	jobs := make(chan t.SourceFile)
	results := make(chan t.ParsedFile, len(files))

	var wg sync.WaitGroup
	for w := 0; w < a.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for file := range jobs {
				results <- a.parseOne(fs, file)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, f := range files {
			select {
			case <-ctx.Done():
				return
			case jobs <- f:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	parsed := make([]t.ParsedFile, 0, len(files))
	for pf := range results {
		parsed = append(parsed, pf)
	}
	sort.Slice(parsed, func(i, j int) bool {
		return parsed[i].File.RelPath < parsed[j].File.RelPath
	})
	return parsed
}

func (a *Analyzer) parseOne(fs *scan.SafeFS, file t.SourceFile) t.ParsedFile {
	key := cacheKey{path: file.RelPath, size: file.Size}
	if st, err := os.Stat(file.AbsPath); err == nil {
		key.mtime = st.ModTime().UnixNano()
	}
	if cached, ok := a.cache.Get(key); ok {
		return cached
	}

	p, ok := a.registry.For(file.RelPath)
	if !ok {
		return t.ParsedFile{
			File:   file,
			Errors: []string{fmt.Sprintf("no parser for %s", file.RelPath)},
		}
	}
	content, err := fs.ReadFile(file.RelPath)
	if err != nil {
		return t.ParsedFile{
			File:   file,
			Errors: []string{fmt.Sprintf("read %s: %v", file.RelPath, err)},
		}
	}
	pf := p.Parse(content, file)
	a.cache.Add(key, pf)
	return pf
}
