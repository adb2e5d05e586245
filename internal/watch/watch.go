package watch

import (
	"context"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"archmap/internal/analyzer"
	"archmap/internal/scan"
	t "archmap/internal/types"
)

// debounce is the quiet period after the last relevant event before
// re-analysis runs.
const debounce = 400 * time.Millisecond

// Watcher re-analyzes a repository whenever relevant source files change
// and hands each result to OnResult.
type Watcher struct {
	root     string
	analyzer *analyzer.Analyzer
	exts     map[string]struct{}
	ignores  []*regexp.Regexp
	// OnResult receives every successful re-analysis, including the
	// initial one.
	OnResult func(*t.AnalysisResult)
}

func New(root string, a *analyzer.Analyzer, extensions, ignore []string) *Watcher {
	exts := make(map[string]struct{}, len(extensions))
	for _, e := range extensions {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		exts[e] = struct{}{}
	}
	return &Watcher{
		root:     root,
		analyzer: a,
		exts:     exts,
		ignores:  scan.CompileIgnores(ignore),
	}
}

// Run analyzes once, then blocks watching until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.analyze(ctx); err != nil {
		return err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := w.addRecursive(fw, w.root); err != nil {
		return err
	}

	var timer *time.Timer
	fire := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			if ev.Op.Has(fsnotify.Create) {
				if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
					_ = w.addRecursive(fw, ev.Name)
				}
			}
			if timer == nil {
				timer = time.AfterFunc(debounce, func() {
					select {
					case fire <- struct{}{}:
					default:
					}
				})
			} else {
				timer.Reset(debounce)
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			log.Printf("watch: %v", err)
		case <-fire:
			timer = nil
			if err := w.analyze(ctx); err != nil {
				log.Printf("watch: re-analysis failed: %v", err)
			}
		}
	}
}

func (w *Watcher) analyze(ctx context.Context) error {
	started := time.Now()
	result, err := w.analyzer.Analyze(ctx, w.root)
	if err != nil {
		return err
	}
	log.Printf("watch: analyzed %d files in %s", result.FileCount, time.Since(started).Round(time.Millisecond))
	if w.OnResult != nil {
		w.OnResult(result)
	}
	return nil
}

// relevant filters events down to tracked extensions outside ignored
// paths.
func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	rel, err := filepath.Rel(w.root, ev.Name)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	for _, re := range w.ignores {
		if re.MatchString(rel) {
			return false
		}
	}
	ext := strings.ToLower(filepath.Ext(rel))
	if ext == "" {
		// Directory events matter for newly created trees.
		return ev.Op.Has(fsnotify.Create)
	}
	_, ok := w.exts[ext]
	return ok
}

func (w *Watcher) addRecursive(fw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		rel, rerr := filepath.Rel(root, path)
		if rerr == nil && rel != "." {
			rel = filepath.ToSlash(rel)
			for _, re := range w.ignores {
				if re.MatchString(rel) {
					return filepath.SkipDir
				}
			}
			base := d.Name()
			if base == ".git" || base == "node_modules" || base == "vendor" {
				return filepath.SkipDir
			}
		}
		return fw.Add(path)
	})
}
