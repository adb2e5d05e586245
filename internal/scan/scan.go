package scan

import (
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	t "archmap/internal/types"
)

var debugEnabled = os.Getenv("ARCHMAP_DEBUG") != ""

func debugf(format string, args ...any) {
	if debugEnabled {
		log.Printf(format, args...)
	}
}

// Options controls a repository scan.
type Options struct {
	// Extensions is the allow-list of file extensions. Entries are
	// case-insensitive and may be given with or without a leading dot.
	Extensions []string
	// Ignore holds glob patterns matched against root-relative paths.
	Ignore []string
}

// Files walks root and returns the source files to analyze, sorted by
// root-relative path. A file is included iff its extension (case-folded)
// is allowed and no ignore pattern matches its forward-slash relative
// path. Symlinks are not followed; unreadable directories are skipped.
func Files(root string, opts Options) ([]t.SourceFile, error) {
	allowed := normalizeExtensions(opts.Extensions)
	if len(allowed) == 0 {
		return nil, nil
	}
	ignores := CompileIgnores(opts.Ignore)

	var files []t.SourceFile
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			debugf("scan: skipping unreadable entry %s: %v", path, err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		rel, rerr := filepath.Rel(root, path)
		if rerr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			if rel != "." && ignored(ignores, rel) {
				return filepath.SkipDir
			}
			return nil
		}
		ext := strings.ToLower(filepath.Ext(rel))
		if _, ok := allowed[ext]; !ok {
			return nil
		}
		if ignored(ignores, rel) {
			return nil
		}
		size := int64(0)
		if fi, e := os.Stat(path); e == nil {
			size = fi.Size()
		}
		lang, _ := t.LanguageForExtension(ext)
		files = append(files, t.SourceFile{
			AbsPath:  path,
			RelPath:  rel,
			Size:     size,
			Language: lang,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(files, func(i, j int) bool { return files[i].RelPath < files[j].RelPath })
	return files, nil
}

func ignored(ignores []*regexp.Regexp, rel string) bool {
	for _, re := range ignores {
		if re.MatchString(rel) {
			return true
		}
	}
	return false
}

func normalizeExtensions(exts []string) map[string]struct{} {
	allowed := make(map[string]struct{}, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		allowed[ext] = struct{}{}
	}
	return allowed
}
