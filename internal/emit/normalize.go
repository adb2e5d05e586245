package emit

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// volatileAttrs are attributes injected by emitters or editors that carry
// no structural meaning; they are stripped before comparison. Future
// emitters adding volatile attributes must be listed here.
var volatileAttrs = []*regexp.Regexp{
	regexp.MustCompile(`\smodified="[^"]*"`),
	regexp.MustCompile(`\setag="[^"]*"`),
	regexp.MustCompile(`\sagent="[^"]*"`),
}

var interTagWS = regexp.MustCompile(`>\s+<`)

// NormalizeXML prepares an emitted XML document for change detection:
// volatile attributes are stripped, inter-tag whitespace collapsed, and
// line endings normalized.
func NormalizeXML(doc string) string {
	doc = strings.ReplaceAll(doc, "\r\n", "\n")
	for _, re := range volatileAttrs {
		doc = re.ReplaceAllString(doc, "")
	}
	doc = interTagWS.ReplaceAllString(doc, "><")
	return strings.TrimSpace(doc)
}

// DiffCache stores the previously emitted diagram so re-runs can report
// whether anything structural changed.
type DiffCache struct {
	path string
}

// NewDiffCache places the cache file inside dir.
func NewDiffCache(dir string) *DiffCache {
	return &DiffCache{path: filepath.Join(dir, ".archmap.cache")}
}

// Changed compares doc to the cached copy after normalization, then
// replaces the cache. The first run always reports changed.
func (c *DiffCache) Changed(doc string) (bool, error) {
	prev, err := os.ReadFile(c.path)
	if err != nil && !os.IsNotExist(err) {
		return false, err
	}
	changed := err != nil || NormalizeXML(string(prev)) != NormalizeXML(doc)
	if !changed {
		return false, nil
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return true, err
	}
	return true, os.WriteFile(c.path, []byte(doc), 0o644)
}
