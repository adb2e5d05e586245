package scan

import "testing"

func TestGlobToRegexp(t *testing.T) {
	cases := []struct {
		pattern string
		path    string
		want    bool
	}{
		{"node_modules/**", "node_modules/lodash/index.js", true},
		{"node_modules/**", "src/node_modules.ts", false},
		{"*.ts", "app.ts", true},
		{"*.ts", "src/app.ts", false},
		{"**/*.test.ts", "src/deep/app.test.ts", true},
		{"**/*.test.ts", "app.test.ts", false},
		{"src/*/gen", "src/api/gen", true},
		{"src/*/gen", "src/api/v2/gen", false},
		{"dist/**", "dist", false},
		{"dist/**", "dist/x", true},
		{"a.b", "a.b", true},
		{"a.b", "axb", false},
	}
	for _, c := range cases {
		re, err := GlobToRegexp(c.pattern, false)
		if err != nil {
			t.Fatalf("compile %q: %v", c.pattern, err)
		}
		if got := re.MatchString(c.path); got != c.want {
			t.Errorf("pattern %q vs %q: got %v want %v (re=%s)", c.pattern, c.path, got, c.want, re)
		}
	}
}

func TestGlobToRegexpCaseInsensitive(t *testing.T) {
	re, err := GlobToRegexp("SRC/**", true)
	if err != nil {
		t.Fatal(err)
	}
	if !re.MatchString("src/app.ts") {
		t.Fatalf("expected case-insensitive match, re=%s", re)
	}
}

func TestCompileIgnoresDropsBadPatterns(t *testing.T) {
	res := CompileIgnores([]string{"", "  ", "dist/**"})
	if len(res) != 1 {
		t.Fatalf("got %d matchers, want 1", len(res))
	}
}
