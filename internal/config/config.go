package config

import (
	"errors"
	"log"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"archmap/internal/layer"
)

// DefaultExtensions covers every language the parser registry handles.
var DefaultExtensions = []string{
	".ts", ".tsx", ".js", ".jsx", ".mjs", ".cjs", ".mts", ".cts",
	".py", ".pyw", ".pyi", ".go", ".java",
}

// DefaultIgnore excludes dependency and build output trees.
var DefaultIgnore = []string{
	"node_modules/**", "vendor/**", "dist/**", "build/**",
	".git/**", "**/__pycache__/**", "**/*.d.ts",
}

var reHexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Output controls where rendered artifacts go; the analysis core only
// passes it through.
type Output struct {
	Directory string   `mapstructure:"directory"`
	Filename  string   `mapstructure:"filename"`
	Formats   []string `mapstructure:"formats"`
}

// Grouping is one user classification rule as written in the config file.
type Grouping struct {
	Pattern string `mapstructure:"pattern"`
	Label   string `mapstructure:"label"`
	Color   string `mapstructure:"color"`
}

// Project is the resolved project configuration.
type Project struct {
	Ignore     []string          `mapstructure:"ignore"`
	Grouping   []Grouping        `mapstructure:"grouping"`
	Styles     map[string]string `mapstructure:"styles"`
	Extensions []string          `mapstructure:"extensions"`
	Output     Output            `mapstructure:"output"`
}

// Default returns the configuration used when no project file exists.
func Default() Project {
	return Project{
		Ignore:     append([]string(nil), DefaultIgnore...),
		Extensions: append([]string(nil), DefaultExtensions...),
		Styles:     map[string]string{},
		Output: Output{
			Directory: ".",
			Filename:  "architecture",
			Formats:   []string{"drawio"},
		},
	}
}

// Load reads the project configuration from root. It looks for
// archmap.{yaml,yml,json} (and the dotted variant), applies defaults,
// normalizes extensions, and drops invalid style colors with a warning.
// A missing config file is not an error.
func Load(root string) (Project, error) {
	_ = godotenv.Load()

	cfg := Default()
	var v *viper.Viper
	for _, name := range []string{"archmap", ".archmap"} {
		candidate := viper.New()
		candidate.SetConfigName(name)
		candidate.AddConfigPath(root)
		err := candidate.ReadInConfig()
		if err == nil {
			v = candidate
			break
		}
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return cfg, err
		}
	}
	if v == nil {
		return cfg, nil
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return Default(), err
	}
	normalize(&cfg)
	return cfg, nil
}

func normalize(cfg *Project) {
	if len(cfg.Extensions) == 0 {
		cfg.Extensions = append([]string(nil), DefaultExtensions...)
	}
	for i, ext := range cfg.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		cfg.Extensions[i] = ext
	}
	if cfg.Styles == nil {
		cfg.Styles = map[string]string{}
	}
	for id, color := range cfg.Styles {
		if !reHexColor.MatchString(strings.TrimSpace(color)) {
			log.Printf("config: ignoring invalid style color %q for layer %q", color, id)
			delete(cfg.Styles, id)
			continue
		}
		cfg.Styles[id] = strings.TrimSpace(color)
	}
	if cfg.Output.Directory == "" {
		cfg.Output.Directory = "."
	}
	if cfg.Output.Filename == "" {
		cfg.Output.Filename = "architecture"
	}
	if len(cfg.Output.Formats) == 0 {
		cfg.Output.Formats = []string{"drawio"}
	}
}

// GroupingRules converts the config form into classifier rules.
func (p Project) GroupingRules() []layer.GroupingRule {
	rules := make([]layer.GroupingRule, 0, len(p.Grouping))
	for _, g := range p.Grouping {
		rules = append(rules, layer.GroupingRule{
			Pattern: g.Pattern,
			Label:   g.Label,
			Color:   g.Color,
		})
	}
	return rules
}
