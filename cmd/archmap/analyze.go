package main

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"archmap/internal/analyzer"
	"archmap/internal/artifact"
	"archmap/internal/config"
	"archmap/internal/emit"
	"archmap/internal/history"
	"archmap/internal/layout"
	t "archmap/internal/types"
)

func newAnalyzeCmd() *cobra.Command {
	var noHistory bool
	cmd := &cobra.Command{
		Use:   "analyze [root]",
		Short: "Analyze a repository and write the configured output formats",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := rootArg(args)
			cfg, result, err := runAnalysis(cmd.Context(), root)
			if err != nil {
				return err
			}

			store, err := outputStore(cfg)
			if err != nil {
				return err
			}
			for _, format := range cfg.Output.Formats {
				name, data, contentType, err := renderFormat(result, format)
				if err != nil {
					return err
				}
				if err := store.Put(cmd.Context(), cfg.Output.Filename+name, data, contentType); err != nil {
					return err
				}
				log.Printf("analyze: wrote %s", cfg.Output.Filename+name)
			}
			if s3cfg, ok := artifact.S3ConfigFromEnv(); ok {
				if s3, err := artifact.NewS3Store(s3cfg); err == nil {
					for _, format := range cfg.Output.Formats {
						name, data, contentType, err := renderFormat(result, format)
						if err != nil {
							continue
						}
						if err := s3.Put(cmd.Context(), cfg.Output.Filename+name, data, contentType); err != nil {
							log.Printf("analyze: s3 upload failed: %v", err)
						}
					}
				}
			}

			if !noHistory {
				hist := history.NewFromEnv(filepath.Join(root, ".archmap-history.json"))
				defer hist.Close()
				if err := hist.Append(result); err != nil {
					log.Printf("analyze: history append failed: %v", err)
				}
			}

			fmt.Println(renderSummary(result))
			return nil
		},
	}
	cmd.Flags().BoolVar(&noHistory, "no-history", false, "skip recording this run in the history store")
	return cmd
}

func rootArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "."
}

func runAnalysis(ctx context.Context, root string) (config.Project, *t.AnalysisResult, error) {
	cfg, err := config.Load(root)
	if err != nil {
		return cfg, nil, fmt.Errorf("load config: %w", err)
	}
	a, err := analyzer.New(cfg)
	if err != nil {
		return cfg, nil, err
	}
	result, err := a.Analyze(ctx, root)
	if err != nil {
		return cfg, nil, err
	}
	return cfg, result, nil
}

func outputStore(cfg config.Project) (artifact.Store, error) {
	return artifact.NewDiskStore(cfg.Output.Directory)
}

// renderFormat produces (suffix, bytes, content type) for one output
// format.
func renderFormat(result *t.AnalysisResult, format string) (string, []byte, string, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "drawio", "xml":
		plan := layout.Build(result.Graph, result.Layers)
		return ".drawio", []byte(emit.DrawIO(plan)), "application/xml", nil
	case "mermaid", "mmd":
		return ".mmd", []byte(emit.Mermaid(result)), "text/plain", nil
	case "html", "dashboard":
		page, err := emit.Dashboard(result)
		if err != nil {
			return "", nil, "", err
		}
		return ".html", []byte(page), "text/html", nil
	default:
		return "", nil, "", fmt.Errorf("unknown output format %q", format)
	}
}
