package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"archmap/internal/analyzer"
	"archmap/internal/config"
	"archmap/internal/emit"
	"archmap/internal/layout"
	"archmap/internal/mcphost"
	"archmap/internal/server"
	"archmap/internal/watch"
)

func newWatchCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "watch [root]",
		Short: "Re-analyze on file changes and serve a live dashboard",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := rootArg(args)
			cfg, err := config.Load(root)
			if err != nil {
				return err
			}
			a, err := analyzer.New(cfg)
			if err != nil {
				return err
			}

			hub := server.NewHub()
			srv := server.New(addr, hub)
			w := watch.New(root, a, cfg.Extensions, cfg.Ignore)
			w.OnResult = srv.Publish

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
				defer cancel()
				_ = srv.Shutdown(shutdownCtx)
			}()
			go func() {
				if err := srv.Start(); err != nil {
					fmt.Fprintln(os.Stderr, err)
				}
			}()

			err = w.Run(ctx)
			if err == context.Canceled {
				return nil
			}
			return err
		},
	}
	cmd.Flags().StringVar(&addr, "addr", resolveAddr(), "dashboard listen address")
	return cmd
}

func newServeCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve [root]",
		Short: "Analyze once and serve the dashboard",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := rootArg(args)
			_, result, err := runAnalysis(cmd.Context(), root)
			if err != nil {
				return err
			}
			hub := server.NewHub()
			hub.Publish(result)
			srv := server.New(addr, hub)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
				defer cancel()
				_ = srv.Shutdown(shutdownCtx)
			}()
			return srv.Start()
		},
	}
	cmd.Flags().StringVar(&addr, "addr", resolveAddr(), "dashboard listen address")
	return cmd
}

func newMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve analysis tools over the Model Context Protocol (stdio)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return mcphost.Serve(version)
		},
	}
}

func newRenderCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "render [root]",
		Short: "Analyze and print a single format to stdout",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, result, err := runAnalysis(cmd.Context(), rootArg(args))
			if err != nil {
				return err
			}
			_, data, _, err := renderFormat(result, format)
			if err != nil {
				return err
			}
			fmt.Print(string(data))
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "mermaid", "output format: drawio, mermaid, html")
	return cmd
}

func newDiffCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diff [root]",
		Short: "Report whether the architecture diagram changed since the last run",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := rootArg(args)
			cfg, result, err := runAnalysis(cmd.Context(), root)
			if err != nil {
				return err
			}
			plan := layout.Build(result.Graph, result.Layers)
			doc := emit.DrawIO(plan)
			changed, err := emit.NewDiffCache(cfg.Output.Directory).Changed(doc)
			if err != nil {
				return err
			}
			if changed {
				fmt.Println("changed")
			} else {
				fmt.Println("unchanged")
			}
			return nil
		},
	}
	return cmd
}

// resolveAddr picks the dashboard address from ARCHMAP_PORT, defaulting
// to :7878.
func resolveAddr() string {
	port := strings.TrimSpace(os.Getenv("ARCHMAP_PORT"))
	if port == "" {
		return ":7878"
	}
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}
	return port
}
