package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/DeusData/codebase-graph/internal/config"
	"github.com/DeusData/codebase-graph/internal/discover"
	"github.com/DeusData/codebase-graph/internal/graph"
	"github.com/DeusData/codebase-graph/internal/pipeline"
	"github.com/DeusData/codebase-graph/internal/store"
	"github.com/DeusData/codebase-graph/internal/subtype"
	"github.com/DeusData/codebase-graph/internal/tools"
	"github.com/DeusData/codebase-graph/internal/watcher"
)

func newExtractCmd(opts *globalOptions) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "extract <project>",
		Short: "Extract the graph and write it as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load(args[0])
			if err != nil {
				return err
			}
			g, err := pipeline.New(cfg).Extract(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if output == "" || output == "-" {
				return graph.Write(cmd.OutOrStdout(), g)
			}
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("create output: %w", err)
			}
			if err := graph.Write(f, g); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), pipeline.Summarize(g))
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

func newIngestCmd(opts *globalOptions) *cobra.Command {
	var database string
	cmd := &cobra.Command{
		Use:   "ingest <kg.json>",
		Short: "Ingest a previously extracted graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load(".")
			if err != nil {
				return err
			}
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			g, err := graph.Read(f)
			f.Close()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			driver, closeDriver, err := pipeline.OpenDriver(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeDriver()

			res, err := pipeline.New(cfg).Ingest(ctx, driver, database, g)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().StringVar(&database, "database", "", "target database (default from config)")
	return cmd
}

func newScanCmd(opts *globalOptions) *cobra.Command {
	var database string
	cmd := &cobra.Command{
		Use:   "scan <project>",
		Short: "Extract a project and ingest it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			driver, closeDriver, err := pipeline.OpenDriver(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeDriver()

			res, err := pipeline.New(cfg).Scan(ctx, args[0], driver, database)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().StringVar(&database, "database", "", "target database (default from config)")
	return cmd
}

func newWatchCmd(opts *globalOptions) *cobra.Command {
	var database string
	cmd := &cobra.Command{
		Use:   "watch <project>",
		Short: "Scan a project and rescan it whenever its sources change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load(args[0])
			if err != nil {
				return err
			}
			root, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			srcRoot, err := discover.FindSourceRoot(root, cfg.EffectiveSourceDir())
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			driver, closeDriver, err := pipeline.OpenDriver(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeDriver()

			scan := func(ctx context.Context, _, _ string) error {
				_, err := pipeline.New(cfg).Scan(ctx, root, driver, database)
				return err
			}
			if err := scan(ctx, "", ""); err != nil {
				return err
			}

			w := watcher.New(scan, discoverOptions(cfg, root))
			w.Watch(filepath.Base(root), srcRoot)
			slog.Info("watch.start", "path", srcRoot)
			w.Run(ctx)
			return nil
		},
	}
	cmd.Flags().StringVar(&database, "database", "", "target database (default from config)")
	return cmd
}

func newMCPCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the graph tools over MCP stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load(".")
			if err != nil {
				return err
			}
			router, err := store.NewRouter(cfg.GraphDB.SQLiteDir)
			if err != nil {
				return err
			}
			srv := tools.NewServer(cfg, router, version)
			return srv.MCPServer().Run(cmd.Context(), &mcp.StdioTransport{})
		},
	}
}

func newSubtypesCmd(opts *globalOptions) *cobra.Command {
	var only string
	cmd := &cobra.Command{
		Use:   "subtypes <project>",
		Short: "List the files of a project grouped by subtype",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load(args[0])
			if err != nil {
				return err
			}
			g, err := pipeline.New(cfg).Extract(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if only != "" {
				for _, n := range subtype.Filter(g.Nodes, only) {
					fmt.Fprintln(out, n.FilePath)
				}
				return nil
			}
			groups := subtype.Group(g.Nodes)
			names := make([]string, 0, len(groups))
			for name := range groups {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Fprintf(out, "%s (%d)\n", name, len(groups[name]))
				for _, n := range groups[name] {
					fmt.Fprintf(out, "  %s\n", n.FilePath)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&only, "subtype", "", "print only the files of this subtype")
	return cmd
}

// discoverOptions mirrors the discovery settings the project loader uses.
func discoverOptions(cfg *config.Config, root string) *discover.Options {
	opts := &discover.Options{Exclude: cfg.Project.Exclude}
	if cfg.EffectiveRespectGitignore() {
		opts.GitignoreRoot = root
	}
	return opts
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
