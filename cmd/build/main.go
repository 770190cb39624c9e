package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"gogofolio/modules/config"
	"gogofolio/modules/logger"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		color.New(color.FgRed).Fprintln(os.Stderr, "build failed:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		srcDir     string
		outDir     string
		watch      bool
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:           "build",
		Short:         "Bundle the site's scripts and stylesheets",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return err
			}
			if srcDir == "" {
				srcDir = cfg.Directories.Src
			}
			if outDir == "" {
				outDir = cfg.Directories.Dist
			}

			level := "info"
			if verbose {
				level = "debug"
			}
			log, err := logger.New(logger.Config{Level: level, Format: "console", Output: "stderr"})
			if err != nil {
				return err
			}
			defer log.Sync()

			b := NewBuilder(srcDir, outDir, log)
			out := cmd.OutOrStdout()

			if !watch {
				return runOnce(b, out)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return watchAndBuild(ctx, b, out, log)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&configPath, "config", "", "path to a TOML config file")
	flags.StringVar(&srcDir, "src", "", "source directory (default from config)")
	flags.StringVar(&outDir, "out", "", "output directory (default from config)")
	flags.BoolVar(&watch, "watch", false, "Watch for file changes")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	return cmd
}

func runOnce(b *Builder, out io.Writer) error {
	start := time.Now()
	outputs, err := b.Build()
	printSummary(out, outputs, time.Since(start))
	return err
}

func printSummary(out io.Writer, outputs []Output, took time.Duration) {
	name := color.New(color.FgCyan).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	if len(outputs) == 0 {
		fmt.Fprintln(out, color.YellowString("nothing to build"))
	}
	for _, o := range outputs {
		fmt.Fprintf(out, "  %s  %s %s\n",
			name(filepath.Base(o.Path)),
			formatSize(o.Bytes),
			dim(fmt.Sprintf("(%d inputs, %v)", o.Inputs, o.Duration.Round(time.Millisecond))))
	}
	fmt.Fprintln(out, color.GreenString("Build completed in %v", took.Round(time.Millisecond)))
}

func formatSize(n int) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
