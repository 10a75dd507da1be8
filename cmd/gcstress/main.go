// ABOUTME: gcstress runs allocation workloads against the managed heap
// ABOUTME: Entry point wiring flags, configuration and logging

package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v2"

	"github.com/prateek/gcheap"
	"github.com/prateek/gcheap/heap"
)

var (
	configFlag = &cli.StringFlag{
		Name:  "config",
		Usage: "TOML heap configuration file",
	}
	heapSizeFlag = &cli.IntFlag{
		Name:  "heap-size",
		Usage: "initial arena size and collection threshold in bytes (overrides the config file)",
	}
	maxHeapFlag = &cli.IntFlag{
		Name:  "max-heap",
		Usage: "arena growth limit in bytes, 0 for none (overrides the config file)",
	}
	verifyFlag = &cli.BoolFlag{
		Name:  "verify",
		Usage: "check block boundaries while collecting",
	}
	verbosityFlag = &cli.StringFlag{
		Name:  "verbosity",
		Usage: "log level: debug, info, warn or error",
		Value: "warn",
	}
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "gcstress",
		Usage:   "stress the gcheap collector",
		Version: gcheap.Version,
		Flags:   []cli.Flag{configFlag, heapSizeFlag, maxHeapFlag, verifyFlag, verbosityFlag},
		Before: func(ctx *cli.Context) error {
			return setupLogger(ctx.App.ErrWriter, ctx.String(verbosityFlag.Name))
		},
		Commands: []*cli.Command{
			listCommand,
			runCommand,
			dumpCommand,
			inspectCommand,
			dumpConfigCommand,
		},
	}
}

// setupLogger installs the default slog logger. Output goes through
// go-colorable when stderr is a terminal so escape codes work on Windows.
func setupLogger(w io.Writer, level string) error {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("invalid verbosity %q: %w", level, err)
	}
	if w == nil || w == os.Stderr {
		w = os.Stderr
		if useColor(os.Stderr) {
			w = colorable.NewColorableStderr()
		}
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})))
	return nil
}

func useColor(f *os.File) bool {
	fd := f.Fd()
	return (isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)) && os.Getenv("TERM") != "dumb"
}

// heapConfig resolves the heap configuration: defaults, then the config
// file, then command line overrides.
func heapConfig(ctx *cli.Context) (heap.Config, error) {
	cfg := heap.DefaultConfig()
	if path := ctx.String(configFlag.Name); path != "" {
		var err error
		if cfg, err = heap.LoadConfig(path); err != nil {
			return heap.Config{}, err
		}
	}
	if ctx.IsSet(heapSizeFlag.Name) {
		cfg.InitialBytes = ctx.Int(heapSizeFlag.Name)
	}
	if ctx.IsSet(maxHeapFlag.Name) {
		cfg.MaxHeapBytes = ctx.Int(maxHeapFlag.Name)
	}
	if ctx.IsSet(verifyFlag.Name) {
		cfg.Verify = ctx.Bool(verifyFlag.Name)
	}
	if err := cfg.Validate(); err != nil {
		return heap.Config{}, fmt.Errorf("invalid heap configuration: %w", err)
	}
	cfg.Logger = slog.Default().With("component", "heap")
	return cfg, nil
}
