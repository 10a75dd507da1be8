// ABOUTME: list and run commands: execute workloads and tabulate collector stats
// ABOUTME: A failing workload is reported in the table and fails the command

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/mattn/go-colorable"
	"github.com/olekukonko/tablewriter"
	"github.com/rcrowley/go-metrics"
	"github.com/urfave/cli/v2"

	"github.com/prateek/gcheap/heap"
	"github.com/prateek/gcheap/internal/workload"
)

var (
	iterationsFlag = &cli.IntFlag{
		Name:    "iterations",
		Aliases: []string{"n"},
		Usage:   "iterations per workload, 0 for each workload's default",
	}
	metricsFlag = &cli.BoolFlag{
		Name:  "metrics",
		Usage: "print the heap metrics registry after each workload",
	}
	reportFlag = &cli.BoolFlag{
		Name:  "report",
		Usage: "log heap statistics at info level after each workload",
	}
)

var (
	listCommand = &cli.Command{
		Name:   "list",
		Usage:  "List the available workloads",
		Action: listWorkloads,
	}
	runCommand = &cli.Command{
		Name:      "run",
		Usage:     "Run workloads and print collector statistics",
		ArgsUsage: "[workload...]",
		Flags:     []cli.Flag{iterationsFlag, metricsFlag, reportFlag},
		Action:    runWorkloads,
	}
)

// errWorkloadsFailed is returned when at least one workload failed.
var errWorkloadsFailed = errors.New("workloads failed")

const (
	pass = "\033[32mPASS\033[0m"
	fail = "\033[31mFAIL\033[0m"
)

func listWorkloads(ctx *cli.Context) error {
	table := tablewriter.NewWriter(ctx.App.Writer)
	table.SetHeader([]string{"Workload", "Iterations", "Checksum", "Description"})
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	for _, w := range workload.All() {
		table.Append([]string{w.Name, strconv.Itoa(w.N), strconv.Itoa(w.Expected(w.N)), w.Description})
	}
	table.Render()
	return nil
}

// selectWorkloads resolves command arguments; no arguments means all.
func selectWorkloads(args []string) ([]workload.Workload, error) {
	if len(args) == 0 {
		return workload.All(), nil
	}
	selected := make([]workload.Workload, 0, len(args))
	for _, name := range args {
		w, err := workload.Lookup(name)
		if err != nil {
			return nil, err
		}
		selected = append(selected, w)
	}
	return selected, nil
}

func iterations(ctx *cli.Context, w workload.Workload) int {
	if n := ctx.Int(iterationsFlag.Name); n > 0 {
		return n
	}
	return w.N
}

func runWorkloads(ctx *cli.Context) error {
	cfg, err := heapConfig(ctx)
	if err != nil {
		return err
	}
	selected, err := selectWorkloads(ctx.Args().Slice())
	if err != nil {
		return err
	}

	out, color := statusWriter(ctx.App.Writer)
	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Workload", "Iterations", "Total", "Status", "Collections", "Growths", "Max live", "Max roots", "Pause"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)

	h := heap.New(cfg)
	failed := 0
	for _, w := range selected {
		n := iterations(ctx, w)
		total, err := w.Run(h, n)
		status := statusText(err == nil, color)
		if err != nil {
			failed++
			cfg.Logger.Error("Workload failed", "workload", w.Name, "err", err)
		}
		s := h.Stats()
		table.Append([]string{
			w.Name,
			strconv.Itoa(n),
			strconv.Itoa(total),
			status,
			strconv.Itoa(s.NumCollections),
			strconv.Itoa(s.NumGrowths),
			strconv.Itoa(s.MaxLiveBytes),
			strconv.Itoa(s.MaxRoots),
			s.TotalPause.String(),
		})
		if ctx.Bool(reportFlag.Name) {
			h.Report()
		}
		if ctx.Bool(metricsFlag.Name) {
			fmt.Fprintf(ctx.App.Writer, "# %s\n", w.Name)
			metrics.WriteOnce(h.Metrics(), ctx.App.Writer)
		}
	}
	table.Render()

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d", errWorkloadsFailed, failed, len(selected))
	}
	return nil
}

// statusWriter wraps stdout for colored output when it is a terminal.
func statusWriter(w io.Writer) (io.Writer, bool) {
	if w != os.Stdout || !useColor(os.Stdout) {
		return w, false
	}
	return colorable.NewColorableStdout(), true
}

func statusText(ok, color bool) string {
	switch {
	case ok && color:
		return pass
	case ok:
		return "PASS"
	case color:
		return fail
	default:
		return "FAIL"
	}
}
