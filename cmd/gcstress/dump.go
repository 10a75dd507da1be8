// ABOUTME: dump and inspect commands: snapshot a workload's heap and analyze snapshots
// ABOUTME: Snapshots are taken at the workload's peak while its data is rooted

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v2"

	"github.com/prateek/gcheap/graph"
	"github.com/prateek/gcheap/heap"
	"github.com/prateek/gcheap/heapdump"
	"github.com/prateek/gcheap/internal/workload"
)

var (
	formatFlag = &cli.StringFlag{
		Name:  "format",
		Usage: "snapshot format: " + strings.Join(heapdump.Formats(), ", "),
		Value: "json",
	}
	outputFlag = &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "write the snapshot to this file instead of stdout",
	}
	retainedFlag = &cli.BoolFlag{
		Name:  "retained",
		Usage: "record each live object's retained size",
	}
	liveFlag = &cli.BoolFlag{
		Name:  "live",
		Usage: "leave out objects the next collection would free",
	}
	topFlag = &cli.IntFlag{
		Name:  "top",
		Usage: "number of largest retainers to list",
		Value: 10,
	}
	pathsFlag = &cli.IntSliceFlag{
		Name:  "paths",
		Usage: "print reference chains from these object IDs to the roots",
	}
	maxPathsFlag = &cli.IntFlag{
		Name:  "max-paths",
		Usage: "reference chains to print per object",
		Value: 3,
	}
)

var (
	dumpCommand = &cli.Command{
		Name:      "dump",
		Usage:     "Run a workload and write a heap snapshot taken at its peak",
		ArgsUsage: "<workload>",
		Flags:     []cli.Flag{iterationsFlag, formatFlag, outputFlag, retainedFlag, liveFlag},
		Action:    dumpWorkload,
	}
	inspectCommand = &cli.Command{
		Name:      "inspect",
		Usage:     "Summarize a heap snapshot file",
		ArgsUsage: "<snapshot>",
		Flags:     []cli.Flag{topFlag, pathsFlag, maxPathsFlag},
		Action:    inspectSnapshot,
	}
)

var errUsage = errors.New("usage")

func dumpWorkload(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return fmt.Errorf("%w: dump <workload>", errUsage)
	}
	w, err := workload.Lookup(ctx.Args().First())
	if err != nil {
		return err
	}
	if _, err := heapdump.Lookup(ctx.String(formatFlag.Name)); err != nil {
		return err
	}
	cfg, err := heapConfig(ctx)
	if err != nil {
		return err
	}

	var snapshot *graph.MemGraph
	h := heap.New(cfg)
	if _, err := w.RunWithPeek(h, iterations(ctx, w), func(h *heap.Heap) {
		snapshot = graph.FromHeap(h)
	}); err != nil {
		return err
	}

	out := ctx.App.Writer
	if path := ctx.String(outputFlag.Name); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", path, err)
		}
		defer f.Close()
		out = f
	}
	opts := heapdump.Options{
		Retained: ctx.Bool(retainedFlag.Name),
		LiveOnly: ctx.Bool(liveFlag.Name),
	}
	if err := heapdump.Write(out, ctx.String(formatFlag.Name), snapshot, opts); err != nil {
		return err
	}
	cfg.Logger.Info("Wrote snapshot", "workload", w.Name, "objects", snapshot.NumObjects(),
		"roots", len(snapshot.GetRoots().IDs))
	return nil
}

func inspectSnapshot(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return fmt.Errorf("%w: inspect <snapshot>", errUsage)
	}
	path := ctx.Args().First()
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	g, err := heapdump.Open(f)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	out := ctx.App.Writer
	printSummary(out, g)
	printRetainers(out, g, ctx.Int(topFlag.Name))
	for _, id := range ctx.IntSlice(pathsFlag.Name) {
		printPaths(out, g, graph.ObjID(id), ctx.Int(maxPathsFlag.Name))
	}
	return nil
}

func printSummary(w io.Writer, g graph.Graph) {
	var total uint64
	g.ForEachObject(func(obj *graph.Object) {
		total += obj.Size
	})
	garbage, garbageBytes := graph.Garbage(g)
	fmt.Fprintf(w, "objects: %d (%d bytes)\n", g.NumObjects(), total)
	fmt.Fprintf(w, "roots:   %d\n", len(g.GetRoots().IDs))
	fmt.Fprintf(w, "garbage: %d (%d bytes)\n", len(garbage), garbageBytes)
}

// printRetainers lists the top objects by retained size, largest first,
// ties broken by ID.
func printRetainers(w io.Writer, g graph.Graph, top int) {
	if top <= 0 {
		return
	}
	idom := graph.Dominators(g)
	retained := graph.RetainedSize(g)
	depth := graph.DominatorDepth(graph.DominatorTree(idom))

	ids := make([]graph.ObjID, 0, len(retained))
	for id := range retained {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if retained[ids[i]] != retained[ids[j]] {
			return retained[ids[i]] > retained[ids[j]]
		}
		return ids[i] < ids[j]
	})
	if len(ids) > top {
		ids = ids[:top]
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"ID", "Type", "Len", "Size", "Retained", "Depth", "Dominator"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	for _, id := range ids {
		obj := g.GetObject(id)
		table.Append([]string{
			strconv.Itoa(int(id)),
			obj.Type,
			strconv.Itoa(obj.Len),
			strconv.FormatUint(obj.Size, 10),
			strconv.FormatUint(retained[id], 10),
			strconv.Itoa(depth[id]),
			strconv.Itoa(int(idom[id])),
		})
	}
	table.Render()
}

func printPaths(w io.Writer, g graph.Graph, id graph.ObjID, limit int) {
	paths := graph.PathsToRoots(g, id, limit)
	if len(paths) == 0 {
		fmt.Fprintf(w, "%d: unreachable\n", id)
		return
	}
	for _, p := range paths {
		parts := make([]string, len(p.IDs))
		for i, step := range p.IDs {
			typ := "?"
			if obj := g.GetObject(step); obj != nil {
				typ = obj.Type
			}
			parts[i] = fmt.Sprintf("%d(%s)", step, typ)
		}
		fmt.Fprintln(w, strings.Join(parts, " <- "))
	}
}
