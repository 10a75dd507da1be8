// ABOUTME: dumpconfig command printing the effective heap configuration as TOML
// ABOUTME: The output is accepted back by --config

package main

import (
	"github.com/urfave/cli/v2"

	"github.com/prateek/gcheap/heap"
)

var dumpConfigCommand = &cli.Command{
	Name:   "dumpconfig",
	Usage:  "Print the effective heap configuration as TOML",
	Action: dumpConfig,
}

func dumpConfig(ctx *cli.Context) error {
	cfg, err := heapConfig(ctx)
	if err != nil {
		return err
	}
	return heap.WriteConfig(ctx.App.Writer, cfg)
}
