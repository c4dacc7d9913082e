package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/Runan-Duan/Betweenness-Centrality/internal/pipeline"
)

var printer = message.NewPrinter(language.English)

// printSummary writes the network size block. Counts stay ungrouped so the
// block can be cut on "|".
func printSummary(w io.Writer, nodes, edges int) {
	fmt.Fprintf(w, "nodes|%d\n", nodes)
	fmt.Fprintf(w, "route segments|%d\n", edges)
}

// printRun lists what a run wrote and how long each step took.
func printRun(w io.Writer, res *pipeline.Result) {
	m := res.Manifest
	fmt.Fprintf(w, "\nOutput: %s\n", res.Dir)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "  run id\t%s\n", m.RunID)
	if m.Seed != 0 {
		fmt.Fprintf(tw, "  seed\t%d\n", m.Seed)
	}
	printer.Fprintf(tw, "  rows\t%d\n", m.Rows)
	for _, s := range m.Steps {
		fmt.Fprintf(tw, "  %s\t%.2fs\n", s.Name, s.Seconds)
	}
	for _, f := range m.Files {
		fmt.Fprintf(tw, "  file\t%s\n", f)
	}
	_ = tw.Flush()
}
