package main

import (
	"fmt"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Runan-Duan/Betweenness-Centrality/internal/centrality"
	"github.com/Runan-Duan/Betweenness-Centrality/internal/pipeline"
	"github.com/Runan-Duan/Betweenness-Centrality/internal/roadnet"
)

var networkxCmd = &cobra.Command{
	Use:   "networkx <study_area> <outfile> <route_types>",
	Short: "Exact edge betweenness over all node pairs",
	Long: "Scores every road segment with Brandes' edge betweenness over all origin-destination pairs, " +
		"normalised by n(n-1). route_types is shortest (length) or fastest (travel time).",
	Args: cobra.MatchAll(cobra.ExactArgs(3), routeTypeArg(2)),
	RunE: func(cmd *cobra.Command, args []string) error {
		strategy := centrality.Exact{Concurrency: cfg.Centrality.Concurrency}
		return runCentrality(cmd, args[0], args[1], centrality.RouteType(args[2]), strategy)
	},
}

var geographicalCmd = &cobra.Command{
	Use:   "geographical <study_area> <outfile> <route_types> <n_routes>",
	Short: "Centrality estimated from randomly sampled routes",
	Long: "Draws n_routes random origin-destination pairs, routes each one and counts how many routes " +
		"cross every road segment. Unroutable pairs are redrawn until exactly n_routes routes exist.",
	Args: cobra.MatchAll(cobra.ExactArgs(4), routeTypeArg(2), positiveIntArg(3)),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, _ := strconv.Atoi(args[3])
		strategy := centrality.Sampling{
			Routes:         n,
			Seed:           cfg.Centrality.Seed,
			Concurrency:    cfg.Centrality.Concurrency,
			MaxStallRounds: cfg.Centrality.MaxStallRounds,
		}
		return runCentrality(cmd, args[0], args[1], centrality.RouteType(args[2]), strategy)
	},
}

// routeTypeArg rejects anything but shortest or fastest at position i.
func routeTypeArg(i int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if i >= len(args) {
			return nil
		}
		_, err := centrality.ParseRouteType(args[i])
		return err
	}
}

func positiveIntArg(i int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if i >= len(args) {
			return nil
		}
		n, err := strconv.Atoi(args[i])
		if err != nil || n <= 0 {
			return eris.Errorf("n_routes must be a positive integer, got %q", args[i])
		}
		return nil
	}
}

func runCentrality(cmd *cobra.Command, area, outfile string, rt centrality.RouteType, strategy centrality.Strategy) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	env, err := initPipeline(ctx)
	if err != nil {
		return err
	}
	defer env.Close()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Computing %s betweenness centrality for %s (%s routes)\n", strategy.Method(), area, rt)

	res, err := env.Pipeline.Run(ctx, pipeline.Request{
		StudyArea: area,
		OutRoot:   outfile,
		RouteType: rt,
		Strategy:  strategy,
		OSMFile:   osmFile,
		OnNetwork: func(g *roadnet.Graph) {
			printSummary(out, g.NumNodes(), g.NumEdges())
		},
	})
	if err != nil {
		return eris.Wrap(err, "centrality run")
	}

	printRun(out, res)

	zap.L().Info("run complete",
		zap.String("run_id", res.Manifest.RunID),
		zap.String("dir", res.Dir),
	)
	return nil
}

func init() {
	rootCmd.AddCommand(networkxCmd)
	rootCmd.AddCommand(geographicalCmd)
}
