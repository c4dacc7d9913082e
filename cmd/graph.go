package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph <study_area>",
	Short: "Download a study area's road network and print its size",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		net, err := env.Pipeline.Network(ctx, args[0], osmFile)
		if err != nil {
			return err
		}
		printSummary(cmd.OutOrStdout(), net.Graph.NumNodes(), net.Graph.NumEdges())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
