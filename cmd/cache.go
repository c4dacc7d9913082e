package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the OSM response cache",
}

var cachePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete expired cache entries",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		st, err := initCache(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		n, err := st.DeleteExpired(ctx)
		if err != nil {
			return eris.Wrap(err, "cache prune")
		}
		printer.Fprintf(cmd.OutOrStdout(), "pruned %d expired entries\n", n)
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every cache entry",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		st, err := initCache(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		n, err := st.Clear(ctx)
		if err != nil {
			return eris.Wrap(err, "cache clear")
		}
		printer.Fprintf(cmd.OutOrStdout(), "cleared %d entries\n", n)
		return nil
	},
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Count live and expired cache entries",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		st, err := initCache(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		live, expired, err := st.Stats(ctx)
		if err != nil {
			return eris.Wrap(err, "cache stats")
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "path|%s\n", cfg.Cache.Path)
		printer.Fprintf(out, "live|%d\nexpired|%d\n", live, expired)
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cachePruneCmd, cacheClearCmd, cacheStatsCmd)
	rootCmd.AddCommand(cacheCmd)
}
