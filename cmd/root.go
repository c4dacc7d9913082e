package main

import (
	"os"
	"slices"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/Runan-Duan/Betweenness-Centrality/internal/config"
)

var cfg *config.Config

// Persistent flag values. Flags override config only when set.
var (
	osmFile     string
	noCache     bool
	formats     []string
	seed        int64
	concurrency int
	postgisURL  string
)

var rootCmd = &cobra.Command{
	Use:   "centrality",
	Short: "Road network betweenness centrality from OpenStreetMap",
	Long: "Downloads the drivable road network of a study area, scores every road segment by " +
		"betweenness centrality (exact, or estimated from sampled routes) and writes a GeoPackage and a map.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return eris.Wrap(err, "load config")
		}
		applyFlags(c, cmd.Flags())
		if err := c.Validate(); err != nil {
			return err
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return eris.Wrap(err, "init logger")
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

// applyFlags copies explicitly set persistent flags over config values.
func applyFlags(c *config.Config, flags *pflag.FlagSet) {
	if flags.Changed("no-cache") {
		c.Cache.Enabled = !noCache
	}
	if flags.Changed("formats") {
		c.Export.Formats = formats
	}
	if flags.Changed("seed") {
		c.Centrality.Seed = seed
	}
	if flags.Changed("concurrency") {
		c.Centrality.Concurrency = concurrency
	}
	if flags.Changed("postgis-url") {
		c.Export.PostGISURL = postgisURL
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&osmFile, "osm-file", "", "read the network from an .osm or Overpass .json file instead of downloading it")
	pf.BoolVar(&noCache, "no-cache", false, "bypass the OSM response cache")
	pf.StringSliceVar(&formats, "formats", nil, "extra output formats: geojson, shp, xlsx")
	pf.Int64Var(&seed, "seed", 0, "random seed for route sampling (0 picks one and records it)")
	pf.IntVar(&concurrency, "concurrency", 0, "parallel route searches (default: number of CPUs)")
	pf.StringVar(&postgisURL, "postgis-url", "", "also copy the layer into this PostGIS database")
}

// methodFirst moves a method command written after its positional arguments
// ("Berlin out shortest networkx") to the front, where cobra looks for it.
// Arguments already led by a command are returned unchanged.
func methodFirst(args []string) []string {
	for i, a := range args {
		if !slices.Contains([]string{"networkx", "geographical"}, a) {
			if isCommand(a) {
				return args
			}
			continue
		}
		if i == 0 {
			return args
		}
		out := make([]string, 0, len(args))
		out = append(out, a)
		out = append(out, args[:i]...)
		return append(out, args[i+1:]...)
	}
	return args
}

func isCommand(name string) bool {
	for _, c := range rootCmd.Commands() {
		if c.Name() == name || c.HasAlias(name) {
			return true
		}
	}
	return name == "help"
}

func main() {
	rootCmd.SetArgs(methodFirst(os.Args[1:]))
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
