package cli

import (
	"context"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"

	"github.com/spf13/cobra"

	"github.com/matzehuels/drainflow/pkg/pipeline"
)

// resolveCommand creates the resolve command.
func (c *CLI) resolveCommand() *cobra.Command {
	var (
		formatsStr string
		outputDir  string
		configPath string
		lambda     float64
		noCache    bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Compute flow directions and accumulated areas",
		Long: `Compute D8 flow directions and accumulated areas from an elevation grid.

The old-direction grid supplies directions for flat cells and, with
--fixed-network, the forced directions along the channel network. Grids are
read from ESRI ASCII (.asc, .txt) or JSON (.json) files and must share one
shape.

Outputs are written to --output-dir as direction.<fmt> and area.<fmt> for
asc and json, and network.<fmt> for dot and svg.

A TOML run file (--config) can hold any of the options; flags win over it.
Results are cached locally for faster subsequent runs.`,
		Example: `  drainflow resolve -e dem.asc -d flow.asc
  drainflow resolve -e dem.asc -d flow.asc -n channels.asc --fixed-network -f asc,svg
  drainflow resolve --config run.toml --lambda 0.5`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("lambda") {
				opts.Lambda = &lambda
			}
			opts.Formats = pipeline.ParseFormats(formatsStr)
			if configPath != "" {
				file, err := pipeline.LoadConfig(configPath)
				if err != nil {
					return err
				}
				opts = file.Merge(opts)
			}
			return c.runResolve(cmd, opts, outputDir, noCache)
		},
	}

	// Input flags
	cmd.Flags().StringVarP(&opts.Elevation, "elevation", "e", "", "elevation grid file")
	cmd.Flags().StringVarP(&opts.OldDirection, "old-direction", "d", "", "old direction grid file")
	cmd.Flags().StringVarP(&opts.Network, "network", "n", "", "fixed channel network grid file")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "TOML run file")

	// Algorithm flags
	cmd.Flags().StringVarP(&opts.Metric, "metric", "m", "", "deviation metric: transversal (default), angular")
	cmd.Flags().Float64VarP(&lambda, "lambda", "l", pipeline.DefaultLambda, "weight of the upstream deviation in [0,1]")
	cmd.Flags().BoolVar(&opts.FixedNetwork, "fixed-network", false, "force directions along the network (transversal metric)")
	cmd.Flags().BoolVar(&opts.StrictAbort, "strict", false, "stop the sweep at the first unresolvable cell")
	cmd.Flags().Float64Var(&opts.CellSizeX, "cell-size-x", 0, "cell width (default: file cellsize)")
	cmd.Flags().Float64Var(&opts.CellSizeY, "cell-size-y", 0, "cell height (default: file cellsize)")
	cmd.Flags().BoolVar(&opts.Verify, "verify", false, "check acyclicity and accumulation of the result")

	// Output flags
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): asc (default), json, dot, svg (comma-separated)")
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", ".", "directory for output files")
	cmd.Flags().Float64Var(&opts.MinArea, "min-area", 0, "smallest area drawn in dot/svg output")
	cmd.Flags().BoolVar(&opts.Detailed, "detailed", false, "label dot/svg nodes with their cell position")

	// Cache flags
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "recompute even when a cached result exists")

	return cmd
}

// runResolve executes the pipeline and writes its artifacts.
func (c *CLI) runResolve(cmd *cobra.Command, opts pipeline.Options, outputDir string, noCache bool) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	p := printer{w: cmd.OutOrStdout()}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = c.Logger
	spinner := newSpinnerWithContext(ctx, "Resolving drainage directions...")
	spinner.Start()

	res, err := runner.Execute(ctx, opts)
	if err != nil {
		if ctx.Err() != nil {
			spinner.Stop()
			return ctx.Err()
		}
		spinner.StopWithError(p, "Resolve failed")
		return err
	}
	spinner.Stop()

	paths, err := writeArtifacts(outputDir, res.Artifacts)
	if err != nil {
		return err
	}

	p.success("Resolved %s of %s cells", StyleNumber.Render(fmt.Sprint(res.Summary.Resolved)), StyleNumber.Render(fmt.Sprint(res.Summary.Eligible)))
	p.status("result", res.CacheInfo.ResultHit)
	p.status("artifacts", res.CacheInfo.RenderHit)
	p.summary(res.Summary)
	for _, path := range paths {
		p.file(path)
	}
	c.Logger.Debug("run complete", "run", res.RunID, "input", res.InputHash[:12])
	return nil
}

// writeArtifacts writes each artifact to dir under its own name and returns
// the written paths in name order.
func writeArtifacts(dir string, artifacts map[string][]byte) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	var paths []string
	for _, name := range slices.Sorted(maps.Keys(artifacts)) {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, artifacts[name], 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
