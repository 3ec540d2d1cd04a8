package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/drainflow/pkg/drainage"
	"github.com/matzehuels/drainflow/pkg/gridio"
)

// maxListed caps the violations printed by check.
const maxListed = 20

// checkCommand creates the check command.
func (c *CLI) checkCommand() *cobra.Command {
	var dirPath, areaPath string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify drainage invariants of existing outputs",
		Long: `Verify that a direction grid is acyclic and, when an area grid is given,
that every area equals one plus the areas draining into the cell.

Exits non-zero when a violation is found.`,
		Example: `  drainflow check -d direction.asc -a area.asc`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCheck(cmd, dirPath, areaPath)
		},
	}

	cmd.Flags().StringVarP(&dirPath, "direction", "d", "", "direction grid file")
	cmd.Flags().StringVarP(&areaPath, "area", "a", "", "area grid file")
	_ = cmd.MarkFlagRequired("direction")

	return cmd
}

func (c *CLI) runCheck(cmd *cobra.Command, dirPath, areaPath string) error {
	p := printer{w: cmd.OutOrStdout()}
	prog := newProgress(c.Logger)

	rs, err := gridio.ImportFile(dirPath)
	if err != nil {
		return err
	}
	dir := rs.IntGrid()
	violations := drainage.CheckAcyclic(dir)

	if areaPath != "" {
		area, err := gridio.ImportFile(areaPath)
		if err != nil {
			return err
		}
		acc, err := drainage.CheckAccumulation(dir, area.Grid)
		if err != nil {
			return err
		}
		violations = append(violations, acc...)
	}
	prog.done(fmt.Sprintf("Checked %d cells", dir.Len()))

	if len(violations) == 0 {
		p.success("No violations")
		return nil
	}
	for i, v := range violations {
		if i == maxListed {
			p.detail("... and %d more", len(violations)-maxListed)
			break
		}
		p.warning("%s", v)
	}
	return fmt.Errorf("%d invariant violations", len(violations))
}
