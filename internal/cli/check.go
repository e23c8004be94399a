package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"poster/internal/canvas"
	"poster/internal/domain"
	"poster/internal/scenefile"
)

// ErrViolations is returned by check when a scene breaks an invariant.
var ErrViolations = errors.New("scene has violations")

func (a *app) newCheckCmd() *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:   "check <scene-file>",
		Short: "Validate a scene file",
		Long:  `Check loads a scene file and reports duplicate ids, out-of-range sizes, shared z-indexes, children outside their containers and overlapping blocks. Overlaps and containment are warnings unless --strict is set.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCheck(cmd, args[0], strict)
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "treat overlaps and containment warnings as errors")
	return cmd
}

func (a *app) runCheck(cmd *cobra.Command, path string, strict bool) error {
	doc, err := scenefile.Read(path)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	var problems int
	if err := domain.ValidateBlocks(doc.Blocks, a.cfg.Constraints); err != nil {
		for _, e := range unjoin(err) {
			fmt.Fprintf(out, "error: %v\n", e)
			problems++
		}
	}

	scene := domain.NewScene(doc.Blocks...)
	var warnings int
	for _, e := range scene.ContainmentViolations() {
		fmt.Fprintf(out, "warning: %v\n", e)
		warnings++
	}
	for _, pair := range canvas.Overlaps(scene) {
		fmt.Fprintf(out, "warning: %s overlaps %s\n", pair[0], pair[1])
		warnings++
	}
	if strict {
		problems += warnings
	}

	fmt.Fprintf(out, "%s: %d blocks, %d errors, %d warnings\n", path, len(doc.Blocks), problems, warnings)
	if problems > 0 {
		return fmt.Errorf("%w: %s", ErrViolations, path)
	}
	return nil
}

// unjoin flattens an errors.Join result.
func unjoin(err error) []error {
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		return j.Unwrap()
	}
	return []error{err}
}
