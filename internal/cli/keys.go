package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"poster/internal/editor"
	"poster/internal/scenefile"
	"poster/internal/service"
)

type keysOptions struct {
	selectID string
	out      string
	list     bool
}

func (a *app) newKeysCmd() *cobra.Command {
	var opts keysOptions
	cmd := &cobra.Command{
		Use:   "keys <scene-file> [key...]",
		Short: "Replay keyboard shortcuts against a scene file",
		Long: `Keys loads a scene, presses each key chord in order and writes the result back, or to --out.

Example:
  poster keys poster.yaml --select price-1 ArrowRight ArrowRight 2 Ctrl+D`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runKeys(cmd, args[0], args[1:], opts)
		},
	}
	cmd.Flags().StringVar(&opts.selectID, "select", "", "block to select before the first key")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "write the result here instead of the input file")
	cmd.Flags().BoolVar(&opts.list, "list", false, "print the key bindings and exit")
	return cmd
}

func (a *app) runKeys(cmd *cobra.Command, path string, keys []string, opts keysOptions) error {
	out := cmd.OutOrStdout()
	doc, err := scenefile.Read(path)
	if err != nil {
		return err
	}
	target := path
	if opts.out != "" {
		target = opts.out
	}
	ws := service.NewWorkspace(service.WorkspaceConfig{
		Options:  a.cfg.Editor(),
		Catalog:  service.DefaultTypeRegistry(),
		FilePath: target,
		Name:     doc.Name,
		Logger:   a.logger,
	}, doc.Blocks...)

	if opts.list {
		for _, b := range ws.Bindings() {
			fmt.Fprintln(out, b)
		}
		return nil
	}

	if opts.selectID != "" {
		var ok bool
		_ = ws.Do(func(s *editor.Session) error {
			ok = s.Select(opts.selectID)
			return nil
		})
		if !ok {
			return fmt.Errorf("block %s not found in %s", opts.selectID, path)
		}
	}

	ctx := cmd.Context()
	for _, k := range keys {
		handled, err := ws.Press(ctx, k)
		if err != nil {
			return err
		}
		a.logger.Debug("key", "chord", k, "handled", handled)
		if !handled {
			fmt.Fprintf(out, "%s: no effect\n", k)
		}
	}

	if !ws.Dirty() && target == path {
		fmt.Fprintln(out, "no changes")
		return nil
	}
	res, err := ws.Save(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "wrote %s (%d blocks)\n", res.File, res.Blocks)
	return nil
}
