package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"poster/internal/domain"
	mcpserver "poster/internal/mcp"
	"poster/internal/scenefile"
	"poster/internal/secret"
	"poster/internal/service"
	"poster/internal/storage"
)

type serveOptions struct {
	scene   string
	watch   bool
	noStore bool
	load    string
}

func (a *app) newServeCmd() *cobra.Command {
	var opts serveOptions
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the editor over MCP on stdin/stdout",
		Long:  `Serve starts an MCP stdio server around one editing session. Saves go to the configured store and, with --scene, to a YAML or JSON scene file.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runServe(cmd.Context(), opts)
		},
	}
	cmd.Flags().StringVar(&opts.scene, "scene", "", "scene file to load and save (.yaml, .yml or .json)")
	cmd.Flags().BoolVar(&opts.watch, "watch", false, "reload the scene file when it changes on disk")
	cmd.Flags().BoolVar(&opts.noStore, "no-store", false, "do not open the scene store")
	cmd.Flags().StringVar(&opts.load, "load", "", "stored scene id to start from")
	return cmd
}

func (a *app) runServe(ctx context.Context, opts serveOptions) error {
	if opts.watch && opts.scene == "" {
		return errors.New("--watch needs --scene")
	}

	var store storage.Store
	if !opts.noStore {
		sc, err := a.cfg.StorageConfig(secret.Default())
		if err != nil {
			return err
		}
		st, err := storage.Open(ctx, sc)
		if err != nil {
			return err
		}
		defer st.Close()
		store = st
		a.logger.Debug("store open", "driver", a.cfg.Storage.Driver)
	}

	name, initial, err := readInitial(opts.scene)
	if err != nil {
		return err
	}

	registry := service.DefaultTypeRegistry()
	ws := service.NewWorkspace(service.WorkspaceConfig{
		Options:  a.cfg.Editor(),
		Catalog:  registry,
		Emitter:  service.LogEmitter{Logger: a.logger.WithPrefix("session")},
		Store:    store,
		FilePath: opts.scene,
		Name:     name,
		Logger:   a.logger,
	}, initial...)

	if opts.load != "" {
		if err := ws.Load(ctx, opts.load); err != nil {
			return fmt.Errorf("load scene %s: %w", opts.load, err)
		}
	}

	if opts.watch {
		w, err := ws.WatchFile()
		if err != nil {
			return err
		}
		defer w.Close()
	}

	saver, err := service.NewAutosaver(ws, a.cfg.Autosave.Schedule, a.logger)
	if err != nil {
		return err
	}
	if store != nil || opts.scene != "" {
		saver.Start()
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		saver.Stop(stopCtx)
		if ws.Dirty() && (store != nil || opts.scene != "") {
			if _, err := ws.Save(stopCtx); err != nil {
				a.logger.Error("final save failed", "err", err)
			}
		}
	}()

	srv := mcpserver.New(mcpserver.Deps{Workspace: ws, Registry: registry, Logger: a.logger})
	return srv.ServeStdio()
}

// readInitial loads the scene file if it exists. A missing file starts an
// empty scene that the first save creates.
func readInitial(path string) (string, []domain.Block, error) {
	if path == "" {
		return "", nil, nil
	}
	if _, err := scenefile.FormatOf(path); err != nil {
		return "", nil, err
	}
	doc, err := scenefile.Read(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil, nil
	}
	if err != nil {
		return "", nil, err
	}
	return doc.Name, doc.Blocks, nil
}
