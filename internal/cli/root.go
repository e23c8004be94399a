// Package cli implements the poster command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"poster/internal/config"
	"poster/internal/logger"
)

const (
	appName           = "poster"
	defaultConfigPath = "poster.toml"
)

var (
	version = "dev"
	commit  string
	date    string
)

// SetVersion sets the version information displayed by --version.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// app is the state shared by all commands, filled in by the root's
// PersistentPreRunE.
type app struct {
	configPath string
	verbose    bool

	cfg    config.Config
	logger *log.Logger
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// Execute runs the poster CLI.
func Execute(ctx context.Context) error {
	return newRootCmd(os.Stdin, os.Stdout, os.Stderr).ExecuteContext(ctx)
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdin: stdin, stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:          appName,
		Short:        "Poster lays out signage blocks on a snapping canvas",
		Long:         `Poster is a layout engine for retail posters and signage. It serves the editor to agents over MCP, checks scene files, and replays keyboard shortcuts against them.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetVersionTemplate(fmt.Sprintf("%s {{.Version}}\ncommit: %s\nbuilt: %s\n", appName, commit, date))
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", defaultConfigPath, "config file (TOML)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(a.newServeCmd())
	root.AddCommand(a.newCheckCmd())
	root.AddCommand(a.newKeysCmd())
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	level, err := logger.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	if a.verbose {
		level = log.DebugLevel
	}
	a.cfg = cfg
	a.logger = logger.New(a.stderr, level)
	cmd.SetContext(logger.WithContext(cmd.Context(), a.logger))
	return nil
}
