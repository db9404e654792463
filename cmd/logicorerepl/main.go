// Command logicorerepl is a developer-facing demo binary that exercises
// pkg/logic end to end, the way the teacher ships cmd/example: not part
// of the engine's contract, just a thin CLI built with
// github.com/spf13/cobra over the library.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lucidkb/logicore/internal/logx"
	"github.com/lucidkb/logicore/pkg/logic"
)

// cliEnv threads the shared Store, config, and logger through every
// subcommand.
type cliEnv struct {
	store  *logic.Store
	cfg    replConfig
	logger *zap.Logger
}

func main() {
	var configPath string
	var dev bool

	env := &cliEnv{}

	root := &cobra.Command{
		Use:   "logicorerepl",
		Short: "Interactive demo and CLI for the logicore logic engine",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			env.cfg = cfg
			env.logger = logx.New(dev)
			env.store = logic.NewStore(logic.WithLogger(env.logger))
			return loadSession(cfg.SessionFile, env.store)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runREPL(cmd, env)
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file with REPL defaults")
	root.PersistentFlags().BoolVar(&dev, "dev", false, "use verbose development logging")

	root.AddCommand(newAssertCmd(env))
	root.AddCommand(newQueryCmd(env))
	root.AddCommand(newTraceCmd(env))
	root.AddCommand(newStatsCmd(env))
	root.AddCommand(newREPLCmd(env))

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
