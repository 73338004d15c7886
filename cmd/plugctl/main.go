// Command plugctl inspects plugin topologies and edits their state files
// and preset banks.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/justyntemme/plugcore/pkg/framework/debug"
	"github.com/justyntemme/plugcore/pkg/framework/desc"
	"github.com/justyntemme/plugcore/pkg/framework/state"
	"github.com/justyntemme/plugcore/pkg/framework/topo"
	"github.com/justyntemme/plugcore/pkg/framework/validate"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

type flags struct {
	config   string
	topology string
	slots    string
	db       string
	logLevel string
}

// env is what every subcommand works on after flags and config are merged.
type env struct {
	cfg     config
	topo    *topo.PluginTopo
	desc    *desc.PluginDesc
	manager *state.Manager

	violations []validate.Violation
}

func newRootCmd() *cobra.Command {
	f := &flags{}
	e := &env{}

	root := &cobra.Command{
		Use:           "plugctl",
		Short:         "Inspect plugin topologies, state files and preset banks",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return e.setup(cmd, f)
		},
	}
	root.PersistentFlags().StringVar(&f.config, "config", "", "TOML config file")
	root.PersistentFlags().StringVar(&f.topology, "topology", "", "builtin topology name or HCL file (default from config, else multisynth)")
	root.PersistentFlags().StringVar(&f.slots, "slots", "", "slot overrides, e.g. osc=2,filter=1")
	root.PersistentFlags().StringVar(&f.db, "db", "", "preset database path")
	root.PersistentFlags().StringVar(&f.logLevel, "log-level", "", "debug|info|warn|error|off")

	root.AddCommand(
		newDescribeCmd(e),
		newValidateCmd(e),
		newInitPresetCmd(e),
		newInspectCmd(e),
		newSetCmd(e),
		newBenchCmd(e),
		newPresetCmd(e),
	)
	return root
}

func (e *env) setup(cmd *cobra.Command, f *flags) error {
	cfg, err := loadConfig(f.config)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("topology") {
		cfg.Topology = f.topology
	}
	if cmd.Flags().Changed("db") {
		cfg.DB = f.db
	}
	if cmd.Flags().Changed("log-level") {
		lvl, ok := debug.ParseLevel(f.logLevel)
		if !ok {
			return fmt.Errorf("unknown log level %q", f.logLevel)
		}
		cfg.LogLevel = lvl
	}
	if f.slots != "" {
		overrides, err := parseSlots(f.slots)
		if err != nil {
			return err
		}
		for id, n := range overrides {
			cfg.Slots[id] = n
		}
	}
	debug.SetLevel(cfg.LogLevel)

	t, err := loadTopology(cfg.Topology)
	if err != nil {
		return err
	}
	slots, err := slotCounts(t, cfg.Slots)
	if err != nil {
		return err
	}
	d := desc.Compile(t, slots)
	violations := validate.Validate(t, d)
	if len(violations) > 0 && cmd.Name() != "validate" {
		return &validate.Error{Violations: violations}
	}

	e.cfg = cfg
	e.topo = t
	e.desc = d
	e.violations = violations
	e.manager = state.NewManager(d)
	return nil
}
