package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/justyntemme/plugcore/pkg/framework/debug"
	"github.com/justyntemme/plugcore/pkg/framework/state"
	"github.com/justyntemme/plugcore/pkg/framework/topo"
)

func newInitPresetCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "init-preset <file>",
		Short: "Write a state file holding every parameter at its default",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := e.manager.SaveFile(args[0], state.New(e.desc)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d parameters)\n", args[0], e.desc.ParamCount)
			return nil
		},
	}
}

func newInspectCmd(e *env) *cobra.Command {
	var changedOnly bool
	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Decode a state file and print its values and load warnings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			h, err := state.ReadHeader(data)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			c, diags, err := e.manager.Load(data)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "plugin %s %s (%s), format %d, %d entries\n",
				h.PluginID, h.Version, h.Vendor, h.FormatVersion, h.Entries)
			formatValues(w, c, changedOnly)
			for _, d := range diags {
				fmt.Fprintf(w, "warning: %s\n", d)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&changedOnly, "changed", false, "only print values that differ from the default")
	return cmd
}

func newSetCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <file> <param-id> <text>",
		Short: "Set one parameter in a state file from display text",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, id, text := args[0], args[1], args[2]
			index, ok := e.desc.ByID(id)
			if !ok {
				return fmt.Errorf("unknown parameter %q", id)
			}
			pd := &e.desc.Params[index]
			if pd.Param.Dir == topo.Output {
				return fmt.Errorf("parameter %s is an output and is not stored", id)
			}
			c, diags, err := e.manager.LoadFile(path)
			if err != nil {
				return err
			}
			for _, d := range diags {
				debug.Warn("%s: %s", path, d)
			}
			v, err := pd.Param.Domain.ParseText(text)
			if err != nil {
				return fmt.Errorf("parameter %s: %w", id, err)
			}
			v = c.SetPlain(index, v)
			if err := e.manager.SaveFile(path, c); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", id, pd.Param.Domain.Text(v))
			return nil
		},
	}
	// Values such as -6 are text, not flags.
	cmd.Flags().SetInterspersed(false)
	return cmd
}

func newBenchCmd(e *env) *cobra.Command {
	var rounds int
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Time state encode and decode of the current topology",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if rounds <= 0 {
				return fmt.Errorf("rounds must be positive, got %d", rounds)
			}
			p := debug.NewProfiler(rounds)
			c := state.New(e.desc)
			var blob []byte
			for i := 0; i < rounds; i++ {
				p.Time("save", func() { blob = e.manager.Save(c) })
				stop := p.Start("load")
				_, _, err := e.manager.Load(blob)
				stop()
				if err != nil {
					return err
				}
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%d parameters, %d byte blob, %d rounds\n", e.desc.ParamCount, len(blob), rounds)
			fmt.Fprint(w, p.Report())
			return nil
		},
	}
	cmd.Flags().IntVar(&rounds, "rounds", 1000, "number of save/load rounds")
	return cmd
}

func formatValues(w io.Writer, c *state.Container, changedOnly bool) {
	d := c.Desc()
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tVALUE\tDEFAULT")
	for i := range d.Params {
		pd := &d.Params[i]
		if pd.Param.Dir == topo.Output {
			continue
		}
		v, def := c.Plain(i), c.Default(i)
		if changedOnly && v == def {
			continue
		}
		dom := &pd.Param.Domain
		mark := ""
		if v != def {
			mark = " *"
		}
		fmt.Fprintf(tw, "%s\t%s%s\t%s\n", pd.ID, dom.Text(v), mark, dom.Text(def))
	}
	tw.Flush()
}
