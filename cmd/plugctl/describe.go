package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/justyntemme/plugcore/pkg/framework/desc"
	"github.com/justyntemme/plugcore/pkg/framework/param"
	"github.com/justyntemme/plugcore/pkg/framework/topo"
)

func newDescribeCmd(e *env) *cobra.Command {
	var modulesOnly bool
	cmd := &cobra.Command{
		Use:   "describe",
		Short: "Print the compiled module and parameter descriptors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s\n%d modules, %d parameters\n\n", e.topo.Info, e.desc.ModuleCount, e.desc.ParamCount)
			formatModules(w, e.desc)
			if !modulesOnly {
				fmt.Fprintln(w)
				formatParams(w, e.desc)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&modulesOnly, "modules", false, "only list module instances")
	return cmd
}

func newValidateCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the topology and its descriptors for consistency",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			for _, v := range e.violations {
				fmt.Fprintln(w, v)
			}
			if n := len(e.violations); n > 0 {
				return fmt.Errorf("%s: %d violations", e.topo.Info.ID, n)
			}
			fmt.Fprintf(w, "ok: %s, %d modules, %d parameters\n", e.topo.Info.ID, e.desc.ModuleCount, e.desc.ParamCount)
			return nil
		},
	}
}

// formatModules writes one row per module instance.
func formatModules(w io.Writer, d *desc.PluginDesc) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "GLOBAL\tID\tNAME\tGROUP\tPARAMS")
	for _, m := range d.Modules {
		group := "-"
		if g := m.Module.Group; g < len(d.Topo.Groups) {
			group = d.Topo.Groups[g].ID
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d-%d\n",
			m.Global, m.ID, m.Name, group, m.ParamStart, m.ParamStart+len(m.Params)-1)
	}
	tw.Flush()
}

// formatParams writes one row per parameter instance.
func formatParams(w io.Writer, d *desc.PluginDesc) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "GLOBAL\tID\tNAME\tTYPE\tRANGE\tDEFAULT\tTAG\tFLAGS")
	for i := range d.Params {
		p := &d.Params[i]
		dom := &p.Param.Domain
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%08x\t%s\n",
			p.Global, p.ID, p.Name, dom.Type, rangeText(dom),
			dom.Text(dom.DefaultValue()), p.Tag, flagText(p.Param))
	}
	tw.Flush()
}

func rangeText(d *param.Domain) string {
	switch d.Type {
	case param.TypeToggle:
		return "off|on"
	case param.TypeList:
		ids := make([]string, len(d.Items))
		for i, it := range d.Items {
			ids[i] = it.ID
		}
		return strings.Join(ids, "|")
	default:
		lo, hi := d.Bounds()
		return d.Text(d.FromFloat(lo)) + " .. " + d.Text(d.FromFloat(hi))
	}
}

func flagText(p *topo.ParamTopo) string {
	var out []string
	if p.Dir == topo.Output {
		out = append(out, "output")
	}
	if p.Rate == topo.RateAccurate {
		out = append(out, "accurate")
	}
	if p.Flags&topo.FlagHidden != 0 {
		out = append(out, "hidden")
	}
	if p.Flags&topo.FlagNoAutomation != 0 {
		out = append(out, "no-automation")
	}
	if p.Flags&topo.FlagBypass != 0 {
		out = append(out, "bypass")
	}
	if p.Visible != nil || p.Enabled != nil {
		out = append(out, "bound")
	}
	if len(out) == 0 {
		return "-"
	}
	return strings.Join(out, ",")
}
