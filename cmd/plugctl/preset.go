package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/justyntemme/plugcore/pkg/framework/debug"
	"github.com/justyntemme/plugcore/pkg/presetdb"
)

func newPresetCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preset",
		Short: "Manage the preset bank",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "save <name> <file>",
			Short: "Store a state file in the bank under name",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				name, path := args[0], args[1]
				data, err := os.ReadFile(path)
				if err != nil {
					return err
				}
				// Only blobs this plugin can decode go into its bank.
				if _, _, err := e.manager.Load(data); err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				return e.withStore(func(s *presetdb.Store) error {
					p, err := s.Put(name, data)
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "saved %q (%s, %d bytes)\n", p.Name, p.Version, len(p.Data))
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "load <name> <file>",
			Short: "Write a stored preset to a state file",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				name, path := args[0], args[1]
				return e.withStore(func(s *presetdb.Store) error {
					p, err := s.Get(e.topo.Info.ID, name)
					if err != nil {
						return err
					}
					c, diags, err := e.manager.Load(p.Data)
					if err != nil {
						return fmt.Errorf("preset %q: %w", name, err)
					}
					for _, d := range diags {
						fmt.Fprintf(cmd.OutOrStdout(), "warning: %s\n", d)
					}
					if err := e.manager.SaveFile(path, c); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "wrote %q to %s\n", name, path)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List stored presets of the current plugin",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return e.withStore(func(s *presetdb.Store) error {
					presets, err := s.List(e.topo.Info.ID)
					if err != nil {
						return err
					}
					tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
					fmt.Fprintln(tw, "NAME\tVERSION\tBYTES\tUPDATED")
					for _, p := range presets {
						fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", p.Name, p.Version, len(p.Data), timestamp(p.Updated))
					}
					return tw.Flush()
				})
			},
		},
		&cobra.Command{
			Use:   "delete <name>",
			Short: "Remove a stored preset",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return e.withStore(func(s *presetdb.Store) error {
					err := s.Delete(e.topo.Info.ID, args[0])
					if errors.Is(err, presetdb.ErrNotFound) {
						return fmt.Errorf("no preset named %q", args[0])
					}
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "deleted %q\n", args[0])
					return nil
				})
			},
		},
	)
	return cmd
}

// withStore opens and migrates the preset bank for the duration of fn.
func (e *env) withStore(fn func(*presetdb.Store) error) error {
	if dir := filepath.Dir(e.cfg.DB); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	s, err := presetdb.Open(e.cfg.DB)
	if err != nil {
		return err
	}
	defer func() {
		if err := s.Close(); err != nil {
			debug.Warn("closing %s: %v", e.cfg.DB, err)
		}
	}()
	if err := s.Migrate(); err != nil {
		return err
	}
	return fn(s)
}

// timestamp renders preset times in the local zone.
func timestamp(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04:05")
}
