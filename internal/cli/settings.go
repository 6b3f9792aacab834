package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/runoshun/tasktree/internal/infra/config"
	"github.com/runoshun/tasktree/internal/settings"
	"github.com/spf13/cobra"
)

// errNoConfigFiles is returned by settings commands on a container built
// without config file access.
var errNoConfigFiles = errors.New("settings files are not available")

// newSettingsCommand creates the settings command.
func newSettingsCommand(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Manage settings",
		Long: `Manage tasktree settings.

Settings are read from the global file ($XDG_CONFIG_HOME/tasktree/config.toml)
and then from tasktree.toml in the data directory; later files win.`,
		Annotations: noLoad(),
		// No RunE: shows subcommand list when called without arguments
	}

	cmd.AddCommand(newSettingsShowCommand(s))
	cmd.AddCommand(newSettingsSetCommand(s))
	cmd.AddCommand(newSettingsInitCommand(s))

	return cmd
}

// newSettingsShowCommand creates the settings show subcommand.
func newSettingsShowCommand(s *session) *cobra.Command {
	return &cobra.Command{
		Use:         "show",
		Short:       "Display effective settings",
		Annotations: noLoad(),
		Args:        cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()

			if m := s.c.ConfigManager; m != nil {
				_, _ = fmt.Fprintln(w, "[Loaded from]")
				for _, info := range []config.Info{m.GlobalConfigInfo(), m.RepoConfigInfo()} {
					if info.Path == "" {
						continue
					}
					if info.Exists {
						_, _ = fmt.Fprintf(w, "- %s\n", info.Path)
					} else {
						_, _ = fmt.Fprintf(w, "- %s (not found)\n", info.Path)
					}
				}
				_, _ = fmt.Fprintln(w)
			}

			_, _ = fmt.Fprintln(w, "[Effective Settings]")
			tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
			overrides := s.c.Settings.Overrides()
			for _, key := range settings.Keys() {
				marker := ""
				if _, ok := overrides[key]; ok {
					marker = "*"
				}
				_, _ = fmt.Fprintf(tw, "%s\t%s%s\n", key, s.c.Settings.Get(key), marker)
			}
			return tw.Flush()
		},
	}
}

// newSettingsSetCommand creates the settings set subcommand.
func newSettingsSetCommand(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "set <section.option> <value>",
		Short: "Change a setting and save it to the data directory",
		Long: `Change a setting and save it to tasktree.toml in the data directory.

Examples:
  tasktree settings set view.sortby duedate
  tasktree settings set behavior.markparentcompletedwhenallchildrencompleted false`,
		Annotations: noLoad(),
		Args:        cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if s.c.ConfigManager == nil {
				return errNoConfigFiles
			}
			key, err := settings.ParseKey(args[0])
			if err != nil {
				return err
			}
			if _, err := s.c.Settings.Set(key, args[1]); err != nil {
				return err
			}
			if err := s.c.ConfigManager.Save(s.c.Settings); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", key, s.c.Settings.Get(key))
			return nil
		},
	}
}

// newSettingsInitCommand creates the settings init subcommand.
func newSettingsInitCommand(s *session) *cobra.Command {
	return &cobra.Command{
		Use:         "init",
		Short:       "Write a settings file listing every setting",
		Annotations: noLoad(),
		Args:        cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if s.c.ConfigManager == nil {
				return errNoConfigFiles
			}
			if err := s.c.ConfigManager.InitRepoConfig(); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", s.c.ConfigManager.RepoConfigInfo().Path)
			return nil
		},
	}
}
