package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/showcase/internal/config"
	"github.com/mesh-intelligence/showcase/internal/paths"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize showcase configuration and snapshot storage",
		Long: "Create the configuration directory with a default config.yaml if it is\n" +
			"missing, then open and close the snapshot store so its files exist.",
		RunE: runInit,
	}
}

func runInit(cmd *cobra.Command, args []string) error {
	configDir, err := paths.ResolveConfigDir(flags.configDir)
	if err != nil {
		return &sysError{fmt.Errorf("resolve config dir: %w", err)}
	}

	wrote, err := config.WriteDefault(configDir)
	if err != nil {
		return &sysError{fmt.Errorf("write config: %w", err)}
	}
	if wrote {
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", paths.ConfigFile(configDir))
	}

	settings, err := config.Load(configDir)
	if err != nil {
		return &sysError{err}
	}
	cfg, err := snapshotConfig(settings)
	if err != nil {
		return &sysError{err}
	}
	store, err := openSnapshots(cfg)
	if err != nil {
		return &sysError{fmt.Errorf("initialize storage: %w", err)}
	}
	if err := store.Detach(); err != nil {
		return &sysError{fmt.Errorf("finalize storage: %w", err)}
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Showcase initialized successfully")
	return nil
}
