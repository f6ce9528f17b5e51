package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/pantry/internal/paths"
	"github.com/mesh-intelligence/pantry/internal/seed"
)

func newInitCmd(a *app) *cobra.Command {
	var (
		withSeed    bool
		backendName string
	)
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize pantry configuration and storage",
		Long: "Create the configuration directory and config.yaml, then initialize the\n" +
			"storage backend. With --seed the course catalog tables and sample rows\n" +
			"are created as well.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runInit(withSeed, backendName)
		},
	}
	cmd.Flags().BoolVar(&withSeed, "seed", false, "create the course catalog tables with sample rows")
	cmd.Flags().StringVar(&backendName, "backend", defaultBackend, "backend written to a new config.yaml (json, sqlite, bson)")
	return cmd
}

func (a *app) runInit(withSeed bool, backendName string) error {
	// init creates a project directory unless told otherwise.
	configDir := a.configDir
	if configDir == "" && os.Getenv(paths.EnvConfigDir) == "" {
		configDir = paths.DefaultConfigDirName
	}
	configDir, err := paths.ResolveConfigDir(configDir)
	if err != nil {
		return sysErr(fmt.Errorf("resolve config dir: %w", err))
	}
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return sysErr(fmt.Errorf("create config directory: %w", err))
	}

	cf := configFile{Backend: backendName}
	if a.dataDir != "" {
		if cf.DataDir, err = filepath.Abs(a.dataDir); err != nil {
			return sysErr(err)
		}
	}
	created, err := writeConfigIfMissing(paths.ConfigFile(configDir), cf)
	if err != nil {
		return sysErr(fmt.Errorf("write config: %w", err))
	}
	if created {
		a.log.Debug("config written", zap.String("path", paths.ConfigFile(configDir)))
	}

	a.configDir = configDir
	ss, err := a.openSession()
	if err != nil {
		return err
	}
	defer ss.close()

	if withSeed {
		if err := seed.Apply(ss.store, true); err != nil {
			return err
		}
	}
	if err := ss.commit(); err != nil {
		return err
	}

	fmt.Fprintf(a.stdout, "Pantry initialized (backend %s, data %s)\n", ss.cfg.Backend, ss.cfg.DataDir)
	return nil
}
