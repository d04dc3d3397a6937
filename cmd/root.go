package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/arcanaland/cardoracle/internal/catalog"
	"github.com/arcanaland/cardoracle/internal/config"
	"github.com/arcanaland/cardoracle/internal/logger"
	"github.com/arcanaland/cardoracle/internal/store"
)

var configPath string

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "cardoracle",
	Short: "Tarot readings for the web and the terminal",
	Long: `Card Oracle serves interactive tarot readings over HTTP and lets you manage
the readings, positions, cards and descriptions they are built from.

Readings are defined in TOML or YAML deck files, checked with 'validate' and
loaded with 'deck import'.`,
	SilenceUsage: true,
}

func init() {
	RootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default $XDG_CONFIG_HOME/cardoracle/config.toml)")
	RootCmd.AddCommand(validateCmd)
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return RootCmd.Execute()
}

// app holds what most commands need: config, a logger and an open store
type app struct {
	cfg     *config.Config
	log     *logger.Logger
	store   *store.GormStore
	catalog *catalog.Catalog
}

func openApp() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		return nil, fmt.Errorf("error creating logger: %v", err)
	}

	s, err := store.Open(cfg.Database.Driver, cfg.Database.DSN, log)
	if err != nil {
		return nil, err
	}

	return &app{cfg: cfg, log: log, store: s, catalog: catalog.New(s)}, nil
}

func (a *app) Close() {
	_ = a.store.Close()
	a.log.Sync()
}

// readingArg picks the reading id from args or falls back to the configured default
func (a *app) readingArg(args []string) (uint, error) {
	if len(args) > 0 {
		id, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil || id == 0 {
			return 0, fmt.Errorf("invalid reading id: %s", args[0])
		}
		return uint(id), nil
	}
	if a.cfg.Display.DefaultReading == 0 {
		return 0, fmt.Errorf("no reading given and no default set (see 'cardoracle deck set-default')")
	}
	return a.cfg.Display.DefaultReading, nil
}
