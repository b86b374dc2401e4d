package main

import (
	"fmt"
	"log/slog"

	"github.com/dracory/slidebase"
	"github.com/dracory/slidebase/internal/devapi"
	"github.com/spf13/cobra"
)

type storeOptions struct {
	driver string
	dsn    string
}

func (o *storeOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.driver, "driver", "", "Database driver: sqlite, postgres, mysql, sqlserver (env DEVAPI_DRIVER)")
	cmd.Flags().StringVar(&o.dsn, "dsn", "", "Database DSN (env DEVAPI_DSN)")
}

// open resolves driver and DSN from flags over the environment.
func (o *storeOptions) open(cmd *cobra.Command) (*devapi.Store, int, error) {
	cfg, err := slidebase.LoadConfig()
	if err != nil {
		return nil, 0, fmt.Errorf("config: %w", err)
	}
	if cmd.Flags().Changed("driver") {
		cfg.DevAPIDriver = o.driver
	}
	if cmd.Flags().Changed("dsn") {
		cfg.DevAPIDSN = o.dsn
	}
	store, err := devapi.Open(cfg.DevAPIDriver, cfg.DevAPIDSN)
	if err != nil {
		return nil, 0, fmt.Errorf("open %s: %w", cfg.DevAPIDriver, err)
	}
	return store, cfg.DevAPIPort, nil
}

func newDevAPICmd(logger func() *slog.Logger) *cobra.Command {
	var (
		store storeOptions
		port  int
		seed  bool
	)

	cmd := &cobra.Command{
		Use:   "devapi",
		Short: "Run a local /db backend for development",
		RunE: func(cmd *cobra.Command, _ []string) error {
			log := logger()
			s, envPort, err := store.open(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			if seed {
				if err := s.Seed(cmd.Context()); err != nil {
					return fmt.Errorf("seed: %w", err)
				}
			}
			if !cmd.Flags().Changed("port") {
				port = envPort
			}

			addr := fmt.Sprintf(":%d", port)
			log.Info("devapi listening", slog.String("addr", addr), slog.String("driver", s.Driver()))
			return run(cmd.Context(), log, addr, devapi.NewServer(s, log).Routes())
		},
	}
	store.bind(cmd)
	cmd.Flags().IntVar(&port, "port", 0, "HTTP port (env DEVAPI_PORT)")
	cmd.Flags().BoolVar(&seed, "seed", true, "Insert sample users and products on start")
	return cmd
}

func newSeedCmd(logger func() *slog.Logger) *cobra.Command {
	var store storeOptions

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the schema and insert sample rows",
		RunE: func(cmd *cobra.Command, _ []string) error {
			log := logger()
			s, _, err := store.open(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			if err := s.Seed(cmd.Context()); err != nil {
				return fmt.Errorf("seed: %w", err)
			}
			log.Info("database seeded", slog.String("driver", s.Driver()))
			return nil
		},
	}
	store.bind(cmd)
	return cmd
}
