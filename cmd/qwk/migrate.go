package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"qwksearch/internal/config"
	"qwksearch/internal/repository/postgres"
)

func migrateCMD(cfg *config.Config) *cobra.Command {
	var printOnly bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the embedded schema to DATABASE_URL",
		RunE: func(cmd *cobra.Command, args []string) error {
			tables := postgres.NewTableNames(cfg.TablePrefix)
			if printOnly {
				fmt.Fprint(cmd.OutOrStdout(), postgres.Schema(tables))
				return nil
			}
			if cfg.DatabaseURL == "" {
				return errors.New("DATABASE_URL is required")
			}

			pool, err := postgres.CreateConnectionPool(cmd.Context(), cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := postgres.Migrate(cmd.Context(), pool, tables); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema applied (prefix: %s)\n", tables.Prefix)
			return nil
		},
	}
	cmd.Flags().BoolVar(&printOnly, "print", false, "print the schema instead of applying it")
	return cmd
}

func dropCMD(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "drop",
		Short: "Drop every prefixed table (dev and test only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.Environment == "prod" {
				return errors.New("refusing to drop tables in prod")
			}
			if cfg.DatabaseURL == "" {
				return errors.New("DATABASE_URL is required")
			}

			pool, err := postgres.CreateConnectionPool(cmd.Context(), cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer pool.Close()

			tables := postgres.NewTableNames(cfg.TablePrefix)
			if err := postgres.Drop(cmd.Context(), pool, tables); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "all tables dropped (prefix: %s)\n", tables.Prefix)
			return nil
		},
	}
}
