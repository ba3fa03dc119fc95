package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tsriharsha402/cleaning-booking-system/internal/model"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app) error {
				if err := model.AutoMigrate(a.db); err != nil {
					return err
				}
				a.logger.Info("schema migrated", zap.String("driver", a.cfg.DB.Driver))
				return nil
			})
		},
	}
}

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Migrate and insert the reference fleet of vehicles and cleaners",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app) error {
				if err := model.AutoMigrate(a.db); err != nil {
					return err
				}
				if err := model.Seed(a.db); err != nil {
					return fmt.Errorf("seed: %w", err)
				}
				a.logger.Info("fleet seeded",
					zap.Int("vehicles", model.SeedVehicles),
					zap.Int("cleaners_per_vehicle", model.SeedCleanersPerVehicle),
				)
				return nil
			})
		},
	}
}

func withApp(ctx context.Context, fn func(a *app) error) error {
	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.close()
	return fn(a)
}
