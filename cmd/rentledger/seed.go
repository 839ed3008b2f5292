package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/rentledger/internal/app"
	"github.com/smallbiznis/rentledger/internal/clock"
	"github.com/smallbiznis/rentledger/internal/config"
	"github.com/smallbiznis/rentledger/internal/migration"
	"github.com/smallbiznis/rentledger/internal/observability"
	"github.com/smallbiznis/rentledger/internal/seed"
	"github.com/smallbiznis/rentledger/pkg/db"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var seedCmd = &cobra.Command{
	Use:     "seed",
	Short:   "Create a demo property, tenant and invoice settings",
	Example: `  rentledger seed --org 1`,
	RunE:    runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)

	seedCmd.Flags().String("org", "", "Organization id (required)")
	_ = seedCmd.MarkFlagRequired("org")
}

func runSeed(cmd *cobra.Command, args []string) error {
	orgFlag, _ := cmd.Flags().GetString("org")
	orgID, err := snowflake.ParseString(orgFlag)
	if err != nil || orgID == 0 {
		return errors.New("invalid --org value")
	}

	var (
		conn *gorm.DB
		node *snowflake.Node
		clk  clock.Clock
		log  *zap.Logger
	)
	fxApp := fx.New(
		config.Module,
		observability.Module,
		db.Module,
		clock.Module,
		migration.Module,
		fx.Provide(app.RegisterSnowflake),
		fx.Populate(&conn, &node, &clk, &log),
		fx.NopLogger,
	)
	startCtx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
	defer cancel()
	if err := fxApp.Start(startCtx); err != nil {
		return err
	}
	defer func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer stopCancel()
		_ = fxApp.Stop(stopCtx)
	}()

	result, err := seed.EnsureDemoData(cmd.Context(), conn, node, orgID, clk.Now())
	if err != nil {
		return fmt.Errorf("seed organization %s: %w", orgID, err)
	}

	log.Info("demo data ready",
		zap.String("org_id", orgID.String()),
		zap.String("tenant_id", result.TenantID.String()),
		zap.Bool("created", result.Created),
	)
	fmt.Fprintf(cmd.OutOrStdout(), "tenant %s (created=%t)\n", result.TenantID, result.Created)
	return nil
}
