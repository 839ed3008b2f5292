package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/rentledger/internal/app"
	invoicedomain "github.com/smallbiznis/rentledger/internal/invoice/domain"
	"github.com/smallbiznis/rentledger/internal/orgcontext"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var regenerateCmd = &cobra.Command{
	Use:   "regenerate",
	Short: "Delete and rebuild a tenant's invoice schedule",
	Long: `Delete every invoice of the tenant and generate a fresh schedule from the
tenant's current lease terms. Invoices that were already sent or paid are
deleted as well.`,
	Example: `  rentledger regenerate --org 1 --tenant 1789563214567890944`,
	RunE: runRegenerate,
}

func init() {
	rootCmd.AddCommand(regenerateCmd)

	regenerateCmd.Flags().String("org", "", "Organization id (required)")
	regenerateCmd.Flags().String("tenant", "", "Tenant id (required)")
	_ = regenerateCmd.MarkFlagRequired("org")
	_ = regenerateCmd.MarkFlagRequired("tenant")
}

func runRegenerate(cmd *cobra.Command, args []string) error {
	orgFlag, _ := cmd.Flags().GetString("org")
	tenantID, _ := cmd.Flags().GetString("tenant")

	orgID, err := snowflake.ParseString(orgFlag)
	if err != nil || orgID == 0 {
		return errors.New("invalid --org value")
	}

	var (
		invoiceSvc invoicedomain.Service
		log        *zap.Logger
	)
	fxApp := fx.New(
		app.Core,
		fx.Populate(&invoiceSvc, &log),
		fx.NopLogger,
	)

	startCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := fxApp.Start(startCtx); err != nil {
		return err
	}
	defer func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer stopCancel()
		_ = fxApp.Stop(stopCtx)
	}()

	ctx := orgcontext.WithOrgID(cmd.Context(), orgID)
	ctx = orgcontext.WithActorID(ctx, "cli")
	result, err := invoiceSvc.RegenerateForTenant(ctx, tenantID)
	if err != nil {
		return fmt.Errorf("regenerate tenant %s: %w", tenantID, err)
	}

	log.Info("schedule regenerated",
		zap.String("org_id", orgID.String()),
		zap.String("tenant_id", tenantID),
		zap.Int64("deleted", result.Deleted),
		zap.Int("created", len(result.Invoices)),
		zap.Strings("failed_periods", result.FailedPeriods),
	)
	fmt.Fprintf(cmd.OutOrStdout(), "deleted %d, created %d invoices\n", result.Deleted, len(result.Invoices))
	if len(result.FailedPeriods) > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "failed periods: %v\n", result.FailedPeriods)
	}
	return nil
}
