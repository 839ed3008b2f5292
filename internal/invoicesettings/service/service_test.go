package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/rentledger/internal/clock"
	"github.com/smallbiznis/rentledger/internal/config"
	"github.com/smallbiznis/rentledger/internal/invoicesettings/domain"
	"github.com/smallbiznis/rentledger/internal/invoicesettings/repository"
	"github.com/smallbiznis/rentledger/internal/orgcontext"
	"github.com/smallbiznis/rentledger/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) domain.Service {
	t.Helper()
	conn, err := db.NewTest(&domain.InvoiceSettings{})
	require.NoError(t, err)
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return New(Params{
		DB:        conn,
		Log:       zap.NewNop(),
		GenID:     node,
		Clock:     clock.NewFakeClock(time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)),
		Invoicing: config.NewStaticInvoicingConfigHolder(config.DefaultInvoicingConfig()),
		Repo:      repository.Provide(),
	})
}

func intPtr(v int) *int { return &v }

func TestGetReturnsDefaultsWithoutPersisting(t *testing.T) {
	svc := newTestService(t)
	ctx := orgcontext.WithOrgID(context.Background(), snowflake.ID(5))

	got, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, snowflake.ID(0), got.ID)
	assert.Equal(t, "INV", got.InvoicePrefix)
	assert.Equal(t, 7, got.DaysBeforeDue)
	assert.Equal(t, 3, got.ReminderDaysAfter)
	assert.False(t, got.AutoSendEnabled)
	assert.False(t, got.SendReminderEnabled)

	automated, err := svc.ListAutomated(ctx)
	require.NoError(t, err)
	assert.Empty(t, automated)
}

func TestUpsertKeepsOneRowPerOrganization(t *testing.T) {
	svc := newTestService(t)
	ctx := orgcontext.WithOrgID(context.Background(), snowflake.ID(5))

	first, err := svc.Upsert(ctx, domain.UpsertRequest{CompanyName: "Acme Lettings", InvoicePrefix: "acme"})
	require.NoError(t, err)
	assert.Equal(t, "ACME", first.InvoicePrefix)

	second, err := svc.Upsert(ctx, domain.UpsertRequest{
		CompanyName:         "Acme Lettings Ltd",
		InvoicePrefix:       "ACME",
		AutoSendEnabled:     true,
		DaysBeforeDue:       intPtr(10),
		ReminderDaysAfter:   intPtr(5),
		SendReminderEnabled: true,
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	stored, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.ID, stored.ID)
	assert.Equal(t, "Acme Lettings Ltd", stored.CompanyName)
	assert.Equal(t, 10, stored.DaysBeforeDue)
	assert.Equal(t, 5, stored.ReminderDaysAfter)
	assert.True(t, stored.AutoSendEnabled)

	automated, err := svc.ListAutomated(ctx)
	require.NoError(t, err)
	require.Len(t, automated, 1)
	assert.Equal(t, snowflake.ID(5), automated[0].OrgID)
}

func TestUpsertValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := orgcontext.WithOrgID(context.Background(), snowflake.ID(5))

	_, err := svc.Upsert(ctx, domain.UpsertRequest{DaysBeforeDue: intPtr(-1)})
	assert.ErrorIs(t, err, domain.ErrInvalidDays)

	_, err = svc.Upsert(ctx, domain.UpsertRequest{InvoicePrefix: "IN V"})
	assert.ErrorIs(t, err, domain.ErrInvalidPrefix)

	_, err = svc.Upsert(ctx, domain.UpsertRequest{CompanyEmail: "not-an-email"})
	assert.ErrorIs(t, err, domain.ErrInvalidEmail)

	_, err = svc.Upsert(context.Background(), domain.UpsertRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidOrganization)
}
