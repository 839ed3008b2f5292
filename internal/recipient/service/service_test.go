package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/rentledger/internal/clock"
	"github.com/smallbiznis/rentledger/internal/orgcontext"
	"github.com/smallbiznis/rentledger/internal/recipient/domain"
	tenantdomain "github.com/smallbiznis/rentledger/internal/tenant/domain"
	"github.com/smallbiznis/rentledger/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeTenantService struct {
	tenants map[string]tenantdomain.TenantDetails
}

func (f *fakeTenantService) Get(_ context.Context, id string) (tenantdomain.TenantDetails, error) {
	details, ok := f.tenants[id]
	if !ok {
		return tenantdomain.TenantDetails{}, tenantdomain.ErrNotFound
	}
	return details, nil
}

func (f *fakeTenantService) List(context.Context) ([]tenantdomain.TenantDetails, error) {
	out := make([]tenantdomain.TenantDetails, 0, len(f.tenants))
	for _, d := range f.tenants {
		out = append(out, d)
	}
	return out, nil
}

func newTestService(t *testing.T) (domain.Service, *clock.FakeClock) {
	t.Helper()
	conn, err := db.NewTest(&domain.InvoiceRecipient{})
	require.NoError(t, err)
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	clk := clock.NewFakeClock(time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC))

	tenants := &fakeTenantService{tenants: map[string]tenantdomain.TenantDetails{
		"20": {Tenant: tenantdomain.Tenant{ID: 20, OrgID: 1, Name: "Ada", Email: "Ada@Example.com"}},
		"21": {Tenant: tenantdomain.Tenant{ID: 21, OrgID: 1, Name: "No Mail"}},
	}}
	return New(Params{DB: conn, Log: zap.NewNop(), GenID: node, Clock: clk, TenantSvc: tenants}), clk
}

func TestResolveSynthesizesTenantEmail(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := orgcontext.WithOrgID(context.Background(), snowflake.ID(1))

	got, err := svc.Resolve(ctx, snowflake.ID(20))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "ada@example.com", got[0].Email)
	assert.True(t, got[0].IsPrimary)
	assert.True(t, got[0].Synthesized)

	none, err := svc.Resolve(ctx, snowflake.ID(21))
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestRecipientsKeepSinglePrimary(t *testing.T) {
	svc, clk := newTestService(t)
	ctx := orgcontext.WithOrgID(context.Background(), snowflake.ID(1))

	first, err := svc.Add(ctx, domain.AddRequest{TenantID: "20", Email: "billing@example.com"})
	require.NoError(t, err)
	assert.True(t, first.IsPrimary, "first recipient becomes primary")

	clk.Advance(time.Minute)
	second, err := svc.Add(ctx, domain.AddRequest{TenantID: "20", Email: "guarantor@example.com", Name: "Guarantor"})
	require.NoError(t, err)
	assert.False(t, second.IsPrimary)

	_, err = svc.Add(ctx, domain.AddRequest{TenantID: "20", Email: "BILLING@example.com"})
	assert.ErrorIs(t, err, domain.ErrDuplicateRecipient)

	_, err = svc.SetPrimary(ctx, second.ID.String())
	require.NoError(t, err)

	resolved, err := svc.Resolve(ctx, snowflake.ID(20))
	require.NoError(t, err)
	require.Len(t, resolved, 2)
	assert.Equal(t, "guarantor@example.com", resolved[0].Email)
	assert.True(t, resolved[0].IsPrimary)
	assert.False(t, resolved[1].IsPrimary)
	assert.Equal(t, []string{"guarantor@example.com", "billing@example.com"}, domain.Emails(resolved))

	require.NoError(t, svc.Remove(ctx, second.ID.String()))
	list, err := svc.List(ctx, "20")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "billing@example.com", list[0].Email)
}

func TestRecipientValidationAndScoping(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := orgcontext.WithOrgID(context.Background(), snowflake.ID(1))

	_, err := svc.Add(ctx, domain.AddRequest{TenantID: "20", Email: "nope"})
	assert.ErrorIs(t, err, domain.ErrInvalidEmail)

	_, err = svc.Add(ctx, domain.AddRequest{TenantID: "abc", Email: "a@example.com"})
	assert.ErrorIs(t, err, domain.ErrInvalidTenant)

	added, err := svc.Add(ctx, domain.AddRequest{TenantID: "20", Email: "a@example.com"})
	require.NoError(t, err)

	otherOrg := orgcontext.WithOrgID(context.Background(), snowflake.ID(2))
	err = svc.Remove(otherOrg, added.ID.String())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
