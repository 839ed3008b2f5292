package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/rentledger/internal/orgcontext"
	"github.com/smallbiznis/rentledger/internal/tenant/domain"
	"github.com/smallbiznis/rentledger/internal/tenant/repository"
	"github.com/smallbiznis/rentledger/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestTenantPropertyResolution(t *testing.T) {
	conn, err := db.NewTest(&domain.Tenant{}, &domain.Property{}, &domain.UnitTenant{})
	require.NoError(t, err)

	now := time.Now().UTC()
	orgID := snowflake.ID(10)
	direct := snowflake.ID(100)
	linked := snowflake.ID(101)
	require.NoError(t, conn.Create(&[]domain.Property{
		{ID: direct, OrgID: orgID, Address: "1 Direct St", CreatedAt: now},
		{ID: linked, OrgID: orgID, Address: "2 Unit Ave", CreatedAt: now},
	}).Error)
	require.NoError(t, conn.Create(&[]domain.Tenant{
		{ID: 1, OrgID: orgID, Name: "Alice", PropertyID: &direct, MonthlyRent: decimal.NewFromInt(900), RentDueDay: 1, CreatedAt: now, UpdatedAt: now},
		{ID: 2, OrgID: orgID, Name: "Bob", MonthlyRent: decimal.NewFromInt(900), RentDueDay: 1, CreatedAt: now, UpdatedAt: now},
		{ID: 3, OrgID: orgID, Name: "Carol", MonthlyRent: decimal.NewFromInt(900), RentDueDay: 1, CreatedAt: now, UpdatedAt: now},
		{ID: 4, OrgID: snowflake.ID(11), Name: "Other org", MonthlyRent: decimal.NewFromInt(900), RentDueDay: 1, CreatedAt: now, UpdatedAt: now},
	}).Error)
	require.NoError(t, conn.Create(&domain.UnitTenant{ID: 50, OrgID: orgID, TenantID: 2, PropertyID: linked, UnitLabel: "Flat 3", CreatedAt: now}).Error)

	svc := New(Params{DB: conn, Log: zap.NewNop(), Repo: repository.Provide()})
	ctx := orgcontext.WithOrgID(context.Background(), orgID)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "1 Direct St", list[0].PropertyAddress())
	assert.Equal(t, "2 Unit Ave", list[1].PropertyAddress())
	assert.Equal(t, "", list[2].PropertyAddress())
	assert.Nil(t, list[2].PropertyID())

	got, err := svc.Get(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, "Bob", got.Tenant.Name)

	_, err = svc.Get(ctx, "4")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Get(context.Background(), "1")
	assert.ErrorIs(t, err, domain.ErrInvalidOrganization)
}
