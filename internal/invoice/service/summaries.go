package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/rentledger/internal/clock"
	"github.com/smallbiznis/rentledger/internal/invoice/domain"
	"github.com/smallbiznis/rentledger/internal/invoice/summary"
)

// ListTenantSummaries returns one summary per tenant of the organization,
// including tenants without invoices.
func (s *Service) ListTenantSummaries(ctx context.Context) ([]domain.TenantSummary, error) {
	orgID, err := s.orgIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	tenants, err := s.tenantSvc.List(ctx)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.List(ctx, s.db, orgID, domain.ListInvoiceFilter{})
	if err != nil {
		return nil, err
	}

	byTenant := make(map[snowflake.ID][]domain.Invoice, len(tenants))
	for _, item := range items {
		if item == nil {
			continue
		}
		byTenant[item.TenantID] = append(byTenant[item.TenantID], *item)
	}

	today := clock.Today(s.clock)
	out := make([]domain.TenantSummary, 0, len(tenants))
	for _, details := range tenants {
		t := details.Tenant
		out = append(out, summary.Build(summary.Tenant{
			ID:              t.ID,
			Name:            t.Name,
			Email:           t.Email,
			PropertyAddress: details.PropertyAddress(),
		}, byTenant[t.ID], today))
	}
	summary.Sort(out)
	return out, nil
}
