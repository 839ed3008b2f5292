// Package summary derives read-only per-tenant projections over invoices.
package summary

import (
	"sort"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/rentledger/internal/clock"
	"github.com/smallbiznis/rentledger/internal/invoice/domain"
	"github.com/smallbiznis/rentledger/internal/invoice/lifecycle"
	"github.com/smallbiznis/rentledger/internal/invoice/schedule"
)

// NoProperty is displayed for tenants without a linked property.
const NoProperty = "No property"

// Tenant carries the display fields of the tenant being summarized.
type Tenant struct {
	ID              snowflake.ID
	Name            string
	Email           string
	PropertyAddress string
}

// Build computes the summary of one tenant. Invoices of other tenants are ignored.
func Build(tenant Tenant, invoices []domain.Invoice, today time.Time) domain.TenantSummary {
	address := strings.TrimSpace(tenant.PropertyAddress)
	if address == "" {
		address = NoProperty
	}
	out := domain.TenantSummary{
		TenantID:        tenant.ID,
		TenantName:      tenant.Name,
		TenantEmail:     tenant.Email,
		PropertyAddress: address,
		TotalInvoiced:   decimal.Zero,
		TotalPaid:       decimal.Zero,
		Outstanding:     decimal.Zero,
	}

	today = clock.DateOf(today)
	monthStart := schedule.FirstOfMonth(today)
	var next *domain.Invoice
	for i := range invoices {
		inv := invoices[i]
		if tenant.ID != 0 && inv.TenantID != tenant.ID {
			continue
		}
		out.InvoiceCount++

		switch inv.Status {
		case domain.InvoiceStatusPaid:
			out.PaidCount++
		case domain.InvoiceStatusApproved:
			out.ApprovedCount++
		}
		if lifecycle.IsOverdue(inv, today) {
			out.OverdueCount++
		}

		if inv.Status != domain.InvoiceStatusCancelled {
			out.TotalInvoiced = out.TotalInvoiced.Add(inv.TotalAmount)
			out.TotalPaid = out.TotalPaid.Add(inv.AmountPaid)
			out.Outstanding = out.Outstanding.Add(inv.Outstanding())
		}

		if !nextCandidate(inv, monthStart) {
			continue
		}
		if next == nil || anchor(inv).Before(anchor(*next)) {
			candidate := inv
			next = &candidate
		}
	}
	out.NextInvoice = next
	return out
}

func nextCandidate(inv domain.Invoice, monthStart time.Time) bool {
	if inv.Status == domain.InvoiceStatusPaid || inv.Status == domain.InvoiceStatusCancelled {
		return false
	}
	return !anchor(inv).Before(monthStart)
}

// anchor is the date used to order invoices: period start, or due date when
// the period start is unset.
func anchor(inv domain.Invoice) time.Time {
	if inv.PeriodStart.IsZero() {
		return clock.DateOf(inv.DueDate)
	}
	return clock.DateOf(inv.PeriodStart)
}

// Sort orders tenants with overdue invoices first, then tenants with an
// upcoming invoice, then by name ignoring case. Equal keys keep input order.
func Sort(summaries []domain.TenantSummary) {
	sort.SliceStable(summaries, func(i, j int) bool {
		a, b := summaries[i], summaries[j]
		if ra, rb := rank(a), rank(b); ra != rb {
			return ra < rb
		}
		return strings.ToLower(a.TenantName) < strings.ToLower(b.TenantName)
	})
}

func rank(s domain.TenantSummary) int {
	switch {
	case s.OverdueCount > 0:
		return 0
	case s.NextInvoice != nil:
		return 1
	default:
		return 2
	}
}
