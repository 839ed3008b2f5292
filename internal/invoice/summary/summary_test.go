package summary

import (
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/rentledger/internal/invoice/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func inv(tenantID snowflake.ID, status domain.InvoiceStatus, periodStart, due time.Time, total int64) domain.Invoice {
	amount := decimal.NewFromInt(total)
	paid := decimal.Zero
	if status == domain.InvoiceStatusPaid {
		paid = amount
	}
	return domain.Invoice{
		TenantID:    tenantID,
		Status:      status,
		PeriodStart: periodStart,
		PeriodEnd:   periodStart.AddDate(0, 1, -1),
		DueDate:     due,
		Amount:      amount,
		TotalAmount: amount,
		AmountPaid:  paid,
	}
}

func TestBuildCountsTwoOverdueSentInvoices(t *testing.T) {
	today := date(2024, time.March, 15)
	tenant := Tenant{ID: 7, Name: "Grace"}
	invoices := []domain.Invoice{
		inv(7, domain.InvoiceStatusSent, date(2024, time.January, 1), date(2024, time.January, 1), 1000),
		inv(7, domain.InvoiceStatusSent, date(2024, time.February, 1), date(2024, time.February, 1), 1000),
		inv(7, domain.InvoiceStatusPaid, date(2023, time.December, 1), date(2023, time.December, 1), 1000),
	}

	got := Build(tenant, invoices, today)
	assert.Equal(t, 2, got.OverdueCount)
	assert.Equal(t, 1, got.PaidCount)
	assert.Equal(t, NoProperty, got.PropertyAddress)
	assert.Nil(t, got.NextInvoice)
	assert.Equal(t, "2000", got.Outstanding.String())
}

func TestBuildPicksEarliestUpcomingInvoice(t *testing.T) {
	today := date(2024, time.March, 15)
	tenant := Tenant{ID: 7, Name: "Grace", PropertyAddress: "2 Harbour Rd"}
	invoices := []domain.Invoice{
		inv(7, domain.InvoiceStatusPendingApproval, date(2024, time.May, 1), date(2024, time.May, 1), 1000),
		inv(7, domain.InvoiceStatusApproved, date(2024, time.March, 1), date(2024, time.March, 20), 1000),
		inv(7, domain.InvoiceStatusPaid, date(2024, time.April, 1), date(2024, time.April, 1), 1000),
		inv(7, domain.InvoiceStatusCancelled, date(2024, time.March, 1), date(2024, time.March, 1), 1000),
		inv(8, domain.InvoiceStatusSent, date(2024, time.March, 1), date(2024, time.March, 1), 1000),
	}

	got := Build(tenant, invoices, today)
	require.NotNil(t, got.NextInvoice)
	assert.True(t, got.NextInvoice.PeriodStart.Equal(date(2024, time.March, 1)))
	assert.Equal(t, domain.InvoiceStatusApproved, got.NextInvoice.Status)
	assert.Equal(t, 4, got.InvoiceCount)
	assert.Equal(t, 1, got.ApprovedCount)
	assert.Equal(t, 0, got.OverdueCount)
	assert.Equal(t, "3000", got.TotalInvoiced.String())
	assert.Equal(t, "2 Harbour Rd", got.PropertyAddress)
}

func TestBuildFallsBackToDueDateWithoutPeriodStart(t *testing.T) {
	today := date(2024, time.March, 15)
	invoice := inv(7, domain.InvoiceStatusDraft, time.Time{}, date(2024, time.April, 3), 500)

	got := Build(Tenant{ID: 7}, []domain.Invoice{invoice}, today)
	require.NotNil(t, got.NextInvoice)
}

func TestSortOrder(t *testing.T) {
	upcoming := &domain.Invoice{}
	summaries := []domain.TenantSummary{
		{TenantName: "zoe"},
		{TenantName: "Yann", NextInvoice: upcoming},
		{TenantName: "bob"},
		{TenantName: "Xavier", OverdueCount: 1},
		{TenantName: "alice", NextInvoice: upcoming},
		{TenantName: "Walt", OverdueCount: 3},
	}

	Sort(summaries)

	names := make([]string, 0, len(summaries))
	for _, s := range summaries {
		names = append(names, s.TenantName)
	}
	assert.Equal(t, []string{"Walt", "Xavier", "alice", "Yann", "bob", "zoe"}, names)
}
