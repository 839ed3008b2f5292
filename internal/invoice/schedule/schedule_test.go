package schedule

import (
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/rentledger/internal/invoice/domain"
	"github.com/smallbiznis/rentledger/internal/invoice/format"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func baseTerms() Terms {
	return Terms{
		OrgID:           snowflake.ID(1),
		TenantID:        snowflake.ID(2),
		TenantName:      "Ada Lovelace",
		TenantEmail:     "ada@example.com",
		PropertyAddress: "1 Analytical Way",
		LeaseStart:      date(2024, time.January, 1),
		LeaseEnd:        date(2024, time.December, 31),
		MonthlyRent:     decimal.NewFromInt(1000),
		RentDueDay:      1,
	}
}

func TestBuildProRatesShortFirstMonth(t *testing.T) {
	terms := baseTerms()
	terms.LeaseStart = date(2024, time.January, 17)
	terms.LeaseEnd = date(2024, time.March, 1)

	invoices, err := Build(terms, date(2024, time.January, 5), Options{Prefix: "INV"})
	require.NoError(t, err)
	require.Len(t, invoices, 2)

	first := invoices[0]
	assert.Equal(t, "483.87", first.Amount.StringFixed(2))
	assert.True(t, first.PeriodStart.Equal(date(2024, time.January, 17)))
	assert.True(t, first.PeriodEnd.Equal(date(2024, time.January, 31)))
	assert.Equal(t, "1000.00", invoices[1].Amount.StringFixed(2))
}

func TestPeriodAmountBoundary(t *testing.T) {
	rent := decimal.NewFromInt(1000)

	// 29 of 30 days is charged in full.
	assert.Equal(t, "1000.00", PeriodAmount(rent, date(2024, time.April, 2), date(2024, time.April, 30)).StringFixed(2))
	// 28 of 30 days is pro-rated.
	assert.Equal(t, "933.33", PeriodAmount(rent, date(2024, time.April, 3), date(2024, time.April, 30)).StringFixed(2))
	// 15 of 31 days.
	assert.Equal(t, "483.87", PeriodAmount(rent, date(2024, time.January, 1), date(2024, time.January, 15)).StringFixed(2))
}

func TestDueDateClampsToMonthEnd(t *testing.T) {
	assert.True(t, DueDate(date(2023, time.February, 1), 31).Equal(date(2023, time.February, 28)))
	assert.True(t, DueDate(date(2024, time.February, 1), 31).Equal(date(2024, time.February, 29)))
	assert.True(t, DueDate(date(2024, time.March, 1), 31).Equal(date(2024, time.March, 31)))
	assert.True(t, DueDate(date(2024, time.April, 1), 15).Equal(date(2024, time.April, 15)))
}

func TestBuildStartsAtCurrentMonth(t *testing.T) {
	terms := baseTerms()

	invoices, err := Build(terms, date(2024, time.October, 20), Options{Prefix: "INV"})
	require.NoError(t, err)
	require.Len(t, invoices, 3)
	assert.True(t, invoices[0].PeriodStart.Equal(date(2024, time.October, 1)))
	assert.True(t, invoices[2].PeriodEnd.Equal(date(2024, time.December, 31)))
}

func TestBuildStopsWhenPeriodReachesLeaseEnd(t *testing.T) {
	terms := baseTerms()
	terms.LeaseEnd = date(2024, time.March, 1)

	invoices, err := Build(terms, date(2024, time.January, 1), Options{})
	require.NoError(t, err)
	require.Len(t, invoices, 2)
	assert.True(t, invoices[1].PeriodStart.Equal(date(2024, time.February, 1)))
	assert.True(t, invoices[1].PeriodEnd.Equal(date(2024, time.February, 29)))

	terms.LeaseEnd = date(2024, time.March, 10)
	invoices, err = Build(terms, date(2024, time.January, 1), Options{})
	require.NoError(t, err)
	require.Len(t, invoices, 3)
	assert.True(t, invoices[2].PeriodEnd.Equal(date(2024, time.March, 10)))
	assert.Equal(t, "322.58", invoices[2].Amount.StringFixed(2))
}

func TestBuildInvariants(t *testing.T) {
	terms := baseTerms()
	terms.LeaseStart = date(2024, time.January, 10)
	terms.LeaseEnd = date(2025, time.June, 20)
	terms.RentDueDay = 31

	invoices, err := Build(terms, date(2024, time.January, 1), Options{Prefix: "INV", StartSequence: 4})
	require.NoError(t, err)
	require.NotEmpty(t, invoices)

	var lastSeq int64 = 4
	seen := map[string]bool{}
	for _, inv := range invoices {
		sum := decimal.Zero
		for _, li := range inv.LineItems {
			assert.True(t, li.Consistent())
			sum = sum.Add(li.Amount)
		}
		assert.True(t, sum.Equal(inv.TotalAmount), "line items must sum to total for %s", inv.InvoiceNumber)
		assert.True(t, inv.TotalAmount.Equal(inv.Amount.Add(inv.TaxAmount)))
		assert.False(t, inv.PeriodEnd.Before(inv.PeriodStart))
		assert.Equal(t, domain.InvoiceStatusPendingApproval, inv.Status)
		assert.Equal(t, domain.ApprovalStatusPending, inv.ApprovalStatus)
		assert.True(t, inv.InvoiceDate.Equal(inv.PeriodStart))

		assert.False(t, seen[inv.InvoiceNumber])
		seen[inv.InvoiceNumber] = true
		seq, ok := format.ParseSequence("INV", inv.InvoiceNumber)
		require.True(t, ok)
		assert.Greater(t, seq, lastSeq)
		lastSeq = seq
	}
	assert.Equal(t, "INV-202401-005", invoices[0].InvoiceNumber)
}

func TestBuildAppliesInvoiceDateOffset(t *testing.T) {
	terms := baseTerms()
	terms.LeaseEnd = date(2024, time.February, 1)

	invoices, err := Build(terms, date(2024, time.January, 1), Options{InvoiceDateOffsetDays: 5})
	require.NoError(t, err)
	require.Len(t, invoices, 1)
	assert.True(t, invoices[0].InvoiceDate.Equal(date(2023, time.December, 27)))
}

func TestBuildRejectsInvalidTerms(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Terms)
		want   error
	}{
		{"zero rent", func(t *Terms) { t.MonthlyRent = decimal.Zero }, domain.ErrInvalidMonthlyRent},
		{"due day", func(t *Terms) { t.RentDueDay = 32 }, domain.ErrInvalidRentDueDay},
		{"lease order", func(t *Terms) { t.LeaseEnd = date(2023, time.December, 1) }, domain.ErrInvalidLeasePeriod},
		{"org", func(t *Terms) { t.OrgID = 0 }, domain.ErrInvalidOrganization},
		{"tenant", func(t *Terms) { t.TenantID = 0 }, domain.ErrInvalidTenant},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			terms := baseTerms()
			tc.mutate(&terms)
			_, err := Build(terms, date(2024, time.January, 1), Options{})
			assert.ErrorIs(t, err, tc.want)
		})
	}
}
