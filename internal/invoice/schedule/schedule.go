// Package schedule turns lease terms into one rent invoice per calendar month.
// It performs no I/O; the invoice service assigns IDs and persists the result.
package schedule

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/rentledger/internal/clock"
	"github.com/smallbiznis/rentledger/internal/invoice/domain"
	"github.com/smallbiznis/rentledger/internal/invoice/format"
)

// Terms are the lease inputs of one tenant.
type Terms struct {
	OrgID           snowflake.ID
	TenantID        snowflake.ID
	PropertyID      *snowflake.ID
	TenantName      string
	TenantEmail     string
	PropertyAddress string
	LeaseStart      time.Time
	LeaseEnd        time.Time
	MonthlyRent     decimal.Decimal
	RentDueDay      int
}

// Options control numbering and dating of a run.
type Options struct {
	Prefix string
	// StartSequence is the highest sequence already used; the run continues after it.
	StartSequence int64
	// InvoiceDateOffsetDays dates each invoice this many days before its period start.
	InvoiceDateOffsetDays int
}

func (t Terms) Validate() error {
	if t.OrgID == 0 {
		return domain.ErrInvalidOrganization
	}
	if t.TenantID == 0 {
		return domain.ErrInvalidTenant
	}
	if !t.MonthlyRent.IsPositive() {
		return domain.ErrInvalidMonthlyRent
	}
	if t.RentDueDay < 1 || t.RentDueDay > 31 {
		return domain.ErrInvalidRentDueDay
	}
	if t.LeaseStart.IsZero() || t.LeaseEnd.IsZero() {
		return domain.ErrInvalidLeasePeriod
	}
	if clock.DateOf(t.LeaseEnd).Before(clock.DateOf(t.LeaseStart)) {
		return domain.ErrInvalidLeasePeriod
	}
	return nil
}

// Build produces the invoices for every month of tenancy from the later of
// lease start and the first of today's month, until the period start reaches
// lease end.
func Build(terms Terms, today time.Time, opts Options) ([]domain.Invoice, error) {
	if err := terms.Validate(); err != nil {
		return nil, err
	}

	leaseStart := clock.DateOf(terms.LeaseStart)
	leaseEnd := clock.DateOf(terms.LeaseEnd)
	cursor := leaseStart
	if monthStart := FirstOfMonth(today); cursor.Before(monthStart) {
		cursor = monthStart
	}

	seq := opts.StartSequence
	var invoices []domain.Invoice
	for cursor.Before(leaseEnd) {
		periodStart := cursor
		periodEnd := LastOfMonth(cursor)
		if leaseEnd.Before(periodEnd) {
			periodEnd = leaseEnd
		}

		seq++
		number, err := format.InvoiceNumber(opts.Prefix, periodStart, seq)
		if err != nil {
			return nil, err
		}

		amount := PeriodAmount(terms.MonthlyRent, periodStart, periodEnd)
		invoices = append(invoices, domain.Invoice{
			OrgID:           terms.OrgID,
			TenantID:        terms.TenantID,
			PropertyID:      terms.PropertyID,
			InvoiceNumber:   number,
			InvoiceDate:     periodStart.AddDate(0, 0, -max(opts.InvoiceDateOffsetDays, 0)),
			DueDate:         DueDate(periodStart, terms.RentDueDay),
			PeriodStart:     periodStart,
			PeriodEnd:       periodEnd,
			Amount:          amount,
			TaxAmount:       decimal.Zero,
			TotalAmount:     amount,
			AmountPaid:      decimal.Zero,
			Status:          domain.InvoiceStatusPendingApproval,
			ApprovalStatus:  domain.ApprovalStatusPending,
			TenantName:      strings.TrimSpace(terms.TenantName),
			TenantEmail:     strings.TrimSpace(terms.TenantEmail),
			PropertyAddress: strings.TrimSpace(terms.PropertyAddress),
			LineItems:       []domain.LineItem{RentLineItem(periodStart, periodEnd, amount)},
		})

		cursor = FirstOfMonth(cursor).AddDate(0, 1, 0)
	}
	return invoices, nil
}

// PeriodAmount charges the full rent unless the period covers fewer than
// daysInMonth-1 days, in which case it is pro-rated by day and rounded to
// cents. A 29-of-30 day period is therefore charged in full.
func PeriodAmount(monthlyRent decimal.Decimal, periodStart, periodEnd time.Time) decimal.Decimal {
	dim := DaysInMonth(periodStart)
	days := periodEnd.Day() - periodStart.Day() + 1
	if days < dim-1 {
		return monthlyRent.
			Div(decimal.NewFromInt(int64(dim))).
			Mul(decimal.NewFromInt(int64(days))).
			Round(2)
	}
	return monthlyRent.Round(2)
}

// DueDate places rentDueDay in the month of periodStart, clamped to its last day.
func DueDate(periodStart time.Time, rentDueDay int) time.Time {
	day := min(max(rentDueDay, 1), DaysInMonth(periodStart))
	return time.Date(periodStart.Year(), periodStart.Month(), day, 0, 0, 0, 0, time.UTC)
}

func RentLineItem(periodStart, periodEnd time.Time, amount decimal.Decimal) domain.LineItem {
	return domain.LineItem{
		Description: fmt.Sprintf("Rent %s to %s", periodStart.Format("2 Jan 2006"), periodEnd.Format("2 Jan 2006")),
		Quantity:    decimal.NewFromInt(1),
		UnitPrice:   amount,
		Amount:      amount,
	}
}

func FirstOfMonth(t time.Time) time.Time {
	d := clock.DateOf(t)
	return time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func LastOfMonth(t time.Time) time.Time {
	return FirstOfMonth(t).AddDate(0, 1, -1)
}

func DaysInMonth(t time.Time) int {
	return LastOfMonth(t).Day()
}
