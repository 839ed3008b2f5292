package pdf

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	invoicedomain "github.com/smallbiznis/rentledger/internal/invoice/domain"
	settingsdomain "github.com/smallbiznis/rentledger/internal/invoicesettings/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleInvoice() invoicedomain.Invoice {
	amount := decimal.RequireFromString("1000.00")
	return invoicedomain.Invoice{
		ID:              42,
		InvoiceNumber:   "INV-202403-001",
		InvoiceDate:     time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
		DueDate:         time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC),
		PeriodStart:     time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:       time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC),
		Amount:          amount,
		TotalAmount:     amount,
		Status:          invoicedomain.InvoiceStatusSent,
		TenantName:      "Ada Lovelace",
		TenantEmail:     "ada@example.com",
		PropertyAddress: "12 Analytical Row",
		LineItems: []invoicedomain.LineItem{{
			Description: "Rent March 2024",
			Quantity:    decimal.NewFromInt(1),
			UnitPrice:   amount,
			Amount:      amount,
		}},
	}
}

func TestRenderInvoiceProducesPDF(t *testing.T) {
	settings := settingsdomain.Defaults(1, "INV")
	settings.CompanyName = "Acme Lettings"
	settings.PaymentInstructions = "Sort code 00-00-00"

	out, err := New().RenderInvoice(context.Background(), sampleInvoice(), settings)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestRenderPaidInvoice(t *testing.T) {
	inv := sampleInvoice()
	paidAt := time.Date(2024, time.March, 3, 0, 0, 0, 0, time.UTC)
	inv.Status = invoicedomain.InvoiceStatusPaid
	inv.AmountPaid = inv.TotalAmount
	inv.PaidAt = &paidAt

	out, err := New().RenderInvoice(context.Background(), inv, settingsdomain.Defaults(1, ""))
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

func TestRenderInvoiceCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New().RenderInvoice(ctx, sampleInvoice(), settingsdomain.Defaults(1, ""))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "inv-202403-001.pdf", FileName(sampleInvoice()))
	assert.Equal(t, "invoice-7.pdf", FileName(invoicedomain.Invoice{ID: 7}))
}
