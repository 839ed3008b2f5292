package lifecycle

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/rentledger/internal/invoice/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, time.March, 10, 9, 30, 0, 0, time.UTC)

func invoiceWith(status domain.InvoiceStatus, total int64) domain.Invoice {
	amount := decimal.NewFromInt(total)
	return domain.Invoice{
		Status:      status,
		Amount:      amount,
		TotalAmount: amount,
		AmountPaid:  decimal.Zero,
		DueDate:     time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestTogglePaidTwiceReturnsToSent(t *testing.T) {
	inv := invoiceWith(domain.InvoiceStatusSent, 1200)
	sentAt := now.Add(-48 * time.Hour)
	inv.SentAt = &sentAt

	paid, err := TogglePaid(inv, now)
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusPaid, paid.Status)
	assert.True(t, paid.AmountPaid.Equal(decimal.NewFromInt(1200)))
	require.NotNil(t, paid.PaidAt)

	unpaid, err := TogglePaid(paid, now)
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusSent, unpaid.Status)
	assert.True(t, unpaid.AmountPaid.IsZero())
	assert.Nil(t, unpaid.PaidAt)
}

func TestTogglePaidWithoutSendReturnsToApproved(t *testing.T) {
	inv := invoiceWith(domain.InvoiceStatusApproved, 800)

	paid, err := TogglePaid(inv, now)
	require.NoError(t, err)
	unpaid, err := TogglePaid(paid, now)
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusApproved, unpaid.Status)
}

func TestApplyPaymentPartialThenPaid(t *testing.T) {
	inv := invoiceWith(domain.InvoiceStatusSent, 1200)

	inv, err := ApplyPayment(inv, Payment{Amount: decimal.NewFromInt(500), Method: domain.PaymentMethodBankTransfer, Reference: "TX-1"}, now)
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusPartial, inv.Status)
	assert.True(t, inv.AmountPaid.Equal(decimal.NewFromInt(500)))
	assert.Nil(t, inv.PaidAt)

	later := now.Add(24 * time.Hour)
	inv, err = ApplyPayment(inv, Payment{Amount: decimal.NewFromInt(700), Method: domain.PaymentMethodCash}, later)
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusPaid, inv.Status)
	assert.True(t, inv.AmountPaid.Equal(decimal.NewFromInt(1200)))
	require.NotNil(t, inv.PaidAt)
	assert.True(t, inv.PaidAt.Equal(later))

	// Metadata is overwritten by the most recent payment.
	require.NotNil(t, inv.PaymentMethod)
	assert.Equal(t, domain.PaymentMethodCash, *inv.PaymentMethod)
	assert.Nil(t, inv.PaymentReference)
}

func TestApplyPaymentValidation(t *testing.T) {
	inv := invoiceWith(domain.InvoiceStatusSent, 100)

	_, err := ApplyPayment(inv, Payment{Amount: decimal.Zero, Method: domain.PaymentMethodCash}, now)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = ApplyPayment(inv, Payment{Amount: decimal.NewFromInt(-5), Method: domain.PaymentMethodCash}, now)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = ApplyPayment(inv, Payment{Amount: decimal.NewFromInt(5), Method: "bitcoin"}, now)
	assert.ErrorIs(t, err, domain.ErrInvalidPaymentMethod)
}

func TestApplyPaymentAllowsOverpayment(t *testing.T) {
	inv := invoiceWith(domain.InvoiceStatusSent, 100)

	inv, err := ApplyPayment(inv, Payment{Amount: decimal.NewFromInt(150), Method: domain.PaymentMethodCard}, now)
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusPaid, inv.Status)
	assert.True(t, inv.AmountPaid.Equal(decimal.NewFromInt(150)))
	assert.True(t, inv.Outstanding().IsZero())

	// Once paid, further payments are refused and the total stays put.
	again, err := ApplyPayment(inv, Payment{Amount: decimal.NewFromInt(10), Method: domain.PaymentMethodCash}, now)
	assert.ErrorIs(t, err, domain.ErrInvoiceAlreadyPaid)
	assert.True(t, again.AmountPaid.Equal(decimal.NewFromInt(150)))
}

func TestApproveIsIdempotent(t *testing.T) {
	inv := invoiceWith(domain.InvoiceStatusPendingApproval, 100)

	first, err := Approve(inv, "manager-1", now)
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusApproved, first.Status)
	assert.Equal(t, domain.ApprovalStatusApproved, first.ApprovalStatus)
	require.NotNil(t, first.ApprovedBy)
	assert.Equal(t, "manager-1", *first.ApprovedBy)

	later := now.Add(time.Minute)
	second, err := Approve(first, "manager-1", later)
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusApproved, second.Status)
	assert.True(t, second.ApprovedAt.Equal(later))
}

func TestApproveRejectsSentAndCancelled(t *testing.T) {
	_, err := Approve(invoiceWith(domain.InvoiceStatusSent, 100), "m", now)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = Approve(invoiceWith(domain.InvoiceStatusCancelled, 100), "m", now)
	assert.ErrorIs(t, err, domain.ErrInvoiceCancelled)
}

func TestMarkSent(t *testing.T) {
	inv := invoiceWith(domain.InvoiceStatusApproved, 100)

	_, err := MarkSent(inv, []string{" ", ""}, now)
	assert.ErrorIs(t, err, domain.ErrNoRecipients)

	_, err = MarkSent(invoiceWith(domain.InvoiceStatusPendingApproval, 100), []string{"a@example.com"}, now)
	assert.ErrorIs(t, err, domain.ErrInvoiceNotApproved)

	sent, err := MarkSent(inv, []string{"A@example.com", "a@example.com", "b@example.com"}, now)
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusSent, sent.Status)
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, []string(sent.SentTo))
	require.NotNil(t, sent.SentAt)

	partial := invoiceWith(domain.InvoiceStatusPartial, 100)
	resent, err := MarkSent(partial, []string{"a@example.com"}, now)
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusPartial, resent.Status)
}

func TestCancelIsTerminal(t *testing.T) {
	inv, err := Cancel(invoiceWith(domain.InvoiceStatusSent, 100), now)
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusCancelled, inv.Status)

	_, err = Cancel(inv, now)
	assert.ErrorIs(t, err, domain.ErrInvoiceCancelled)
	_, err = Approve(inv, "m", now)
	assert.ErrorIs(t, err, domain.ErrInvoiceCancelled)
	_, err = MarkSent(inv, []string{"a@example.com"}, now)
	assert.ErrorIs(t, err, domain.ErrInvoiceCancelled)
	_, err = TogglePaid(inv, now)
	assert.ErrorIs(t, err, domain.ErrInvoiceCancelled)
	_, err = ApplyPayment(inv, Payment{Amount: decimal.NewFromInt(1), Method: domain.PaymentMethodCash}, now)
	assert.ErrorIs(t, err, domain.ErrInvoiceCancelled)

}

func TestCancelPaidInvoiceKeepsPayment(t *testing.T) {
	paid, err := TogglePaid(invoiceWith(domain.InvoiceStatusSent, 100), now)
	require.NoError(t, err)

	cancelled, err := Cancel(paid, now)
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusCancelled, cancelled.Status)
	assert.True(t, cancelled.AmountPaid.Equal(decimal.NewFromInt(100)))
	require.NotNil(t, cancelled.PaidAt)
}

func TestRecordReminder(t *testing.T) {
	inv, err := RecordReminder(invoiceWith(domain.InvoiceStatusSent, 100), now)
	require.NoError(t, err)
	assert.Equal(t, 1, inv.ReminderCount)
	require.NotNil(t, inv.LastReminderAt)

	_, err = RecordReminder(invoiceWith(domain.InvoiceStatusApproved, 100), now)
	assert.ErrorIs(t, err, domain.ErrReminderNotAllowed)
}

func TestIsOverdue(t *testing.T) {
	today := time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)

	assert.True(t, IsOverdue(invoiceWith(domain.InvoiceStatusSent, 100), today))
	assert.True(t, IsOverdue(invoiceWith(domain.InvoiceStatusApproved, 100), today))
	assert.False(t, IsOverdue(invoiceWith(domain.InvoiceStatusPaid, 100), today))
	assert.False(t, IsOverdue(invoiceWith(domain.InvoiceStatusPendingApproval, 100), today))

	notDue := invoiceWith(domain.InvoiceStatusSent, 100)
	notDue.DueDate = today
	assert.False(t, IsOverdue(notDue, today))

	settled := invoiceWith(domain.InvoiceStatusSent, 100)
	settled.AmountPaid = decimal.NewFromInt(100)
	assert.False(t, IsOverdue(settled, today))
}
