// Package lifecycle holds the invoice status transitions. Every function takes
// the current record by value and returns the updated record; callers persist it.
package lifecycle

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/rentledger/internal/clock"
	"github.com/smallbiznis/rentledger/internal/invoice/domain"
)

// Payment is one payment applied to an invoice.
type Payment struct {
	Amount    decimal.Decimal
	Method    domain.PaymentMethod
	Reference string
	Notes     string
}

// Approve stamps the approval. Re-approving an approved invoice only re-stamps.
func Approve(inv domain.Invoice, approverID string, now time.Time) (domain.Invoice, error) {
	switch inv.Status {
	case domain.InvoiceStatusCancelled:
		return inv, domain.ErrInvoiceCancelled
	case domain.InvoiceStatusDraft, domain.InvoiceStatusPendingApproval, domain.InvoiceStatusApproved:
	default:
		return inv, domain.ErrInvalidTransition
	}

	inv.ApprovalStatus = domain.ApprovalStatusApproved
	if approver := strings.TrimSpace(approverID); approver != "" {
		inv.ApprovedBy = &approver
	} else {
		inv.ApprovedBy = nil
	}
	inv.ApprovedAt = timePtr(now)
	inv.Status = domain.InvoiceStatusApproved
	inv.UpdatedAt = now
	return inv, nil
}

// MarkSent records delivery to recipients. Payment states are kept so that
// re-sending a partially paid invoice does not lose its balance state.
func MarkSent(inv domain.Invoice, recipients []string, now time.Time) (domain.Invoice, error) {
	cleaned := NormalizeRecipients(recipients)
	if len(cleaned) == 0 {
		return inv, domain.ErrNoRecipients
	}
	switch inv.Status {
	case domain.InvoiceStatusCancelled:
		return inv, domain.ErrInvoiceCancelled
	case domain.InvoiceStatusDraft, domain.InvoiceStatusPendingApproval:
		return inv, domain.ErrInvoiceNotApproved
	}

	inv.SentAt = timePtr(now)
	inv.SentTo = cleaned
	if inv.Status != domain.InvoiceStatusPaid && inv.Status != domain.InvoiceStatusPartial {
		inv.Status = domain.InvoiceStatusSent
	}
	inv.UpdatedAt = now
	return inv, nil
}

// TogglePaid flips between fully paid and unpaid. Unpaid returns to sent when
// the invoice was ever sent, otherwise to approved.
func TogglePaid(inv domain.Invoice, now time.Time) (domain.Invoice, error) {
	if inv.Status == domain.InvoiceStatusCancelled {
		return inv, domain.ErrInvoiceCancelled
	}

	if inv.Status == domain.InvoiceStatusPaid {
		if inv.SentAt != nil {
			inv.Status = domain.InvoiceStatusSent
		} else {
			inv.Status = domain.InvoiceStatusApproved
		}
		inv.AmountPaid = decimal.Zero
		inv.PaidAt = nil
	} else {
		inv.Status = domain.InvoiceStatusPaid
		inv.AmountPaid = inv.TotalAmount
		inv.PaidAt = timePtr(now)
	}
	inv.UpdatedAt = now
	return inv, nil
}

// ApplyPayment adds a payment to the running total. Method, reference and
// notes replace those of any earlier payment. A payment that settles more
// than the outstanding amount is kept in full; a paid invoice takes no
// further payments.
func ApplyPayment(inv domain.Invoice, p Payment, now time.Time) (domain.Invoice, error) {
	switch inv.Status {
	case domain.InvoiceStatusCancelled:
		return inv, domain.ErrInvoiceCancelled
	case domain.InvoiceStatusPaid:
		return inv, domain.ErrInvoiceAlreadyPaid
	}
	if !p.Amount.IsPositive() {
		return inv, domain.ErrInvalidAmount
	}
	if !p.Method.Valid() {
		return inv, domain.ErrInvalidPaymentMethod
	}

	inv.AmountPaid = inv.AmountPaid.Add(p.Amount)
	if inv.FullyPaid() {
		inv.Status = domain.InvoiceStatusPaid
		inv.PaidAt = timePtr(now)
	} else {
		inv.Status = domain.InvoiceStatusPartial
	}

	method := p.Method
	inv.PaymentMethod = &method
	inv.PaymentReference = optionalString(p.Reference)
	inv.PaymentNotes = optionalString(p.Notes)
	inv.UpdatedAt = now
	return inv, nil
}

// Cancel makes the invoice terminal from any other status, paid included.
// Payment fields are kept as they were.
func Cancel(inv domain.Invoice, now time.Time) (domain.Invoice, error) {
	if inv.Status == domain.InvoiceStatusCancelled {
		return inv, domain.ErrInvoiceCancelled
	}
	inv.Status = domain.InvoiceStatusCancelled
	inv.UpdatedAt = now
	return inv, nil
}

// RecordReminder counts a reminder email for an invoice awaiting payment.
func RecordReminder(inv domain.Invoice, now time.Time) (domain.Invoice, error) {
	if !CanRemind(inv) {
		if inv.Status == domain.InvoiceStatusCancelled {
			return inv, domain.ErrInvoiceCancelled
		}
		return inv, domain.ErrReminderNotAllowed
	}
	inv.ReminderCount++
	inv.LastReminderAt = timePtr(now)
	inv.UpdatedAt = now
	return inv, nil
}

func CanRemind(inv domain.Invoice) bool {
	switch inv.Status {
	case domain.InvoiceStatusSent, domain.InvoiceStatusOverdue, domain.InvoiceStatusPartial:
		return true
	}
	return false
}

// IsOverdue is the derived overdue state: an approved or sent invoice whose
// due date is before today and that is not fully paid. A stored overdue
// status is treated the same way.
func IsOverdue(inv domain.Invoice, today time.Time) bool {
	switch inv.Status {
	case domain.InvoiceStatusSent, domain.InvoiceStatusApproved, domain.InvoiceStatusOverdue:
	default:
		return false
	}
	if !clock.DateOf(inv.DueDate).Before(clock.DateOf(today)) {
		return false
	}
	return !inv.FullyPaid()
}

// NormalizeRecipients trims, lower-cases and de-duplicates addresses, keeping order.
func NormalizeRecipients(recipients []string) []string {
	seen := make(map[string]struct{}, len(recipients))
	out := make([]string, 0, len(recipients))
	for _, r := range recipients {
		r = strings.ToLower(strings.TrimSpace(r))
		if r == "" {
			continue
		}
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out
}

func timePtr(t time.Time) *time.Time {
	return &t
}

func optionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
