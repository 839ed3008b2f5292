package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type GenerateScheduleRequest struct {
	TenantID        string
	PropertyID      string
	TenantName      string
	TenantEmail     string
	PropertyAddress string
	LeaseStart      time.Time
	LeaseEnd        time.Time
	MonthlyRent     decimal.Decimal
	RentDueDay      int
}

// GenerateScheduleResult lists the invoices that were stored and the periods
// whose insert failed. Generation is not atomic.
type GenerateScheduleResult struct {
	Invoices      []Invoice `json:"invoices"`
	FailedPeriods []string  `json:"failed_periods,omitempty"`
	Deleted       int64     `json:"deleted,omitempty"`
}

type CreateInvoiceRequest struct {
	TenantID          string
	PeriodStart       time.Time
	PeriodEnd         time.Time
	InvoiceDate       *time.Time
	DueDate           *time.Time
	Amount            decimal.Decimal
	TaxAmount         decimal.Decimal
	LineItems         []LineItem
	Notes             string
	SubmitForApproval bool
}

type ListInvoiceRequest struct {
	TenantID string
	Status   string
}

type RecordPaymentRequest struct {
	Amount    decimal.Decimal
	Method    PaymentMethod
	Reference string
	Notes     string
}

type RenderedPDF struct {
	FileName string
	Content  []byte
}

type Service interface {
	GenerateSchedule(context.Context, GenerateScheduleRequest) (GenerateScheduleResult, error)
	RegenerateForTenant(ctx context.Context, tenantID string) (GenerateScheduleResult, error)
	Create(context.Context, CreateInvoiceRequest) (Invoice, error)
	Get(ctx context.Context, id string) (Invoice, error)
	List(context.Context, ListInvoiceRequest) ([]Invoice, error)

	Approve(ctx context.Context, id string) (Invoice, error)
	MarkAsSent(ctx context.Context, id string, recipients []string) (Invoice, error)
	SendInvoice(ctx context.Context, id string, recipients []string) (Invoice, error)
	SendReminder(ctx context.Context, id string) (Invoice, error)
	TogglePaidStatus(ctx context.Context, id string) (Invoice, error)
	RecordPayment(ctx context.Context, id string, req RecordPaymentRequest) (Invoice, error)
	Cancel(ctx context.Context, id string) (Invoice, error)

	RenderPDF(ctx context.Context, id string) (RenderedPDF, error)
	ListTenantSummaries(context.Context) ([]TenantSummary, error)

	// AutoSendDue and SendDueReminders are driven by the scheduler for one organization.
	AutoSendDue(ctx context.Context, orgID snowflake.ID) (int, error)
	SendDueReminders(ctx context.Context, orgID snowflake.ID) (int, error)
}

var (
	ErrInvalidOrganization  = errors.New("invalid_organization")
	ErrInvalidTenant        = errors.New("invalid_tenant")
	ErrInvalidInvoiceID     = errors.New("invalid_invoice_id")
	ErrInvoiceNotFound      = errors.New("invoice_not_found")
	ErrInvalidMonthlyRent   = errors.New("invalid_monthly_rent")
	ErrInvalidRentDueDay    = errors.New("invalid_rent_due_day")
	ErrInvalidLeasePeriod   = errors.New("invalid_lease_period")
	ErrInvalidPeriod        = errors.New("invalid_period")
	ErrInvalidLineItem      = errors.New("invalid_line_item")
	ErrLineItemMismatch     = errors.New("line_items_do_not_match_amount")
	ErrInvalidStatus        = errors.New("invalid_status")
	ErrInvalidAmount        = errors.New("invalid_amount")
	ErrInvalidPaymentMethod = errors.New("invalid_payment_method")
	ErrNoRecipients         = errors.New("no_recipients")
	ErrInvoiceNotApproved   = errors.New("invoice_not_approved")
	ErrInvalidTransition    = errors.New("invalid_transition")
	ErrInvoiceCancelled     = errors.New("invoice_cancelled")
	ErrInvoiceAlreadyPaid   = errors.New("invoice_already_paid")
	ErrReminderNotAllowed   = errors.New("reminder_not_allowed")
	ErrNoLeaseStart         = errors.New("tenant_has_no_lease_start")
)
