// Package domain contains persistence models for rent invoicing.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// InvoiceStatus represents invoice lifecycle states.
type InvoiceStatus string

const (
	InvoiceStatusDraft           InvoiceStatus = "draft"
	InvoiceStatusPendingApproval InvoiceStatus = "pending_approval"
	InvoiceStatusApproved        InvoiceStatus = "approved"
	InvoiceStatusSent            InvoiceStatus = "sent"
	InvoiceStatusPaid            InvoiceStatus = "paid"
	InvoiceStatusPartial         InvoiceStatus = "partial"
	InvoiceStatusOverdue         InvoiceStatus = "overdue"
	InvoiceStatusCancelled       InvoiceStatus = "cancelled"
)

func (s InvoiceStatus) Valid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusPendingApproval, InvoiceStatusApproved,
		InvoiceStatusSent, InvoiceStatusPaid, InvoiceStatusPartial,
		InvoiceStatusOverdue, InvoiceStatusCancelled:
		return true
	}
	return false
}

type ApprovalStatus string

const (
	ApprovalStatusPending  ApprovalStatus = "pending"
	ApprovalStatusApproved ApprovalStatus = "approved"
	ApprovalStatusRejected ApprovalStatus = "rejected"
)

type PaymentMethod string

const (
	PaymentMethodBankTransfer  PaymentMethod = "bank_transfer"
	PaymentMethodStandingOrder PaymentMethod = "standing_order"
	PaymentMethodCash          PaymentMethod = "cash"
	PaymentMethodCheque        PaymentMethod = "cheque"
	PaymentMethodCard          PaymentMethod = "card"
	PaymentMethodOther         PaymentMethod = "other"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodBankTransfer, PaymentMethodStandingOrder, PaymentMethodCash,
		PaymentMethodCheque, PaymentMethodCard, PaymentMethodOther:
		return true
	}
	return false
}

// LineItem is one charge line printed on an invoice.
type LineItem struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Amount      decimal.Decimal `json:"amount"`
}

// Consistent reports whether Amount equals Quantity * UnitPrice at cent precision.
func (li LineItem) Consistent() bool {
	return li.Quantity.Mul(li.UnitPrice).Round(2).Equal(li.Amount.Round(2))
}

// Invoice is one billing record for one tenant and one rent period.
//
// Tenant name, tenant email, property address and line items are copied at
// creation time and never refreshed, so an invoice keeps showing the details
// it was issued with.
type Invoice struct {
	ID            snowflake.ID  `gorm:"primaryKey" json:"id"`
	OrgID         snowflake.ID  `gorm:"column:organization_id;not null;index;uniqueIndex:ux_invoices_org_number" json:"organization_id"`
	TenantID      snowflake.ID  `gorm:"not null;index" json:"tenant_id"`
	PropertyID    *snowflake.ID `json:"property_id,omitempty"`
	RentPaymentID *snowflake.ID `json:"rent_payment_id,omitempty"`
	InvoiceNumber string        `gorm:"type:text;not null;uniqueIndex:ux_invoices_org_number" json:"invoice_number"`

	InvoiceDate time.Time `gorm:"type:date;not null" json:"invoice_date"`
	DueDate     time.Time `gorm:"type:date;not null" json:"due_date"`
	PeriodStart time.Time `gorm:"type:date;not null" json:"period_start"`
	PeriodEnd   time.Time `gorm:"type:date;not null" json:"period_end"`

	Amount      decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"amount"`
	TaxAmount   decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"tax_amount"`
	TotalAmount decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"total_amount"`
	AmountPaid  decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"amount_paid"`

	Status         InvoiceStatus  `gorm:"type:text;not null;default:'draft';index" json:"status"`
	ApprovalStatus ApprovalStatus `gorm:"type:text;not null;default:'pending'" json:"approval_status"`
	ApprovedBy     *string        `gorm:"type:text" json:"approved_by,omitempty"`
	ApprovedAt     *time.Time     `json:"approved_at,omitempty"`

	SentAt         *time.Time                 `json:"sent_at,omitempty"`
	SentTo         datatypes.JSONSlice[string] `json:"sent_to"`
	ReminderCount  int                        `gorm:"not null;default:0" json:"reminder_count"`
	LastReminderAt *time.Time                 `json:"last_reminder_at,omitempty"`

	PaidAt           *time.Time     `json:"paid_at,omitempty"`
	PaymentMethod    *PaymentMethod `gorm:"type:text" json:"payment_method,omitempty"`
	PaymentReference *string        `gorm:"type:text" json:"payment_reference,omitempty"`
	PaymentNotes     *string        `gorm:"type:text" json:"payment_notes,omitempty"`

	TenantName      string                        `gorm:"type:text;not null;default:''" json:"tenant_name"`
	TenantEmail     string                        `gorm:"type:text;not null;default:''" json:"tenant_email"`
	PropertyAddress string                        `gorm:"type:text;not null;default:''" json:"property_address"`
	LineItems       datatypes.JSONSlice[LineItem] `json:"line_items"`
	Notes           string                        `gorm:"type:text;not null;default:''" json:"notes"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// TableName sets the database table name.
func (Invoice) TableName() string { return "invoices" }

// Outstanding returns the unpaid balance, never below zero.
func (i Invoice) Outstanding() decimal.Decimal {
	remaining := i.TotalAmount.Sub(i.AmountPaid)
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining
}

func (i Invoice) FullyPaid() bool {
	return i.AmountPaid.GreaterThanOrEqual(i.TotalAmount)
}

// PeriodLabel identifies the invoice period, e.g. "2024-03".
func (i Invoice) PeriodLabel() string {
	return i.PeriodStart.Format("2006-01")
}

// TenantSummary is the per-tenant projection over the ledger.
type TenantSummary struct {
	TenantID        snowflake.ID    `json:"tenant_id"`
	TenantName      string          `json:"tenant_name"`
	TenantEmail     string          `json:"tenant_email"`
	PropertyAddress string          `json:"property_address"`
	NextInvoice     *Invoice        `json:"next_invoice,omitempty"`
	OverdueCount    int             `json:"overdue_count"`
	PaidCount       int             `json:"paid_count"`
	ApprovedCount   int             `json:"approved_count"`
	InvoiceCount    int             `json:"invoice_count"`
	TotalInvoiced   decimal.Decimal `json:"total_invoiced"`
	TotalPaid       decimal.Decimal `json:"total_paid"`
	Outstanding     decimal.Decimal `json:"outstanding"`
}
