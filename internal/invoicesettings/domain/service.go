package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type UpsertRequest struct {
	CompanyName               string `json:"company_name"`
	CompanyAddress            string `json:"company_address"`
	CompanyEmail              string `json:"company_email"`
	CompanyPhone              string `json:"company_phone"`
	LogoURL                   string `json:"logo_url"`
	InvoicePrefix             string `json:"invoice_prefix"`
	PaymentTerms              string `json:"payment_terms"`
	PaymentInstructions       string `json:"payment_instructions"`
	FooterText                string `json:"footer_text"`
	AutoSendEnabled           bool   `json:"auto_send_enabled"`
	DaysBeforeDue             *int   `json:"days_before_due"`
	InvoiceDateDaysBeforeRent *int   `json:"invoice_date_days_before_rent"`
	SendReminderEnabled       bool   `json:"send_reminder_enabled"`
	ReminderDaysAfter         *int   `json:"reminder_days_after"`
}

type Service interface {
	// Get returns the caller organization's settings, or defaults when none are stored.
	Get(ctx context.Context) (InvoiceSettings, error)
	GetForOrg(ctx context.Context, orgID snowflake.ID) (InvoiceSettings, error)
	Upsert(ctx context.Context, req UpsertRequest) (InvoiceSettings, error)
	ListAutomated(ctx context.Context) ([]InvoiceSettings, error)
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidPrefix       = errors.New("invalid_invoice_prefix")
	ErrInvalidDays         = errors.New("invalid_days")
	ErrInvalidEmail        = errors.New("invalid_email")
)
