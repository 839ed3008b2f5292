package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// InvoiceSettings holds the per-organization invoice presentation and
// automation settings. There is at most one row per organization.
type InvoiceSettings struct {
	ID    snowflake.ID `gorm:"primaryKey" json:"id"`
	OrgID snowflake.ID `gorm:"column:organization_id;not null;uniqueIndex:ux_invoice_settings_org" json:"organization_id"`

	CompanyName    string `gorm:"type:text;not null;default:''" json:"company_name"`
	CompanyAddress string `gorm:"type:text;not null;default:''" json:"company_address"`
	CompanyEmail   string `gorm:"type:text;not null;default:''" json:"company_email"`
	CompanyPhone   string `gorm:"type:text;not null;default:''" json:"company_phone"`
	LogoURL        string `gorm:"type:text;not null;default:''" json:"logo_url"`

	InvoicePrefix       string `gorm:"type:text;not null" json:"invoice_prefix"`
	PaymentTerms        string `gorm:"type:text;not null;default:''" json:"payment_terms"`
	PaymentInstructions string `gorm:"type:text;not null;default:''" json:"payment_instructions"`
	FooterText          string `gorm:"type:text;not null;default:''" json:"footer_text"`

	AutoSendEnabled           bool `gorm:"not null" json:"auto_send_enabled"`
	DaysBeforeDue             int  `gorm:"not null" json:"days_before_due"`
	InvoiceDateDaysBeforeRent int  `gorm:"not null" json:"invoice_date_days_before_rent"`
	SendReminderEnabled       bool `gorm:"not null" json:"send_reminder_enabled"`
	ReminderDaysAfter         int  `gorm:"not null" json:"reminder_days_after"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (InvoiceSettings) TableName() string { return "invoice_settings" }

const (
	DefaultDaysBeforeDue     = 7
	DefaultReminderDaysAfter = 3
)

// Defaults returns the unsaved settings used when an organization has none.
func Defaults(orgID snowflake.ID, prefix string) InvoiceSettings {
	if prefix == "" {
		prefix = "INV"
	}
	return InvoiceSettings{
		OrgID:             orgID,
		InvoicePrefix:     prefix,
		DaysBeforeDue:     DefaultDaysBeforeDue,
		ReminderDaysAfter: DefaultReminderDaysAfter,
	}
}

// Automated reports whether any scheduler job should run for these settings.
func (s InvoiceSettings) Automated() bool {
	return s.AutoSendEnabled || s.SendReminderEnabled
}
