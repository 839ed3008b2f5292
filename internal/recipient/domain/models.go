package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

// InvoiceRecipient is an address entitled to receive a tenant's invoices.
type InvoiceRecipient struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	OrgID     snowflake.ID `gorm:"column:organization_id;not null;index" json:"organization_id"`
	TenantID  snowflake.ID `gorm:"not null;index" json:"tenant_id"`
	Email     string       `gorm:"type:text;not null" json:"email"`
	Name      string       `gorm:"type:text;not null;default:''" json:"name"`
	IsPrimary bool         `gorm:"not null" json:"is_primary"`
	// Synthesized marks the implicit recipient built from the tenant's own email.
	Synthesized bool      `gorm:"-" json:"synthesized,omitempty"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
}

func (InvoiceRecipient) TableName() string { return "invoice_recipients" }

type AddRequest struct {
	TenantID  string
	Email     string
	Name      string
	IsPrimary bool
}

type Service interface {
	List(ctx context.Context, tenantID string) ([]InvoiceRecipient, error)
	Add(ctx context.Context, req AddRequest) (InvoiceRecipient, error)
	SetPrimary(ctx context.Context, id string) (InvoiceRecipient, error)
	Remove(ctx context.Context, id string) error
	// Resolve returns the explicit recipients with the primary first, or a
	// single synthesized primary built from the tenant's email.
	Resolve(ctx context.Context, tenantID snowflake.ID) ([]InvoiceRecipient, error)
}

// Emails flattens recipients to their addresses.
func Emails(recipients []InvoiceRecipient) []string {
	out := make([]string, 0, len(recipients))
	for _, r := range recipients {
		if r.Email != "" {
			out = append(out, r.Email)
		}
	}
	return out
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidTenant       = errors.New("invalid_tenant")
	ErrInvalidID           = errors.New("invalid_id")
	ErrInvalidEmail        = errors.New("invalid_email")
	ErrDuplicateRecipient  = errors.New("duplicate_recipient")
	ErrNotFound            = errors.New("recipient_not_found")
)
