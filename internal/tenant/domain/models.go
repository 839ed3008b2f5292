package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Tenant is the external tenant record that invoicing reads.
type Tenant struct {
	ID          snowflake.ID    `gorm:"primaryKey" json:"id"`
	OrgID       snowflake.ID    `gorm:"column:organization_id;not null;index" json:"organization_id"`
	Name        string          `gorm:"type:text;not null" json:"name"`
	Email       string          `gorm:"type:text;not null;default:''" json:"email"`
	PropertyID  *snowflake.ID   `json:"property_id,omitempty"`
	LeaseStart  *time.Time      `gorm:"type:date" json:"lease_start,omitempty"`
	LeaseEnd    *time.Time      `gorm:"type:date" json:"lease_end,omitempty"`
	MonthlyRent decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"monthly_rent"`
	RentDueDay  int             `gorm:"not null;default:1" json:"rent_due_day"`
	CreatedAt   time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"not null" json:"updated_at"`
}

func (Tenant) TableName() string { return "tenants" }

type Property struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	OrgID     snowflake.ID `gorm:"column:organization_id;not null;index" json:"organization_id"`
	Address   string       `gorm:"type:text;not null" json:"address"`
	CreatedAt time.Time    `gorm:"not null" json:"created_at"`
}

func (Property) TableName() string { return "properties" }

// UnitTenant links a tenant to a unit of a property.
type UnitTenant struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	OrgID      snowflake.ID `gorm:"column:organization_id;not null;index" json:"organization_id"`
	TenantID   snowflake.ID `gorm:"not null;index" json:"tenant_id"`
	PropertyID snowflake.ID `gorm:"not null;index" json:"property_id"`
	UnitLabel  string       `gorm:"type:text;not null;default:''" json:"unit_label"`
	CreatedAt  time.Time    `gorm:"not null" json:"created_at"`
}

func (UnitTenant) TableName() string { return "unit_tenants" }

// TenantDetails is a tenant joined with its resolved property.
type TenantDetails struct {
	Tenant   Tenant
	Property *Property
}

// PropertyAddress returns the address of the resolved property, or "".
func (d TenantDetails) PropertyAddress() string {
	if d.Property == nil {
		return ""
	}
	return d.Property.Address
}

func (d TenantDetails) PropertyID() *snowflake.ID {
	if d.Property == nil {
		return nil
	}
	id := d.Property.ID
	return &id
}
