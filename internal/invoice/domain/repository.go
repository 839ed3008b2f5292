package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ListInvoiceFilter struct {
	TenantID *snowflake.ID
	Statuses []InvoiceStatus
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, invoice *Invoice) error
	FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*Invoice, error)
	List(ctx context.Context, db *gorm.DB, orgID snowflake.ID, filter ListInvoiceFilter) ([]*Invoice, error)
	Update(ctx context.Context, db *gorm.DB, invoice *Invoice) error
	DeleteByTenant(ctx context.Context, db *gorm.DB, orgID, tenantID snowflake.ID) (int64, error)
	ListNumbersWithPrefix(ctx context.Context, db *gorm.DB, orgID snowflake.ID, prefix string) ([]string, error)
}
