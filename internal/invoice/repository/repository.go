package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/rentledger/internal/invoice/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, invoice *domain.Invoice) error {
	return db.WithContext(ctx).Create(invoice).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*domain.Invoice, error) {
	var invoice domain.Invoice
	err := db.WithContext(ctx).
		Where("organization_id = ? AND id = ?", orgID, id).
		Limit(1).
		Find(&invoice).Error
	if err != nil {
		return nil, err
	}
	if invoice.ID == 0 {
		return nil, nil
	}
	return &invoice, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, orgID snowflake.ID, filter domain.ListInvoiceFilter) ([]*domain.Invoice, error) {
	query := db.WithContext(ctx).Where("organization_id = ?", orgID)
	if filter.TenantID != nil {
		query = query.Where("tenant_id = ?", *filter.TenantID)
	}
	if len(filter.Statuses) > 0 {
		query = query.Where("status IN ?", filter.Statuses)
	}

	var invoices []*domain.Invoice
	if err := query.Order("period_start asc, id asc").Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

// Update writes every mutable column. Zero values such as a cleared paid_at
// or amount_paid of 0 must be persisted.
func (r *repo) Update(ctx context.Context, db *gorm.DB, invoice *domain.Invoice) error {
	return db.WithContext(ctx).
		Model(&domain.Invoice{}).
		Where("organization_id = ? AND id = ?", invoice.OrgID, invoice.ID).
		Select("*").
		Omit("id", "organization_id", "created_at").
		Updates(invoice).Error
}

func (r *repo) DeleteByTenant(ctx context.Context, db *gorm.DB, orgID, tenantID snowflake.ID) (int64, error) {
	result := db.WithContext(ctx).
		Where("organization_id = ? AND tenant_id = ?", orgID, tenantID).
		Delete(&domain.Invoice{})
	return result.RowsAffected, result.Error
}

func (r *repo) ListNumbersWithPrefix(ctx context.Context, db *gorm.DB, orgID snowflake.ID, prefix string) ([]string, error) {
	var numbers []string
	err := db.WithContext(ctx).
		Model(&domain.Invoice{}).
		Where("organization_id = ? AND invoice_number LIKE ?", orgID, prefix+"-%").
		Pluck("invoice_number", &numbers).Error
	if err != nil {
		return nil, err
	}
	return numbers, nil
}
