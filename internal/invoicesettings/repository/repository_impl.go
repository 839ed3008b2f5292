package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/rentledger/internal/invoicesettings/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindByOrg(ctx context.Context, db *gorm.DB, orgID snowflake.ID) (*domain.InvoiceSettings, error) {
	var settings domain.InvoiceSettings
	err := db.WithContext(ctx).
		Where("organization_id = ?", orgID).
		Limit(1).
		Find(&settings).Error
	if err != nil {
		return nil, err
	}
	if settings.ID == 0 {
		return nil, nil
	}
	return &settings, nil
}

// Upsert inserts the row or overwrites every mutable column of the
// organization's existing row. The stored id and created_at are kept.
func (r *repo) Upsert(ctx context.Context, db *gorm.DB, settings *domain.InvoiceSettings) error {
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "organization_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"company_name",
			"company_address",
			"company_email",
			"company_phone",
			"logo_url",
			"invoice_prefix",
			"payment_terms",
			"payment_instructions",
			"footer_text",
			"auto_send_enabled",
			"days_before_due",
			"invoice_date_days_before_rent",
			"send_reminder_enabled",
			"reminder_days_after",
			"updated_at",
		}),
	}).Create(settings).Error
}

func (r *repo) ListAutomated(ctx context.Context, db *gorm.DB) ([]*domain.InvoiceSettings, error) {
	var items []*domain.InvoiceSettings
	err := db.WithContext(ctx).
		Where("auto_send_enabled = ? OR send_reminder_enabled = ?", true, true).
		Order("organization_id asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
