package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	FindByOrg(ctx context.Context, db *gorm.DB, orgID snowflake.ID) (*InvoiceSettings, error)
	Upsert(ctx context.Context, db *gorm.DB, settings *InvoiceSettings) error
	ListAutomated(ctx context.Context, db *gorm.DB) ([]*InvoiceSettings, error)
}
