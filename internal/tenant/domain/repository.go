package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*Tenant, error)
	List(ctx context.Context, db *gorm.DB, orgID snowflake.ID) ([]Tenant, error)
	FindProperty(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*Property, error)
	FirstUnitProperty(ctx context.Context, db *gorm.DB, orgID, tenantID snowflake.ID) (*Property, error)
}
