package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/rentledger/internal/tenant/domain"
	"github.com/smallbiznis/rentledger/pkg/db/option"
	"github.com/smallbiznis/rentledger/pkg/repository"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*domain.Tenant, error) {
	return repository.New[domain.Tenant](db).FindByID(ctx, orgID, id)
}

func (r *repo) List(ctx context.Context, db *gorm.DB, orgID snowflake.ID) ([]domain.Tenant, error) {
	return repository.New[domain.Tenant](db).Find(ctx, orgID, nil, option.WithOrder("name asc, id asc"))
}

func (r *repo) FindProperty(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*domain.Property, error) {
	return repository.New[domain.Property](db).FindByID(ctx, orgID, id)
}

// FirstUnitProperty joins through unit_tenants, which the scoped store cannot
// express, so it filters both sides by organization explicitly.
func (r *repo) FirstUnitProperty(ctx context.Context, db *gorm.DB, orgID, tenantID snowflake.ID) (*domain.Property, error) {
	var property domain.Property
	err := db.WithContext(ctx).
		Table("properties AS p").
		Select("p.id, p.organization_id, p.address, p.created_at").
		Joins("JOIN unit_tenants ut ON ut.property_id = p.id AND ut.organization_id = p.organization_id").
		Where("ut.organization_id = ? AND ut.tenant_id = ?", orgID, tenantID).
		Order("ut.created_at asc, ut.id asc").
		Limit(1).
		Scan(&property).Error
	if err != nil {
		return nil, err
	}
	if property.ID == 0 {
		return nil, nil
	}
	return &property, nil
}
