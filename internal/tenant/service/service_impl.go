package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/rentledger/internal/orgcontext"
	"github.com/smallbiznis/rentledger/internal/tenant/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo domain.Repository
}

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("tenant.service"),
		repo: p.Repo,
	}
}

func (s *Service) Get(ctx context.Context, id string) (domain.TenantDetails, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok {
		return domain.TenantDetails{}, domain.ErrInvalidOrganization
	}
	tenantID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || tenantID == 0 {
		return domain.TenantDetails{}, domain.ErrInvalidID
	}

	tenant, err := s.repo.FindByID(ctx, s.db, orgID, tenantID)
	if err != nil {
		return domain.TenantDetails{}, err
	}
	if tenant == nil {
		return domain.TenantDetails{}, domain.ErrNotFound
	}
	return s.withProperty(ctx, orgID, *tenant)
}

func (s *Service) List(ctx context.Context) ([]domain.TenantDetails, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidOrganization
	}

	tenants, err := s.repo.List(ctx, s.db, orgID)
	if err != nil {
		return nil, err
	}

	out := make([]domain.TenantDetails, 0, len(tenants))
	for _, tenant := range tenants {
		details, err := s.withProperty(ctx, orgID, tenant)
		if err != nil {
			return nil, err
		}
		out = append(out, details)
	}
	return out, nil
}

// withProperty resolves the tenant's own property, falling back to the first
// unit link. A tenant with neither is returned without a property.
func (s *Service) withProperty(ctx context.Context, orgID snowflake.ID, tenant domain.Tenant) (domain.TenantDetails, error) {
	details := domain.TenantDetails{Tenant: tenant}

	if tenant.PropertyID != nil && *tenant.PropertyID != 0 {
		property, err := s.repo.FindProperty(ctx, s.db, orgID, *tenant.PropertyID)
		if err != nil {
			return details, err
		}
		if property != nil {
			details.Property = property
			return details, nil
		}
		s.log.Warn("tenant property missing",
			zap.String("tenant_id", tenant.ID.String()),
			zap.String("property_id", tenant.PropertyID.String()),
		)
	}

	property, err := s.repo.FirstUnitProperty(ctx, s.db, orgID, tenant.ID)
	if err != nil {
		return details, err
	}
	details.Property = property
	return details, nil
}
