package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/rentledger/internal/clock"
	"github.com/smallbiznis/rentledger/internal/orgcontext"
	"github.com/smallbiznis/rentledger/internal/recipient/domain"
	tenantdomain "github.com/smallbiznis/rentledger/internal/tenant/domain"
	"github.com/smallbiznis/rentledger/pkg/db/option"
	"github.com/smallbiznis/rentledger/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Clock     clock.Clock
	TenantSvc tenantdomain.Service
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	clock     clock.Clock
	tenantSvc tenantdomain.Service

	recipientrepo repository.Repository[domain.InvoiceRecipient]
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("recipient.service"),
		genID:     p.GenID,
		clock:     p.Clock,
		tenantSvc: p.TenantSvc,

		recipientrepo: repository.New[domain.InvoiceRecipient](p.DB),
	}
}

func (s *Service) List(ctx context.Context, tenantID string) ([]domain.InvoiceRecipient, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidOrganization
	}
	id, err := parseID(tenantID, domain.ErrInvalidTenant)
	if err != nil {
		return nil, err
	}
	return s.list(ctx, orgID, id)
}

func (s *Service) list(ctx context.Context, orgID, tenantID snowflake.ID) ([]domain.InvoiceRecipient, error) {
	return s.recipientrepo.Find(ctx, orgID,
		&domain.InvoiceRecipient{TenantID: tenantID},
		option.WithOrder("is_primary desc, created_at asc, id asc"),
	)
}

func (s *Service) Add(ctx context.Context, req domain.AddRequest) (domain.InvoiceRecipient, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok {
		return domain.InvoiceRecipient{}, domain.ErrInvalidOrganization
	}
	tenantID, err := parseID(req.TenantID, domain.ErrInvalidTenant)
	if err != nil {
		return domain.InvoiceRecipient{}, err
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return domain.InvoiceRecipient{}, domain.ErrInvalidEmail
	}

	existing, err := s.recipientrepo.FindOne(ctx, orgID, &domain.InvoiceRecipient{TenantID: tenantID, Email: email})
	if err != nil {
		return domain.InvoiceRecipient{}, err
	}
	if existing != nil {
		return domain.InvoiceRecipient{}, domain.ErrDuplicateRecipient
	}

	count, err := s.recipientrepo.Count(ctx, orgID, &domain.InvoiceRecipient{TenantID: tenantID})
	if err != nil {
		return domain.InvoiceRecipient{}, err
	}

	recipient := domain.InvoiceRecipient{
		ID:        s.genID.Generate(),
		OrgID:     orgID,
		TenantID:  tenantID,
		Email:     email,
		Name:      strings.TrimSpace(req.Name),
		IsPrimary: req.IsPrimary || count == 0,
		CreatedAt: s.clock.Now(),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.recipientrepo.WithTrx(tx)
		if recipient.IsPrimary {
			if err := clearPrimary(ctx, repo, orgID, tenantID); err != nil {
				return err
			}
		}
		return repo.Create(ctx, &recipient)
	})
	if err != nil {
		return domain.InvoiceRecipient{}, err
	}
	return recipient, nil
}

func (s *Service) SetPrimary(ctx context.Context, id string) (domain.InvoiceRecipient, error) {
	recipient, err := s.find(ctx, id)
	if err != nil {
		return domain.InvoiceRecipient{}, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.recipientrepo.WithTrx(tx)
		if err := clearPrimary(ctx, repo, recipient.OrgID, recipient.TenantID); err != nil {
			return err
		}
		return repo.UpdateByID(ctx, recipient.OrgID, recipient.ID, map[string]any{"is_primary": true})
	})
	if err != nil {
		return domain.InvoiceRecipient{}, err
	}
	recipient.IsPrimary = true
	return recipient, nil
}

func (s *Service) Remove(ctx context.Context, id string) error {
	recipient, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if err := s.recipientrepo.DeleteByID(ctx, recipient.OrgID, recipient.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.ErrNotFound
		}
		return err
	}
	return nil
}

func (s *Service) Resolve(ctx context.Context, tenantID snowflake.ID) ([]domain.InvoiceRecipient, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidOrganization
	}
	if tenantID == 0 {
		return nil, domain.ErrInvalidTenant
	}

	explicit, err := s.list(ctx, orgID, tenantID)
	if err != nil {
		return nil, err
	}
	if len(explicit) > 0 {
		return explicit, nil
	}

	tenant, err := s.tenantSvc.Get(ctx, tenantID.String())
	if err != nil {
		return nil, err
	}
	email := strings.ToLower(strings.TrimSpace(tenant.Tenant.Email))
	if email == "" {
		return nil, nil
	}
	return []domain.InvoiceRecipient{{
		OrgID:       orgID,
		TenantID:    tenantID,
		Email:       email,
		Name:        tenant.Tenant.Name,
		IsPrimary:   true,
		Synthesized: true,
	}}, nil
}

func (s *Service) find(ctx context.Context, id string) (domain.InvoiceRecipient, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok {
		return domain.InvoiceRecipient{}, domain.ErrInvalidOrganization
	}
	recipientID, err := parseID(id, domain.ErrInvalidID)
	if err != nil {
		return domain.InvoiceRecipient{}, err
	}
	item, err := s.recipientrepo.FindByID(ctx, orgID, recipientID)
	if err != nil {
		return domain.InvoiceRecipient{}, err
	}
	if item == nil {
		return domain.InvoiceRecipient{}, domain.ErrNotFound
	}
	return *item, nil
}

func clearPrimary(ctx context.Context, repo repository.Repository[domain.InvoiceRecipient], orgID, tenantID snowflake.ID) error {
	_, err := repo.UpdateWhere(ctx, orgID,
		&domain.InvoiceRecipient{TenantID: tenantID, IsPrimary: true},
		map[string]any{"is_primary": false},
	)
	return err
}

func parseID(raw string, invalid error) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || id == 0 {
		return 0, invalid
	}
	return id, nil
}
