package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/rentledger/internal/clock"
	"github.com/smallbiznis/rentledger/internal/config"
	"github.com/smallbiznis/rentledger/internal/invoicesettings/domain"
	"github.com/smallbiznis/rentledger/internal/orgcontext"
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
	Invoicing *config.InvoicingConfigHolder
	Repo      domain.Repository
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	clock     clock.Clock
	invoicing *config.InvoicingConfigHolder
	repo      domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("invoicesettings.service"),
		genID:     p.GenID,
		clock:     p.Clock,
		invoicing: p.Invoicing,
		repo:      p.Repo,
	}
}

func (s *Service) Get(ctx context.Context) (domain.InvoiceSettings, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok {
		return domain.InvoiceSettings{}, domain.ErrInvalidOrganization
	}
	return s.GetForOrg(ctx, orgID)
}

func (s *Service) GetForOrg(ctx context.Context, orgID snowflake.ID) (domain.InvoiceSettings, error) {
	if orgID == 0 {
		return domain.InvoiceSettings{}, domain.ErrInvalidOrganization
	}
	settings, err := s.repo.FindByOrg(ctx, s.db, orgID)
	if err != nil {
		return domain.InvoiceSettings{}, err
	}
	if settings == nil {
		return domain.Defaults(orgID, s.invoicing.Get().DefaultPrefix), nil
	}
	return *settings, nil
}

func (s *Service) Upsert(ctx context.Context, req domain.UpsertRequest) (domain.InvoiceSettings, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok {
		return domain.InvoiceSettings{}, domain.ErrInvalidOrganization
	}

	prefix := strings.ToUpper(strings.TrimSpace(req.InvoicePrefix))
	if prefix == "" {
		prefix = s.invoicing.Get().DefaultPrefix
	}
	if strings.ContainsAny(prefix, " {}") {
		return domain.InvoiceSettings{}, domain.ErrInvalidPrefix
	}

	companyEmail := strings.TrimSpace(req.CompanyEmail)
	if companyEmail != "" && !strings.Contains(companyEmail, "@") {
		return domain.InvoiceSettings{}, domain.ErrInvalidEmail
	}

	daysBeforeDue, err := days(req.DaysBeforeDue, domain.DefaultDaysBeforeDue)
	if err != nil {
		return domain.InvoiceSettings{}, err
	}
	invoiceDateOffset, err := days(req.InvoiceDateDaysBeforeRent, 0)
	if err != nil {
		return domain.InvoiceSettings{}, err
	}
	reminderDaysAfter, err := days(req.ReminderDaysAfter, domain.DefaultReminderDaysAfter)
	if err != nil {
		return domain.InvoiceSettings{}, err
	}

	existing, err := s.repo.FindByOrg(ctx, s.db, orgID)
	if err != nil {
		return domain.InvoiceSettings{}, err
	}

	now := s.clock.Now()
	settings := domain.InvoiceSettings{
		ID:                        s.genID.Generate(),
		OrgID:                     orgID,
		CompanyName:               strings.TrimSpace(req.CompanyName),
		CompanyAddress:            strings.TrimSpace(req.CompanyAddress),
		CompanyEmail:              companyEmail,
		CompanyPhone:              strings.TrimSpace(req.CompanyPhone),
		LogoURL:                   strings.TrimSpace(req.LogoURL),
		InvoicePrefix:             prefix,
		PaymentTerms:              strings.TrimSpace(req.PaymentTerms),
		PaymentInstructions:       strings.TrimSpace(req.PaymentInstructions),
		FooterText:                strings.TrimSpace(req.FooterText),
		AutoSendEnabled:           req.AutoSendEnabled,
		DaysBeforeDue:             daysBeforeDue,
		InvoiceDateDaysBeforeRent: invoiceDateOffset,
		SendReminderEnabled:       req.SendReminderEnabled,
		ReminderDaysAfter:         reminderDaysAfter,
		CreatedAt:                 now,
		UpdatedAt:                 now,
	}
	if existing != nil {
		settings.ID = existing.ID
		settings.CreatedAt = existing.CreatedAt
	}

	if err := s.repo.Upsert(ctx, s.db, &settings); err != nil {
		s.log.Error("upsert invoice settings failed", zap.String("org_id", orgID.String()), zap.Error(err))
		return domain.InvoiceSettings{}, err
	}
	return settings, nil
}

func (s *Service) ListAutomated(ctx context.Context) ([]domain.InvoiceSettings, error) {
	items, err := s.repo.ListAutomated(ctx, s.db)
	if err != nil {
		return nil, err
	}
	out := make([]domain.InvoiceSettings, 0, len(items))
	for _, item := range items {
		if item != nil {
			out = append(out, *item)
		}
	}
	return out, nil
}

func days(v *int, def int) (int, error) {
	if v == nil {
		return def, nil
	}
	if *v < 0 || *v > 365 {
		return 0, domain.ErrInvalidDays
	}
	return *v, nil
}
