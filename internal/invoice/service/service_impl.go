package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	auditdomain "github.com/smallbiznis/rentledger/internal/audit/domain"
	"github.com/smallbiznis/rentledger/internal/clock"
	"github.com/smallbiznis/rentledger/internal/config"
	"github.com/smallbiznis/rentledger/internal/invoice/domain"
	"github.com/smallbiznis/rentledger/internal/invoice/format"
	"github.com/smallbiznis/rentledger/internal/invoice/lifecycle"
	"github.com/smallbiznis/rentledger/internal/invoice/schedule"
	settingsdomain "github.com/smallbiznis/rentledger/internal/invoicesettings/domain"
	"github.com/smallbiznis/rentledger/internal/observability/metrics"
	"github.com/smallbiznis/rentledger/internal/orgcontext"
	"github.com/smallbiznis/rentledger/internal/providers/email"
	"github.com/smallbiznis/rentledger/internal/providers/pdf"
	recipientdomain "github.com/smallbiznis/rentledger/internal/recipient/domain"
	tenantdomain "github.com/smallbiznis/rentledger/internal/tenant/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	Clock        clock.Clock
	Invoicing    *config.InvoicingConfigHolder
	Repo         domain.Repository
	TenantSvc    tenantdomain.Service
	SettingsSvc  settingsdomain.Service
	RecipientSvc recipientdomain.Service
	Email        email.Provider
	PDF          pdf.Provider
	Metrics      *metrics.Metrics   `optional:"true"`
	Audit        auditdomain.Service `optional:"true"`
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	clock     clock.Clock
	invoicing *config.InvoicingConfigHolder
	repo      domain.Repository

	tenantSvc    tenantdomain.Service
	settingsSvc  settingsdomain.Service
	recipientSvc recipientdomain.Service
	email        email.Provider
	pdf          pdf.Provider
	metrics      *metrics.Metrics
	audit        auditdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("invoice.service"),
		genID:     p.GenID,
		clock:     p.Clock,
		invoicing: p.Invoicing,
		repo:      p.Repo,

		tenantSvc:    p.TenantSvc,
		settingsSvc:  p.SettingsSvc,
		recipientSvc: p.RecipientSvc,
		email:        p.Email,
		pdf:          p.PDF,
		metrics:      p.Metrics,
		audit:        p.Audit,
	}
}

func (s *Service) GenerateSchedule(ctx context.Context, req domain.GenerateScheduleRequest) (domain.GenerateScheduleResult, error) {
	orgID, err := s.orgIDFromContext(ctx)
	if err != nil {
		return domain.GenerateScheduleResult{}, err
	}
	tenantID, err := parseID(req.TenantID, domain.ErrInvalidTenant)
	if err != nil {
		return domain.GenerateScheduleResult{}, err
	}

	terms := schedule.Terms{
		OrgID:           orgID,
		TenantID:        tenantID,
		TenantName:      req.TenantName,
		TenantEmail:     req.TenantEmail,
		PropertyAddress: req.PropertyAddress,
		LeaseStart:      req.LeaseStart,
		LeaseEnd:        req.LeaseEnd,
		MonthlyRent:     req.MonthlyRent,
		RentDueDay:      req.RentDueDay,
	}
	if strings.TrimSpace(req.PropertyID) != "" {
		propertyID, err := parseID(req.PropertyID, domain.ErrInvalidTenant)
		if err != nil {
			return domain.GenerateScheduleResult{}, err
		}
		terms.PropertyID = &propertyID
	}
	if err := terms.Validate(); err != nil {
		return domain.GenerateScheduleResult{}, err
	}

	return s.generate(ctx, terms, "schedule")
}

// RegenerateForTenant replaces every invoice of the tenant with a fresh
// schedule built from the tenant's current lease terms.
func (s *Service) RegenerateForTenant(ctx context.Context, tenantID string) (domain.GenerateScheduleResult, error) {
	orgID, err := s.orgIDFromContext(ctx)
	if err != nil {
		return domain.GenerateScheduleResult{}, err
	}
	details, err := s.tenantSvc.Get(ctx, tenantID)
	if err != nil {
		return domain.GenerateScheduleResult{}, err
	}
	tenant := details.Tenant
	if tenant.LeaseStart == nil {
		return domain.GenerateScheduleResult{}, domain.ErrNoLeaseStart
	}

	leaseStart := clock.DateOf(*tenant.LeaseStart)
	var leaseEnd time.Time
	if tenant.LeaseEnd != nil {
		leaseEnd = clock.DateOf(*tenant.LeaseEnd)
	} else {
		from := leaseStart
		if monthStart := schedule.FirstOfMonth(clock.Today(s.clock)); from.Before(monthStart) {
			from = monthStart
		}
		leaseEnd = schedule.FirstOfMonth(from).AddDate(0, s.invoicing.Get().ScheduleHorizonMonths, 0)
	}

	terms := schedule.Terms{
		OrgID:           orgID,
		TenantID:        tenant.ID,
		PropertyID:      details.PropertyID(),
		TenantName:      tenant.Name,
		TenantEmail:     tenant.Email,
		PropertyAddress: details.PropertyAddress(),
		LeaseStart:      leaseStart,
		LeaseEnd:        leaseEnd,
		MonthlyRent:     tenant.MonthlyRent,
		RentDueDay:      tenant.RentDueDay,
	}
	if err := terms.Validate(); err != nil {
		return domain.GenerateScheduleResult{}, err
	}

	deleted, err := s.repo.DeleteByTenant(ctx, s.db, orgID, tenant.ID)
	if err != nil {
		return domain.GenerateScheduleResult{}, fmt.Errorf("delete tenant invoices: %w", err)
	}
	s.log.Info("tenant invoices deleted for regeneration",
		zap.String("tenant_id", tenant.ID.String()),
		zap.Int64("deleted", deleted),
	)

	result, err := s.generate(ctx, terms, "regenerate")
	result.Deleted = deleted
	s.recordAudit(ctx, "schedule.regenerate", "tenant", tenant.ID.String(), map[string]any{
		"deleted":        deleted,
		"created":        len(result.Invoices),
		"failed_periods": len(result.FailedPeriods),
	})
	return result, err
}

// generate persists each built invoice on its own. A failed insert is logged
// and reported in FailedPeriods; the remaining periods are still stored.
func (s *Service) generate(ctx context.Context, terms schedule.Terms, source string) (domain.GenerateScheduleResult, error) {
	settings, err := s.settingsSvc.GetForOrg(ctx, terms.OrgID)
	if err != nil {
		return domain.GenerateScheduleResult{}, fmt.Errorf("load invoice settings: %w", err)
	}
	prefix := format.NormalizePrefix(settings.InvoicePrefix)
	lastSeq, err := s.lastSequence(ctx, terms.OrgID, prefix)
	if err != nil {
		return domain.GenerateScheduleResult{}, err
	}

	opts := schedule.Options{Prefix: prefix, StartSequence: lastSeq}
	if s.invoicing.Get().ApplyInvoiceDateOffset {
		opts.InvoiceDateOffsetDays = settings.InvoiceDateDaysBeforeRent
	}

	built, err := schedule.Build(terms, clock.Today(s.clock), opts)
	if err != nil {
		return domain.GenerateScheduleResult{}, err
	}

	now := s.clock.Now().UTC()
	result := domain.GenerateScheduleResult{Invoices: make([]domain.Invoice, 0, len(built))}
	for i := range built {
		inv := built[i]
		inv.ID = s.genID.Generate()
		inv.CreatedAt = now
		inv.UpdatedAt = now
		if err := s.repo.Insert(ctx, s.db, &inv); err != nil {
			s.log.Error("failed to insert scheduled invoice",
				zap.String("tenant_id", terms.TenantID.String()),
				zap.String("period", inv.PeriodLabel()),
				zap.String("invoice_number", inv.InvoiceNumber),
				zap.Error(err),
			)
			result.FailedPeriods = append(result.FailedPeriods, inv.PeriodLabel())
			continue
		}
		result.Invoices = append(result.Invoices, inv)
	}

	s.metrics.RecordInvoicesGenerated(ctx, source, len(result.Invoices))
	s.log.Info("invoice schedule generated",
		zap.String("source", source),
		zap.String("tenant_id", terms.TenantID.String()),
		zap.Int("created", len(result.Invoices)),
		zap.Int("failed", len(result.FailedPeriods)),
	)
	return result, nil
}

func (s *Service) Create(ctx context.Context, req domain.CreateInvoiceRequest) (domain.Invoice, error) {
	orgID, err := s.orgIDFromContext(ctx)
	if err != nil {
		return domain.Invoice{}, err
	}
	if _, err := parseID(req.TenantID, domain.ErrInvalidTenant); err != nil {
		return domain.Invoice{}, err
	}
	if req.PeriodStart.IsZero() || req.PeriodEnd.IsZero() {
		return domain.Invoice{}, domain.ErrInvalidPeriod
	}
	periodStart := clock.DateOf(req.PeriodStart)
	periodEnd := clock.DateOf(req.PeriodEnd)
	if periodEnd.Before(periodStart) {
		return domain.Invoice{}, domain.ErrInvalidPeriod
	}
	if !req.Amount.IsPositive() || req.TaxAmount.IsNegative() {
		return domain.Invoice{}, domain.ErrInvalidAmount
	}
	lineItems, err := validateLineItems(req.LineItems, req.Amount)
	if err != nil {
		return domain.Invoice{}, err
	}

	details, err := s.tenantSvc.Get(ctx, req.TenantID)
	if err != nil {
		return domain.Invoice{}, err
	}
	tenant := details.Tenant

	invoiceDate := periodStart
	if req.InvoiceDate != nil {
		invoiceDate = clock.DateOf(*req.InvoiceDate)
	}
	dueDate := schedule.DueDate(periodStart, max(tenant.RentDueDay, 1))
	if req.DueDate != nil {
		dueDate = clock.DateOf(*req.DueDate)
	}
	if dueDate.Before(invoiceDate) {
		return domain.Invoice{}, domain.ErrInvalidPeriod
	}
	if len(lineItems) == 0 {
		lineItems = []domain.LineItem{schedule.RentLineItem(periodStart, periodEnd, req.Amount.Round(2))}
	}

	settings, err := s.settingsSvc.GetForOrg(ctx, orgID)
	if err != nil {
		return domain.Invoice{}, fmt.Errorf("load invoice settings: %w", err)
	}
	prefix := format.NormalizePrefix(settings.InvoicePrefix)
	lastSeq, err := s.lastSequence(ctx, orgID, prefix)
	if err != nil {
		return domain.Invoice{}, err
	}
	number, err := format.InvoiceNumber(prefix, periodStart, lastSeq+1)
	if err != nil {
		return domain.Invoice{}, err
	}

	status := domain.InvoiceStatusDraft
	if req.SubmitForApproval {
		status = domain.InvoiceStatusPendingApproval
	}
	amount := req.Amount.Round(2)
	tax := req.TaxAmount.Round(2)
	now := s.clock.Now().UTC()
	inv := domain.Invoice{
		ID:              s.genID.Generate(),
		OrgID:           orgID,
		TenantID:        tenant.ID,
		PropertyID:      details.PropertyID(),
		InvoiceNumber:   number,
		InvoiceDate:     invoiceDate,
		DueDate:         dueDate,
		PeriodStart:     periodStart,
		PeriodEnd:       periodEnd,
		Amount:          amount,
		TaxAmount:       tax,
		TotalAmount:     amount.Add(tax),
		AmountPaid:      decimal.Zero,
		Status:          status,
		ApprovalStatus:  domain.ApprovalStatusPending,
		TenantName:      strings.TrimSpace(tenant.Name),
		TenantEmail:     strings.TrimSpace(tenant.Email),
		PropertyAddress: strings.TrimSpace(details.PropertyAddress()),
		LineItems:       lineItems,
		Notes:           strings.TrimSpace(req.Notes),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.repo.Insert(ctx, s.db, &inv); err != nil {
		return domain.Invoice{}, fmt.Errorf("insert invoice: %w", err)
	}
	s.metrics.RecordInvoicesGenerated(ctx, "manual", 1)
	s.recordAudit(ctx, "invoice.create", "invoice", inv.ID.String(), map[string]any{
		"invoice_number": inv.InvoiceNumber,
		"total_amount":   inv.TotalAmount.StringFixed(2),
	})
	return inv, nil
}

func (s *Service) Get(ctx context.Context, id string) (domain.Invoice, error) {
	orgID, err := s.orgIDFromContext(ctx)
	if err != nil {
		return domain.Invoice{}, err
	}
	inv, err := s.load(ctx, orgID, id)
	if err != nil {
		return domain.Invoice{}, err
	}
	return *inv, nil
}

// List filters by tenant and status. Filtering by overdue matches the derived
// overdue state, not only invoices stored as overdue.
func (s *Service) List(ctx context.Context, req domain.ListInvoiceRequest) ([]domain.Invoice, error) {
	orgID, err := s.orgIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var filter domain.ListInvoiceFilter
	if strings.TrimSpace(req.TenantID) != "" {
		tenantID, err := parseID(req.TenantID, domain.ErrInvalidTenant)
		if err != nil {
			return nil, err
		}
		filter.TenantID = &tenantID
	}

	status := domain.InvoiceStatus(strings.ToLower(strings.TrimSpace(req.Status)))
	overdueOnly := false
	if status != "" {
		if !status.Valid() {
			return nil, domain.ErrInvalidStatus
		}
		if status == domain.InvoiceStatusOverdue {
			overdueOnly = true
			filter.Statuses = []domain.InvoiceStatus{
				domain.InvoiceStatusApproved,
				domain.InvoiceStatusSent,
				domain.InvoiceStatusOverdue,
			}
		} else {
			filter.Statuses = []domain.InvoiceStatus{status}
		}
	}

	items, err := s.repo.List(ctx, s.db, orgID, filter)
	if err != nil {
		return nil, err
	}

	today := clock.Today(s.clock)
	invoices := make([]domain.Invoice, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		if overdueOnly && !lifecycle.IsOverdue(*item, today) {
			continue
		}
		invoices = append(invoices, *item)
	}
	return invoices, nil
}

func (s *Service) lastSequence(ctx context.Context, orgID snowflake.ID, prefix string) (int64, error) {
	numbers, err := s.repo.ListNumbersWithPrefix(ctx, s.db, orgID, prefix)
	if err != nil {
		return 0, fmt.Errorf("list invoice numbers: %w", err)
	}
	return format.MaxSequence(prefix, numbers), nil
}

func (s *Service) load(ctx context.Context, orgID snowflake.ID, id string) (*domain.Invoice, error) {
	invoiceID, err := parseID(id, domain.ErrInvalidInvoiceID)
	if err != nil {
		return nil, err
	}
	inv, err := s.repo.FindByID(ctx, s.db, orgID, invoiceID)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.ErrInvoiceNotFound
	}
	return inv, nil
}

func (s *Service) orgIDFromContext(ctx context.Context) (snowflake.ID, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return 0, domain.ErrInvalidOrganization
	}
	return orgID, nil
}

func validateLineItems(items []domain.LineItem, amount decimal.Decimal) ([]domain.LineItem, error) {
	if len(items) == 0 {
		return nil, nil
	}
	out := make([]domain.LineItem, 0, len(items))
	sum := decimal.Zero
	for _, item := range items {
		item.Description = strings.TrimSpace(item.Description)
		if item.Description == "" || !item.Quantity.IsPositive() || item.UnitPrice.IsNegative() {
			return nil, domain.ErrInvalidLineItem
		}
		if !item.Consistent() {
			return nil, domain.ErrInvalidLineItem
		}
		item.Amount = item.Amount.Round(2)
		sum = sum.Add(item.Amount)
		out = append(out, item)
	}
	if !sum.Equal(amount.Round(2)) {
		return nil, domain.ErrLineItemMismatch
	}
	return out, nil
}

func parseID(raw string, invalid error) (snowflake.ID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, invalid
	}
	id, err := snowflake.ParseString(raw)
	if err != nil || id == 0 {
		return 0, invalid
	}
	return id, nil
}
