package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/rentledger/internal/clock"
	"github.com/smallbiznis/rentledger/internal/invoice/domain"
	"github.com/smallbiznis/rentledger/internal/invoice/lifecycle"
	settingsdomain "github.com/smallbiznis/rentledger/internal/invoicesettings/domain"
	"github.com/smallbiznis/rentledger/internal/orgcontext"
	"github.com/smallbiznis/rentledger/internal/providers/email"
	"github.com/smallbiznis/rentledger/internal/providers/pdf"
	recipientdomain "github.com/smallbiznis/rentledger/internal/recipient/domain"
	"go.uber.org/zap"
)

const (
	emailKindInvoice  = "invoice"
	emailKindReminder = "reminder"
)

// SendInvoice emails the invoice PDF and then marks the invoice sent. When
// the email fails the invoice is left untouched. When the status update fails
// after delivery the error is returned and the email stays sent.
func (s *Service) SendInvoice(ctx context.Context, id string, recipients []string) (domain.Invoice, error) {
	orgID, err := s.orgIDFromContext(ctx)
	if err != nil {
		return domain.Invoice{}, err
	}
	current, err := s.load(ctx, orgID, id)
	if err != nil {
		return domain.Invoice{}, err
	}

	to, err := s.recipientsFor(ctx, *current, recipients)
	if err != nil {
		return domain.Invoice{}, err
	}
	now := s.clock.Now().UTC()
	updated, err := lifecycle.MarkSent(*current, to, now)
	if err != nil {
		return domain.Invoice{}, err
	}

	if err := s.deliver(ctx, *current, updated.SentTo, emailKindInvoice); err != nil {
		return domain.Invoice{}, err
	}
	if err := s.save(ctx, *current, &updated, "send"); err != nil {
		return domain.Invoice{}, err
	}
	return updated, nil
}

func (s *Service) SendReminder(ctx context.Context, id string) (domain.Invoice, error) {
	orgID, err := s.orgIDFromContext(ctx)
	if err != nil {
		return domain.Invoice{}, err
	}
	current, err := s.load(ctx, orgID, id)
	if err != nil {
		return domain.Invoice{}, err
	}

	updated, err := lifecycle.RecordReminder(*current, s.clock.Now().UTC())
	if err != nil {
		return domain.Invoice{}, err
	}
	to, err := s.recipientsFor(ctx, *current, current.SentTo)
	if err != nil {
		return domain.Invoice{}, err
	}

	if err := s.deliver(ctx, *current, to, emailKindReminder); err != nil {
		return domain.Invoice{}, err
	}
	if err := s.save(ctx, *current, &updated, "reminder"); err != nil {
		return domain.Invoice{}, err
	}
	return updated, nil
}

func (s *Service) RenderPDF(ctx context.Context, id string) (domain.RenderedPDF, error) {
	orgID, err := s.orgIDFromContext(ctx)
	if err != nil {
		return domain.RenderedPDF{}, err
	}
	inv, err := s.load(ctx, orgID, id)
	if err != nil {
		return domain.RenderedPDF{}, err
	}
	settings, err := s.settingsSvc.GetForOrg(ctx, orgID)
	if err != nil {
		return domain.RenderedPDF{}, fmt.Errorf("load invoice settings: %w", err)
	}
	content, err := s.pdf.RenderInvoice(ctx, *inv, settings)
	if err != nil {
		return domain.RenderedPDF{}, fmt.Errorf("render invoice pdf: %w", err)
	}
	return domain.RenderedPDF{FileName: pdf.FileName(*inv), Content: content}, nil
}

// AutoSendDue sends approved, unsent invoices once their due date is within
// the organization's days_before_due window.
func (s *Service) AutoSendDue(ctx context.Context, orgID snowflake.ID) (int, error) {
	if orgID == 0 {
		return 0, domain.ErrInvalidOrganization
	}
	ctx = orgcontext.WithOrgID(ctx, orgID)
	settings, err := s.settingsSvc.GetForOrg(ctx, orgID)
	if err != nil {
		return 0, err
	}
	if !settings.AutoSendEnabled {
		return 0, nil
	}

	items, err := s.repo.List(ctx, s.db, orgID, domain.ListInvoiceFilter{
		Statuses: []domain.InvoiceStatus{domain.InvoiceStatusApproved},
	})
	if err != nil {
		return 0, err
	}

	today := clock.Today(s.clock)
	var errs []error
	sent := 0
	for _, inv := range items {
		if inv == nil || !dueForAutoSend(*inv, settings, today) {
			continue
		}
		if _, err := s.SendInvoice(ctx, inv.ID.String(), nil); err != nil {
			s.log.Warn("auto send failed",
				zap.String("invoice_id", inv.ID.String()),
				zap.Error(err),
			)
			errs = append(errs, fmt.Errorf("invoice %s: %w", inv.ID, err))
			continue
		}
		sent++
	}
	return sent, errors.Join(errs...)
}

// SendDueReminders reminds tenants of unpaid invoices reminder_days_after
// past their due date, at most once per reminder_days_after interval.
func (s *Service) SendDueReminders(ctx context.Context, orgID snowflake.ID) (int, error) {
	if orgID == 0 {
		return 0, domain.ErrInvalidOrganization
	}
	ctx = orgcontext.WithOrgID(ctx, orgID)
	settings, err := s.settingsSvc.GetForOrg(ctx, orgID)
	if err != nil {
		return 0, err
	}
	if !settings.SendReminderEnabled {
		return 0, nil
	}

	items, err := s.repo.List(ctx, s.db, orgID, domain.ListInvoiceFilter{
		Statuses: []domain.InvoiceStatus{
			domain.InvoiceStatusSent,
			domain.InvoiceStatusOverdue,
			domain.InvoiceStatusPartial,
		},
	})
	if err != nil {
		return 0, err
	}

	today := clock.Today(s.clock)
	var errs []error
	reminded := 0
	for _, inv := range items {
		if inv == nil || !dueForReminder(*inv, settings, today) {
			continue
		}
		if _, err := s.SendReminder(ctx, inv.ID.String()); err != nil {
			s.log.Warn("reminder failed",
				zap.String("invoice_id", inv.ID.String()),
				zap.Error(err),
			)
			errs = append(errs, fmt.Errorf("invoice %s: %w", inv.ID, err))
			continue
		}
		reminded++
	}
	return reminded, errors.Join(errs...)
}

func dueForAutoSend(inv domain.Invoice, settings settingsdomain.InvoiceSettings, today time.Time) bool {
	if inv.Status != domain.InvoiceStatusApproved || inv.SentAt != nil {
		return false
	}
	sendFrom := clock.DateOf(inv.DueDate).AddDate(0, 0, -settings.DaysBeforeDue)
	return !today.Before(sendFrom)
}

func dueForReminder(inv domain.Invoice, settings settingsdomain.InvoiceSettings, today time.Time) bool {
	if !lifecycle.CanRemind(inv) || !inv.Outstanding().IsPositive() {
		return false
	}
	remindFrom := clock.DateOf(inv.DueDate).AddDate(0, 0, settings.ReminderDaysAfter)
	if today.Before(remindFrom) {
		return false
	}
	if inv.LastReminderAt == nil {
		return true
	}
	next := clock.DateOf(*inv.LastReminderAt).AddDate(0, 0, max(settings.ReminderDaysAfter, 1))
	return !today.Before(next)
}

// recipientsFor prefers explicit addresses and falls back to the tenant's
// recipient list.
func (s *Service) recipientsFor(ctx context.Context, inv domain.Invoice, explicit []string) ([]string, error) {
	if to := lifecycle.NormalizeRecipients(explicit); len(to) > 0 {
		return to, nil
	}
	resolved, err := s.recipientSvc.Resolve(ctx, inv.TenantID)
	if err != nil {
		return nil, fmt.Errorf("resolve recipients: %w", err)
	}
	to := lifecycle.NormalizeRecipients(recipientdomain.Emails(resolved))
	if len(to) == 0 && strings.TrimSpace(inv.TenantEmail) != "" {
		to = lifecycle.NormalizeRecipients([]string{inv.TenantEmail})
	}
	if len(to) == 0 {
		return nil, domain.ErrNoRecipients
	}
	return to, nil
}

func (s *Service) deliver(ctx context.Context, inv domain.Invoice, to []string, kind string) error {
	settings, err := s.settingsSvc.GetForOrg(ctx, inv.OrgID)
	if err != nil {
		return fmt.Errorf("load invoice settings: %w", err)
	}
	content, err := s.pdf.RenderInvoice(ctx, inv, settings)
	if err != nil {
		return fmt.Errorf("render invoice pdf: %w", err)
	}

	msg, err := buildMessage(inv, settings, to, kind)
	if err != nil {
		return err
	}
	msg.Attachments = []email.Attachment{{
		FileName:    pdf.FileName(inv),
		ContentType: "application/pdf",
		Content:     content,
	}}

	err = s.email.Send(ctx, msg)
	s.metrics.RecordEmail(ctx, kind, s.email.Name(), err)
	if err != nil {
		s.log.Error("failed to send invoice email",
			zap.String("kind", kind),
			zap.String("invoice_id", inv.ID.String()),
			zap.String("provider", s.email.Name()),
			zap.Error(err),
		)
		return fmt.Errorf("send %s email: %w", kind, err)
	}
	return nil
}

func buildMessage(inv domain.Invoice, settings settingsdomain.InvoiceSettings, to []string, kind string) (email.Message, error) {
	company := strings.TrimSpace(settings.CompanyName)
	if company == "" {
		company = "your landlord"
	}
	data := email.TemplateData{
		TenantName:          inv.TenantName,
		CompanyName:         company,
		InvoiceNumber:       inv.InvoiceNumber,
		Period:              inv.PeriodStart.Format("January 2006"),
		DueDate:             inv.DueDate.Format("2 January 2006"),
		AmountDue:           inv.Outstanding().StringFixed(2),
		PaymentInstructions: settings.PaymentInstructions,
		FooterText:          settings.FooterText,
	}

	template := email.TemplateInvoice
	subject := fmt.Sprintf("Invoice %s from %s", inv.InvoiceNumber, company)
	if kind == emailKindReminder {
		template = email.TemplateReminder
		subject = fmt.Sprintf("Reminder: invoice %s is due", inv.InvoiceNumber)
	}
	body, err := email.RenderTemplate(template, data)
	if err != nil {
		return email.Message{}, err
	}
	return email.Message{To: to, Subject: subject, HTMLBody: body}, nil
}
