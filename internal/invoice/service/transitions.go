package service

import (
	"context"
	"fmt"
	"time"

	auditdomain "github.com/smallbiznis/rentledger/internal/audit/domain"
	"github.com/smallbiznis/rentledger/internal/audit/masking"
	"github.com/smallbiznis/rentledger/internal/invoice/domain"
	"github.com/smallbiznis/rentledger/internal/invoice/lifecycle"
	"github.com/smallbiznis/rentledger/internal/orgcontext"
	"go.uber.org/zap"
)

type transitionFunc func(inv domain.Invoice, now time.Time) (domain.Invoice, error)

func (s *Service) Approve(ctx context.Context, id string) (domain.Invoice, error) {
	actorID, _ := orgcontext.ActorIDFromContext(ctx)
	return s.transition(ctx, id, "approve", func(inv domain.Invoice, now time.Time) (domain.Invoice, error) {
		return lifecycle.Approve(inv, actorID, now)
	})
}

// MarkAsSent records a delivery that happened outside the system.
func (s *Service) MarkAsSent(ctx context.Context, id string, recipients []string) (domain.Invoice, error) {
	return s.transition(ctx, id, "mark_sent", func(inv domain.Invoice, now time.Time) (domain.Invoice, error) {
		return lifecycle.MarkSent(inv, recipients, now)
	})
}

func (s *Service) TogglePaidStatus(ctx context.Context, id string) (domain.Invoice, error) {
	return s.transition(ctx, id, "toggle_paid", lifecycle.TogglePaid)
}

func (s *Service) RecordPayment(ctx context.Context, id string, req domain.RecordPaymentRequest) (domain.Invoice, error) {
	payment := lifecycle.Payment{
		Amount:    req.Amount,
		Method:    req.Method,
		Reference: req.Reference,
		Notes:     req.Notes,
	}
	inv, err := s.transition(ctx, id, "record_payment", func(inv domain.Invoice, now time.Time) (domain.Invoice, error) {
		return lifecycle.ApplyPayment(inv, payment, now)
	})
	if err != nil {
		return domain.Invoice{}, err
	}
	s.metrics.RecordPayment(ctx, string(req.Method), req.Amount.InexactFloat64())
	return inv, nil
}

func (s *Service) Cancel(ctx context.Context, id string) (domain.Invoice, error) {
	return s.transition(ctx, id, "cancel", lifecycle.Cancel)
}

// transition loads the invoice, applies fn and writes the result once. The
// stored record is returned so callers never need to refetch.
func (s *Service) transition(ctx context.Context, id, action string, fn transitionFunc) (domain.Invoice, error) {
	orgID, err := s.orgIDFromContext(ctx)
	if err != nil {
		return domain.Invoice{}, err
	}
	current, err := s.load(ctx, orgID, id)
	if err != nil {
		return domain.Invoice{}, err
	}

	updated, err := fn(*current, s.clock.Now().UTC())
	if err != nil {
		return domain.Invoice{}, err
	}
	if err := s.save(ctx, *current, &updated, action); err != nil {
		return domain.Invoice{}, err
	}
	return updated, nil
}

func (s *Service) save(ctx context.Context, before domain.Invoice, after *domain.Invoice, action string) error {
	if err := s.repo.Update(ctx, s.db, after); err != nil {
		s.log.Error("failed to update invoice",
			zap.String("action", action),
			zap.String("invoice_id", after.ID.String()),
			zap.Error(err),
		)
		return fmt.Errorf("update invoice: %w", err)
	}
	s.metrics.RecordTransition(ctx, string(before.Status), string(after.Status))
	s.recordAudit(ctx, "invoice."+action, "invoice", after.ID.String(), auditMetadata(before, *after))
	s.log.Debug("invoice updated",
		zap.String("action", action),
		zap.String("invoice_id", after.ID.String()),
		zap.String("from", string(before.Status)),
		zap.String("to", string(after.Status)),
	)
	return nil
}

// recordAudit stores an audit entry when an audit service is wired. Audit
// failures never fail the operation that produced them.
func (s *Service) recordAudit(ctx context.Context, action, targetType, targetID string, metadata map[string]any) {
	if s.audit == nil {
		return
	}
	err := s.audit.Record(ctx, auditdomain.Entry{
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Metadata:   metadata,
	})
	if err != nil {
		s.log.Warn("failed to record audit entry", zap.String("action", action), zap.Error(err))
	}
}

func auditMetadata(before, after domain.Invoice) map[string]any {
	metadata := map[string]any{
		"invoice_number": after.InvoiceNumber,
		"from_status":    string(before.Status),
		"to_status":      string(after.Status),
	}
	if before.ApprovalStatus != after.ApprovalStatus {
		metadata["approval_status"] = string(after.ApprovalStatus)
	}
	if !before.AmountPaid.Equal(after.AmountPaid) {
		metadata["amount_paid"] = after.AmountPaid.StringFixed(2)
	}
	if sentTo := masking.MaskEmails(after.SentTo); len(sentTo) > 0 && after.SentAt != nil {
		metadata["sent_to"] = sentTo
	}
	return metadata
}
