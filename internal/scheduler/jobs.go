package scheduler

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	settingsdomain "github.com/smallbiznis/rentledger/internal/invoicesettings/domain"
)

type orgJob func(ctx context.Context, orgID snowflake.ID) (int, error)

// AutoSendJob emails approved invoices entering their send window for every
// organization with auto send enabled.
func (s *Scheduler) AutoSendJob(ctx context.Context) error {
	return s.forEachOrg(ctx, JobAutoSend, func(settings settingsdomain.InvoiceSettings) bool {
		return settings.AutoSendEnabled
	}, s.invoiceSvc.AutoSendDue)
}

// RemindersJob emails reminders for unpaid invoices past their reminder date.
func (s *Scheduler) RemindersJob(ctx context.Context) error {
	return s.forEachOrg(ctx, JobReminders, func(settings settingsdomain.InvoiceSettings) bool {
		return settings.SendReminderEnabled
	}, s.invoiceSvc.SendDueReminders)
}

// forEachOrg runs fn for each automated organization selected by want. One
// organization failing does not stop the others.
func (s *Scheduler) forEachOrg(ctx context.Context, job string, want func(settingsdomain.InvoiceSettings) bool, fn orgJob) error {
	ctx, run, owner := s.ensureJobRun(ctx, job)
	if owner {
		s.logJobStart(ctx, run)
		defer s.logJobFinish(ctx, run)
	}

	orgs, err := s.settingsSvc.ListAutomated(ctx)
	if err != nil {
		return err
	}

	var jobErr error
	for _, settings := range orgs {
		if err := ctx.Err(); err != nil {
			return errors.Join(jobErr, err)
		}
		if !want(settings) {
			continue
		}
		n, err := fn(ctx, settings.OrgID)
		run.AddProcessed(n)
		s.metrics.AddBatchProcessed(job, "success", n)
		if err != nil {
			jobErr = errors.Join(jobErr, err)
			s.metrics.AddBatchProcessed(job, "error", 1)
			s.logOrgError(ctx, run, settings.OrgID, err)
		}
	}
	return jobErr
}
