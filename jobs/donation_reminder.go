package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/bloodlink/bloodlink/internal/donations"
)

// Enqueuer submits follow-up tasks from within a job.
type Enqueuer interface {
	EnqueueEmail(ctx context.Context, to, subject, body string) error
}

// DonationReminderJob mails requesters the day before their donation date.
type DonationReminderJob struct {
	repo     donations.Repository
	enqueuer Enqueuer
	logger   *slog.Logger
}

// NewDonationReminderJob constructs the reminder job.
func NewDonationReminderJob(repo donations.Repository, enqueuer Enqueuer, logger *slog.Logger) *DonationReminderJob {
	return &DonationReminderJob{repo: repo, enqueuer: enqueuer, logger: logger}
}

// Handle processes TaskTypeDonationReminder tasks.
func (j *DonationReminderJob) Handle(ctx context.Context, _ *asynq.Task) error {
	tomorrow := time.Now().AddDate(0, 0, 1)
	due, err := j.repo.DueOn(ctx, tomorrow)
	if err != nil {
		j.logger.Error("load due donation requests", slog.Any("error", err))
		return err
	}

	for _, req := range due {
		body := "Your donation request for " + req.RecipientName + " at " + req.HospitalName +
			" is scheduled for " + req.DonationDate + " at " + req.DonationTime + "."
		if err := j.enqueuer.EnqueueEmail(ctx, req.RequesterEmail, "Donation reminder", body); err != nil {
			j.logger.Warn("enqueue reminder", slog.String("request", req.ID), slog.Any("error", err))
		}
	}
	if len(due) > 0 {
		j.logger.Info("donation reminders queued", slog.Int("count", len(due)))
	}
	return nil
}
