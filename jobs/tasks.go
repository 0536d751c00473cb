package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeSendEmail is the task type for sending transactional emails.
	TaskTypeSendEmail = "mail:send"
	// TaskTypeFundingSweep expires stale pending checkout sessions.
	TaskTypeFundingSweep = "funding:sweep"
	// TaskTypeDonationReminder mails requesters whose donation date is near.
	TaskTypeDonationReminder = "donations:reminder"
)

// SendEmailPayload describes the information required to send an email.
type SendEmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// NewSendEmailTask constructs an Asynq task.
func NewSendEmailTask(payload SendEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendEmail, data), nil
}

// NewFundingSweepTask constructs the periodic funding sweep task.
func NewFundingSweepTask() *asynq.Task {
	return asynq.NewTask(TaskTypeFundingSweep, nil)
}

// NewDonationReminderTask constructs the periodic reminder task.
func NewDonationReminderTask() *asynq.Task {
	return asynq.NewTask(TaskTypeDonationReminder, nil)
}
