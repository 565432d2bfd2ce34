// File: cron/worker.go
package cron

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"bookly/config"
	"bookly/models"
	"bookly/services/notification"
	"bookly/utils"
)

const TypeReminderSend = "reminder:send"

func redisOpts() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisReminderDB,
	}
}

// InitReminderWorker runs the async reminder worker in background.
func InitReminderWorker(notifier notification.Notifier) {
	srv := asynq.NewServer(
		redisOpts(),
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeReminderSend, handleReminderTask(notifier))

	go func() {
		log.Println("[ReminderWorker] starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[ReminderWorker] attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[ReminderWorker] max retry attempts reached, exiting")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second)
			} else {
				break
			}
		}
	}()
}

func handleReminderTask(notifier notification.Notifier) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		logger := utils.GetLogger()

		var p models.ReminderPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			logger.Error("invalid reminder payload", zap.Error(err))
			return err
		}

		logger.Info("sending appointment reminder",
			zap.String("bookingId", p.BookingID),
			zap.String("providerId", p.ProviderID))

		if err := notifier.Notify(ctx, p.ProviderID, p.BookingID, models.EventBookingConfirmed); err != nil {
			logger.Error("failed to deliver reminder", zap.String("bookingId", p.BookingID), zap.Error(err))
			return err
		}
		return nil
	}
}

// AsynqReminderScheduler enqueues reminder tasks timed ahead of the
// appointment start.
type AsynqReminderScheduler struct {
	client *asynq.Client
	lead   time.Duration
}

// NewAsynqReminderScheduler connects a reminder scheduler to the
// configured Redis queue.
func NewAsynqReminderScheduler() *AsynqReminderScheduler {
	lead := time.Duration(config.AppConfig.ReminderLeadHours) * time.Hour
	if lead <= 0 {
		lead = 24 * time.Hour
	}
	return &AsynqReminderScheduler{
		client: asynq.NewClient(redisOpts()),
		lead:   lead,
	}
}

// ScheduleReminder queues a reminder to fire ahead of the slot start. A
// booking already inside the lead window fires immediately.
func (s *AsynqReminderScheduler) ScheduleReminder(ctx context.Context, booking *models.Booking) error {
	payload, err := json.Marshal(models.ReminderPayload{
		BookingID:  booking.ID,
		ProviderID: booking.ProviderID,
		CustomerID: booking.CustomerID,
		SlotStart:  booking.SlotStart.Format(time.RFC3339),
		Title:      "Upcoming appointment",
		Body:       fmt.Sprintf("Appointment %s starts at %s", booking.ID, booking.SlotStart.Format(time.RFC1123)),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal reminder payload: %w", err)
	}

	fireAt := booking.SlotStart.Add(-s.lead)
	task := asynq.NewTask(TypeReminderSend, payload)

	var opts []asynq.Option
	if fireAt.After(time.Now()) {
		opts = append(opts, asynq.ProcessAt(fireAt))
	}
	if _, err := s.client.EnqueueContext(ctx, task, opts...); err != nil {
		return fmt.Errorf("failed to enqueue reminder for booking %s: %w", booking.ID, err)
	}
	return nil
}
