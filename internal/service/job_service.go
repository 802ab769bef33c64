package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"reservaja/internal/db"
	"reservaja/internal/entities"
)

// DefaultReminderLead is how far ahead of its start a reservation is reminded.
const DefaultReminderLead = time.Hour

type reminderStore interface {
	ListUnremindedStartingBetween(ctx context.Context, from, to time.Time) ([]db.UpcomingReservation, error)
	MarkReminded(ctx context.Context, reservationID int64, at time.Time) (bool, error)
}

// JobService runs the scheduled reminder job.
type JobService struct {
	Repo     reminderStore
	notifier Notifier
	lead     time.Duration
	logger   *slog.Logger
}

func NewJobService(repo reminderStore, notifier Notifier, lead time.Duration, logger *slog.Logger) *JobService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if lead <= 0 {
		lead = DefaultReminderLead
	}
	return &JobService{Repo: repo, notifier: notifier, lead: lead, logger: resolveLogger(logger)}
}

// SendUpcomingReminders notifies users whose reservations start within the
// lead time. Each reservation is reminded at most once; a reminder already
// claimed by another run is skipped. It returns the number of reminders sent.
func (s *JobService) SendUpcomingReminders(ctx context.Context, now time.Time) (int, error) {
	now = normalizeInstant(now)
	upcoming, err := s.Repo.ListUnremindedStartingBetween(ctx, now, now.Add(s.lead))
	if err != nil {
		return 0, fmt.Errorf("reminder job: list upcoming reservations: %w", err)
	}

	sent := 0
	for _, u := range upcoming {
		claimed, err := s.Repo.MarkReminded(ctx, u.ID, now)
		if err != nil {
			return sent, fmt.Errorf("reminder job: %w", err)
		}
		if !claimed {
			continue
		}
		s.notifier.ReservationReminder(ctx, entities.ReservationNotice{
			ReservationID: u.ID,
			UserName:      u.UserName,
			UserEmail:     u.UserEmail,
			UserPhone:     u.UserPhone,
			RoomName:      u.RoomName,
			StartTime:     u.StartTime,
			EndTime:       u.EndTime,
		})
		sent++
	}
	if sent > 0 {
		s.logger.InfoContext(ctx, "reminder job: reminders sent", "count", sent)
	}
	return sent, nil
}

// Schedule registers the reminder job on c.
func (s *JobService) Schedule(c *cron.Cron, spec string) (cron.EntryID, error) {
	id, err := c.AddFunc(spec, func() {
		if _, err := s.SendUpcomingReminders(context.Background(), time.Now()); err != nil {
			s.logger.Error("reminder job failed", "error", err)
		}
	})
	if err != nil {
		return 0, fmt.Errorf("schedule reminder job %q: %w", spec, err)
	}
	return id, nil
}
