package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reservaja/internal/db"
)

type fakeReminderStore struct {
	upcoming []db.UpcomingReservation
	claimed  map[int64]bool
	from, to time.Time
	listErr  error
}

func (s *fakeReminderStore) ListUnremindedStartingBetween(_ context.Context, from, to time.Time) ([]db.UpcomingReservation, error) {
	s.from, s.to = from, to
	return s.upcoming, s.listErr
}

func (s *fakeReminderStore) MarkReminded(_ context.Context, id int64, _ time.Time) (bool, error) {
	if s.claimed[id] {
		return false, nil
	}
	s.claimed[id] = true
	return true, nil
}

func upcoming(id int64, phone string) db.UpcomingReservation {
	return db.UpcomingReservation{
		Reservation: db.Reservation{ID: id, StartTime: ten, EndTime: ten.Add(time.Hour)},
		UserName:    "Ana",
		UserEmail:   "ana@example.com",
		UserPhone:   phone,
		RoomName:    "Orion",
	}
}

func TestJobService_SendUpcomingReminders(t *testing.T) {
	store := &fakeReminderStore{
		upcoming: []db.UpcomingReservation{upcoming(1, ""), upcoming(2, "+351911111111")},
		claimed:  map[int64]bool{2: true},
	}
	notifier := &recordingNotifier{}
	svc := NewJobService(store, notifier, 30*time.Minute, nil)

	sent, err := svc.SendUpcomingReminders(context.Background(), guardNow.Add(500*time.Millisecond))
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	require.Len(t, notifier.reminded, 1)
	assert.Equal(t, int64(1), notifier.reminded[0].ReservationID)
	assert.True(t, store.from.Equal(guardNow))
	assert.True(t, store.to.Equal(guardNow.Add(30*time.Minute)))

	sent, err = svc.SendUpcomingReminders(context.Background(), guardNow)
	require.NoError(t, err)
	assert.Zero(t, sent)
}

func TestJobService_ListError(t *testing.T) {
	store := &fakeReminderStore{listErr: errors.New("db down"), claimed: map[int64]bool{}}
	svc := NewJobService(store, nil, 0, nil)

	_, err := svc.SendUpcomingReminders(context.Background(), guardNow)
	assert.ErrorContains(t, err, "db down")
}

func TestJobService_Schedule(t *testing.T) {
	svc := NewJobService(&fakeReminderStore{claimed: map[int64]bool{}}, nil, 0, nil)
	c := cron.New()

	_, err := svc.Schedule(c, "@every 5m")
	require.NoError(t, err)
	assert.Len(t, c.Entries(), 1)

	_, err = svc.Schedule(c, "not a schedule")
	assert.Error(t, err)
}
