package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reservaja/internal/auth"
	"reservaja/internal/db"
	"reservaja/internal/entities"
	"reservaja/internal/repository"
)

type recordingNotifier struct {
	mu        sync.Mutex
	confirmed []entities.ReservationNotice
	reminded  []entities.ReservationNotice
}

func (n *recordingNotifier) ReservationConfirmed(_ context.Context, notice entities.ReservationNotice) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.confirmed = append(n.confirmed, notice)
}

func (n *recordingNotifier) ReservationReminder(_ context.Context, notice entities.ReservationNotice) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.reminded = append(n.reminded, notice)
}

type reservationFixture struct {
	svc      *ReservationService
	notifier *recordingNotifier
	owner    auth.Principal
	other    auth.Principal
	admin    auth.Principal
	roomID   int64
}

func newReservationFixture(t *testing.T) *reservationFixture {
	t.Helper()
	conn := db.OpenTestSQLite(t)
	ctx := context.Background()
	users := repository.NewUserRepository(conn)
	rooms := repository.NewRoomRepository(conn)
	reservations := repository.NewReservationRepository(conn)

	mk := func(email, role string) auth.Principal {
		u := &db.User{Name: "User " + email, Email: email, PasswordHash: "x", Role: role}
		require.NoError(t, users.Save(ctx, u))
		r, err := auth.ParseRole(role)
		require.NoError(t, err)
		return auth.Principal{UserID: u.ID, Subject: email, Role: r}
	}
	room := &db.Room{Name: "Orion", Capacity: 6}
	require.NoError(t, rooms.Create(ctx, room))

	notifier := &recordingNotifier{}
	guard := NewBookingGuard(reservations, fixedClock(guardNow))
	return &reservationFixture{
		svc:      NewReservationService(reservations, rooms, users, guard, notifier, nil),
		notifier: notifier,
		owner:    mk("owner@example.com", "USER"),
		other:    mk("other@example.com", "USER"),
		admin:    mk("admin@example.com", "ADMIN"),
		roomID:   room.ID,
	}
}

func (f *reservationFixture) book(t *testing.T, p auth.Principal, start, end time.Time) *entities.ReservationResponse {
	t.Helper()
	resp, err := f.svc.Create(context.Background(), p, entities.CreateReservationRequest{RoomID: f.roomID, StartTime: start, EndTime: end})
	require.NoError(t, err)
	return resp
}

func TestReservationService_CreateNotifies(t *testing.T) {
	f := newReservationFixture(t)
	resp := f.book(t, f.owner, ten, ten.Add(time.Hour))

	assert.Equal(t, f.owner.UserID, resp.UserID)
	require.Len(t, f.notifier.confirmed, 1)
	notice := f.notifier.confirmed[0]
	assert.Equal(t, resp.ID, notice.ReservationID)
	assert.Equal(t, "owner@example.com", notice.UserEmail)
	assert.Equal(t, "Orion", notice.RoomName)
}

func TestReservationService_CreateErrors(t *testing.T) {
	f := newReservationFixture(t)
	ctx := context.Background()
	f.book(t, f.owner, ten, ten.Add(time.Hour))

	_, err := f.svc.Create(ctx, f.other, entities.CreateReservationRequest{RoomID: f.roomID, StartTime: ten.Add(30 * time.Minute), EndTime: ten.Add(2 * time.Hour)})
	assert.ErrorIs(t, err, ErrOverlap)

	_, err = f.svc.Create(ctx, f.other, entities.CreateReservationRequest{RoomID: 999, StartTime: ten, EndTime: ten.Add(time.Hour)})
	assert.ErrorIs(t, err, ErrRoomNotFound)

	_, err = f.svc.Create(ctx, f.other, entities.CreateReservationRequest{RoomID: f.roomID, StartTime: ten, EndTime: ten})
	assert.ErrorIs(t, err, ErrInvalidRange)

	assert.Len(t, f.notifier.confirmed, 1)
}

func TestReservationService_GetAndCancelOwnership(t *testing.T) {
	f := newReservationFixture(t)
	ctx := context.Background()
	resp := f.book(t, f.owner, ten, ten.Add(time.Hour))

	_, err := f.svc.Get(ctx, f.other, resp.ID)
	assert.ErrorIs(t, err, ErrNotReservationOwner)

	got, err := f.svc.Get(ctx, f.admin, resp.ID)
	require.NoError(t, err)
	assert.Equal(t, resp.ID, got.ID)

	assert.ErrorIs(t, f.svc.Cancel(ctx, f.other, resp.ID), ErrNotReservationOwner)
	require.NoError(t, f.svc.Cancel(ctx, f.owner, resp.ID))
	assert.ErrorIs(t, f.svc.Cancel(ctx, f.owner, resp.ID), ErrReservationNotFound)

	// the slot is free again
	f.book(t, f.other, ten, ten.Add(time.Hour))
}

func TestReservationService_ListMine(t *testing.T) {
	f := newReservationFixture(t)
	f.book(t, f.owner, ten.Add(2*time.Hour), ten.Add(3*time.Hour))
	f.book(t, f.owner, ten, ten.Add(time.Hour))
	f.book(t, f.other, ten.Add(4*time.Hour), ten.Add(5*time.Hour))

	mine, err := f.svc.ListMine(context.Background(), f.owner)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.True(t, mine[0].StartTime.Equal(ten))
}

func TestReservationService_CheckAvailability(t *testing.T) {
	f := newReservationFixture(t)
	booked := f.book(t, f.owner, ten, ten.Add(time.Hour))

	resp, err := f.svc.CheckAvailability(context.Background(), entities.AvailabilityRequest{
		RoomID: f.roomID, StartTime: ten.Add(30 * time.Minute), EndTime: ten.Add(90 * time.Minute),
	})
	require.NoError(t, err)
	assert.False(t, resp.IsAvailable)
	require.Len(t, resp.Conflicts, 1)
	assert.Equal(t, booked.ID, resp.Conflicts[0].ID)

	resp, err = f.svc.CheckAvailability(context.Background(), entities.AvailabilityRequest{
		RoomID: f.roomID, StartTime: ten.Add(time.Hour), EndTime: ten.Add(2 * time.Hour),
	})
	require.NoError(t, err)
	assert.True(t, resp.IsAvailable)
	assert.NotNil(t, resp.Conflicts)
	assert.Empty(t, resp.Conflicts)
}
