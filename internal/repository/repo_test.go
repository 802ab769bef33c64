package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"reservaja/internal/db"
)

var base = time.Date(2030, 1, 15, 10, 0, 0, 0, time.UTC)

type fixture struct {
	conn         *sql.DB
	users        UserRepository
	rooms        *RoomRepository
	reservations *ReservationRepository
	jobs         *JobRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	conn := db.OpenTestSQLite(t)
	return &fixture{
		conn:         conn,
		users:        NewUserRepository(conn),
		rooms:        NewRoomRepository(conn),
		reservations: NewReservationRepository(conn),
		jobs:         NewJobRepository(conn),
	}
}

func (f *fixture) user(t *testing.T, email string) *db.User {
	t.Helper()
	u := &db.User{Name: "Test User", Email: email, PasswordHash: "hash", Role: "USER"}
	require.NoError(t, f.users.Save(context.Background(), u))
	return u
}

func (f *fixture) room(t *testing.T, name string) *db.Room {
	t.Helper()
	r := &db.Room{Name: name, Capacity: 8}
	require.NoError(t, f.rooms.Create(context.Background(), r))
	return r
}

func reservation(userID, roomID int64, start, end time.Time) *db.Reservation {
	return &db.Reservation{
		UserID:    userID,
		RoomID:    roomID,
		StartTime: start,
		EndTime:   end,
		CreatedAt: base.Add(-24 * time.Hour),
	}
}
