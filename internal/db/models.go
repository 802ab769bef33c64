package db

import "time"

type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Role         string
	Phone        string
	CreatedAt    time.Time
}

type Room struct {
	ID          int64
	Name        string
	Capacity    int
	Description string
}

// Reservation is a committed booking of a room for [StartTime, EndTime).
type Reservation struct {
	ID        int64
	UserID    int64
	RoomID    int64
	StartTime time.Time
	EndTime   time.Time
	CreatedAt time.Time
}

// UpcomingReservation is a reservation joined with what a reminder needs.
type UpcomingReservation struct {
	Reservation
	UserName  string
	UserEmail string
	UserPhone string
	RoomName  string
}
