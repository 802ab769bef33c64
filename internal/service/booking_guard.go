package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"reservaja/internal/auth"
	"reservaja/internal/db"
	"reservaja/internal/repository"
)

const bookingTimeLayout = "2006-01-02T15:04:05Z"

// ReservationStore commits a reservation unless the room already has an
// overlapping one.
type ReservationStore interface {
	CreateIfNoOverlap(ctx context.Context, res *db.Reservation) error
}

// ReservationRequest is a booking attempt on behalf of an authenticated user.
type ReservationRequest struct {
	RoomID    int64
	Start     time.Time
	End       time.Time
	Principal auth.Principal
}

// BookingGuard admits a reservation only when no committed reservation for the
// same room overlaps it, including under concurrent attempts.
type BookingGuard struct {
	store ReservationStore
	now   func() time.Time
}

func NewBookingGuard(store ReservationStore, now func() time.Time) *BookingGuard {
	if now == nil {
		now = time.Now
	}
	return &BookingGuard{store: store, now: now}
}

// Attempt validates the interval and commits the reservation. It returns
// ErrInvalidRange, ErrStartInPast or ErrOverlap for rejected requests; any
// other error means the store failed and nothing was committed.
func (g *BookingGuard) Attempt(ctx context.Context, req ReservationRequest) (*db.Reservation, error) {
	now := normalizeInstant(g.now())
	start := normalizeInstant(req.Start)
	end := normalizeInstant(req.End)

	if !start.Before(end) {
		return nil, ErrInvalidRange
	}
	if start.Before(now) {
		return nil, ErrStartInPast
	}

	res := &db.Reservation{
		UserID:    req.Principal.UserID,
		RoomID:    req.RoomID,
		StartTime: start,
		EndTime:   end,
		CreatedAt: now,
	}
	err := g.store.CreateIfNoOverlap(ctx, res)
	switch {
	case err == nil:
		return res, nil
	case errors.Is(err, repository.ErrOverlapFound), errors.Is(err, repository.ErrOverlapConstraint):
		return nil, ErrOverlap.WithMessage(fmt.Sprintf(
			"room %d is already reserved for a time overlapping %s to %s",
			req.RoomID, start.Format(bookingTimeLayout), end.Format(bookingTimeLayout),
		))
	default:
		return nil, fmt.Errorf("commit reservation for room %d: %w", req.RoomID, err)
	}
}

// normalizeInstant stores instants as UTC at second precision.
func normalizeInstant(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}
