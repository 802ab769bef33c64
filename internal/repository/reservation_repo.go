package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"reservaja/internal/db"
)

type ReservationRepository struct {
	DB *sql.DB
}

func NewReservationRepository(conn *sql.DB) *ReservationRepository {
	return &ReservationRepository{DB: conn}
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const reservationColumns = `id, user_id, room_id, start_time, end_time, created_at`

// CreateIfNoOverlap inserts res unless the room already has a reservation
// overlapping [StartTime, EndTime). The check and the insert share one
// transaction; nothing is written unless the commit succeeds.
//
// ErrOverlapFound means the check saw a conflicting row. ErrOverlapConstraint
// means a concurrent booking won the race and the storage constraint rejected
// this insert.
func (r *ReservationRepository) CreateIfNoOverlap(ctx context.Context, res *db.Reservation) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin booking transaction: %w", err)
	}
	defer tx.Rollback()

	var conflictID int64
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM reservations
		 WHERE room_id = $1 AND start_time < $2 AND end_time > $3
		 LIMIT 1`,
		res.RoomID, res.EndTime, res.StartTime,
	).Scan(&conflictID)
	switch {
	case err == nil:
		return fmt.Errorf("room %d conflicts with reservation %d: %w", res.RoomID, conflictID, ErrOverlapFound)
	case !errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("error checking overlapping reservations: %w", err)
	}

	if err := insertReservation(ctx, tx, res); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		if isOverlapViolation(err) {
			return fmt.Errorf("%w: %v", ErrOverlapConstraint, err)
		}
		return fmt.Errorf("commit booking transaction: %w", err)
	}
	return nil
}

func insertReservation(ctx context.Context, q queryRower, res *db.Reservation) error {
	err := q.QueryRowContext(ctx,
		`INSERT INTO reservations (user_id, room_id, start_time, end_time, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		res.UserID, res.RoomID, res.StartTime, res.EndTime, res.CreatedAt,
	).Scan(&res.ID)
	if err != nil {
		if isOverlapViolation(err) {
			return fmt.Errorf("%w: %v", ErrOverlapConstraint, err)
		}
		return fmt.Errorf("error inserting reservation: %w", err)
	}
	return nil
}

// FindByID returns nil, nil when the reservation does not exist.
func (r *ReservationRepository) FindByID(ctx context.Context, id int64) (*db.Reservation, error) {
	var res db.Reservation
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+reservationColumns+" FROM reservations WHERE id = $1", id,
	).Scan(&res.ID, &res.UserID, &res.RoomID, &res.StartTime, &res.EndTime, &res.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying reservation %d: %w", id, err)
	}
	return &res, nil
}

func (r *ReservationRepository) ListByUser(ctx context.Context, userID int64) ([]db.Reservation, error) {
	return r.list(ctx,
		"SELECT "+reservationColumns+" FROM reservations WHERE user_id = $1 ORDER BY start_time",
		userID,
	)
}

// ListOverlapping returns the room's reservations intersecting [start, end).
func (r *ReservationRepository) ListOverlapping(ctx context.Context, roomID int64, start, end time.Time) ([]db.Reservation, error) {
	return r.list(ctx,
		"SELECT "+reservationColumns+` FROM reservations
		 WHERE room_id = $1 AND start_time < $2 AND end_time > $3
		 ORDER BY start_time`,
		roomID, end, start,
	)
}

// Delete reports false when no reservation has the given ID.
func (r *ReservationRepository) Delete(ctx context.Context, id int64) (bool, error) {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM reservations WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("error deleting reservation %d: %w", id, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("error reading rows affected: %w", err)
	}
	return n > 0, nil
}

func (r *ReservationRepository) list(ctx context.Context, query string, args ...any) ([]db.Reservation, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying reservations: %w", err)
	}
	defer rows.Close()

	reservations := []db.Reservation{}
	for rows.Next() {
		var res db.Reservation
		if err := rows.Scan(&res.ID, &res.UserID, &res.RoomID, &res.StartTime, &res.EndTime, &res.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning reservation: %w", err)
		}
		reservations = append(reservations, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating reservations: %w", err)
	}
	return reservations, nil
}
