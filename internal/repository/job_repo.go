package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"reservaja/internal/db"
)

type JobRepository struct {
	DB *sql.DB
}

func NewJobRepository(conn *sql.DB) *JobRepository {
	return &JobRepository{DB: conn}
}

// ListUnremindedStartingBetween returns reservations starting in [from, to)
// that have not been reminded yet.
func (r *JobRepository) ListUnremindedStartingBetween(ctx context.Context, from, to time.Time) ([]db.UpcomingReservation, error) {
	query := `
		SELECT r.id, r.user_id, r.room_id, r.start_time, r.end_time, r.created_at,
		       u.name, u.email, u.phone, rm.name
		FROM reservations r
		JOIN users u ON u.id = r.user_id
		JOIN rooms rm ON rm.id = r.room_id
		LEFT JOIN reservation_reminders rr ON rr.reservation_id = r.id
		WHERE rr.reservation_id IS NULL
		  AND r.start_time >= $1
		  AND r.start_time < $2
		ORDER BY r.start_time`
	rows, err := r.DB.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("error querying upcoming reservations: %w", err)
	}
	defer rows.Close()

	var upcoming []db.UpcomingReservation
	for rows.Next() {
		var u db.UpcomingReservation
		var phone sql.NullString
		if err := rows.Scan(
			&u.ID, &u.UserID, &u.RoomID, &u.StartTime, &u.EndTime, &u.CreatedAt,
			&u.UserName, &u.UserEmail, &phone, &u.RoomName,
		); err != nil {
			return nil, fmt.Errorf("error scanning upcoming reservation: %w", err)
		}
		u.UserPhone = phone.String
		upcoming = append(upcoming, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating rows: %w", err)
	}
	return upcoming, nil
}

// MarkReminded records the reminder once. It reports false when another run
// already recorded it.
func (r *JobRepository) MarkReminded(ctx context.Context, reservationID int64, at time.Time) (bool, error) {
	result, err := r.DB.ExecContext(ctx,
		`INSERT INTO reservation_reminders (reservation_id, sent_at) VALUES ($1, $2)
		 ON CONFLICT (reservation_id) DO NOTHING`,
		reservationID, at,
	)
	if err != nil {
		return false, fmt.Errorf("error recording reminder for reservation %d: %w", reservationID, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("error reading rows affected: %w", err)
	}
	return n > 0, nil
}
