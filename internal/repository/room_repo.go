package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"reservaja/internal/db"
)

type RoomRepository struct {
	DB *sql.DB
}

func NewRoomRepository(conn *sql.DB) *RoomRepository {
	return &RoomRepository{DB: conn}
}

func (r *RoomRepository) List(ctx context.Context) ([]db.Room, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id, name, capacity, description FROM rooms ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("error querying rooms: %w", err)
	}
	defer rows.Close()

	rooms := []db.Room{}
	for rows.Next() {
		var room db.Room
		if err := rows.Scan(&room.ID, &room.Name, &room.Capacity, &room.Description); err != nil {
			return nil, fmt.Errorf("error scanning room: %w", err)
		}
		rooms = append(rooms, room)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating rooms: %w", err)
	}
	return rooms, nil
}

// FindByID returns nil, nil when the room does not exist.
func (r *RoomRepository) FindByID(ctx context.Context, id int64) (*db.Room, error) {
	var room db.Room
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, name, capacity, description FROM rooms WHERE id = $1`, id,
	).Scan(&room.ID, &room.Name, &room.Capacity, &room.Description)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying room %d: %w", id, err)
	}
	return &room, nil
}

func (r *RoomRepository) Create(ctx context.Context, room *db.Room) error {
	err := r.DB.QueryRowContext(ctx,
		`INSERT INTO rooms (name, capacity, description) VALUES ($1, $2, $3) RETURNING id`,
		room.Name, room.Capacity, room.Description,
	).Scan(&room.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("room %s: %w", room.Name, ErrDuplicate)
		}
		return fmt.Errorf("error inserting room: %w", err)
	}
	return nil
}

// Update reports false when no room has the given ID.
func (r *RoomRepository) Update(ctx context.Context, room *db.Room) (bool, error) {
	result, err := r.DB.ExecContext(ctx,
		`UPDATE rooms SET name = $1, capacity = $2, description = $3 WHERE id = $4`,
		room.Name, room.Capacity, room.Description, room.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return false, fmt.Errorf("room %s: %w", room.Name, ErrDuplicate)
		}
		return false, fmt.Errorf("error updating room %d: %w", room.ID, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("error reading rows affected: %w", err)
	}
	return n > 0, nil
}

// Delete removes the room and, through the foreign key, its reservations.
func (r *RoomRepository) Delete(ctx context.Context, id int64) (bool, error) {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM rooms WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("error deleting room %d: %w", id, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("error reading rows affected: %w", err)
	}
	return n > 0, nil
}
