package entities

import "time"

type CreateReservationRequest struct {
	RoomID    int64     `json:"room_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

func (r CreateReservationRequest) Validate() []string {
	return validateInterval(r.RoomID, r.StartTime, r.EndTime)
}

type ReservationResponse struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	RoomID    int64     `json:"room_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	CreatedAt time.Time `json:"created_at"`
}

// ReservationNotice carries what a confirmation or reminder message needs.
type ReservationNotice struct {
	ReservationID int64
	UserName      string
	UserEmail     string
	UserPhone     string
	RoomName      string
	StartTime     time.Time
	EndTime       time.Time
}

func validateInterval(roomID int64, start, end time.Time) []string {
	var errs []string
	if roomID <= 0 {
		errs = append(errs, "room_id: must be a positive id")
	}
	if start.IsZero() {
		errs = append(errs, "start_time: must not be null")
	}
	if end.IsZero() {
		errs = append(errs, "end_time: must not be null")
	}
	return errs
}
