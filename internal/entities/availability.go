package entities

import "time"

type AvailabilityRequest struct {
	RoomID    int64     `json:"room_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

func (r AvailabilityRequest) Validate() []string {
	errs := validateInterval(r.RoomID, r.StartTime, r.EndTime)
	if len(errs) == 0 && !r.EndTime.After(r.StartTime) {
		errs = append(errs, "end_time: must be after start_time")
	}
	return errs
}

type AvailabilityResponse struct {
	RoomID             int64                 `json:"room_id"`
	IsAvailable        bool                  `json:"is_available"`
	RequestedStartTime time.Time             `json:"requested_start_time"`
	RequestedEndTime   time.Time             `json:"requested_end_time"`
	Conflicts          []ReservationResponse `json:"conflicts"`
}
