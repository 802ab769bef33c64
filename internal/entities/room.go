package entities

import "strings"

type RoomRequest struct {
	Name        string `json:"name"`
	Capacity    int    `json:"capacity"`
	Description string `json:"description"`
}

func (r RoomRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(r.Name) == "" {
		errs = append(errs, "name: must not be blank")
	}
	if r.Capacity <= 0 {
		errs = append(errs, "capacity: must be greater than 0")
	}
	return errs
}

type RoomResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Capacity    int    `json:"capacity"`
	Description string `json:"description"`
}
