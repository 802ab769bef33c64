package service

import "reservaja/internal/apperror"

var (
	ErrInvalidRange = apperror.BadRequest("start time must be before end time")
	ErrStartInPast  = ErrInvalidRange.WithMessage("start time must not be in the past")
	ErrOverlap      = apperror.Conflict("room is already reserved for an overlapping time interval")

	ErrRoomNotFound        = apperror.NotFound("room not found")
	ErrReservationNotFound = apperror.NotFound("reservation not found")
	ErrUserNotFound        = apperror.NotFound("user not found")
	ErrRoomNameInUse       = apperror.Conflict("a room with this name already exists")
	ErrNotReservationOwner = apperror.Forbidden("reservation belongs to another user")

	ErrInvalidCredentials = apperror.Unauthenticated("invalid email or password")
	ErrEmailInUse         = apperror.BadRequest("email is already in use")
	ErrAdminRoleRequired  = apperror.Forbidden("only administrators can create administrator accounts")
)
