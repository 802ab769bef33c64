package service

import (
	"context"
	"log/slog"

	"reservaja/internal/apperror"
	"reservaja/internal/auth"
	"reservaja/internal/db"
	"reservaja/internal/entities"
	"reservaja/internal/repository"
)

// ReservationService books, lists and cancels reservations. Bookings go
// through the BookingGuard; confirmations are sent after commit.
type ReservationService struct {
	Repo     *repository.ReservationRepository
	Rooms    *repository.RoomRepository
	Users    repository.UserRepository
	guard    *BookingGuard
	notifier Notifier
	logger   *slog.Logger
}

func NewReservationService(
	repo *repository.ReservationRepository,
	rooms *repository.RoomRepository,
	users repository.UserRepository,
	guard *BookingGuard,
	notifier Notifier,
	logger *slog.Logger,
) *ReservationService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &ReservationService{
		Repo:     repo,
		Rooms:    rooms,
		Users:    users,
		guard:    guard,
		notifier: notifier,
		logger:   resolveLogger(logger),
	}
}

func (s *ReservationService) Create(ctx context.Context, principal auth.Principal, req entities.CreateReservationRequest) (*entities.ReservationResponse, error) {
	if errs := req.Validate(); len(errs) > 0 {
		return nil, apperror.Validation(errs)
	}
	room, err := s.Rooms.FindByID(ctx, req.RoomID)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, ErrRoomNotFound
	}

	res, err := s.guard.Attempt(ctx, ReservationRequest{
		RoomID:    req.RoomID,
		Start:     req.StartTime,
		End:       req.EndTime,
		Principal: principal,
	})
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "reservation created",
		"reservation_id", res.ID,
		"room_id", res.RoomID,
		"user_id", res.UserID,
	)

	s.notifyConfirmed(ctx, res, room)
	resp := toReservationResponse(res)
	return &resp, nil
}

func (s *ReservationService) notifyConfirmed(ctx context.Context, res *db.Reservation, room *db.Room) {
	user, err := s.Users.FindByID(ctx, res.UserID)
	if err != nil || user == nil {
		s.logger.WarnContext(ctx, "skipping confirmation, user lookup failed", "reservation_id", res.ID, "error", err)
		return
	}
	s.notifier.ReservationConfirmed(ctx, entities.ReservationNotice{
		ReservationID: res.ID,
		UserName:      user.Name,
		UserEmail:     user.Email,
		UserPhone:     user.Phone,
		RoomName:      room.Name,
		StartTime:     res.StartTime,
		EndTime:       res.EndTime,
	})
}

// ListMine returns the principal's reservations ordered by start time.
func (s *ReservationService) ListMine(ctx context.Context, principal auth.Principal) ([]entities.ReservationResponse, error) {
	reservations, err := s.Repo.ListByUser(ctx, principal.UserID)
	if err != nil {
		return nil, err
	}
	return toReservationResponses(reservations), nil
}

// Get returns a reservation visible to its owner and to administrators.
func (s *ReservationService) Get(ctx context.Context, principal auth.Principal, id int64) (*entities.ReservationResponse, error) {
	res, err := s.ownedReservation(ctx, principal, id)
	if err != nil {
		return nil, err
	}
	resp := toReservationResponse(res)
	return &resp, nil
}

// Cancel deletes a reservation owned by the principal, or any reservation
// for administrators.
func (s *ReservationService) Cancel(ctx context.Context, principal auth.Principal, id int64) error {
	if _, err := s.ownedReservation(ctx, principal, id); err != nil {
		return err
	}
	found, err := s.Repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		return ErrReservationNotFound
	}
	s.logger.InfoContext(ctx, "reservation cancelled", "reservation_id", id, "user_id", principal.UserID)
	return nil
}

func (s *ReservationService) ownedReservation(ctx context.Context, principal auth.Principal, id int64) (*db.Reservation, error) {
	res, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, ErrReservationNotFound
	}
	if res.UserID != principal.UserID && !principal.IsAdmin() {
		return nil, ErrNotReservationOwner
	}
	return res, nil
}

// CheckAvailability lists the reservations of a room overlapping the
// requested interval.
func (s *ReservationService) CheckAvailability(ctx context.Context, req entities.AvailabilityRequest) (*entities.AvailabilityResponse, error) {
	if errs := req.Validate(); len(errs) > 0 {
		return nil, apperror.Validation(errs)
	}
	room, err := s.Rooms.FindByID(ctx, req.RoomID)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, ErrRoomNotFound
	}

	start, end := normalizeInstant(req.StartTime), normalizeInstant(req.EndTime)
	conflicts, err := s.Repo.ListOverlapping(ctx, req.RoomID, start, end)
	if err != nil {
		return nil, err
	}
	return &entities.AvailabilityResponse{
		RoomID:             req.RoomID,
		IsAvailable:        len(conflicts) == 0,
		RequestedStartTime: start,
		RequestedEndTime:   end,
		Conflicts:          toReservationResponses(conflicts),
	}, nil
}

func toReservationResponse(r *db.Reservation) entities.ReservationResponse {
	return entities.ReservationResponse{
		ID:        r.ID,
		UserID:    r.UserID,
		RoomID:    r.RoomID,
		StartTime: r.StartTime.UTC(),
		EndTime:   r.EndTime.UTC(),
		CreatedAt: r.CreatedAt.UTC(),
	}
}

func toReservationResponses(rs []db.Reservation) []entities.ReservationResponse {
	resp := make([]entities.ReservationResponse, 0, len(rs))
	for i := range rs {
		resp = append(resp, toReservationResponse(&rs[i]))
	}
	return resp
}
