package service

import (
	"context"
	"errors"

	"reservaja/internal/apperror"
	"reservaja/internal/db"
	"reservaja/internal/entities"
	"reservaja/internal/repository"
)

type RoomService struct {
	Repo *repository.RoomRepository
}

func NewRoomService(repo *repository.RoomRepository) *RoomService {
	return &RoomService{Repo: repo}
}

func (s *RoomService) List(ctx context.Context) ([]entities.RoomResponse, error) {
	rooms, err := s.Repo.List(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]entities.RoomResponse, 0, len(rooms))
	for i := range rooms {
		resp = append(resp, toRoomResponse(&rooms[i]))
	}
	return resp, nil
}

func (s *RoomService) Get(ctx context.Context, id int64) (*entities.RoomResponse, error) {
	room, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, ErrRoomNotFound
	}
	resp := toRoomResponse(room)
	return &resp, nil
}

func (s *RoomService) Create(ctx context.Context, req entities.RoomRequest) (*entities.RoomResponse, error) {
	if errs := req.Validate(); len(errs) > 0 {
		return nil, apperror.Validation(errs)
	}
	room := &db.Room{Name: req.Name, Capacity: req.Capacity, Description: req.Description}
	if err := s.Repo.Create(ctx, room); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrRoomNameInUse
		}
		return nil, err
	}
	resp := toRoomResponse(room)
	return &resp, nil
}

func (s *RoomService) Update(ctx context.Context, id int64, req entities.RoomRequest) (*entities.RoomResponse, error) {
	if errs := req.Validate(); len(errs) > 0 {
		return nil, apperror.Validation(errs)
	}
	room := &db.Room{ID: id, Name: req.Name, Capacity: req.Capacity, Description: req.Description}
	found, err := s.Repo.Update(ctx, room)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrRoomNameInUse
		}
		return nil, err
	}
	if !found {
		return nil, ErrRoomNotFound
	}
	resp := toRoomResponse(room)
	return &resp, nil
}

func (s *RoomService) Delete(ctx context.Context, id int64) error {
	found, err := s.Repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		return ErrRoomNotFound
	}
	return nil
}

func toRoomResponse(r *db.Room) entities.RoomResponse {
	return entities.RoomResponse{
		ID:          r.ID,
		Name:        r.Name,
		Capacity:    r.Capacity,
		Description: r.Description,
	}
}
