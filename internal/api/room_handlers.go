package api

import (
	"fmt"
	"net/http"

	"reservaja/internal/apperror"
	"reservaja/internal/entities"
	"reservaja/internal/service"
)

type RoomHandler struct {
	Service *service.RoomService
}

func NewRoomHandler(svc *service.RoomService) *RoomHandler {
	return &RoomHandler{Service: svc}
}

func (h *RoomHandler) ListRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.Service.List(r.Context())
	if err != nil {
		apperror.Write(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rooms)
}

func (h *RoomHandler) GetRoom(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		apperror.Write(w, r, err)
		return
	}
	room, err := h.Service.Get(r.Context(), id)
	if err != nil {
		apperror.Write(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, room)
}

func (h *RoomHandler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	var req entities.RoomRequest
	if err := decodeJSON(r, &req); err != nil {
		apperror.Write(w, r, err)
		return
	}
	room, err := h.Service.Create(r.Context(), req)
	if err != nil {
		apperror.Write(w, r, err)
		return
	}
	w.Header().Set("Location", fmt.Sprintf("/api/rooms/%d", room.ID))
	writeJSON(w, http.StatusCreated, room)
}

func (h *RoomHandler) UpdateRoom(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		apperror.Write(w, r, err)
		return
	}
	var req entities.RoomRequest
	if err := decodeJSON(r, &req); err != nil {
		apperror.Write(w, r, err)
		return
	}
	room, err := h.Service.Update(r.Context(), id, req)
	if err != nil {
		apperror.Write(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, room)
}

func (h *RoomHandler) DeleteRoom(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		apperror.Write(w, r, err)
		return
	}
	if err := h.Service.Delete(r.Context(), id); err != nil {
		apperror.Write(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
