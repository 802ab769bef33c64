package api

import (
	"fmt"
	"net/http"

	"reservaja/internal/apperror"
	"reservaja/internal/entities"
	"reservaja/internal/service"
)

type ReservationHandler struct {
	Service *service.ReservationService
}

func NewReservationHandler(svc *service.ReservationService) *ReservationHandler {
	return &ReservationHandler{Service: svc}
}

func (h *ReservationHandler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	var req entities.AvailabilityRequest
	if err := decodeJSON(r, &req); err != nil {
		apperror.Write(w, r, err)
		return
	}
	resp, err := h.Service.CheckAvailability(r.Context(), req)
	if err != nil {
		apperror.Write(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *ReservationHandler) CreateReservation(w http.ResponseWriter, r *http.Request) {
	principal, err := requirePrincipal(r)
	if err != nil {
		apperror.Write(w, r, err)
		return
	}
	var req entities.CreateReservationRequest
	if err := decodeJSON(r, &req); err != nil {
		apperror.Write(w, r, err)
		return
	}
	resp, err := h.Service.Create(r.Context(), principal, req)
	if err != nil {
		apperror.Write(w, r, err)
		return
	}
	w.Header().Set("Location", fmt.Sprintf("/api/reservations/%d", resp.ID))
	writeJSON(w, http.StatusCreated, resp)
}

func (h *ReservationHandler) ListMyReservations(w http.ResponseWriter, r *http.Request) {
	principal, err := requirePrincipal(r)
	if err != nil {
		apperror.Write(w, r, err)
		return
	}
	resp, err := h.Service.ListMine(r.Context(), principal)
	if err != nil {
		apperror.Write(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *ReservationHandler) GetReservation(w http.ResponseWriter, r *http.Request) {
	principal, err := requirePrincipal(r)
	if err != nil {
		apperror.Write(w, r, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		apperror.Write(w, r, err)
		return
	}
	resp, err := h.Service.Get(r.Context(), principal, id)
	if err != nil {
		apperror.Write(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *ReservationHandler) CancelReservation(w http.ResponseWriter, r *http.Request) {
	principal, err := requirePrincipal(r)
	if err != nil {
		apperror.Write(w, r, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		apperror.Write(w, r, err)
		return
	}
	if err := h.Service.Cancel(r.Context(), principal, id); err != nil {
		apperror.Write(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
