package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"reservaja/internal/apperror"
	"reservaja/internal/auth"
)

var (
	errInvalidBody = apperror.BadRequest("Invalid request body")
	errInvalidID   = apperror.BadRequest("id must be a positive integer")
	// Authorize admits only authenticated callers to these routes, so a
	// missing principal is a wiring fault.
	errNoPrincipal = apperror.New(apperror.KindInternal, "principal missing from request context")
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errInvalidBody
	}
	return nil
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		return 0, errInvalidID
	}
	return id, nil
}

func requirePrincipal(r *http.Request) (auth.Principal, error) {
	p, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		return auth.Principal{}, errNoPrincipal
	}
	return p, nil
}
