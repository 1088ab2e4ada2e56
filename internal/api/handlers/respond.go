package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/realworld-go/conduit-be/internal/auth"
	"github.com/realworld-go/conduit-be/internal/models"
	"github.com/realworld-go/conduit-be/internal/services"
)

// responder writes the conduit response and error envelopes. In production,
// internal error details are never sent to the client.
type responder struct {
	production bool
}

func (rp responder) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeErrors sends the `{"errors": {...}}` envelope.
func (rp responder) writeErrors(w http.ResponseWriter, status int, errs map[string]string) {
	rp.writeJSON(w, status, map[string]interface{}{"errors": errs})
}

func (rp responder) writeError(w http.ResponseWriter, status int, key, msg string) {
	rp.writeErrors(w, status, map[string]string{key: msg})
}

// writeServiceError maps service sentinel errors to status codes. Anything
// unrecognized is a 500; the underlying message is exposed only outside
// production.
func (rp responder) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		rp.writeError(w, http.StatusNotFound, "resource", "not found")
	case errors.Is(err, services.ErrForbidden):
		rp.writeError(w, http.StatusForbidden, "resource", "not owned by you")
	case errors.Is(err, services.ErrInvalidCredentials):
		rp.writeError(w, http.StatusUnauthorized, "email or password", "is invalid")
	case errors.Is(err, services.ErrDuplicateUsername):
		rp.writeError(w, http.StatusUnprocessableEntity, "username", "is already taken")
	case errors.Is(err, services.ErrDuplicateEmail):
		rp.writeError(w, http.StatusUnprocessableEntity, "email", "is already taken")
	case errors.Is(err, services.ErrDuplicateSlug):
		rp.writeError(w, http.StatusUnprocessableEntity, "slug", "is already taken")
	default:
		if rp.production {
			rp.writeError(w, http.StatusInternalServerError, "message", "internal server error")
		} else {
			rp.writeError(w, http.StatusInternalServerError, "message", err.Error())
		}
	}
}

// writeValidationError translates validator failures into the error envelope.
func (rp responder) writeValidationError(w http.ResponseWriter, err error) {
	errs := map[string]string{}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			field := strings.ToLower(fe.Field())
			if fe.Tag() == "required" {
				errs[field] = "can't be blank"
			} else {
				errs[field] = "is invalid"
			}
		}
	} else {
		errs["body"] = "is invalid"
	}
	rp.writeErrors(w, http.StatusUnprocessableEntity, errs)
}

func decodeBody(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// viewerFromRequest loads the authenticated user attached by the auth
// middleware, or nil for anonymous requests (or a stale token whose user no
// longer exists).
func viewerFromRequest(r *http.Request, users services.UserServiceProvider) *models.User {
	claims, ok := auth.ClaimsFrom(r.Context())
	if !ok {
		return nil
	}
	user, err := users.GetByID(claims.UserID)
	if err != nil {
		return nil
	}
	return &user
}

// paginationParams reads limit/offset query parameters with the listing
// defaults (limit 20, minimum 1; offset 0, minimum 0).
func paginationParams(r *http.Request) (limit, offset int, err error) {
	limit, offset = 20, 0
	q := r.URL.Query()

	if raw := q.Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return 0, 0, errors.New("limit must be a positive number")
		}
	}
	if raw := q.Get("offset"); raw != "" {
		offset, err = strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return 0, 0, errors.New("offset must be a non-negative number")
		}
	}
	return limit, offset, nil
}
