package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/realworld-go/conduit-be/internal/auth"
	"github.com/realworld-go/conduit-be/internal/models"
	"github.com/realworld-go/conduit-be/internal/services"
	"github.com/rs/zerolog/log"
)

// UserHandler handles registration, login and the current-user endpoints.
type UserHandler struct {
	responder
	users    services.UserServiceProvider
	auth     *auth.Service
	validate *validator.Validate
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users services.UserServiceProvider, authSvc *auth.Service, production bool) *UserHandler {
	return &UserHandler{
		responder: responder{production: production},
		users:     users,
		auth:      authSvc,
		validate:  validator.New(),
	}
}

type registerPayload struct {
	User struct {
		Username string `json:"username" validate:"required"`
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	} `json:"user"`
}

type loginPayload struct {
	User struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	} `json:"user"`
}

type updateUserPayload struct {
	User struct {
		Username *string `json:"username"`
		Email    *string `json:"email" validate:"omitempty,email"`
		Bio      *string `json:"bio"`
		Image    *string `json:"image"`
		Password *string `json:"password"`
	} `json:"user"`
}

// Register handles new user registration.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload registerPayload
	if err := decodeBody(r, &payload); err != nil {
		h.writeError(w, http.StatusUnprocessableEntity, "body", "is invalid")
		return
	}
	if err := h.validate.Struct(payload); err != nil {
		h.writeValidationError(w, err)
		return
	}

	user, err := h.users.Register(payload.User.Username, payload.User.Email, payload.User.Password)
	if err != nil {
		log.Warn().Err(err).Str("email", payload.User.Email).Msg("Failed to register user")
		h.writeServiceError(w, err)
		return
	}

	h.respondWithAuth(w, user)
}

// Login handles user authentication and token issuance.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload loginPayload
	if err := decodeBody(r, &payload); err != nil {
		h.writeError(w, http.StatusUnprocessableEntity, "body", "is invalid")
		return
	}
	if err := h.validate.Struct(payload); err != nil {
		h.writeValidationError(w, err)
		return
	}

	user, err := h.users.Authenticate(payload.User.Email, payload.User.Password)
	if err != nil {
		log.Warn().Str("email", payload.User.Email).Msg("Failed authentication attempt")
		h.writeServiceError(w, err)
		return
	}

	h.respondWithAuth(w, user)
}

// GetCurrent returns the authenticated user's own view.
func (h *UserHandler) GetCurrent(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFrom(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "token", "missing or invalid")
		return
	}

	user, err := h.users.GetByID(claims.UserID)
	if err != nil {
		log.Warn().Err(err).Str("user_id", claims.UserID).Msg("User from token not found")
		h.writeServiceError(w, err)
		return
	}

	h.respondWithAuth(w, user)
}

// UpdateCurrent applies a partial update to the authenticated user. Only
// fields present in the payload are touched.
func (h *UserHandler) UpdateCurrent(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFrom(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "token", "missing or invalid")
		return
	}

	var payload updateUserPayload
	if err := decodeBody(r, &payload); err != nil {
		h.writeError(w, http.StatusUnprocessableEntity, "body", "is invalid")
		return
	}
	if err := h.validate.Struct(payload); err != nil {
		h.writeValidationError(w, err)
		return
	}

	user, err := h.users.Update(claims.UserID, services.UserUpdate{
		Username: payload.User.Username,
		Email:    payload.User.Email,
		Bio:      payload.User.Bio,
		Image:    payload.User.Image,
		Password: payload.User.Password,
	})
	if err != nil {
		log.Error().Err(err).Str("user_id", claims.UserID).Msg("Failed to update user")
		h.writeServiceError(w, err)
		return
	}

	h.respondWithAuth(w, user)
}

func (h *UserHandler) respondWithAuth(w http.ResponseWriter, user models.User) {
	token, err := h.auth.GenerateToken(user)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to generate token")
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"user": models.NewUserAuth(user, token)})
}
