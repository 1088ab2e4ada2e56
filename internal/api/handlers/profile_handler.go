package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/realworld-go/conduit-be/internal/models"
	"github.com/realworld-go/conduit-be/internal/services"
	"github.com/rs/zerolog/log"
)

// ProfileHandler handles public profile views and follow/unfollow.
type ProfileHandler struct {
	responder
	users services.UserServiceProvider
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(users services.UserServiceProvider, production bool) *ProfileHandler {
	return &ProfileHandler{responder: responder{production: production}, users: users}
}

// Get returns a user's profile relative to the viewer (anonymous allowed).
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	target, err := h.users.GetByUsername(username)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	viewer := viewerFromRequest(r, h.users)
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"profile": models.NewProfile(target, viewer)})
}

// Follow adds the target user to the caller's follow set.
func (h *ProfileHandler) Follow(w http.ResponseWriter, r *http.Request) {
	h.setFollowing(w, r, true)
}

// Unfollow removes the target user from the caller's follow set.
func (h *ProfileHandler) Unfollow(w http.ResponseWriter, r *http.Request) {
	h.setFollowing(w, r, false)
}

func (h *ProfileHandler) setFollowing(w http.ResponseWriter, r *http.Request, follow bool) {
	username := chi.URLParam(r, "username")

	viewer := viewerFromRequest(r, h.users)
	if viewer == nil {
		h.writeError(w, http.StatusUnauthorized, "token", "missing or invalid")
		return
	}

	var target models.User
	var err error
	if follow {
		target, err = h.users.Follow(viewer.ID, username)
	} else {
		target, err = h.users.Unfollow(viewer.ID, username)
	}
	if err != nil {
		log.Warn().Err(err).Str("username", username).Msg("Failed to change follow state")
		h.writeServiceError(w, err)
		return
	}

	// Reload so the projection sees the updated follow set.
	updated, err := h.users.GetByID(viewer.ID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"profile": models.NewProfile(target, &updated)})
}
