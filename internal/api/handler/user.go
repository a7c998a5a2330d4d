package handler

import (
	"net/http"
	"strings"

	"github.com/mcoot/arcadebot/internal/api/apierr"
	"github.com/mcoot/arcadebot/internal/api/response"
	"github.com/mcoot/arcadebot/internal/services/auth"
	"github.com/mcoot/arcadebot/internal/services/player"
)

// UserHandler serves the web client's profile view
type UserHandler struct {
	authService   *auth.Service
	playerService *player.Service
	avatarURL     string
}

// NewUserHandler creates a new user handler
func NewUserHandler(authService *auth.Service, playerService *player.Service, avatarURL string) *UserHandler {
	return &UserHandler{
		authService:   authService,
		playerService: playerService,
		avatarURL:     avatarURL,
	}
}

// Get handles GET /api/user?session=<id>
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := sessionParam(r)
	if !ok {
		WriteError(w, r, apierr.NewMissingFieldsError())
		return
	}

	p, err := h.authService.Resolve(r.Context(), sessionID)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	profile, err := h.playerService.Profile(r.Context(), p.ID)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, response.UserFromProfile(profile, h.avatarURL))
}

// sessionParam reads the session id from the query string
func sessionParam(r *http.Request) (string, bool) {
	id := strings.TrimSpace(r.URL.Query().Get("session"))
	return id, id != ""
}
