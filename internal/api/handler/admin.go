package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/arcadebot/internal/api/apierr"
	"github.com/mcoot/arcadebot/internal/api/response"
	"github.com/mcoot/arcadebot/internal/model"
	"github.com/mcoot/arcadebot/internal/services/auth"
	"github.com/mcoot/arcadebot/internal/services/player"
)

// AdminHandler handles operator endpoints
type AdminHandler struct {
	authService   *auth.Service
	playerService *player.Service
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(authService *auth.Service, playerService *player.Service) *AdminHandler {
	return &AdminHandler{
		authService:   authService,
		playerService: playerService,
	}
}

// ResetPlayer handles POST /api/admin/players/{id}/reset
func (h *AdminHandler) ResetPlayer(w http.ResponseWriter, r *http.Request) {
	id, err := model.ParsePlayerID(mux.Vars(r)["id"])
	if err != nil {
		WriteError(w, r, apierr.NewInvalidRequestError())
		return
	}

	if err := h.playerService.Reset(r.Context(), id); err != nil {
		WriteError(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ResetResponse{Success: true, PlayerID: id.String()})
}

// SweepTokens handles POST /api/admin/tokens/sweep
func (h *AdminHandler) SweepTokens(w http.ResponseWriter, r *http.Request) {
	n, err := h.authService.SweepExpiredTokens(r.Context())
	if err != nil {
		WriteError(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, response.SweepResponse{Success: true, Removed: n})
}
