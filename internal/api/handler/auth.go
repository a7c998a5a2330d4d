package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/mcoot/arcadebot/internal/api/apierr"
	"github.com/mcoot/arcadebot/internal/api/request"
	"github.com/mcoot/arcadebot/internal/api/response"
	"github.com/mcoot/arcadebot/internal/services/auth"
)

// AuthHandler handles the handoff token exchange
type AuthHandler struct {
	authService *auth.Service
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *auth.Service) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Verify handles POST /api/auth/verify
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req request.VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, apierr.NewNoTokenError())
		return
	}

	token := strings.TrimSpace(req.Token)
	if token == "" {
		WriteError(w, r, apierr.NewNoTokenError())
		return
	}

	redemption, err := h.authService.Redeem(r.Context(), token)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, response.VerifyResponse{
		Success:  true,
		Username: redemption.Player.DisplayName,
		Session:  redemption.Session.ID,
	})
}
