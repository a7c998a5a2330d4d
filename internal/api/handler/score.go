package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/mcoot/arcadebot/internal/api/apierr"
	"github.com/mcoot/arcadebot/internal/api/request"
	"github.com/mcoot/arcadebot/internal/api/response"
	"github.com/mcoot/arcadebot/internal/model"
	"github.com/mcoot/arcadebot/internal/services/ledger"
)

// ScoreHandler accepts finished games from the web client
type ScoreHandler struct {
	ledgerService *ledger.Service
}

// NewScoreHandler creates a new score handler
func NewScoreHandler(ledgerService *ledger.Service) *ScoreHandler {
	return &ScoreHandler{
		ledgerService: ledgerService,
	}
}

// Submit handles POST /api/game/score
func (h *ScoreHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req request.ScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, apierr.NewInvalidRequestError())
		return
	}

	sessionID := strings.TrimSpace(req.Session)
	gameID := req.GameIDString()
	if sessionID == "" || gameID == "" || !req.HasScore() {
		WriteError(w, r, apierr.NewMissingFieldsError())
		return
	}

	score, ok := req.ParseScore()
	if !ok {
		WriteError(w, r, model.NewValidationError("score", "must be an integer"))
		return
	}

	result, err := h.ledgerService.Submit(r.Context(), sessionID, model.GameID(gameID), score)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ScoreFromResult(result))
}
