package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"ordinal-quest-service/internal/app"
	"ordinal-quest-service/internal/domain"
)

// GamesHandler serves the session log over REST.
type GamesHandler struct {
	service *app.GameService
}

func NewGamesHandler(service *app.GameService) *GamesHandler {
	return &GamesHandler{service: service}
}

type errorBody struct {
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

type createGameRequest struct {
	Mode         domain.Mode       `json:"mode"`
	Difficulty   domain.Difficulty `json:"difficulty"`
	Player1Score *int              `json:"player1Score"`
	Player2Score *int              `json:"player2Score"`
}

type liveBody struct {
	Count int `json:"count"`
}

// Create handles POST /api/games.
func (h *GamesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			writeJSON(w, http.StatusBadRequest, errorBody{Message: "must be of type " + typeErr.Type.String(), Field: typeErr.Field})
			return
		}
		writeJSON(w, http.StatusBadRequest, errorBody{Message: "invalid JSON body"})
		return
	}
	if req.Player1Score == nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Message: "required", Field: "player1Score"})
		return
	}

	stored, err := h.service.Record(r.Context(), domain.NewGameSession{
		Mode:         req.Mode,
		Difficulty:   req.Difficulty,
		Player1Score: *req.Player1Score,
		Player2Score: req.Player2Score,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, stored)
}

// History handles GET /api/games/history?limit=N.
func (h *GamesHandler) History(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, &domain.ValidationError{Field: "limit", Message: "must be a non-negative integer", Err: domain.ErrInvalidLimit})
			return
		}
		limit = n
	}
	records, err := h.service.Recent(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// Live handles GET /api/games/live.
func (h *GamesHandler) Live(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, liveBody{Count: h.service.LiveGames()})
}

func writeError(w http.ResponseWriter, err error) {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusBadRequest, errorBody{Message: verr.Message, Field: verr.Field})
		return
	}
	log.Error().Err(err).Msg("request failed")
	writeJSON(w, http.StatusInternalServerError, errorBody{Message: "Internal Server Error"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
