package lotofacil

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// GenerateRequest is the body of POST /games
type GenerateRequest struct {
	Count    int    `json:"count"`
	Strategy string `json:"strategy"`
}

// GamesResponse is returned by the generation endpoints
type GamesResponse struct {
	SessionID string `json:"session_id"`
	Games     []Game `json:"games"`
}

// HistoryResponse is returned by GET /history
type HistoryResponse struct {
	SessionID    string  `json:"session_id"`
	Combinations [][]int `json:"combinations"`
}

// StrategyResponse describes one strategy for GET /strategies
type StrategyResponse struct {
	ID          Strategy `json:"id"`
	Label       string   `json:"label"`
	Description string   `json:"description"`
}

type errorResponse struct {
	Code    ErrorCode `json:"code,omitempty"`
	Message string    `json:"message"`
}

type httpHandler struct {
	session *Session
	logger  Logger
}

// NewHTTPHandler exposes session over HTTP:
//
//	POST /games        {"count":3,"strategy":"BALANCED"}, count in 1..MaxGamesPerRequest
//	POST /games/quick  one BALANCED game
//	GET  /history      combinations produced so far
//	GET  /strategies   the strategy catalogue
func NewHTTPHandler(session *Session, logger Logger) http.Handler {
	if logger == nil {
		logger = NewSilentLogger()
	}
	h := &httpHandler{session: session, logger: logger}

	r := chi.NewRouter()
	r.Route("/games", func(rr chi.Router) {
		rr.Post("/", h.generate)
		rr.Post("/quick", h.quickGame)
	})
	r.Get("/history", h.history)
	r.Get("/strategies", h.strategies)
	return r
}

func (h *httpHandler) generate(w http.ResponseWriter, r *http.Request) {
	var body GenerateRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "invalid request body"})
		return
	}

	strategy, err := ParseStrategy(body.Strategy)
	if err != nil {
		h.writeError(w, err)
		return
	}

	if body.Count > MaxGamesPerRequest {
		h.writeError(w, ErrInvalidCount.WithDetails(
			fmt.Sprintf("count=%d exceeds the limit of %d games per request", body.Count, MaxGamesPerRequest)))
		return
	}

	games, err := h.session.Generate(r.Context(), body.Count, strategy)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, GamesResponse{SessionID: h.session.ID(), Games: games})
}

func (h *httpHandler) quickGame(w http.ResponseWriter, r *http.Request) {
	game, err := h.session.QuickGame(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, GamesResponse{SessionID: h.session.ID(), Games: []Game{game}})
}

func (h *httpHandler) history(w http.ResponseWriter, r *http.Request) {
	combinations, err := h.session.History(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	if combinations == nil {
		combinations = [][]int{}
	}
	writeJSON(w, http.StatusOK, HistoryResponse{SessionID: h.session.ID(), Combinations: combinations})
}

func (h *httpHandler) strategies(w http.ResponseWriter, _ *http.Request) {
	all := Strategies()
	out := make([]StrategyResponse, len(all))
	for i, s := range all {
		out[i] = StrategyResponse{ID: s, Label: s.Label(), Description: s.Description()}
	}
	writeJSON(w, http.StatusOK, out)
}

// writeError maps validation errors to 400 and everything else to 500
func (h *httpHandler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if IsValidationError(err) {
		status = http.StatusBadRequest
	} else {
		h.logger.Error("HTTP request failed: %v", err)
	}

	resp := errorResponse{Message: err.Error()}
	if e, ok := err.(*Error); ok {
		resp.Code = e.Code
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
