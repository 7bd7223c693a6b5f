package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/wricardo/landlord/game/engine"
	"github.com/wricardo/landlord/game/service"
)

const (
	// HeaderUserID identifies the acting account. Authentication happens in
	// front of this server; the header is trusted.
	HeaderUserID = "X-User-ID"
	// HeaderUserName is the optional display name used when seating a player
	HeaderUserName = "X-User-Name"

	maxBodyBytes = 1 << 20
)

// WebSocketHandler subscribes an upgraded connection to a game
type WebSocketHandler interface {
	ServeWS(w http.ResponseWriter, r *http.Request, gameID string)
}

// Server represents the REST API server
type Server struct {
	service service.GameService
	ws      WebSocketHandler
	router  *mux.Router
	logger  *zap.SugaredLogger
}

// NewServer creates a new API server. ws may be nil, in which case /ws
// answers 503.
func NewServer(gameService service.GameService, ws WebSocketHandler, logger *zap.SugaredLogger) *Server {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	s := &Server{
		service: gameService,
		ws:      ws,
		router:  mux.NewRouter(),
		logger:  logger,
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	// Games
	api.HandleFunc("/games", s.handleCreateGame).Methods("POST")
	api.HandleFunc("/games", s.handleListGames).Methods("GET")
	api.HandleFunc("/games/{id}", s.handleGetGame).Methods("GET")
	api.HandleFunc("/games/{id}", s.handleDeleteGame).Methods("DELETE")
	api.HandleFunc("/games/{id}/log", s.handleGetLog).Methods("GET")

	// Roster
	api.HandleFunc("/games/{id}/join", s.gameAction("join", s.join)).Methods("POST")
	api.HandleFunc("/games/{id}/leave", s.gameAction("leave", s.leave)).Methods("POST")
	api.HandleFunc("/games/{id}/start", s.gameAction("start", s.start)).Methods("POST")

	// Turn
	api.HandleFunc("/games/{id}/roll", s.gameAction("roll", s.roll)).Methods("POST")
	api.HandleFunc("/games/{id}/buy", s.gameAction("buy", s.buy)).Methods("POST")
	api.HandleFunc("/games/{id}/end-turn", s.gameAction("end_turn", s.endTurn)).Methods("POST")
	api.HandleFunc("/games/{id}/pay-rent", s.gameAction("pay_rent", s.payRent)).Methods("POST")

	// Properties
	api.HandleFunc("/games/{id}/tiles/{tile:[0-9]+}/mortgage", s.gameAction("mortgage", s.tileAction(s.service.Mortgage))).Methods("POST")
	api.HandleFunc("/games/{id}/tiles/{tile:[0-9]+}/unmortgage", s.gameAction("unmortgage", s.tileAction(s.service.Unmortgage))).Methods("POST")
	api.HandleFunc("/games/{id}/tiles/{tile:[0-9]+}/build", s.gameAction("build", s.tileAction(s.service.BuildHouse))).Methods("POST")

	// Trades
	api.HandleFunc("/games/{id}/trades", s.gameAction("propose_trade", s.proposeTrade)).Methods("POST")
	api.HandleFunc("/games/{id}/trades/{trade}/accept", s.gameAction("accept_trade", s.acceptTrade)).Methods("POST")
	api.HandleFunc("/games/{id}/trades/{trade}/reject", s.gameAction("reject_trade", s.rejectTrade)).Methods("POST")

	// Chat
	api.HandleFunc("/games/{id}/chat", s.gameAction("chat", s.chat)).Methods("POST")

	// Rules
	api.HandleFunc("/rules", s.handleListRules).Methods("GET")
	api.HandleFunc("/rules/{name}", s.handleGetRules).Methods("GET")
	api.HandleFunc("/rules/{name}", s.handleSaveRules).Methods("PUT")

	// Board catalog
	api.HandleFunc("/board", s.handleBoard).Methods("GET")

	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")

	// WebSocket
	s.router.HandleFunc("/ws", s.handleWebSocket)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, map[string]string{"error": message, "code": code})
}

// badRequest marks errors caused by a malformed request rather than game rules
type badRequest struct {
	msg string
}

func (e *badRequest) Error() string { return e.msg }

var kindStatus = map[string]int{
	"not_found":           http.StatusNotFound,
	"not_participant":     http.StatusForbidden,
	"not_your_turn":       http.StatusConflict,
	"invalid_state":       http.StatusConflict,
	"already_acted":       http.StatusConflict,
	"payment_required":    http.StatusPaymentRequired,
	"insufficient_funds":  http.StatusPaymentRequired,
	"ownership_violation": http.StatusForbidden,
	"rule_violation":      http.StatusUnprocessableEntity,
	"internal":            http.StatusInternalServerError,
}

// statusFor maps an error to its HTTP status and reason code
func statusFor(err error) (int, string) {
	var br *badRequest
	if errors.As(err, &br) {
		return http.StatusBadRequest, "bad_request"
	}
	kind := engine.KindOf(err)
	if status, ok := kindStatus[kind]; ok {
		return status, kind
	}
	return http.StatusInternalServerError, "internal"
}

func respondServiceError(w http.ResponseWriter, err error) {
	status, code := statusFor(err)
	respondError(w, status, code, err.Error())
}

// decodeBody decodes an optional JSON body into v. An empty body leaves v
// untouched.
func decodeBody(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return &badRequest{msg: "Invalid request body"}
}

func userFrom(r *http.Request) (string, string) {
	return strings.TrimSpace(r.Header.Get(HeaderUserID)), strings.TrimSpace(r.Header.Get(HeaderUserName))
}

func (s *Server) requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, _ := userFrom(r)
	if userID == "" || userID == engine.BotUserID {
		respondError(w, http.StatusUnauthorized, "unauthorized", HeaderUserID+" header required")
		return "", false
	}
	return userID, true
}

// actionFunc performs one game action for userID
type actionFunc func(r *http.Request, gameID, userID string) (interface{}, error)

// gameAction wraps an action with user extraction, logging and error
// mapping
func (s *Server) gameAction(name string, fn actionFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := s.requireUser(w, r)
		if !ok {
			return
		}
		gameID := mux.Vars(r)["id"]

		start := time.Now()
		result, err := fn(r, gameID, userID)
		if err != nil {
			status, code := statusFor(err)
			s.logger.Infow("game action rejected", "action", name, "game", gameID, "user", userID, "code", code, "error", err)
			respondError(w, status, code, err.Error())
			return
		}

		s.logger.Infow("game action", "action", name, "game", gameID, "user", userID, "took", time.Since(start))
		respondJSON(w, http.StatusOK, result)
	}
}

// Game Handlers

func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	_, userName := userFrom(r)

	var req service.CreateGameRequest
	if err := decodeBody(r, &req); err != nil {
		respondServiceError(w, err)
		return
	}
	req.CreatorID = userID
	if req.CreatorName == "" {
		req.CreatorName = userName
	}

	game, err := s.service.CreateGame(r.Context(), req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	s.logger.Infow("game created", "game", game.ID, "user", userID, "rules", game.RulesName)
	respondJSON(w, http.StatusCreated, game)
}

func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	games, err := s.service.ListGames(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	// Parse query parameters
	query := r.URL.Query()
	sortBy := query.Get("sort")    // "created", "accessed" (default)
	order := query.Get("order")    // "asc", "desc" (default: "desc")
	status := query.Get("status")  // optional filter
	limitStr := query.Get("limit") // number of games to return

	if sortBy == "" {
		sortBy = "accessed"
	}
	if order == "" {
		order = "desc"
	}

	if status != "" {
		filtered := games[:0]
		for _, g := range games {
			if string(g.Status) == status {
				filtered = append(filtered, g)
			}
		}
		games = filtered
	}
	total := len(games)

	sort.SliceStable(games, func(i, j int) bool {
		var ti, tj time.Time
		if sortBy == "created" {
			ti, tj = games[i].CreatedAt, games[j].CreatedAt
		} else {
			ti, tj = games[i].LastAccessedAt, games[j].LastAccessedAt
		}

		if order == "asc" {
			return ti.Before(tj)
		}
		return ti.After(tj)
	})

	limit := len(games)
	if limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l < len(games) {
			limit = l
		}
	}
	games = games[:limit]

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(games),
		"total": total,
		"games": games,
		"sort":  sortBy,
		"order": order,
	})
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	game, err := s.service.GetGame(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, game)
}

func (s *Server) handleDeleteGame(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	gameID := mux.Vars(r)["id"]

	game, err := s.service.GetGame(r.Context(), gameID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if game.CreatorID != userID {
		respondError(w, http.StatusForbidden, "not_participant", "only the creator can delete a game")
		return
	}

	if err := s.service.DeleteGame(r.Context(), gameID); err != nil {
		respondServiceError(w, err)
		return
	}

	s.logger.Infow("game deleted", "game", gameID, "user", userID)
	respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Game %s deleted", gameID),
	})
}

func (s *Server) handleGetLog(w http.ResponseWriter, r *http.Request) {
	opts := service.LogOptions{
		Page:  1,
		Limit: 20,
		Order: "desc",
	}

	query := r.URL.Query()
	if pageStr := query.Get("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			opts.Page = p
		}
	}
	if limitStr := query.Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			opts.Limit = l
		}
	}
	if order := query.Get("order"); order == "asc" || order == "desc" {
		opts.Order = order
	}
	switch t := engine.LogType(query.Get("type")); t {
	case engine.LogEvent, engine.LogChat:
		opts.Type = t
	}

	log, err := s.service.GetLog(r.Context(), mux.Vars(r)["id"], opts)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, log)
}

// Game actions

func (s *Server) join(r *http.Request, gameID, userID string) (interface{}, error) {
	var req struct {
		Name string `json:"name"`
	}
	if err := decodeBody(r, &req); err != nil {
		return nil, err
	}
	if req.Name == "" {
		_, req.Name = userFrom(r)
	}
	return s.service.JoinGame(r.Context(), gameID, userID, req.Name)
}

func (s *Server) leave(r *http.Request, gameID, userID string) (interface{}, error) {
	return s.service.LeaveGame(r.Context(), gameID, userID)
}

func (s *Server) start(r *http.Request, gameID, userID string) (interface{}, error) {
	return s.service.StartGame(r.Context(), gameID, userID)
}

func (s *Server) roll(r *http.Request, gameID, userID string) (interface{}, error) {
	return s.service.RollDice(r.Context(), gameID, userID)
}

func (s *Server) buy(r *http.Request, gameID, userID string) (interface{}, error) {
	return s.service.BuyCurrentTile(r.Context(), gameID, userID)
}

func (s *Server) endTurn(r *http.Request, gameID, userID string) (interface{}, error) {
	return s.service.EndTurn(r.Context(), gameID, userID)
}

func (s *Server) payRent(r *http.Request, gameID, userID string) (interface{}, error) {
	return s.service.PayPendingRent(r.Context(), gameID, userID)
}

// tileOp is a service operation on one tile
type tileOp func(ctx context.Context, gameID, userID string, tileID int) (*engine.Game, error)

func (s *Server) tileAction(op tileOp) actionFunc {
	return func(r *http.Request, gameID, userID string) (interface{}, error) {
		tileID, err := strconv.Atoi(mux.Vars(r)["tile"])
		if err != nil {
			return nil, &badRequest{msg: "invalid tile id"}
		}
		return op(r.Context(), gameID, userID, tileID)
	}
}

func (s *Server) proposeTrade(r *http.Request, gameID, userID string) (interface{}, error) {
	var proposal engine.TradeProposal
	if err := decodeBody(r, &proposal); err != nil {
		return nil, err
	}
	if proposal.ToPlayer == "" {
		return nil, &badRequest{msg: "to_player is required"}
	}
	return s.service.ProposeTrade(r.Context(), gameID, userID, proposal)
}

func (s *Server) acceptTrade(r *http.Request, gameID, userID string) (interface{}, error) {
	return s.service.AcceptTrade(r.Context(), gameID, userID, mux.Vars(r)["trade"])
}

func (s *Server) rejectTrade(r *http.Request, gameID, userID string) (interface{}, error) {
	return s.service.RejectTrade(r.Context(), gameID, userID, mux.Vars(r)["trade"])
}

func (s *Server) chat(r *http.Request, gameID, userID string) (interface{}, error) {
	var req struct {
		Text string `json:"text"`
	}
	if err := decodeBody(r, &req); err != nil {
		return nil, err
	}
	return s.service.AppendChatMessage(r.Context(), gameID, userID, req.Text)
}

// Rules Handlers

func (s *Server) handleListRules(w http.ResponseWriter, r *http.Request) {
	rules, err := s.service.ListRules(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rules)
}

func (s *Server) handleGetRules(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSuffix(mux.Vars(r)["name"], ".json")

	rules, err := s.service.LoadRules(r.Context(), name)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rules)
}

func (s *Server) handleSaveRules(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireUser(w, r); !ok {
		return
	}
	name := strings.TrimSuffix(mux.Vars(r)["name"], ".json")

	rules := engine.DefaultRules()
	if err := decodeBody(r, rules); err != nil {
		respondServiceError(w, err)
		return
	}

	if err := s.service.SaveRules(r.Context(), name, rules); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message":  "Rules saved successfully",
		"rules_id": name,
	})
}

func (s *Server) handleBoard(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.service.Board(r.Context()))
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.ws == nil {
		http.Error(w, "websocket updates disabled", http.StatusServiceUnavailable)
		return
	}
	gameID := r.URL.Query().Get("game")
	if gameID == "" {
		http.Error(w, "game parameter required", http.StatusBadRequest)
		return
	}

	if _, err := s.service.GetGame(r.Context(), gameID); err != nil {
		http.Error(w, "Invalid game", http.StatusNotFound)
		return
	}

	s.ws.ServeWS(w, r, gameID)
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
