package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"github.com/wricardo/warpgame/game/engine"
	"github.com/wricardo/warpgame/game/service"
	"github.com/wricardo/warpgame/transport/websocket"
)

var errBadRequest = errors.New("invalid request")

var validate = validator.New(validator.WithRequiredStructEnabled())

// Server represents the REST API server
type Server struct {
	service service.GameService
	hub     *websocket.Hub
	router  *mux.Router
	logger  *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger used for request logs.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// NewServer creates a new API server. hub may be nil, which disables /ws.
func NewServer(gameService service.GameService, hub *websocket.Hub, opts ...Option) *Server {
	s := &Server{
		service: gameService,
		hub:     hub,
		router:  mux.NewRouter(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	s.router.Use(s.logRequests)

	api := s.router.PathPrefix("/api").Subrouter()

	// Session management
	api.HandleFunc("/sessions", s.handleCreateSession).Methods("POST")
	api.HandleFunc("/sessions", s.handleListSessions).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleGetSession).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleDeleteSession).Methods("DELETE")

	// Game operations
	api.HandleFunc("/sessions/{id}/state", s.handleGetGameState).Methods("GET")
	api.HandleFunc("/sessions/{id}/move", s.handleMove).Methods("POST")
	api.HandleFunc("/sessions/{id}/deploy", s.handleDeploy).Methods("POST")
	api.HandleFunc("/sessions/{id}/ability", s.handleAbility).Methods("POST")
	api.HandleFunc("/sessions/{id}/turn", s.handleNextTurn).Methods("POST")
	api.HandleFunc("/sessions/{id}/phase", s.handleNextPhase).Methods("POST")
	api.HandleFunc("/sessions/{id}/finish", s.handleFinish).Methods("POST")
	api.HandleFunc("/sessions/{id}/units/{unit:[0-9]+}/moves", s.handleLegalMoves).Methods("GET")
	api.HandleFunc("/sessions/{id}/history", s.handleGetHistory).Methods("GET")

	// Configuration
	api.HandleFunc("/configs", s.handleListConfigs).Methods("GET")
	api.HandleFunc("/configs", s.handleCreateConfig).Methods("POST")
	api.HandleFunc("/configs/{name}", s.handleGetConfig).Methods("GET")

	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
	s.router.HandleFunc("/ws", s.handleWebSocket)
}

// Handle mounts h on the server's router, for endpoints owned by other packages.
func (s *Server) Handle(path string, h http.Handler) {
	s.router.Handle(path, h)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// the recorder cannot be hijacked
		if r.URL.Path == "/ws" {
			next.ServeHTTP(w, r)
			return
		}
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("http request", "method", r.Method, "path", r.URL.Path,
			"status", rec.status, "duration", time.Since(start))
	})
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]any{"error": message, "code": status})
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrConfigNotFound),
		errors.Is(err, engine.ErrUnitNotFound),
		errors.Is(err, engine.ErrAbilityNotFound):
		return http.StatusNotFound
	case errors.Is(err, errBadRequest),
		errors.Is(err, engine.ErrUnknownUnitType),
		errors.Is(err, engine.ErrInvalidArguments),
		errors.Is(err, service.ErrInvalidConfig):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrSessionAlreadyExists):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	}
	respondError(w, status, err.Error())
}

// decode reads a JSON body into req and validates it. An empty body is
// accepted when allowEmpty is set.
func decode(r *http.Request, req any, allowEmpty bool) error {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		if !(allowEmpty && errors.Is(err, io.EOF)) {
			return fmt.Errorf("%w: body: %v", errBadRequest, err)
		}
	}
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

// Session Handlers

type createSessionRequest struct {
	ConfigID   string `json:"config_id,omitempty"`
	ConfigName string `json:"config_name,omitempty"` // Deprecated, use config_id
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := decode(r, &req, true); err != nil {
		s.fail(w, err)
		return
	}

	configID := req.ConfigID
	if configID == "" {
		configID = req.ConfigName
	}

	info, err := s.service.CreateSession(r.Context(), configID)
	if err != nil {
		s.fail(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, info)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.service.ListSessions(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	total := len(sessions)

	query := r.URL.Query()
	sortBy := query.Get("sort") // "created", "accessed" (default)
	order := query.Get("order") // "asc", "desc" (default)
	if sortBy != "created" {
		sortBy = "accessed"
	}
	if order != "asc" {
		order = "desc"
	}

	sort.SliceStable(sessions, func(i, j int) bool {
		ti, tj := sessions[i].LastAccessedAt, sessions[j].LastAccessedAt
		if sortBy == "created" {
			ti, tj = sessions[i].CreatedAt, sessions[j].CreatedAt
		}
		if order == "asc" {
			return ti.Before(tj)
		}
		return ti.After(tj)
	})

	if l, err := strconv.Atoi(query.Get("limit")); err == nil && l > 0 && l < len(sessions) {
		sessions = sessions[:l]
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"count":    len(sessions),
		"total":    total,
		"sessions": sessions,
		"sort":     sortBy,
		"order":    order,
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	info, err := s.service.GetSession(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.fail(w, err)
		return
	}
	respondJSON(w, http.StatusOK, info)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]
	if err := s.service.DeleteSession(r.Context(), sessionID); err != nil {
		s.fail(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Session %s deleted", sessionID),
	})
}

// Game Operation Handlers

func (s *Server) handleGetGameState(w http.ResponseWriter, r *http.Request) {
	state, err := s.service.GetGameState(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.fail(w, err)
		return
	}

	if r.URL.Query().Get("format") == "text" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprint(w, engine.RenderBoard(state))
		return
	}
	respondJSON(w, http.StatusOK, state)
}

type moveRequest struct {
	UnitID engine.UnitID `json:"unit_id" validate:"required,gt=0"`
	X      *int          `json:"x" validate:"required,gte=0"`
	Y      *int          `json:"y" validate:"required,gte=0"`
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := decode(r, &req, false); err != nil {
		s.fail(w, err)
		return
	}

	result, err := s.service.Move(r.Context(), mux.Vars(r)["id"], req.UnitID, *req.X, *req.Y)
	if err != nil {
		s.fail(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

type deployRequest struct {
	Type string `json:"type" validate:"required"`
	// Color defaults to the active color.
	Color *engine.Color `json:"color,omitempty"`
	X     *int          `json:"x" validate:"required,gte=0"`
	Y     *int          `json:"y" validate:"required,gte=0"`
}

func (s *Server) handleDeploy(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req deployRequest
	if err := decode(r, &req, false); err != nil {
		s.fail(w, err)
		return
	}

	color, err := s.colorOrActive(r.Context(), sessionID, req.Color)
	if err != nil {
		s.fail(w, err)
		return
	}

	result, err := s.service.Deploy(r.Context(), sessionID, service.DeployRequest{
		Type:  req.Type,
		Color: color,
		X:     *req.X,
		Y:     *req.Y,
	})
	if err != nil {
		s.fail(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) colorOrActive(ctx context.Context, sessionID string, c *engine.Color) (engine.Color, error) {
	if c != nil {
		return *c, nil
	}
	state, err := s.service.GetGameState(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	return state.ActiveColor, nil
}

type abilityRequest struct {
	UnitID  engine.UnitID  `json:"unit_id" validate:"required,gt=0"`
	Ability string         `json:"ability" validate:"required"`
	Args    map[string]any `json:"args,omitempty"`
}

func (s *Server) handleAbility(w http.ResponseWriter, r *http.Request) {
	var req abilityRequest
	if err := decode(r, &req, false); err != nil {
		s.fail(w, err)
		return
	}

	result, err := s.service.UseAbility(r.Context(), mux.Vars(r)["id"], req.UnitID, req.Ability, engine.Args(req.Args))
	if err != nil {
		s.fail(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleNextTurn(w http.ResponseWriter, r *http.Request) {
	s.respondAction(w, r, s.service.NextTurn)
}

func (s *Server) handleNextPhase(w http.ResponseWriter, r *http.Request) {
	s.respondAction(w, r, s.service.NextPhase)
}

func (s *Server) handleFinish(w http.ResponseWriter, r *http.Request) {
	s.respondAction(w, r, s.service.Finish)
}

func (s *Server) respondAction(w http.ResponseWriter, r *http.Request, op func(context.Context, string) (*service.ActionResult, error)) {
	result, err := op(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.fail(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleLegalMoves(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	unitID, err := strconv.Atoi(vars["unit"])
	if err != nil {
		s.fail(w, fmt.Errorf("%w: unit id %q", errBadRequest, vars["unit"]))
		return
	}

	result, err := s.service.LegalMoves(r.Context(), vars["id"], engine.UnitID(unitID))
	if err != nil {
		s.fail(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	opts := service.HistoryOptions{
		Page:  1,
		Limit: 20,
		Order: "desc",
	}

	query := r.URL.Query()
	if p, err := strconv.Atoi(query.Get("page")); err == nil && p > 0 {
		opts.Page = p
	}
	if l, err := strconv.Atoi(query.Get("limit")); err == nil && l > 0 {
		opts.Limit = l
	}
	if order := query.Get("order"); order == "asc" || order == "desc" {
		opts.Order = order
	}

	history, err := s.service.GetHistory(r.Context(), mux.Vars(r)["id"], opts)
	if err != nil {
		s.fail(w, err)
		return
	}
	respondJSON(w, http.StatusOK, history)
}

// Configuration Handlers

func (s *Server) handleListConfigs(w http.ResponseWriter, r *http.Request) {
	configs, err := s.service.ListConfigs(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	respondJSON(w, http.StatusOK, configs)
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSuffix(mux.Vars(r)["name"], ".json")

	config, err := s.service.LoadConfig(r.Context(), name)
	if err != nil {
		s.fail(w, err)
		return
	}
	respondJSON(w, http.StatusOK, config)
}

func (s *Server) handleCreateConfig(w http.ResponseWriter, r *http.Request) {
	var config engine.GameConfig
	if err := json.NewDecoder(r.Body).Decode(&config); err != nil {
		s.fail(w, fmt.Errorf("%w: body: %v", errBadRequest, err))
		return
	}

	configID := r.URL.Query().Get("id")
	if configID == "" {
		configID = config.Name
	}
	if configID == "" {
		s.fail(w, fmt.Errorf("%w: config name is required", errBadRequest))
		return
	}

	if err := s.service.SaveConfig(r.Context(), configID, &config); err != nil {
		s.fail(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"message":   "Configuration saved successfully",
		"config_id": configID,
	})
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		respondError(w, http.StatusNotFound, "websocket updates are disabled")
		return
	}
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "session parameter required")
		return
	}

	state, err := s.service.GetGameState(r.Context(), sessionID)
	if err != nil {
		s.fail(w, err)
		return
	}

	s.hub.ServeWS(w, r, sessionID, state)
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
