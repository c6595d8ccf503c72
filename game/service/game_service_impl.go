package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/wricardo/warpgame/game/engine"
	"github.com/wricardo/warpgame/game/events"
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions  SessionManager
	configs   ConfigManager
	publisher events.Publisher
	logger    *slog.Logger
}

// Option configures the game service.
type Option func(*gameServiceImpl)

// WithPublisher announces every successful action on p.
func WithPublisher(p events.Publisher) Option {
	return func(s *gameServiceImpl) { s.publisher = p }
}

// WithLogger sets the logger used for action logs.
func WithLogger(l *slog.Logger) Option {
	return func(s *gameServiceImpl) { s.logger = l }
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager, opts ...Option) GameService {
	s := &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateSession creates a new game session
func (s *gameServiceImpl) CreateSession(ctx context.Context, configName string) (*SessionInfo, error) {
	configID := configName
	var config *engine.GameConfig
	if configName != "" {
		var err error
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			if errors.Is(err, ErrConfigNotFound) {
				return nil, s.configNotFound(configName)
			}
			return nil, fmt.Errorf("failed to load config %s: %w", configName, err)
		}
	} else {
		configID, config = s.configs.GetDefault()
	}

	// Let session manager generate a proper 4-character ID
	sess, err := s.sessions.Create("", configID, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	s.logger.Info("session created", "session", sess.ID, "config", configID)

	return s.info(sess), nil
}

func (s *gameServiceImpl) configNotFound(name string) error {
	available, err := s.configs.ListConfigs()
	if err != nil || len(available) == 0 {
		return fmt.Errorf("config '%s': %w", name, ErrConfigNotFound)
	}
	ids := make([]string, 0, len(available))
	for _, c := range available {
		ids = append(ids, c.ConfigID)
	}
	return fmt.Errorf("config '%s' (available configs: %v): %w", name, ids, ErrConfigNotFound)
}

func (s *gameServiceImpl) info(sess *Session) *SessionInfo {
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     sess.ConfigID,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt(),
		GameState:      sess.Snapshot(),
		GameConfig:     sess.Config,
	}
}

// session looks up a session and marks it accessed.
func (s *gameServiceImpl) session(id string) (*Session, error) {
	sess, err := s.sessions.Get(id)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", id, err)
	}
	_ = s.sessions.UpdateLastAccessed(id)
	return sess, nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	return s.info(sess), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.info(sess))
	}
	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	if err := s.sessions.Delete(sessionID); err != nil {
		return fmt.Errorf("session %s: %w", sessionID, err)
	}
	s.logger.Info("session deleted", "session", sessionID)
	return nil
}

// Move moves one of the active player's units
func (s *gameServiceImpl) Move(ctx context.Context, sessionID string, unitID engine.UnitID, x, y int) (*ActionResult, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	ok, state, entry, err := sess.Act("move", func(g engine.Engine, e *HistoryEntry) (bool, error) {
		u, err := g.Unit(unitID)
		if err != nil {
			return false, err
		}
		from := u.Position()
		e.UnitID = u.ID
		e.UnitType = u.Type.String()
		e.From = &from
		e.To = &engine.Position{X: x, Y: y}
		return g.Move(unitID, x, y)
	}, s.publish(ctx, sess))
	if err != nil {
		return nil, fmt.Errorf("move unit %d: %w", unitID, err)
	}

	msg := "illegal move"
	if ok {
		msg = fmt.Sprintf("%s %d moved from (%d, %d) to (%d, %d)", entry.UnitType, unitID, entry.From.X, entry.From.Y, x, y)
	}
	return s.result(ctx, sess, ok, msg, state, entry, "unit", unitID, "x", x, "y", y), nil
}

// Deploy places a unit from the palette, with rules enforced
func (s *gameServiceImpl) Deploy(ctx context.Context, sessionID string, req DeployRequest) (*ActionResult, error) {
	t, err := engine.ParseUnitType(req.Type)
	if err != nil {
		return nil, err
	}
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	ok, state, entry, err := sess.Act("deploy", func(g engine.Engine, e *HistoryEntry) (bool, error) {
		ok, err := g.Deploy(t, req.Color, req.X, req.Y, true)
		if !ok || err != nil {
			return ok, err
		}
		e.UnitType = t.String()
		e.To = &engine.Position{X: req.X, Y: req.Y}
		if u, found := g.UnitAt(req.X, req.Y); found {
			e.UnitID = u.ID
		}
		return true, nil
	}, s.publish(ctx, sess))
	if err != nil {
		return nil, fmt.Errorf("deploy %s: %w", t, err)
	}

	msg := "illegal deploy"
	if ok {
		msg = fmt.Sprintf("%s %s deployed at (%d, %d)", req.Color, t, req.X, req.Y)
	}
	return s.result(ctx, sess, ok, msg, state, entry, "type", t.String(), "color", req.Color.String(), "x", req.X, "y", req.Y), nil
}

// UseAbility runs a named ability for one of the active player's units
func (s *gameServiceImpl) UseAbility(ctx context.Context, sessionID string, unitID engine.UnitID, name string, args engine.Args) (*ActionResult, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	ok, state, entry, err := sess.Act("ability", func(g engine.Engine, e *HistoryEntry) (bool, error) {
		e.UnitID = unitID
		e.Ability = name
		if u, err := g.Unit(unitID); err == nil {
			e.UnitType = u.Type.String()
			from := u.Position()
			e.From = &from
		}
		return g.UseAbility(unitID, name, args)
	}, s.publish(ctx, sess))
	if err != nil {
		return nil, fmt.Errorf("ability %s: %w", name, err)
	}

	msg := fmt.Sprintf("ability %s had no effect", name)
	if ok {
		msg = fmt.Sprintf("unit %d used %s", unitID, name)
	}
	return s.result(ctx, sess, ok, msg, state, entry, "unit", unitID, "ability", name), nil
}

// NextTurn hands play to the other color
func (s *gameServiceImpl) NextTurn(ctx context.Context, sessionID string) (*ActionResult, error) {
	return s.advance(ctx, sessionID, "next_turn", func(g engine.Engine) string {
		g.NextTurn()
		return fmt.Sprintf("turn %d: %s to play", g.Turn(), g.ActiveColor())
	})
}

// NextPhase advances the phase within the current turn
func (s *gameServiceImpl) NextPhase(ctx context.Context, sessionID string) (*ActionResult, error) {
	return s.advance(ctx, sessionID, "next_phase", func(g engine.Engine) string {
		g.NextPhase()
		return fmt.Sprintf("%s phase", g.Phase())
	})
}

// Finish ends the game
func (s *gameServiceImpl) Finish(ctx context.Context, sessionID string) (*ActionResult, error) {
	return s.advance(ctx, sessionID, "finish", func(g engine.Engine) string {
		g.Finish()
		return "game over"
	})
}

func (s *gameServiceImpl) advance(ctx context.Context, sessionID, action string, step func(g engine.Engine) string) (*ActionResult, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	msg := "game is over"
	ok, state, entry, err := sess.Act(action, func(g engine.Engine, _ *HistoryEntry) (bool, error) {
		if g.IsOver() {
			return false, nil
		}
		msg = step(g)
		return true, nil
	}, s.publish(ctx, sess))
	if err != nil {
		return nil, err
	}
	return s.result(ctx, sess, ok, msg, state, entry), nil
}

// publish returns the commit hook that announces a successful action. It runs
// under the session lock so subscribers see one session's states in order.
func (s *gameServiceImpl) publish(ctx context.Context, sess *Session) CommitFunc {
	if s.publisher == nil {
		return nil
	}
	return func(state *engine.State, entry *HistoryEntry) {
		ev := events.StateEvent{SessionID: sess.ID, Action: entry.Action, State: state}
		if err := s.publisher.PublishState(ctx, ev); err != nil {
			s.logger.Warn("failed to publish state", "session", sess.ID, "error", err)
		}
	}
}

// result logs the action and wraps it for the caller.
func (s *gameServiceImpl) result(ctx context.Context, sess *Session, ok bool, msg string, state *engine.State, entry *HistoryEntry, attrs ...any) *ActionResult {
	s.logger.Info(msg, append([]any{"session", sess.ID, "ok", ok, "version", state.Version}, attrs...)...)
	return &ActionResult{Success: ok, Message: msg, State: state, Entry: entry}
}

// GetGameState retrieves the current game state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.State, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	return sess.Snapshot(), nil
}

// LegalMoves lists the squares a unit may move to
func (s *gameServiceImpl) LegalMoves(ctx context.Context, sessionID string, unitID engine.UnitID) (*LegalMovesResult, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	result := &LegalMovesResult{UnitID: unitID}
	err = sess.View(func(g engine.Engine) error {
		u, err := g.Unit(unitID)
		if err != nil {
			return err
		}
		result.From = u.Position()
		result.Moves, err = g.ListLegalMoves(unitID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("legal moves for unit %d: %w", unitID, err)
	}
	return result, nil
}

// GetHistory returns paginated action history
func (s *gameServiceImpl) GetHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	history := sess.History()
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order != "asc" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := min((opts.Page-1)*opts.Limit, total)
	end := min(start+opts.Limit, total)

	entries := make([]HistoryEntry, 0, end-start)
	if opts.Order == "desc" {
		// most recent first
		for i := total - 1 - start; i >= total-end; i-- {
			entries = append(entries, history[i])
		}
	} else {
		entries = append(entries, history[start:end]...)
	}

	return &HistoryResponse{
		Entries:      entries,
		TotalEntries: total,
		Page:         opts.Page,
		PageSize:     opts.Limit,
		TotalPages:   totalPages,
		HasNext:      opts.Page < totalPages,
		HasPrevious:  opts.Page > 1,
	}, nil
}

// ListConfigs returns available game configurations
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific game configuration
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a game configuration
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error {
	if err := s.configs.SaveConfig(configName, config); err != nil {
		return err
	}
	s.logger.Info("config saved", "config", configName)
	return nil
}
