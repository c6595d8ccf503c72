package service

import (
	"context"

	"github.com/wricardo/warpgame/game/engine"
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, configName string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Game Operations
	Move(ctx context.Context, sessionID string, unitID engine.UnitID, x, y int) (*ActionResult, error)
	Deploy(ctx context.Context, sessionID string, req DeployRequest) (*ActionResult, error)
	UseAbility(ctx context.Context, sessionID string, unitID engine.UnitID, name string, args engine.Args) (*ActionResult, error)
	NextTurn(ctx context.Context, sessionID string) (*ActionResult, error)
	NextPhase(ctx context.Context, sessionID string) (*ActionResult, error)
	Finish(ctx context.Context, sessionID string) (*ActionResult, error)

	// Game State
	GetGameState(ctx context.Context, sessionID string) (*engine.State, error)
	LegalMoves(ctx context.Context, sessionID string, unitID engine.UnitID) (*LegalMovesResult, error)
	GetHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error)
	SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id, configID string, config *engine.GameConfig) (*Session, error)
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
}

// ConfigManager handles game configuration loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.GameConfig, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() (string, *engine.GameConfig)
	SaveConfig(name string, config *engine.GameConfig) error
}
