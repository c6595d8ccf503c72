// Command warpgame starts the warp tactics game server.
//
// It supports two modes:
//  1. "server" (default) – runs the HTTP server exposing REST API, WebSocket, and an /mcp HTTP endpoint
//  2. "stdio-mcp" – runs an MCP stdio server and spins up an internal HTTP API if none is available
//
// Every flag can also be set from the environment or a .env file, and an
// optional ngrok tunnel gives easy external access during development.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v3"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/warpgame/api"
	"github.com/wricardo/warpgame/game/config"
	"github.com/wricardo/warpgame/game/engine"
	"github.com/wricardo/warpgame/game/events"
	"github.com/wricardo/warpgame/game/script"
	"github.com/wricardo/warpgame/game/service"
	"github.com/wricardo/warpgame/game/session"
	"github.com/wricardo/warpgame/logging"
	"github.com/wricardo/warpgame/transport/mcp"
	"github.com/wricardo/warpgame/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Warp Tactics Server"
)

const cleanupInterval = time.Hour

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: Error loading .env file: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newCommand().Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:    "warpgame",
		Usage:   AppName,
		Version: Version,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Value:   8080,
				Usage:   "HTTP server port",
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "host",
				Value:   "localhost",
				Usage:   "HTTP server host",
				Sources: cli.EnvVars("HOST"),
			},
			&cli.StringFlag{
				Name:    "config-dir",
				Value:   "configs",
				Usage:   "Directory containing ruleset files",
				Sources: cli.EnvVars("CONFIG_DIR"),
			},
			&cli.StringFlag{
				Name:    "abilities-dir",
				Value:   "scripts/abilities",
				Usage:   "Directory containing .tengo ability scripts",
				Sources: cli.EnvVars("ABILITIES_DIR"),
			},
			&cli.BoolFlag{
				Name:    "watch-abilities",
				Value:   true,
				Usage:   "Reload ability scripts when they change",
				Sources: cli.EnvVars("ABILITIES_WATCH"),
			},
			&cli.DurationFlag{
				Name:    "session-ttl",
				Value:   24 * time.Hour,
				Usage:   "Remove sessions idle for longer than this",
				Sources: cli.EnvVars("SESSION_TTL"),
			},
			&cli.StringFlag{
				Name:    "log-format",
				Value:   "text",
				Usage:   "Log format (text or json)",
				Sources: cli.EnvVars("LOG_FORMAT"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Usage:   "Log level (debug, info, warn, error)",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Shorthand for --log-level debug",
			},
			&cli.BoolFlag{
				Name:    "ngrok",
				Usage:   "Enable ngrok tunnel",
				Sources: cli.EnvVars("NGROK_ENABLED"),
			},
			&cli.StringFlag{
				Name:    "ngrok-auth",
				Usage:   "Ngrok auth token",
				Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN"),
			},
			&cli.StringFlag{
				Name:    "ngrok-domain",
				Usage:   "Custom ngrok domain (optional)",
				Sources: cli.EnvVars("NGROK_DOMAIN"),
			},
		},
		Action: runServer,
		Commands: []*cli.Command{
			{
				Name:    "server",
				Aliases: []string{"http"},
				Usage:   "Run HTTP server with API, WebSocket, and MCP endpoint",
				Action:  runServer,
			},
			{
				Name:    "stdio-mcp",
				Aliases: []string{"mcp-stdio", "mcp"},
				Usage:   "Run MCP stdio server, with an internal HTTP API if none is reachable",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "api-url",
						Value:   "http://localhost:8080",
						Usage:   "REST API to proxy to when it is already running",
						Sources: cli.EnvVars("MCP_API_URL"),
					},
				},
				Action: runStdioMCP,
			},
		},
	}
}

func newLogger(cmd *cli.Command) *slog.Logger {
	level := cmd.String("log-level")
	if cmd.Bool("debug") {
		level = "debug"
	}
	// stdout carries the MCP protocol in stdio mode
	return logging.New(os.Stderr, cmd.String("log-format"), level)
}

// app holds the wired game services.
type app struct {
	logger    *slog.Logger
	abilities *engine.AbilityRegistry
	sessions  *session.Manager
	bus       *events.Bus
	hub       *websocket.Hub
	service   service.GameService
}

// setup wires configs, abilities, sessions, the event bus and the websocket
// hub. Background goroutines stop when ctx is cancelled.
func setup(ctx context.Context, cmd *cli.Command, logger *slog.Logger) (*app, error) {
	osFs := afero.NewOsFs()

	configManager, err := config.NewManager(osFs, cmd.String("config-dir"))
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	abilities := engine.DefaultAbilities()
	loader := script.NewLoader(osFs, cmd.String("abilities-dir"), abilities, script.WithLogger(logger))
	loaded, err := loader.LoadAll()
	if err != nil {
		logger.Warn("some ability scripts failed to load", "error", err)
	}
	logger.Info("abilities ready", "scripts", loaded, "names", abilities.Names())
	if cmd.Bool("watch-abilities") {
		if err := loader.Watch(ctx); err != nil {
			logger.Warn("ability hot reload disabled", "error", err)
		}
	}

	sessionManager := session.NewManager(session.WithAbilities(abilities), session.WithLogger(logger))

	bus := events.NewBus(logger)
	hub := websocket.NewHub(logger)
	go hub.Run(ctx)
	if err := bus.SubscribeState(ctx, hub.HandleStateEvent); err != nil {
		bus.Close()
		return nil, fmt.Errorf("subscribe websocket hub: %w", err)
	}

	gameService := service.NewGameService(sessionManager, configManager,
		service.WithPublisher(bus),
		service.WithLogger(logger),
	)

	go sessionCleanupRoutine(ctx, sessionManager, cmd.Duration("session-ttl"), logger)

	return &app{
		logger:    logger,
		abilities: abilities,
		sessions:  sessionManager,
		bus:       bus,
		hub:       hub,
		service:   gameService,
	}, nil
}

// handler builds the REST API with the /mcp endpoint mounted. The MCP tools
// call back into the API at baseURL.
func (a *app) handler(baseURL string) http.Handler {
	apiServer := api.NewServer(a.service, a.hub, api.WithLogger(a.logger))
	mcpClient := mcp.NewClient(baseURL, mcp.WithLogger(a.logger))
	apiServer.Handle("/mcp", mcpClient.Handler())
	return apiServer
}

// loopbackURL is the address local clients use to reach a server bound to host:port.
func loopbackURL(host string, port int) string {
	switch host {
	case "", "0.0.0.0", "::":
		host = "127.0.0.1"
	}
	return "http://" + net.JoinHostPort(host, strconv.Itoa(port))
}

// runServer starts the HTTP server with REST API, WebSocket hub, and an /mcp endpoint.
// If ngrok is enabled it also provisions a public tunnel.
func runServer(ctx context.Context, cmd *cli.Command) error {
	logger := newLogger(cmd)
	logger.Info("starting", "app", AppName, "version", Version, "mode", "server")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a, err := setup(ctx, cmd, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	defer a.bus.Close()

	port := int(cmd.Int("port"))
	addr := net.JoinHostPort(cmd.String("host"), strconv.Itoa(port))
	handler := a.handler(loopbackURL(cmd.String("host"), port))

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var wg sync.WaitGroup
	serveErr := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()
		logger.Info("HTTP server listening", "addr", addr,
			"api", "http://"+addr+"/api",
			"websocket", "ws://"+addr+"/ws?session=<session_id>",
			"mcp", "http://"+addr+"/mcp")

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	if cmd.Bool("ngrok") {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrok(ctx, cmd, handler, logger)
		}()
	}

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-serveErr:
		cancel()
		wg.Wait()
		return fmt.Errorf("HTTP server failed: %w", err)
	}
	cancel()

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown", "error", err)
	}

	wg.Wait()
	logger.Info("server stopped")
	return nil
}

// runNgrok serves handler through an ngrok tunnel until ctx is cancelled.
func runNgrok(ctx context.Context, cmd *cli.Command, handler http.Handler, logger *slog.Logger) {
	authToken := cmd.String("ngrok-auth")
	if authToken == "" {
		logger.Warn("ngrok enabled but no auth token provided (use --ngrok-auth or NGROK_AUTHTOKEN)")
		return
	}

	var tunnel ngrokConfig.Tunnel
	if domain := cmd.String("ngrok-domain"); domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(domain))
		logger.Info("using custom ngrok domain", "domain", domain)
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(authToken))
	if err != nil {
		logger.Error("failed to start ngrok tunnel", "error", err)
		return
	}

	ngrokURL := tun.URL()
	logger.Info("ngrok tunnel established", "url", ngrokURL,
		"api", ngrokURL+"/api", "mcp", ngrokURL+"/mcp")

	srv := &http.Server{Handler: handler}
	go func() {
		<-ctx.Done()
		srv.Close()
	}()
	if err := srv.Serve(tun); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("ngrok server error", "error", err)
	}
	logger.Info("ngrok tunnel closed")
}

// sessionCleanupRoutine periodically removes sessions that have not been
// accessed within ttl.
func sessionCleanupRoutine(ctx context.Context, manager *session.Manager, ttl time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := manager.CleanupExpiredSessions(ttl); removed > 0 {
				logger.Info("cleaned up expired sessions", "removed", removed)
			}
		}
	}
}

// apiAvailable reports whether a game API answers at baseURL.
func apiAvailable(ctx context.Context, baseURL string) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// runStdioMCP runs an MCP stdio server. It reuses an API already running at
// --api-url; otherwise it starts an internal one on a random loopback port.
func runStdioMCP(ctx context.Context, cmd *cli.Command) error {
	logger := newLogger(cmd)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	baseURL := cmd.String("api-url")
	if apiAvailable(ctx, baseURL) {
		logger.Info("using external API server for MCP", "url", baseURL)
	} else {
		logger.Info("no external API server found, starting internal HTTP server", "tried", baseURL)

		a, err := setup(ctx, cmd, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize services: %w", err)
		}
		defer a.bus.Close()

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}
		baseURL = "http://" + listener.Addr().String()

		httpServer := &http.Server{Handler: api.NewServer(a.service, a.hub, api.WithLogger(logger))}
		defer httpServer.Close()
		go func() {
			if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("internal HTTP server error", "error", err)
			}
		}()
		logger.Info("internal HTTP server started", "url", baseURL)
	}

	mcpClient := mcp.NewClient(baseURL, mcp.WithLogger(logger))
	logger.Info("MCP stdio server ready")

	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}
