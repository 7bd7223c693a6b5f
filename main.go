// Command landlord starts the Landlord game server.
//
// It supports two modes:
//  1. "server" (default) – runs the HTTP server exposing REST API, WebSocket, and an /mcp HTTP endpoint
//  2. "stdio-mcp" – runs an MCP stdio server and spins up an internal HTTP API if none is available
//
// Settings come from the environment (and .env); flags override them.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/cors"
	"go.uber.org/zap"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"
	"golang.org/x/sync/errgroup"

	"github.com/wricardo/landlord/api"
	"github.com/wricardo/landlord/game/config"
	"github.com/wricardo/landlord/game/service"
	"github.com/wricardo/landlord/game/session"
	"github.com/wricardo/landlord/transport/mcp"
	"github.com/wricardo/landlord/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Landlord Game Server"
)

// Flags override the environment settings when set.
var (
	port         = flag.Int("port", 0, "HTTP server port (PORT)")
	host         = flag.String("host", "", "HTTP server host (HOST)")
	configDir    = flag.String("config-dir", "", "Directory containing rules files (CONFIG_DIR)")
	storage      = flag.String("storage", "", "Session storage: memory, file or redis (STORAGE)")
	debug        = flag.Bool("debug", false, "Enable debug logging")
	version      = flag.Bool("version", false, "Show version information")
	ngrokEnabled = flag.Bool("ngrok", false, "Enable ngrok tunnel (NGROK_ENABLED)")
	ngrokAuth    = flag.String("ngrok-auth", "", "Ngrok auth token (NGROK_AUTHTOKEN)")
	ngrokDomain  = flag.String("ngrok-domain", "", "Custom ngrok domain (NGROK_DOMAIN)")
)

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS] [MODE]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "%s v%s\n\n", AppName, Version)
		fmt.Fprintf(os.Stderr, "Available modes:\n")
		fmt.Fprintf(os.Stderr, "  server, http     Run HTTP server with API, WebSocket, and MCP endpoint (default)\n")
		fmt.Fprintf(os.Stderr, "  stdio-mcp        Run MCP stdio server with internal HTTP server\n")
		fmt.Fprintf(os.Stderr, "  mcp-stdio, mcp   Aliases for stdio-mcp\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                         # Run HTTP server on default port 8080\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -storage redis          # Keep games in Redis (REDIS_URL)\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s stdio-mcp               # Run MCP stdio server\n", os.Args[0])
	}
}

func main() {
	envErr := godotenv.Load()

	flag.Parse()

	if *version {
		fmt.Printf("%s v%s\n", AppName, Version)
		os.Exit(0)
	}

	logger, err := newLogger(*debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if envErr == nil {
		logger.Info("Loaded environment variables from .env file")
	} else if !os.IsNotExist(envErr) {
		logger.Warnw("Error loading .env file", "error", envErr)
	}

	settings, err := config.LoadSettings()
	if err != nil {
		logger.Fatalw("Invalid settings", "error", err)
	}
	applyFlags(settings)
	if err := settings.Validate(); err != nil {
		logger.Fatalw("Invalid settings", "error", err)
	}

	mode := "server"
	if args := flag.Args(); len(args) > 0 {
		mode = args[0]
	}

	logger.Infow("Starting", "app", AppName, "version", Version, "mode", mode, "storage", settings.Storage)

	a, err := initializeServices(settings, logger)
	if err != nil {
		logger.Fatalw("Failed to initialize services", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch mode {
	case "stdio-mcp", "mcp-stdio", "mcp":
		err = runStdioMCPWithInternalServer(ctx, a)
	case "server", "http":
		err = runHTTPServer(ctx, a)
	default:
		logger.Fatalf("Unknown mode: %s. Use 'server' (default) or 'stdio-mcp'", mode)
	}

	a.shutdown()
	if err != nil {
		logger.Fatalw("Server failed", "error", err)
	}
	logger.Info("Server stopped")
}

func newLogger(debug bool) (*zap.SugaredLogger, error) {
	var (
		l   *zap.Logger
		err error
	)
	if debug {
		l, err = zap.NewDevelopment()
	} else {
		l, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}
	return l.Sugar(), nil
}

// applyFlags copies explicitly set flags over the environment settings
func applyFlags(s *config.Settings) {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "port":
			s.Port = *port
		case "host":
			s.Host = *host
		case "config-dir":
			s.ConfigDir = *configDir
		case "storage":
			s.Storage = *storage
		case "ngrok":
			s.NgrokEnabled = *ngrokEnabled
		case "ngrok-auth":
			s.NgrokAuthToken = *ngrokAuth
		case "ngrok-domain":
			s.NgrokDomain = *ngrokDomain
		}
	})
	if s.NgrokAuthToken == "" {
		s.NgrokAuthToken = os.Getenv("NGROK_AUTH_TOKEN")
	}
}

// app holds the wired components shared by both modes
type app struct {
	settings    *config.Settings
	logger      *zap.SugaredLogger
	sessions    *session.Manager
	persistence session.SessionPersistence
	service     service.GameService
	hub         *websocket.Hub
	closers     []func() error
}

// initializeServices wires storage, the rules manager, the websocket hub and
// the game service.
func initializeServices(settings *config.Settings, logger *zap.SugaredLogger) (*app, error) {
	rulesManager, err := config.NewManager(settings.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create rules manager: %w", err)
	}

	a := &app{settings: settings, logger: logger}

	persistence, closer, err := openPersistence(settings)
	if err != nil {
		return nil, err
	}
	if closer != nil {
		a.closers = append(a.closers, closer)
	}
	a.persistence = persistence

	opts := []session.Option{session.WithLogger(logger.Named("sessions"))}
	if persistence != nil {
		opts = append(opts, session.WithPersistence(persistence))
	}
	a.sessions = session.NewManager(opts...)

	if err := a.sessions.LoadPersistedSessions(); err != nil {
		logger.Warnw("Failed to load persisted sessions", "error", err)
	}

	a.hub = websocket.NewHub(logger.Named("ws"))
	a.service = service.NewGameService(a.sessions, rulesManager,
		service.WithNotifier(a.hub),
		service.WithBotWorkers(settings.BotWorkers),
		service.WithBotDelay(settings.BotTurnDelay),
		service.WithLogger(logger.Named("service")),
	)

	return a, nil
}

// openPersistence returns nil persistence for memory storage
func openPersistence(settings *config.Settings) (session.SessionPersistence, func() error, error) {
	switch settings.Storage {
	case config.StorageFile:
		fp, err := session.NewFilePersistence(settings.SessionsDir)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create session persistence: %w", err)
		}
		return fp, nil, nil
	case config.StorageRedis:
		pool := session.NewRedisPool(settings.RedisURL)
		rp := session.NewRedisPersistence(pool)
		if err := rp.Ping(); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("failed to reach redis at %s: %w", settings.RedisURL, err)
		}
		return rp, pool.Close, nil
	}
	return nil, nil, nil
}

// runBackground starts the hub and housekeeping loops on g
func (a *app) runBackground(ctx context.Context, g *errgroup.Group) {
	g.Go(func() error {
		a.hub.Run(ctx)
		return nil
	})
	g.Go(func() error {
		sessionCleanupRoutine(ctx, a.sessions, a.settings.SessionTTL, time.Hour, a.logger)
		return nil
	})
	if fp, ok := a.persistence.(*session.FilePersistence); ok {
		g.Go(func() error {
			filesystemSyncRoutine(ctx, a.sessions, fp, 5*time.Second, a.logger)
			return nil
		})
	}
}

// shutdown stops bot workers, flushes sessions and releases storage
func (a *app) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.service.Close(ctx); err != nil {
		a.logger.Warnw("Bot workers did not stop cleanly", "error", err)
	}
	if err := a.sessions.SaveAllSessions(); err != nil {
		a.logger.Warnw("Failed to save sessions on shutdown", "error", err)
	}
	for _, c := range a.closers {
		if err := c(); err != nil {
			a.logger.Warnw("Failed to close storage", "error", err)
		}
	}
}

// newRouter combines the API, WebSocket and MCP endpoints behind CORS
func (a *app) newRouter(baseURL string) http.Handler {
	apiServer := api.NewServer(a.service, a.hub, a.logger.Named("api"))

	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)
	mainRouter.Handle("/mcp", newMCPEndpoint(baseURL, a.settings.MCPUserID, a.settings.MCPUserName))

	return cors.New(cors.Options{
		AllowedOrigins: a.settings.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", api.HeaderUserID, api.HeaderUserName},
	}).Handler(mainRouter)
}

// mcpEndpoint serves MCP JSON-RPC over plain HTTP POST. Each caller identity
// gets its own tool server; the identity comes from X-User-ID when present.
type mcpEndpoint struct {
	baseURL     string
	defaultUser string
	defaultName string

	mu      sync.Mutex
	clients map[string]*mcp.Client
}

func newMCPEndpoint(baseURL, defaultUser, defaultName string) *mcpEndpoint {
	return &mcpEndpoint{
		baseURL:     baseURL,
		defaultUser: defaultUser,
		defaultName: defaultName,
		clients:     make(map[string]*mcp.Client),
	}
}

func (e *mcpEndpoint) client(userID, name string) *mcp.Client {
	if userID == "" {
		userID, name = e.defaultUser, e.defaultName
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	c, ok := e.clients[userID]
	if !ok {
		c = mcp.NewClient(e.baseURL, userID, name)
		e.clients[userID] = c
	}
	return c
}

func (e *mcpEndpoint) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	c := e.client(r.Header.Get(api.HeaderUserID), r.Header.Get(api.HeaderUserName))
	response := c.GetMCPServer().HandleMessage(r.Context(), body)

	w.Header().Set("Content-Type", "application/json")
	responseData, err := json.Marshal(response)
	if err != nil {
		http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
		return
	}
	w.Write(responseData)
}

// runHTTPServer starts the HTTP server and, when enabled, an ngrok tunnel
// serving the same handler. It returns after ctx is cancelled and the
// servers have stopped.
func runHTTPServer(ctx context.Context, a *app) error {
	addr := a.settings.Addr()
	handler := a.newRouter(fmt.Sprintf("http://%s", addr))

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	a.runBackground(gctx, g)

	g.Go(func() error {
		a.logger.Infow("HTTP server listening",
			"addr", addr,
			"api", fmt.Sprintf("http://%s/api", addr),
			"ws", fmt.Sprintf("ws://%s/ws?game=<game_id>", addr),
			"mcp", fmt.Sprintf("http://%s/mcp", addr),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
		return nil
	})

	if a.settings.NgrokEnabled {
		g.Go(func() error {
			serveNgrok(gctx, a, handler)
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			a.logger.Warnw("HTTP server shutdown error", "error", err)
		}
		return nil
	})

	return g.Wait()
}

// serveNgrok exposes handler through a tunnel until ctx is cancelled. Tunnel
// failures are logged and never stop the local server.
func serveNgrok(ctx context.Context, a *app, handler http.Handler) {
	if a.settings.NgrokAuthToken == "" {
		a.logger.Warn("Ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN, or NGROK_AUTH_TOKEN env var)")
		return
	}

	a.logger.Info("Starting ngrok tunnel...")

	var tunnel ngrokConfig.Tunnel
	if domain := a.settings.NgrokDomain; domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(domain))
		a.logger.Infow("Using custom ngrok domain", "domain", domain)
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(a.settings.NgrokAuthToken))
	if err != nil {
		a.logger.Warnw("Failed to start ngrok tunnel", "error", err)
		return
	}

	ngrokURL := tun.URL()
	a.logger.Infow("Ngrok tunnel established",
		"url", ngrokURL,
		"api", ngrokURL+"/api",
		"mcp", ngrokURL+"/mcp",
	)

	srv := &http.Server{Handler: handler}
	go func() {
		<-ctx.Done()
		srv.Close()
	}()
	if err := srv.Serve(tun); err != nil && !errors.Is(err, http.ErrServerClosed) {
		a.logger.Warnw("Ngrok server error", "error", err)
	}
	a.logger.Info("Ngrok tunnel closed")
}

// sessionCleanupRoutine evicts sessions idle for longer than ttl from memory.
// Persisted copies stay loadable.
func sessionCleanupRoutine(ctx context.Context, manager *session.Manager, ttl, every time.Duration, logger *zap.SugaredLogger) {
	if ttl <= 0 {
		return
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := manager.CleanupExpiredSessions(ttl); removed > 0 {
				logger.Infow("Cleaned up expired sessions", "count", removed)
			}
		}
	}
}

// filesystemSyncRoutine drops games from memory whose files were deleted
// from the sessions directory.
func filesystemSyncRoutine(ctx context.Context, manager *session.Manager, persistence session.SessionPersistence, every time.Duration, logger *zap.SugaredLogger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pruneOrphans(manager, persistence, logger)
		}
	}
}

func pruneOrphans(manager *session.Manager, persistence session.SessionPersistence, logger *zap.SugaredLogger) int {
	pruned := 0
	for _, sess := range manager.List() {
		if persistence.Exists(sess.ID) {
			continue
		}
		if err := manager.DeleteFromMemory(sess.ID); err == nil {
			pruned++
			logger.Infow("Pruned game from memory (file deleted)", "game_id", sess.ID)
		}
	}
	return pruned
}

// runStdioMCPWithInternalServer runs an MCP stdio server.
// It reuses an API already listening on the configured address; otherwise it
// starts an internal HTTP API on a random loopback port.
func runStdioMCPWithInternalServer(ctx context.Context, a *app) error {
	externalURL := fmt.Sprintf("http://%s", a.settings.Addr())
	baseURL := externalURL

	a.logger.Infow("Checking for external API server", "url", externalURL)

	testClient := &http.Client{Timeout: 2 * time.Second}
	resp, err := testClient.Get(externalURL + "/health")
	if err == nil && resp.StatusCode < 500 {
		resp.Body.Close()
		a.logger.Infow("External API server found, using it for MCP", "url", externalURL)
	} else {
		a.logger.Info("No external API server found, starting internal HTTP server")

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}
		internalAddr := listener.Addr().String()
		baseURL = fmt.Sprintf("http://%s", internalAddr)

		g, gctx := errgroup.WithContext(ctx)
		a.runBackground(gctx, g)

		httpServer := &http.Server{Handler: a.newRouter(baseURL)}
		go func() {
			<-ctx.Done()
			httpServer.Close()
		}()
		go func() {
			if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.logger.Warnw("Internal HTTP server error", "error", err)
			}
		}()

		a.logger.Infow("Internal HTTP server started", "addr", internalAddr)
	}

	mcpClient := mcp.NewClient(baseURL, a.settings.MCPUserID, a.settings.MCPUserName)
	a.logger.Infow("MCP stdio server ready", "api", baseURL, "user", a.settings.MCPUserID)

	return server.ServeStdio(mcpClient.GetMCPServer())
}
