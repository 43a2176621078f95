// ABOUTME: Entry point for the agentboard server
// ABOUTME: Wires the store, dispatcher, audit recorder, and HTTP API together

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fatih/color"
	"golang.org/x/sync/errgroup"

	"github.com/yaam/agentboard/internal/agents"
	"github.com/yaam/agentboard/internal/audit"
	"github.com/yaam/agentboard/internal/auth"
	"github.com/yaam/agentboard/internal/config"
	"github.com/yaam/agentboard/internal/dispatch"
	"github.com/yaam/agentboard/internal/httpapi"
	"github.com/yaam/agentboard/internal/services"
	"github.com/yaam/agentboard/internal/store"
	"github.com/yaam/agentboard/internal/stream"
)

// Version is set by goreleaser at build time.
var version = "dev"

const banner = `
                            _   _                         _
   __ _  __ _  ___ _ __ | |_| |__   ___   __ _ _ __ __| |
  / _' |/ _' |/ _ \ '_ \| __| '_ \ / _ \ / _' | '__/ _' |
 | (_| | (_| |  __/ | | | |_| |_) | (_) | (_| | | | (_| |
  \__,_|\__, |\___|_| |_|\__|_.__/ \___/ \__,_|_|  \__,_|
        |___/
`

// getConfigPath returns the path to the config file.
// Priority: AGENTBOARD_CONFIG env var > XDG_CONFIG_HOME/agentboard/agentboard.yaml > ~/.config/agentboard/agentboard.yaml
func getConfigPath() string {
	if envPath := os.Getenv("AGENTBOARD_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "agentboard.yaml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "agentboard", "agentboard.yaml")
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: agentboard <command>")
		fmt.Println()
		fmt.Println("Commands:")
		fmt.Println("  serve                Start the board server")
		fmt.Println("  token --user NAME    Mint a bearer token for NAME")
		fmt.Println("  health               Check server health")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(ctx)
	case "token":
		err = runToken()
	case "health":
		err = runHealth(ctx)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServe(ctx context.Context) error {
	configPath := getConfigPath()

	cyan := color.New(color.FgCyan)
	cyan.Print(banner)

	gray := color.New(color.FgHiBlack)
	gray.Printf("    version: %s\n\n", version)

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := setupLogger(cfg.Logging)

	green := color.New(color.FgGreen)
	green.Print("    ▶ ")
	fmt.Printf("Config: %s\n", configPath)
	green.Print("    ▶ ")
	fmt.Printf("HTTP:   %s\n", cfg.Server.HTTPAddr)
	if cfg.Database.Path != "" {
		green.Print("    ▶ ")
		fmt.Printf("Audit:  %s\n", cfg.Database.Path)
	}
	fmt.Println()

	logger.Info("starting agentboard",
		"config", configPath,
		"http_addr", cfg.Server.HTTPAddr,
	)

	st := store.NewMemoryStore(logger)

	registry := agents.NewRegistry(logger)
	if cfg.Agents.RegistryPath != "" {
		if err := registry.LoadFile(cfg.Agents.RegistryPath); err != nil {
			return fmt.Errorf("loading agents: %w", err)
		}
	}

	var backend audit.Backend
	if cfg.Database.Path != "" {
		sqlBackend, err := audit.NewSQLiteBackend(cfg.Database.Path, logger)
		if err != nil {
			return fmt.Errorf("opening audit database: %w", err)
		}
		backend = sqlBackend
	}
	recorder := audit.NewRecorder(backend, logger)

	dispatcher := dispatch.New(dispatch.Config{
		Store:           st,
		Registry:        registry,
		Services:        buildServices(cfg.Services, logger),
		Audit:           recorder,
		Logger:          logger,
		ContextWindow:   cfg.Agents.ContextWindow,
		GenerateTimeout: cfg.Agents.GenerateTimeout,
		MediaTimeout:    cfg.Agents.MediaTimeout,
	})

	watcher := stream.NewWatcher(st, cfg.Stream.PollInterval, logger)

	var verifier auth.TokenVerifier
	if cfg.Auth.JWTSecret != "" {
		verifier = auth.NewJWTVerifier([]byte(cfg.Auth.JWTSecret))
	}
	middleware := auth.NewMiddleware(verifier, recorder, logger)

	api := httpapi.New(httpapi.Config{
		Store:          st,
		Registry:       registry,
		Dispatcher:     dispatcher,
		Audit:          recorder,
		Watcher:        watcher,
		Auth:           middleware,
		Logger:         logger,
		MetricsEnabled: cfg.Metrics.Enabled,
		MetricsPath:    cfg.Metrics.Path,
	})

	httpServer := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	recorder.Log(audit.Entry{
		Type:         audit.EventSystemStartup,
		ResourceType: "server",
		Details:      map[string]any{"version": version, "agents": len(registry.List())},
	})

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return recorder.Run(gctx)
	})

	g.Go(func() error {
		logger.Info("http server listening", "addr", cfg.Server.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("http shutdown", "error", err)
		}

		dispatcher.Pool().Wait()
		return nil
	})

	err = g.Wait()
	if closeErr := recorder.Close(); closeErr != nil {
		logger.Warn("closing audit recorder", "error", closeErr)
	}
	return err
}

// buildServices assembles the outbound integration bundle. A service is
// enabled only when its API key is configured; the generator falls back
// to canned replies so the board works without any keys at all.
func buildServices(cfg config.ServicesConfig, logger *slog.Logger) *services.Bundle {
	bundle := &services.Bundle{}

	if cfg.LLM.APIKey != "" {
		bundle.Generator = services.NewLLMClient(services.LLMConfig{
			BaseURL: cfg.LLM.BaseURL,
			APIKey:  cfg.LLM.APIKey,
			Model:   cfg.LLM.Model,
		}, logger)
	} else {
		bundle.Generator = services.NewMockGenerator()
	}

	if cfg.Search.APIKey != "" {
		bundle.Searcher = services.NewSerperClient(services.SerperConfig{
			BaseURL: cfg.Search.BaseURL,
			APIKey:  cfg.Search.APIKey,
		}, logger)
	}
	if cfg.Scrape.APIKey != "" {
		bundle.Scraper = services.NewScraperAPIClient(services.ScraperConfig{
			BaseURL: cfg.Scrape.BaseURL,
			APIKey:  cfg.Scrape.APIKey,
		}, logger)
	}
	if cfg.Media.APIKey != "" {
		bundle.Media = services.NewKlingClient(services.KlingConfig{
			BaseURL:   cfg.Media.BaseURL,
			AccessKey: cfg.Media.APIKey,
		}, logger)
	}
	if cfg.Email.APIKey != "" {
		bundle.Emailer = services.NewResendClient(services.ResendConfig{
			BaseURL: cfg.Email.BaseURL,
			APIKey:  cfg.Email.APIKey,
			From:    cfg.Email.From,
		}, logger)
	}

	return bundle
}

func setupLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = &colorHandler{
			level: level,
		}
	}

	return slog.New(handler)
}

// colorHandler provides colorized log output with thread-safe writes.
type colorHandler struct {
	mu     sync.Mutex
	level  slog.Level
	attrs  []slog.Attr
	groups []string
}

func (h *colorHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *colorHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	var buf strings.Builder

	buf.WriteString(color.HiBlackString(r.Time.Format("15:04:05") + " "))

	switch r.Level {
	case slog.LevelDebug:
		buf.WriteString(color.MagentaString("DBG "))
	case slog.LevelInfo:
		buf.WriteString(color.CyanString("INF "))
	case slog.LevelWarn:
		buf.WriteString(color.YellowString("WRN "))
	case slog.LevelError:
		buf.WriteString(color.New(color.FgRed, color.Bold).Sprint("ERR "))
	default:
		buf.WriteString("??? ")
	}

	buf.WriteString(r.Message)

	for _, a := range h.attrs {
		buf.WriteString(color.HiBlackString(" " + a.Key + "="))
		buf.WriteString(a.Value.String())
	}

	r.Attrs(func(a slog.Attr) bool {
		buf.WriteString(color.HiBlackString(" " + a.Key + "="))
		buf.WriteString(a.Value.String())
		return true
	})

	buf.WriteString("\n")
	fmt.Print(buf.String())
	return nil
}

func (h *colorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newAttrs := make([]slog.Attr, len(h.attrs), len(h.attrs)+len(attrs))
	copy(newAttrs, h.attrs)
	newAttrs = append(newAttrs, attrs...)
	return &colorHandler{
		level:  h.level,
		attrs:  newAttrs,
		groups: h.groups,
	}
}

func (h *colorHandler) WithGroup(name string) slog.Handler {
	newGroups := make([]string, len(h.groups), len(h.groups)+1)
	copy(newGroups, h.groups)
	newGroups = append(newGroups, name)
	return &colorHandler{
		level:  h.level,
		attrs:  h.attrs,
		groups: newGroups,
	}
}

// runToken mints a bearer token for a user so writes can be exercised
// against a server that has auth configured.
// Supports both "--user value" and "--user=value" formats.
func runToken() error {
	var userID string
	args := os.Args[2:]
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--user" || arg == "-u":
			if i+1 >= len(args) {
				return fmt.Errorf("--user requires a value")
			}
			userID = args[i+1]
			i++
		case strings.HasPrefix(arg, "--user="):
			userID = strings.TrimPrefix(arg, "--user=")
		case strings.HasPrefix(arg, "-u="):
			userID = strings.TrimPrefix(arg, "-u=")
		case strings.HasPrefix(arg, "-"):
			return fmt.Errorf("unknown flag: %s", arg)
		default:
			return fmt.Errorf("unexpected argument: %s", arg)
		}
	}

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return fmt.Errorf("--user flag is required")
	}

	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if cfg.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is not configured; the server runs anonymously")
	}

	tokenTTL := 30 * 24 * time.Hour
	expiresAt := time.Now().Add(tokenTTL).UTC()

	token, err := auth.NewJWTVerifier([]byte(cfg.Auth.JWTSecret)).Generate(userID, tokenTTL)
	if err != nil {
		return fmt.Errorf("generating token: %w", err)
	}

	green := color.New(color.FgGreen)
	green.Printf("  ✓ Token for %s (expires %s)\n\n", userID, expiresAt.Format("Jan 02, 2006"))
	fmt.Println(token)
	return nil
}

func runHealth(ctx context.Context) error {
	configPath := getConfigPath()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	url := fmt.Sprintf("http://%s/health", cfg.Server.HTTPAddr)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unhealthy: status %d", resp.StatusCode)
	}

	fmt.Println("healthy")
	return nil
}
