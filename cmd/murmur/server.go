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
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/kalambet/murmur/internal/api"
	"github.com/kalambet/murmur/internal/config"
	"github.com/kalambet/murmur/internal/emotion"
	"github.com/kalambet/murmur/internal/match"
	"github.com/kalambet/murmur/internal/provider"
	"github.com/kalambet/murmur/internal/session"
	"github.com/kalambet/murmur/internal/storage"
	"github.com/kalambet/murmur/internal/wellness"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the murmur server (foreground)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running murmur server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return stopServer()
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show murmur system status",
	RunE: func(cmd *cobra.Command, args []string) error {
		return showStatus()
	},
}

func pidFilePath(dataDir string) string {
	return filepath.Join(dataDir, "murmur.pid")
}

func writePIDFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0o644)
}

func readPIDFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(data)))
}

func removePIDFile(path string) {
	os.Remove(path)
}

func runServer() error {
	fmt.Fprintf(os.Stderr, "murmur version %s\n", version)

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Initialize structured logging.
	logLevel := slog.LevelInfo
	if strings.EqualFold(cfg.Log.Level, "debug") {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	// Ensure API token exists in platform secret store.
	apiToken, err := config.GetAPIToken(config.NewKeychain())
	if err != nil {
		return fmt.Errorf("initializing API token: %w", err)
	}
	slog.Info("API bearer token available")

	// Write PID file. Check if server is already running via health endpoint.
	pidPath := pidFilePath(cfg.Storage.DataDir)
	healthURL := fmt.Sprintf("http://127.0.0.1:%d/health", cfg.Server.Port)
	healthClient := &http.Client{Timeout: 2 * time.Second}
	if resp, err := healthClient.Get(healthURL); err == nil {
		resp.Body.Close()
		if pid, pidErr := readPIDFile(pidPath); pidErr == nil {
			printWarning("murmur is already running (PID %d)", pid)
			return fmt.Errorf("server already running (PID %d)", pid)
		}
		printWarning("murmur is already running on port %d", cfg.Server.Port)
		return fmt.Errorf("server already running on port %d", cfg.Server.Port)
	}
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("writing PID file: %w", err)
	}
	defer removePIDFile(pidPath)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Open storage.
	store, err := storage.Open(cfg.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: closing storage: %v\n", err)
		}
	}()

	// Live-session store with background expiry sweep.
	sessions := session.NewMemoryStore(time.Duration(cfg.Session.TTLMinutes)*time.Minute, nil)
	go sessions.Run(ctx)

	// Build the classification pipeline. Remote classification is first
	// when a provider key is configured; the lexicon fallback always runs
	// last so classification never depends on network availability.
	var steps []emotion.Classifier
	var providerClient *provider.Client
	if cfg.Provider.RemoteEnabled() {
		providerClient = provider.NewWithBaseURL(cfg.Provider.APIKey, cfg.Provider.BaseURL)
		steps = append(steps, emotion.NewRemoteClassifier(providerClient, cfg.Provider.Model))
		slog.Info("remote classification enabled", "model", cfg.Provider.Model)
	} else {
		slog.Info("no provider key configured, running lexicon-only")
	}
	steps = append(steps, emotion.NewLexiconClassifier(emotion.DefaultLexicon()))
	pipe := emotion.NewPipeline(steps...)

	scorer, err := match.NewScorer(match.DefaultWeights())
	if err != nil {
		return fmt.Errorf("building scorer: %w", err)
	}

	// Place suggestions degrade the same way: remote first, static last.
	var places wellness.PlaceSuggester = wellness.StaticPlaces{}
	if providerClient != nil {
		places = wellness.Chain{
			wellness.NewRemotePlaces(providerClient, cfg.Provider.PlacesModel),
			wellness.StaticPlaces{},
		}
	}
	aggregator := wellness.NewAggregator(places)

	// Build HTTP handler and server.
	handler := api.NewAppHandler(api.AppDeps{
		Pipeline:   pipe,
		Scorer:     scorer,
		Aggregator: aggregator,
		Store:      store,
		Sessions:   sessions,
		Token:      apiToken,
	})

	addr := fmt.Sprintf("127.0.0.1:%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	// Build and start MCP server (stdio transport in a goroutine).
	mcpSrv := api.NewMCPServer(api.MCPDeps{
		Pipeline:   pipe,
		Scorer:     scorer,
		Aggregator: aggregator,
		Store:      store,
		Sessions:   sessions,
	})
	stdioSrv := server.NewStdioServer(mcpSrv)
	go func() {
		if err := stdioSrv.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("MCP stdio server error", "error", err)
		}
	}()
	slog.Info("MCP server started (stdio transport)")

	// Start server in a goroutine.
	errCh := make(chan error, 1)
	go func() {
		fmt.Fprintf(os.Stderr, "murmur listening on %s\n", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for signal or server error.
	select {
	case <-ctx.Done():
		fmt.Fprintln(os.Stderr, "shutting down...")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	// Graceful shutdown with timeout.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func stopServer() error {
	cfg, err := config.Load()
	if err != nil {
		printError("could not load config: %v", err)
		return err
	}

	pidPath := pidFilePath(cfg.Storage.DataDir)
	pid, err := readPIDFile(pidPath)
	if err != nil {
		printError("murmur is not running (no PID file)")
		return fmt.Errorf("not running: %w", err)
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		printError("could not find process %d", pid)
		return err
	}

	if err := process.Signal(syscall.SIGTERM); err != nil {
		printError("could not stop murmur (PID %d): %v", pid, err)
		removePIDFile(pidPath)
		return err
	}

	printSuccess("Sent stop signal to murmur (PID %d)", pid)
	return nil
}

func showStatus() error {
	cfg, err := config.Load()
	if err != nil {
		// Still show partial status even if config fails.
		printError("config error: %v", err)
		return nil
	}

	// Check server health.
	serverURL := fmt.Sprintf("http://127.0.0.1:%d", cfg.Server.Port)
	client := &http.Client{Timeout: 2 * time.Second}

	resp, err := client.Get(serverURL + "/health")
	if err != nil {
		printStatus("Server", "stopped")
	} else {
		resp.Body.Close()
		if resp.StatusCode == 200 {
			printStatus("Server", "running on port %d", cfg.Server.Port)
		} else {
			printStatus("Server", "error (HTTP %d)", resp.StatusCode)
		}
	}

	if cfg.Provider.RemoteEnabled() {
		printStatus("Remote classification", "enabled (%s)", cfg.Provider.Model)
		printStatus("Places model", "%s", cfg.Provider.PlacesModel)
	} else {
		printStatus("Remote classification", "disabled (lexicon-only)")
	}

	printStatus("Session TTL", "%dm", cfg.Session.TTLMinutes)
	printStatus("Data dir", "%s", cfg.Storage.DataDir)
	return nil
}
