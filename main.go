// Package main provides the TUI application entry point.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/pmaederyork/apprised/agent"
	"github.com/pmaederyork/apprised/app"
	"github.com/pmaederyork/apprised/config"
	"github.com/pmaederyork/apprised/transcript"
)

var (
	configFlag       string
	serverFlag       string
	apiKeyFlag       string
	systemPromptFlag string
	themeFlag        string
	transcriptsFlag  string
	noMarkdownFlag   bool
	verbose          bool
)

var rootCmd = &cobra.Command{
	Use:   "apprised",
	Short: "Terminal chat client for a streaming agent backend",
	Long: `Apprised is a terminal UI for chatting with an agent backend over its
streaming HTTP API. Responses stream in as they arrive, tool calls show
up as annotated lines, and actions that need a human decision pause in
a confirmation prompt until approved, denied, or timed out.

Conversations are saved under ~/.apprised/transcripts and can be
rendered later with the logview command.

Environment:
  APPRISED_SERVER__API_KEY   API key for the backend (or server.api_key in config.yaml)
  APPRISED_SERVER__URL       Backend base URL (default: http://localhost:5000)`,
	RunE: runTUI,
}

func init() {
	rootCmd.Flags().StringVar(&configFlag, "config", "", "Path to config file (default: ~/.apprised/config.yaml)")
	rootCmd.Flags().StringVar(&serverFlag, "server", "", "Backend base URL (overrides config)")
	rootCmd.Flags().StringVar(&apiKeyFlag, "api-key", "", "API key for the backend (overrides config)")
	rootCmd.Flags().StringVar(&systemPromptFlag, "system-prompt", "", "System prompt sent with every turn")
	rootCmd.Flags().StringVar(&themeFlag, "theme", "", "Color theme: dark or light")
	rootCmd.Flags().StringVar(&transcriptsFlag, "transcripts", "", "Transcript directory (default: ~/.apprised/transcripts)")
	rootCmd.Flags().BoolVar(&noMarkdownFlag, "no-markdown", false, "Render assistant text as plain lines")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runTUI(cmd *cobra.Command, args []string) error {
	// A .env file is handy in development; ignore it when absent.
	_ = godotenv.Load()

	cfg, err := config.Load(configFlag)
	if err != nil {
		return err
	}
	applyFlagOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, closeLog := newLogger()
	defer closeLog()
	slog.SetDefault(logger)

	// Setup context with signal handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	store, err := transcript.NewStore(transcriptsFlag)
	if err != nil {
		return fmt.Errorf("failed to create transcript store: %w", err)
	}

	client := agent.NewClient(
		agent.WithBaseURL(cfg.Server.URL),
		agent.WithAPIKey(cfg.Server.APIKey),
	)

	sessOpts := []agent.SessionOption{agent.WithHistoryLimit(cfg.Chat.HistoryLimit)}
	if cfg.Chat.SystemPrompt != "" {
		sessOpts = append(sessOpts, agent.WithSystemPrompt(cfg.Chat.SystemPrompt))
	}
	sess := agent.NewSession(client, sessOpts...)
	defer sess.Close()

	// Create and run TUI
	model := app.NewModel(ctx, sess, store, app.Options{
		Theme:    cfg.UI.Theme,
		Markdown: cfg.UI.Markdown,
	})
	p := tea.NewProgram(model, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}

// applyFlagOverrides lets command-line flags win over file and
// environment configuration.
func applyFlagOverrides(cfg *config.Config) {
	if serverFlag != "" {
		cfg.Server.URL = serverFlag
	}
	if apiKeyFlag != "" {
		cfg.Server.APIKey = apiKeyFlag
	}
	if systemPromptFlag != "" {
		cfg.Chat.SystemPrompt = systemPromptFlag
	}
	if themeFlag != "" {
		cfg.UI.Theme = themeFlag
	}
	if noMarkdownFlag {
		cfg.UI.Markdown = false
	}
}

// newLogger creates a structured logger that writes to a timestamped
// file under ~/.apprised/logs so runs can be revisited later. The TUI
// owns the terminal, so nothing may log to stderr while it runs; if the
// log directory cannot be created the logs are dropped instead.
func newLogger() (*slog.Logger, func()) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	discard := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: level}))

	home, err := os.UserHomeDir()
	if err != nil {
		return discard, func() {}
	}
	logDir := filepath.Join(home, ".apprised", "logs")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return discard, func() {}
	}

	logFile := filepath.Join(logDir, time.Now().Format("2006-01-02T15-04-05")+".log")
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return discard, func() {}
	}

	return slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level})), func() { f.Close() }
}
