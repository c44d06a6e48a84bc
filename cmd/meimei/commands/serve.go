package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"meimei/pkg/meimei/brain"
	"meimei/pkg/meimei/channels/discord"
	"meimei/pkg/meimei/config"
	"meimei/pkg/meimei/keepalive"
	"meimei/pkg/meimei/memory"
	"meimei/pkg/meimei/persona"
	"meimei/pkg/meimei/router"
	"meimei/pkg/meimei/trigger"
)

// newServeCmd creates the `meimei serve` command that runs the bot.
func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Connect to Discord and start replying",
		Long: `Start the bot: connects to the Discord gateway, serves the keepalive
HTTP endpoint, and processes messages until interrupted.

Examples:
  meimei serve
  meimei serve --config ./meimei.yaml`,
		RunE: runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	// ── Load .env, then config ──
	_ = godotenv.Load()

	configPath, _ := cmd.Root().PersistentFlags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	// ── Configure logger ──
	verbose, _ := cmd.Root().PersistentFlags().GetBool("verbose")
	logLevel := slog.LevelInfo
	if verbose || cfg.LogLevel == "debug" {
		logLevel = slog.LevelDebug
	}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	}
	logger := slog.New(handler)

	logger.Info("chat mode",
		"reply_all", cfg.ReplyAll,
		"cooldown", cfg.Cooldown().String(),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── Generation backend ──
	// Missing or broken backend config degrades to fallback replies; it
	// never prevents startup.
	config.ResolveAPIKey(cfg, logger)

	var backend brain.Backend
	if cfg.GenerationEnabled() {
		gemini, err := brain.NewGeminiBackend(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Warn("failed to initialize Gemini, replies degrade to fallback", "error", err)
		} else {
			backend = gemini
			logger.Info("Gemini enabled for persona replies", "model", cfg.GeminiModel)
		}
	} else {
		logger.Info("no backend API key, generation disabled")
	}

	// ── Core components ──
	sessions := brain.NewSessionManager(backend, persona.Seed(), logger)
	engine := brain.NewReplyEngine(sessions, persona.FallbackText, 0, logger)

	store, err := memory.NewFileStore(cfg.MemoryDir, logger)
	if err != nil {
		return fmt.Errorf("initializing memory store: %w", err)
	}

	policy := trigger.NewPolicy(trigger.Config{
		ReplyAll:  cfg.ReplyAll,
		Cooldown:  cfg.Cooldown(),
		Greetings: cfg.Greetings,
		Keywords:  cfg.Keywords,
	}, logger)

	rt := router.New(policy, store, engine, router.Texts{
		MentionSuffix: persona.MentionSuffix,
		RecallFound:   persona.RecallFoundTemplate,
		RecallEmpty:   persona.RecallEmptyText,
	}, logger)

	// ── Keepalive endpoint ──
	ka := keepalive.New(cfg.Port, logger)
	ka.Start()

	// ── Gateway ──
	gateway := discord.New(discord.Config{Token: cfg.DiscordToken}, rt, engine, logger)
	if err := gateway.Connect(ctx); err != nil {
		return fmt.Errorf("connecting to Discord: %w", err)
	}

	logger.Info("Mei Mei running. Press Ctrl+C to stop.", "persona", persona.Name)

	// ── Wait for shutdown ──
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received, stopping...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := gateway.Disconnect(); err != nil {
		logger.Warn("gateway disconnect", "error", err)
	}
	ka.Shutdown(shutdownCtx)

	logger.Info("stopped")
	return nil
}
