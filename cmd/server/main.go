package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/sozercan/prompt-relay/internal/config"
	"github.com/sozercan/prompt-relay/internal/llm"
	"github.com/sozercan/prompt-relay/internal/logging"
	"github.com/sozercan/prompt-relay/internal/relay"
	"github.com/sozercan/prompt-relay/internal/server"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logCloser, err := logging.Setup(cfg.Log)
	if err != nil {
		log.Fatalf("failed to set up logging: %v", err)
	}
	defer logCloser.Close()

	enhancer := llm.NewOpenAI(cfg.Local)

	// The relay keeps serving without Gemini and answers every chat request
	// with a configuration error, so a bad key is logged here only once.
	var generator llm.Generator
	gemini, err := llm.NewGemini(context.Background(), cfg.Gemini)
	if err != nil {
		slog.Error("CRITICAL: could not configure Gemini, check the API key", "error", err)
	} else {
		defer gemini.Close()
		generator = gemini
		slog.Info("Successfully configured Gemini", "model", gemini.Model())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(*cfg, relay.New(enhancer, generator, cfg.Gemini.Model))
	if err := srv.Run(ctx); err != nil {
		slog.Error("server failed", "error", err)
	}
}
