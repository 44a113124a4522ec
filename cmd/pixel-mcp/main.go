package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/pixel-pictures-mcp/internal/api"
	"github.com/ironsheep/pixel-pictures-mcp/internal/config"
	"github.com/ironsheep/pixel-pictures-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("pixel-pictures-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Println("pixel-pictures-mcp - MCP server for drawing pixel pictures")
			fmt.Println()
			fmt.Println("Usage: pixel-pictures-mcp [options]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Environment variables (also read from ./.env):")
			fmt.Printf("  %s=%s   Picture service root\n", config.EnvBaseURL, config.DefaultBaseURL)
			fmt.Printf("  %s=...    CSRF token for write requests\n", config.EnvCSRFToken)
			fmt.Printf("  %s=...    Session cookie of a logged-in user\n", config.EnvSessionID)
			fmt.Printf("  %s=%s               Per-request timeout\n", config.EnvTimeout, config.DefaultTimeout)
			fmt.Printf("  %s=info          debug, info, warn or error\n", config.EnvLogLevel)
			fmt.Printf("  %s=text         text or json\n", config.EnvLogFormat)
			fmt.Println()
			fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
			fmt.Println("Configure it in your MCP client (e.g., Claude Desktop).")
			return
		}
	}

	cfg, err := config.Load()
	if err != nil {
		// Logging to stderr (stdout is for MCP protocol)
		logrus.SetOutput(os.Stderr)
		logrus.Fatalf("Configuration error: %v", err)
	}

	logger := cfg.NewLogger()
	logger.WithFields(logrus.Fields{
		"version":  Version,
		"built":    BuildTime,
		"commit":   GitCommit,
		"base_url": cfg.BaseURL,
	}).Debug("pixel MCP server starting")

	client, err := api.New(api.Options{
		BaseURL:   cfg.BaseURL,
		CSRFToken: cfg.CSRFToken,
		SessionID: cfg.SessionID,
		Timeout:   cfg.Timeout,
		Logger:    logger,
	})
	if err != nil {
		logger.Fatalf("Configuration error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server.Version = Version
	srv := server.New(client, logger)
	if err := srv.Run(ctx); err != nil {
		logger.Fatalf("Server error: %v", err)
	}
}
