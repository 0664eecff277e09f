package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/bg-eraser-mcp/internal/config"
	"github.com/ironsheep/bg-eraser-mcp/internal/server"
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
			fmt.Printf("bg-eraser-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Println("bg-eraser-mcp - MCP server for interactive background removal")
			fmt.Println()
			fmt.Println("Usage: bg-eraser-mcp [options]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Environment variables (also read from ./.env):")
			fmt.Println("  BG_ERASER_LOG_LEVEL=debug             Log level (trace..panic, default info)")
			fmt.Println("  BG_ERASER_HISTORY_MAX_STATES=10       Undo snapshots kept")
			fmt.Println("  BG_ERASER_HISTORY_MAX_MEMORY_MB=2048  Undo memory budget")
			fmt.Println("  BG_ERASER_LARGE_IMAGE_PIXELS=8300000  Incremental rendering threshold")
			fmt.Println("  BG_ERASER_RENDER_MARGIN=100           Pixels rendered around the view")
			fmt.Println("  BG_ERASER_CANVAS_WIDTH=1400           Virtual canvas width")
			fmt.Println("  BG_ERASER_CANVAS_HEIGHT=900           Virtual canvas height")
			fmt.Println()
			fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
			fmt.Println("Configure it in your MCP client (e.g., Claude Desktop).")
			return
		}
	}

	// Configure logging to stderr (stdout is for MCP protocol)
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg := config.Load(logger)
	logger.SetLevel(cfg.LogLevel)
	logger.WithFields(logrus.Fields{
		"version": Version,
		"built":   BuildTime,
		"commit":  GitCommit,
	}).Debug("Background eraser MCP server starting")

	srv := server.New(server.Options{
		Config:  cfg,
		Logger:  logger,
		Version: Version,
	})
	if err := srv.Run(); err != nil {
		logger.WithError(err).Fatal("Server error")
	}
}
