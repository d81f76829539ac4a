package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ironsheep/face-detect-mcp/internal/config"
	"github.com/ironsheep/face-detect-mcp/internal/detection"
	"github.com/ironsheep/face-detect-mcp/internal/intake"
	"github.com/ironsheep/face-detect-mcp/internal/logging"
	"github.com/ironsheep/face-detect-mcp/internal/overlay"
	"github.com/ironsheep/face-detect-mcp/internal/server"
	"github.com/ironsheep/face-detect-mcp/internal/view"
	"github.com/sirupsen/logrus"
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
			fmt.Printf("face-detect-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Println("face-detect-mcp - MCP server for face detection")
			fmt.Println()
			fmt.Println("Usage: face-detect-mcp [options]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Environment variables:")
			fmt.Println("  FACE_MCP_LOG_LEVEL=info           debug, info, warn or error")
			fmt.Println("  FACE_MCP_DETECTOR=skin            skin, stub, haar or dlib")
			fmt.Println("  FACE_MCP_MODEL_PATH=              cascade file (haar) or model directory (dlib)")
			fmt.Println("  FACE_MCP_VIEWPORT=640x480         display viewport, WIDTHxHEIGHT")
			fmt.Println("  FACE_MCP_MAX_UPLOAD_BYTES=5242880 largest accepted upload")
			fmt.Println("  FACE_MCP_DETECT_TIMEOUT=30s       per-image detection limit, 0 disables")
			fmt.Println("  FACE_MCP_BOX_COLOR=               single box colour, #RRGGBB[AA]")
			fmt.Println("  FACE_MCP_STUB_FACES=0             faces reported by the stub backend")
			fmt.Println()
			fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
			fmt.Println("Configure it in your MCP client (e.g., Claude Desktop).")
			return
		}
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(2)
	}

	// Stdout is for the MCP protocol
	log := logging.New(cfg.LogLevel)
	log.WithFields(logrus.Fields{
		"version":  Version,
		"built":    BuildTime,
		"commit":   GitCommit,
		"detector": cfg.Detector,
	}).Debug("Face Detect MCP Server starting")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.WithError(err).Fatal("Server error")
	}
}

func run(ctx context.Context, cfg *config.Config, log *logrus.Logger) error {
	detector, err := detection.New(cfg.Detector, detection.Options{
		ModelPath: cfg.ModelPath,
		StubFaces: cfg.StubFaces,
	})
	if err != nil {
		return err
	}

	style := overlay.DefaultStyle
	if cfg.BoxColor != "" {
		c, err := overlay.ParseColor(cfg.BoxColor)
		if err != nil {
			return err
		}
		style.Color = &c
	}

	orchestrator := detection.NewOrchestrator(detector, cfg.DetectTimeout, log)
	machine := view.New(view.Options{
		Intake:       intake.New(cfg.MaxUploadBytes, log),
		Orchestrator: orchestrator,
		Layout:       view.Layout{MaxWidth: cfg.ViewportWidth, MaxHeight: cfg.ViewportHeight},
		Renderer:     overlay.NewRenderer(style),
		Log:          log,
	})
	defer machine.Close()

	// Model loading can be slow; uploads made before it finishes report no
	// faces with a detection error.
	go func() {
		_ = orchestrator.LoadModel(ctx)
	}()

	return server.New(machine, Version, log).Run(ctx)
}
