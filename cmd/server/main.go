package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/lexvoice/lexvoice/internal/app"
	"github.com/lexvoice/lexvoice/internal/config"
	"github.com/lexvoice/lexvoice/internal/models"
	grpcserver "github.com/lexvoice/lexvoice/internal/server/grpc"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
	GitBranch = "unknown"
)

var (
	configFile  = flag.String("config", "", "Path to configuration file (default: ~/.lexvoicerc or /etc/lexvoice/config.yaml)")
	port        = flag.Int("port", 50051, "gRPC server port")
	modelName   = flag.String("model", "", "STT model name (default: vosk-model-small-en-us-0.15)")
	backendURL  = flag.String("backend", "", "Legal Q&A backend base URL")
	apiKey      = flag.String("api-key", "", "Backend API key (bearer token)")
	showVersion = flag.Bool("version", false, "Show version information")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("LexVoice gRPC Server v%s\n", Version)
		fmt.Printf("  Commit:  %s\n", GitCommit)
		fmt.Printf("  Branch:  %s\n", GitBranch)
		fmt.Printf("  Built:   %s\n", BuildTime)
		os.Exit(0)
	}

	fmt.Printf("LexVoice gRPC Server v%s (commit: %s)\n", Version, GitCommit)

	cfg, err := config.LoadWithFallback(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to load config: %v\n", err)
		cfg = config.DefaultConfig()
	}
	if *backendURL == "" {
		*backendURL = cfg.Backend.BaseURL
	}
	if *apiKey == "" {
		*apiKey = cfg.Backend.APIKey
	}

	// Resolve model
	mgr := app.NewModelManager()
	selectedModel, err := mgr.SelectModel(*modelName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error selecting model: %v\n", err)
		os.Exit(1)
	}

	selectedModel, err = mgr.EnsureModel(selectedModel, false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Get model path
	modelPath, err := models.GetModelPath(selectedModel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error getting model path: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Using model: %s\n", selectedModel)

	// Create and start server
	serverCfg := grpcserver.Config{
		Port:         *port,
		ModelPath:    modelPath,
		BackendURL:   *backendURL,
		APIKey:       *apiKey,
		Jurisdiction: cfg.Backend.Jurisdiction,
		Domain:       cfg.Backend.Domain,
	}

	server, err := grpcserver.NewServer(serverCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating server: %v\n", err)
		os.Exit(1)
	}

	// Handle shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")
		server.Stop()
		os.Exit(0)
	}()

	// Start server
	if err := server.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}
