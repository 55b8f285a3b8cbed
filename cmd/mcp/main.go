package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/lexvoice/lexvoice/internal/app"
	"github.com/lexvoice/lexvoice/internal/config"
	"github.com/lexvoice/lexvoice/internal/models"
	mcpserver "github.com/lexvoice/lexvoice/internal/server/mcp"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
	GitBranch = "unknown"
)

var (
	configFile  = flag.String("config", "", "Path to configuration file (default: ~/.lexvoicerc or /etc/lexvoice/config.yaml)")
	modelName   = flag.String("model", "", "Use a specific model (default: vosk-model-small-en-us-0.15)")
	backendURL  = flag.String("backend", "", "Legal Q&A backend base URL")
	apiKey      = flag.String("api-key", "", "Backend API key (bearer token)")
	showVersion = flag.Bool("version", false, "Show version information")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("LexVoice MCP v%s\n", Version)
		fmt.Printf("  Commit:  %s\n", GitCommit)
		fmt.Printf("  Branch:  %s\n", GitBranch)
		fmt.Printf("  Built:   %s\n", BuildTime)
		os.Exit(0)
	}

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

	mgr := app.NewModelManager()
	selectedModel, err := mgr.SelectModel(*modelName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error selecting model: %v\n", err)
		os.Exit(1)
	}

	modelPath, err := models.GetModelPath(selectedModel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error getting model path: %v\n", err)
		os.Exit(1)
	}

	server, err := mcpserver.NewServer(mcpserver.Config{
		ServerName:    "lexvoice",
		ServerVersion: Version,
		ModelPath:     modelPath,
		BackendURL:    *backendURL,
		APIKey:        *apiKey,
		Jurisdiction:  cfg.Backend.Jurisdiction,
		Domain:        cfg.Backend.Domain,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating MCP server: %v\n", err)
		os.Exit(1)
	}
	defer server.Stop()

	if err := server.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "MCP server error: %v\n", err)
		os.Exit(1)
	}
}
