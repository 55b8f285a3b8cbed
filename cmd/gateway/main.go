package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/lexvoice/lexvoice/internal/config"
	"github.com/lexvoice/lexvoice/internal/legalqa"
	"github.com/lexvoice/lexvoice/internal/server/gateway"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
	GitBranch = "unknown"
)

var (
	configFile  = flag.String("config", "", "Path to configuration file (default: ~/.lexvoicerc or /etc/lexvoice/config.yaml)")
	host        = flag.String("host", "", "Host to bind (default from config)")
	port        = flag.Int("port", 0, "Port to bind (default from config)")
	backendURL  = flag.String("backend", "", "Legal Q&A backend base URL")
	apiKey      = flag.String("api-key", "", "Backend API key (bearer token)")
	origins     = flag.String("origins", "", "Comma-separated list of allowed WebSocket origins (empty = allow all)")
	showVersion = flag.Bool("version", false, "Show version information")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("LexVoice Gateway v%s\n", Version)
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

	if *host == "" {
		*host = cfg.Gateway.Host
	}
	if *port == 0 {
		*port = cfg.Gateway.Port
	}
	if *backendURL == "" {
		*backendURL = cfg.Backend.BaseURL
	}
	if *apiKey == "" {
		*apiKey = cfg.Backend.APIKey
	}

	allowedOrigins := cfg.Gateway.AllowedOrigins
	if *origins != "" {
		allowedOrigins = strings.Split(*origins, ",")
	}

	var opts []legalqa.Option
	if *apiKey != "" {
		opts = append(opts, legalqa.WithAPIKey(*apiKey))
	}
	client, err := legalqa.NewClient(*backendURL, opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating backend client: %v\n", err)
		os.Exit(1)
	}

	handler := gateway.NewWSHandler(client, cfg.Backend.Jurisdiction, cfg.Backend.Domain, allowedOrigins)

	mux := http.NewServeMux()
	mux.Handle("/ws", handler)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})

	addr := fmt.Sprintf("%s:%d", *host, *port)
	fmt.Printf("LexVoice Gateway v%s listening on %s\n", Version, addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}
