package mcp

import (
	"context"
	"fmt"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lexvoice/lexvoice/internal/legalqa"
	"github.com/lexvoice/lexvoice/internal/stt"
	"github.com/lexvoice/lexvoice/internal/tts"
)

type Config struct {
	ServerName    string
	ServerVersion string
	ModelPath     string
	BackendURL    string
	APIKey        string
	Jurisdiction  string
	Domain        string
}

type Server struct {
	config    Config
	mcpServer *sdk.Server
	sttEngine stt.Engine
	ttsEngine tts.Engine
	client    *legalqa.Client
}

func NewServer(cfg Config) (*Server, error) {
	s := &Server{
		config: cfg,
	}

	// Initialize STT engine
	s.sttEngine = stt.NewVoskEngine()
	sttConfig := stt.DefaultConfig(cfg.ModelPath)
	if err := s.sttEngine.Initialize(sttConfig); err != nil {
		return nil, fmt.Errorf("failed to initialize STT engine: %w", err)
	}

	// TTS engine for voice listing
	s.ttsEngine = tts.NewPiperEngine()
	if err := s.ttsEngine.Initialize(tts.DefaultConfig("")); err != nil {
		s.sttEngine.Close()
		return nil, fmt.Errorf("failed to initialize TTS engine: %w", err)
	}

	// Backend client
	var opts []legalqa.Option
	if cfg.APIKey != "" {
		opts = append(opts, legalqa.WithAPIKey(cfg.APIKey))
	}
	client, err := legalqa.NewClient(cfg.BackendURL, opts...)
	if err != nil {
		s.sttEngine.Close()
		s.ttsEngine.Close()
		return nil, fmt.Errorf("failed to create backend client: %w", err)
	}
	s.client = client

	// Create MCP server
	s.mcpServer = sdk.NewServer(&sdk.Implementation{
		Name:    cfg.ServerName,
		Version: cfg.ServerVersion,
	}, nil)

	// Register tools
	s.registerTools()

	return s, nil
}

func (s *Server) Start() error {
	return s.mcpServer.Run(context.Background(), &sdk.StdioTransport{})
}

func (s *Server) Stop() error {
	if s.sttEngine != nil {
		s.sttEngine.Close()
	}
	if s.ttsEngine != nil {
		s.ttsEngine.Close()
	}
	return nil
}

func (s *Server) registerTools() {
	sdk.AddTool(s.mcpServer, &sdk.Tool{
		Name:        "ask_legal_question",
		Description: "Ask the legal Q&A backend a question and get an answer with sources and follow-up suggestions",
	}, s.handleAskLegalQuestion)

	sdk.AddTool(s.mcpServer, &sdk.Tool{
		Name:        "transcribe_audio",
		Description: "Transcribe base64-encoded audio (16kHz mono 16-bit PCM) to text",
	}, s.handleTranscribeAudio)

	sdk.AddTool(s.mcpServer, &sdk.Tool{
		Name:        "list_voices",
		Description: "List available speech synthesis voices",
	}, s.handleListVoices)
}
