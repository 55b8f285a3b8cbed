package grpc

import (
	"fmt"
	"net"

	"google.golang.org/grpc"

	"github.com/lexvoice/lexvoice/internal/legalqa"
	"github.com/lexvoice/lexvoice/internal/stt"
)

// Server wraps the gRPC server and services
type Server struct {
	grpcServer *grpc.Server
	sttEngine  stt.Engine
	port       int
}

// Config holds server configuration
type Config struct {
	Port         int
	ModelPath    string
	BackendURL   string
	APIKey       string
	Jurisdiction string
	Domain       string
}

// NewServer creates a new gRPC server
func NewServer(cfg Config) (*Server, error) {
	// Initialize STT engine
	engine := stt.NewVoskEngine()
	sttCfg := stt.DefaultConfig(cfg.ModelPath)
	if err := engine.Initialize(sttCfg); err != nil {
		return nil, fmt.Errorf("failed to initialize STT engine: %w", err)
	}

	var opts []legalqa.Option
	if cfg.APIKey != "" {
		opts = append(opts, legalqa.WithAPIKey(cfg.APIKey))
	}
	client, err := legalqa.NewClient(cfg.BackendURL, opts...)
	if err != nil {
		engine.Close()
		return nil, fmt.Errorf("failed to create backend client: %w", err)
	}

	s := &Server{
		grpcServer: grpc.NewServer(),
		sttEngine:  engine,
		port:       cfg.Port,
	}

	// Register services
	transcribeService := NewTranscribeService(engine)
	RegisterTranscribeServer(s.grpcServer, transcribeService)

	assistService := NewAssistService(engine, client, cfg.Jurisdiction, cfg.Domain)
	RegisterAssistServer(s.grpcServer, assistService)

	return s, nil
}

// Start starts the gRPC server
func (s *Server) Start() error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", s.port))
	if err != nil {
		return fmt.Errorf("failed to listen on port %d: %w", s.port, err)
	}

	fmt.Printf("gRPC server listening on :%d\n", s.port)
	return s.grpcServer.Serve(lis)
}

// Stop gracefully stops the server
func (s *Server) Stop() {
	s.grpcServer.GracefulStop()
	s.sttEngine.Close()
}

// RegisterTranscribeServer is a placeholder until proto is generated
func RegisterTranscribeServer(s *grpc.Server, srv *TranscribeService) {
	// Will be replaced by generated code: lexpb.RegisterTranscribeServer(s, srv)
}

// RegisterAssistServer is a placeholder until proto is generated
func RegisterAssistServer(s *grpc.Server, srv *AssistService) {
	// Will be replaced by generated code: lexpb.RegisterAssistServer(s, srv)
}
