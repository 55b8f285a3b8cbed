package mcp

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lexvoice/lexvoice/internal/convo"
	"github.com/lexvoice/lexvoice/internal/legalqa"
)

type AskArgs struct {
	Question     string `json:"question" jsonschema:"required,description=The legal question to ask"`
	SessionID    string `json:"session_id,omitempty" jsonschema:"description=Session identifier for multi-turn conversations"`
	Jurisdiction string `json:"jurisdiction,omitempty" jsonschema:"description=Jurisdiction override (default from server config)"`
}

type TranscribeArgs struct {
	Audio string `json:"audio" jsonschema:"required,description=Base64-encoded audio data (16kHz mono 16-bit PCM)"`
}

type ListVoicesArgs struct{}

func (s *Server) handleAskLegalQuestion(ctx context.Context, req *sdk.CallToolRequest, args AskArgs) (*sdk.CallToolResult, any, error) {
	if strings.TrimSpace(args.Question) == "" {
		return nil, nil, fmt.Errorf("question must not be empty")
	}

	jurisdiction := args.Jurisdiction
	if jurisdiction == "" {
		jurisdiction = s.config.Jurisdiction
	}

	resp, err := s.client.Ask(ctx, legalqa.AskRequest{
		Question:     args.Question,
		SessionID:    args.SessionID,
		Jurisdiction: jurisdiction,
		Domain:       s.config.Domain,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("backend query failed: %w", err)
	}

	content := []sdk.Content{
		&sdk.TextContent{Text: resp.Answer},
		&sdk.TextContent{Text: fmt.Sprintf("Confidence: %.2f", resp.Confidence)},
	}
	if len(resp.Sources) > 0 {
		content = append(content, &sdk.TextContent{Text: "Sources: " + strings.Join(resp.Sources, ", ")})
	}

	suggestions := convo.SuggestFollowUps(args.Question + " " + resp.Answer)
	content = append(content, &sdk.TextContent{Text: "Follow-ups: " + strings.Join(suggestions, " | ")})

	return &sdk.CallToolResult{Content: content}, nil, nil
}

func (s *Server) handleTranscribeAudio(ctx context.Context, req *sdk.CallToolRequest, args TranscribeArgs) (*sdk.CallToolResult, any, error) {
	// Decode base64 audio
	audioData, err := base64.StdEncoding.DecodeString(args.Audio)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid base64 audio: %w", err)
	}

	// Process audio through STT engine
	_, err = s.sttEngine.ProcessAudio(ctx, audioData)
	if err != nil {
		return nil, nil, fmt.Errorf("transcription failed: %w", err)
	}

	// Get final result
	finalResult, err := s.sttEngine.FinalResult()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get final result: %w", err)
	}
	s.sttEngine.Reset()

	return &sdk.CallToolResult{
		Content: []sdk.Content{
			&sdk.TextContent{Text: finalResult.Text},
			&sdk.TextContent{Text: fmt.Sprintf("Confidence: %.2f", finalResult.Confidence)},
		},
	}, nil, nil
}

func (s *Server) handleListVoices(ctx context.Context, req *sdk.CallToolRequest, args ListVoicesArgs) (*sdk.CallToolResult, any, error) {
	voices := s.ttsEngine.ListVoices()

	content := []sdk.Content{
		&sdk.TextContent{Text: fmt.Sprintf("Available voices (%d):", len(voices))},
	}
	for _, v := range voices {
		content = append(content, &sdk.TextContent{
			Text: fmt.Sprintf("- %s (%s, %s)", v.Name, v.Language, v.Gender),
		})
	}

	return &sdk.CallToolResult{Content: content}, nil, nil
}
