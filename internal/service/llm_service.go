package service

import (
	"context"
	"fmt"
	"strings"

	"finsight/pkg/config"

	"github.com/Role1776/gigago"
	"go.uber.org/zap"
)

// Completer is the narrow boundary between the assistant and any
// completion backend. Tests substitute a deterministic stub for it.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// UnavailableCompleter always fails. It stands in when no completion
// backend is configured so the chat flow degrades to local answers.
type UnavailableCompleter struct{}

func (UnavailableCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	return "", fmt.Errorf("completion backend not configured")
}

// LLMService adapts the GigaChat API to the Completer interface.
type LLMService struct {
	client *gigago.Client
	model  *gigago.GenerativeModel
	logger *zap.Logger
}

// buildSystemInstruction pins the model to the grounded-answer contract:
// every figure in a reply must come from the facts in the prompt.
func buildSystemInstruction() string {
	return `You are a personal finance assistant. You answer questions using ONLY the financial facts supplied with each request.

RULES:
- Quote amounts exactly as they appear in the facts, including sign and decimals.
- Never invent transactions, amounts, categories or dates that are not in the facts.
- If the facts do not cover the question, say so plainly and name what is missing.
- When a category is over budget or close to its limit, mention it.
- Keep answers short and practical. Plain text only, no markdown.`
}

func NewLLMService(cfg *config.GigaChatConfig, logger *zap.Logger) (*LLMService, error) {
	ctx := context.Background()

	// Build client options
	opts := []gigago.Option{
		gigago.WithCustomScope(cfg.Scope),
	}

	// Add insecure skip verify option if configured
	if cfg.InsecureSkipVerify {
		opts = append(opts, gigago.WithCustomInsecureSkipVerify(true))
		logger.Warn("GigaChat TLS certificate verification is disabled")
	}

	client, err := gigago.NewClient(ctx, cfg.APIKey, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GigaChat client: %w", err)
	}

	model := client.GenerativeModel(cfg.Model)
	model.SystemInstruction = buildSystemInstruction()
	model.Temperature = 0.3

	logger.Info("GigaChat model ready", zap.String("model", cfg.Model))

	return &LLMService{
		client: client,
		model:  model,
		logger: logger,
	}, nil
}

// Complete sends a single prompt and returns the completion text.
func (s *LLMService) Complete(ctx context.Context, prompt string) (string, error) {
	messages := []gigago.Message{
		{Role: gigago.RoleUser, Content: prompt},
	}

	resp, err := s.model.Generate(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("failed to generate response: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from LLM")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("empty response from LLM")
	}

	s.logger.Debug("Completion received", zap.Int("length", len(content)))
	return sanitizeUTF8(content), nil
}

func (s *LLMService) Close() error {
	if s.client != nil {
		s.client.Close()
	}
	return nil
}
