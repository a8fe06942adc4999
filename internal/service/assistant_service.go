package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"finsight/internal/models"
	"finsight/pkg/config"

	"go.uber.org/zap"
)

// NoDataReply is returned when there is nothing to ground an answer on.
const NoDataReply = "I don't have any financial data for this period yet. Add a few transactions or budgets and ask me again."

// UpstreamError marks a completion backend failure. The orchestrator
// never retries; callers decide whether to surface it or degrade to the
// local answerer.
type UpstreamError struct {
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("assistant upstream failure: %v", e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// AssistantService turns a question plus a context payload into a
// reply. It holds no ledger state: the payload is the only data the
// completion backend ever sees.
type AssistantService struct {
	completer Completer
	timeout   time.Duration
	logger    *zap.Logger
}

func NewAssistantService(completer Completer, cfg *config.AssistantConfig, logger *zap.Logger) *AssistantService {
	return &AssistantService{
		completer: completer,
		timeout:   cfg.Timeout,
		logger:    logger,
	}
}

// Answer produces the reply for query. An empty payload short-circuits
// to an honest no-data reply without touching the backend. Backend
// failures come back as *UpstreamError with a zero reply.
func (s *AssistantService) Answer(ctx context.Context, query string, payload models.ContextPayload) (models.AssistantReply, error) {
	if payload.IsEmpty() {
		s.logger.Info("Empty context payload, skipping completion")
		return models.AssistantReply{
			Text:     NoDataReply,
			Grounded: false,
			Source:   models.ReplySourceLocal,
		}, nil
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	text, err := s.completer.Complete(ctx, renderPrompt(query, payload))
	if err != nil {
		s.logger.Error("Completion failed", zap.Error(err))
		return models.AssistantReply{}, &UpstreamError{Err: err}
	}

	return models.AssistantReply{
		Text:     strings.TrimSpace(text),
		Grounded: true,
		Source:   models.ReplySourceLLM,
	}, nil
}

// renderPrompt lays out the facts and the question for the backend.
func renderPrompt(query string, payload models.ContextPayload) string {
	return fmt.Sprintf(`Answer the question using only the financial facts below.

Financial facts:
%s
Question: %s

If the facts do not contain the answer, say so instead of guessing.`,
		payload.Render(), query)
}
