package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"finsight/internal/dto"
	"finsight/internal/ledger"
	"finsight/internal/models"
	"finsight/internal/repository"
	"finsight/pkg/config"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ChatService runs the question pipeline: snapshot, insights, context
// payload, completion, and the degraded local path when the backend is
// unavailable.
type ChatService struct {
	ledgers   *LedgerService
	assistant *AssistantService
	builder   *ContextBuilder
	local     *LocalAnswerer
	chatRepo  *repository.ChatRepository
	logger    *zap.Logger

	fallbackEnabled bool
	recentLimit     int
}

func NewChatService(
	ledgers *LedgerService,
	assistant *AssistantService,
	builder *ContextBuilder,
	local *LocalAnswerer,
	chatRepo *repository.ChatRepository,
	cfg *config.AssistantConfig,
	logger *zap.Logger,
) *ChatService {
	return &ChatService{
		ledgers:         ledgers,
		assistant:       assistant,
		builder:         builder,
		local:           local,
		chatRepo:        chatRepo,
		logger:          logger,
		fallbackEnabled: cfg.FallbackEnabled,
		recentLimit:     cfg.RecentFacts,
	}
}

// Chat answers one question against the user's current ledger state.
// When the request pins a ledger version and the ledger has moved on,
// the call fails with ErrStaleVersion instead of answering from data
// the client has not seen.
func (s *ChatService) Chat(ctx context.Context, userID uuid.UUID, req *dto.ChatRequest) (*dto.ChatResponse, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, &ledger.ValidationError{Field: "message", Reason: "must not be empty"}
	}

	store, err := s.ledgers.session(ctx, userID)
	if err != nil {
		return nil, err
	}
	view := store.View()

	if req.LedgerVersion != nil && *req.LedgerVersion != view.Version {
		return nil, ledger.ErrStaleVersion
	}

	now := time.Now().UTC()
	period := models.PeriodOf(now)
	if req.Period != "" {
		period, err = models.ParsePeriod(req.Period)
		if err != nil {
			return nil, &ledger.ValidationError{Field: "period", Reason: "expected YYYY-MM"}
		}
	}

	snap := s.ledgers.analytics.Snapshot(userID, view, period)

	var payload models.ContextPayload
	var reply models.AssistantReply

	if IsGreeting(message) {
		reply = models.AssistantReply{
			Text:     s.local.Greeting(snap),
			Grounded: !snap.IsEmpty(),
			Source:   models.ReplySourceLocal,
		}
	} else {
		previous := s.ledgers.analytics.Snapshot(userID, view, period.Previous())
		insights := s.ledgers.insights.Derive(snap, previous)
		payload = s.builder.Build(message, snap, insights, store.Recent(s.recentLimit))

		reply, err = s.assistant.Answer(ctx, message, payload)
		if err != nil {
			var upstream *UpstreamError
			if !errors.As(err, &upstream) || !s.fallbackEnabled {
				return nil, err
			}
			s.logger.Warn("Completion backend failed, answering locally", zap.Error(err))
			reply = models.AssistantReply{
				Text:     s.local.Answer(userID, view, period, message, now),
				Grounded: !payload.IsEmpty(),
				Source:   models.ReplySourceLocal,
			}
		}
	}

	s.saveExchange(ctx, userID, message, reply)

	return &dto.ChatResponse{
		Reply:            reply.Text,
		Grounded:         reply.Grounded,
		Source:           reply.Source,
		LedgerVersion:    view.Version,
		ContextFacts:     len(payload.Facts),
		ContextTruncated: payload.Truncated,
	}, nil
}

// History returns the user's recent exchanges, newest first.
func (s *ChatService) History(ctx context.Context, userID uuid.UUID, limit int) ([]models.ChatMessage, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.chatRepo.ListByUser(ctx, userID, limit)
}

// saveExchange records the exchange for history. Persistence here is
// best effort: the reply already happened.
func (s *ChatService) saveExchange(ctx context.Context, userID uuid.UUID, question string, reply models.AssistantReply) {
	msg := models.ChatMessage{
		ID:        uuid.New(),
		UserID:    userID,
		Question:  sanitizeUTF8(question),
		Answer:    sanitizeUTF8(reply.Text),
		Grounded:  reply.Grounded,
		Source:    reply.Source,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.chatRepo.Save(ctx, msg); err != nil {
		s.logger.Error("Failed to save chat message",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
	}
}
