package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"finsight/internal/models"
	"finsight/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubCompleter is a deterministic Completer for tests.
type stubCompleter struct {
	reply      string
	err        error
	calls      int
	lastPrompt string
	block      bool
}

func (s *stubCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	s.calls++
	s.lastPrompt = prompt
	if s.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return s.reply, s.err
}

func newTestAssistant(c Completer, timeout time.Duration) *AssistantService {
	return NewAssistantService(c, &config.AssistantConfig{Timeout: timeout}, zap.NewNop())
}

func groundedPayload() models.ContextPayload {
	return models.ContextPayload{
		Facts: []models.Fact{
			{Category: "groceries", Metric: "month to date", Value: "520.00 spent of 500.00 budget, -20.00 remaining"},
		},
		Tokens: 16,
	}
}

func TestAssistantService_Answer(t *testing.T) {
	stub := &stubCompleter{reply: "You spent 520.00 on groceries, 20.00 over budget."}
	svc := newTestAssistant(stub, 0)

	reply, err := svc.Answer(context.Background(), "how are my groceries?", groundedPayload())
	require.NoError(t, err)

	assert.True(t, reply.Grounded)
	assert.Equal(t, models.ReplySourceLLM, reply.Source)
	assert.Equal(t, "You spent 520.00 on groceries, 20.00 over budget.", reply.Text)
	assert.Equal(t, 1, stub.calls)

	// The prompt carries both the facts and the question verbatim.
	assert.Contains(t, stub.lastPrompt, "520.00 spent of 500.00 budget")
	assert.Contains(t, stub.lastPrompt, "how are my groceries?")
}

func TestAssistantService_EmptyPayloadSkipsBackend(t *testing.T) {
	stub := &stubCompleter{reply: "should never be used"}
	svc := newTestAssistant(stub, 0)

	reply, err := svc.Answer(context.Background(), "what did I spend?", models.ContextPayload{})
	require.NoError(t, err)

	assert.Equal(t, 0, stub.calls)
	assert.False(t, reply.Grounded)
	assert.Equal(t, models.ReplySourceLocal, reply.Source)
	assert.Equal(t, NoDataReply, reply.Text)
}

func TestAssistantService_UpstreamErrorNoRetry(t *testing.T) {
	stub := &stubCompleter{err: errors.New("backend down")}
	svc := newTestAssistant(stub, 0)

	reply, err := svc.Answer(context.Background(), "summary", groundedPayload())
	require.Error(t, err)

	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, "backend down", upstream.Err.Error())
	assert.Equal(t, models.AssistantReply{}, reply)
	assert.Equal(t, 1, stub.calls, "a failed completion must not be retried")
}

func TestAssistantService_Timeout(t *testing.T) {
	stub := &stubCompleter{block: true}
	svc := newTestAssistant(stub, 20*time.Millisecond)

	start := time.Now()
	_, err := svc.Answer(context.Background(), "slow question", groundedPayload())
	require.Error(t, err)

	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestAssistantService_CallerCancellation(t *testing.T) {
	stub := &stubCompleter{block: true}
	svc := newTestAssistant(stub, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := svc.Answer(ctx, "cancelled question", groundedPayload())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAssistantService_TrimsReply(t *testing.T) {
	stub := &stubCompleter{reply: "\n  trimmed answer \t\n"}
	svc := newTestAssistant(stub, 0)

	reply, err := svc.Answer(context.Background(), "q", groundedPayload())
	require.NoError(t, err)
	assert.Equal(t, "trimmed answer", reply.Text)
}
