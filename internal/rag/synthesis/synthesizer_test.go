package synthesis

import (
	"context"
	"strings"
	"testing"
	"time"

	"docchat/internal/rag/interfaces"
	"docchat/internal/rag/ragtest"
	"docchat/internal/rag/schema"
	"docchat/pkg/logger"

	"github.com/stretchr/testify/require"
)

func testDocs() []*schema.Document {
	return []*schema.Document{
		{ID: "a", Text: "The capital of France is Paris."},
		{ID: "b", Text: "Paris sits on the Seine."},
	}
}

func newTestSynthesizer(model interfaces.LLM, retries int) *Synthesizer {
	return NewSynthesizer(model, time.Second, retries, logger.New("test"))
}

func TestSynthesizedAnswer(t *testing.T) {
	model := &ragtest.FakeLLM{Response: "Paris is the capital of France."}
	s := newTestSynthesizer(model, 0)

	answer := s.Answer(context.Background(), "What is the capital of France?", testDocs())
	require.Equal(t, AnswerSynthesized, answer.Kind)
	require.Equal(t, "Paris is the capital of France.", answer.Text)
	require.Equal(t, StateAvailable, s.State())
}

func TestNotConfiguredFallsBackToExcerpts(t *testing.T) {
	s := newTestSynthesizer(nil, 0)
	require.Equal(t, StateNotConfigured, s.State())

	answer := s.Answer(context.Background(), "question", testDocs())
	require.Equal(t, AnswerExcerpt, answer.Kind)
	require.Contains(t, answer.Text, "The capital of France is Paris.")
	require.Contains(t, answer.Text, "Paris sits on the Seine.")
}

func TestEmptyRetrievalGetsExplicitAnswer(t *testing.T) {
	model := &ragtest.FakeLLM{Response: "should not be called"}
	s := newTestSynthesizer(model, 0)

	answer := s.Answer(context.Background(), "question", nil)
	require.Equal(t, AnswerExcerpt, answer.Kind)
	require.Contains(t, answer.Text, "No relevant information found")
	require.Zero(t, model.CallCount())
}

func TestQuotaErrorDisablesModelForSession(t *testing.T) {
	model := &ragtest.FakeLLM{Errs: []error{ragtest.ErrQuota}}
	s := newTestSynthesizer(model, 3)

	answer := s.Answer(context.Background(), "question", testDocs())
	require.Equal(t, AnswerExcerpt, answer.Kind)
	require.Equal(t, StateQuotaExhausted, s.State())
	require.Equal(t, 1, model.CallCount(), "quota errors must not be retried")

	// Later calls skip the model entirely.
	_ = s.Answer(context.Background(), "another question", testDocs())
	require.Equal(t, 1, model.CallCount())
}

func TestAuthErrorDisablesModelForSession(t *testing.T) {
	model := &ragtest.FakeLLM{Errs: []error{ragtest.ErrAuth}}
	s := newTestSynthesizer(model, 3)

	answer := s.Answer(context.Background(), "question", testDocs())
	require.Equal(t, AnswerExcerpt, answer.Kind)
	require.Equal(t, StateQuotaExhausted, s.State())
	require.Equal(t, 1, model.CallCount())
}

func TestTransientErrorsAreRetried(t *testing.T) {
	model := &ragtest.FakeLLM{
		Response: "answer after retry",
		Errs:     []error{ragtest.ErrTransient, ragtest.ErrTransient},
	}
	s := newTestSynthesizer(model, 2)

	answer := s.Answer(context.Background(), "question", testDocs())
	require.Equal(t, AnswerSynthesized, answer.Kind)
	require.Equal(t, "answer after retry", answer.Text)
	require.Equal(t, 3, model.CallCount())
	require.Equal(t, StateAvailable, s.State())
}

func TestTransientErrorsExhaustRetriesThenFallBack(t *testing.T) {
	model := &ragtest.FakeLLM{
		Errs: []error{ragtest.ErrTransient, ragtest.ErrTransient, ragtest.ErrTransient},
	}
	s := newTestSynthesizer(model, 2)

	answer := s.Answer(context.Background(), "question", testDocs())
	require.Equal(t, AnswerExcerpt, answer.Kind)
	require.Equal(t, 3, model.CallCount())
	// Transient exhaustion does not disable the model for later calls.
	require.Equal(t, StateAvailable, s.State())
}

func TestReconfigureRestoresModel(t *testing.T) {
	model := &ragtest.FakeLLM{Errs: []error{ragtest.ErrQuota}}
	s := newTestSynthesizer(model, 0)

	_ = s.Answer(context.Background(), "question", testDocs())
	require.Equal(t, StateQuotaExhausted, s.State())

	fresh := &ragtest.FakeLLM{Response: "back online"}
	s.Reconfigure(fresh)
	require.Equal(t, StateAvailable, s.State())

	answer := s.Answer(context.Background(), "question", testDocs())
	require.Equal(t, AnswerSynthesized, answer.Kind)
	require.Equal(t, "back online", answer.Text)
}

func TestPromptGroundsOnRetrievedChunksOnly(t *testing.T) {
	prompt := buildPrompt("What is the capital of France?", testDocs())
	require.Contains(t, prompt, "The capital of France is Paris.")
	require.Contains(t, prompt, "What is the capital of France?")
	require.True(t, strings.Contains(prompt, "don't know"),
		"prompt must instruct the model not to invent answers")
}
