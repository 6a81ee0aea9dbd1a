package synthesis

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"docchat/internal/llm"
	"docchat/internal/rag/interfaces"
	"docchat/internal/rag/schema"
	"docchat/pkg/logger"
)

// State is the synthesizer's view of the language model's usability.
type State int

const (
	// StateNotConfigured means no language model was supplied; every answer
	// comes from the excerpt fallback.
	StateNotConfigured State = iota
	// StateAvailable means the language model is assumed usable.
	StateAvailable
	// StateQuotaExhausted means a quota or auth failure was observed; the
	// model is skipped until Reconfigure is called.
	StateQuotaExhausted
)

// AnswerKind tags how an answer was produced.
type AnswerKind string

const (
	// AnswerSynthesized marks prose generated by the language model.
	AnswerSynthesized AnswerKind = "synthesized"
	// AnswerExcerpt marks raw retrieved chunk text returned verbatim.
	AnswerExcerpt AnswerKind = "excerpt"
)

// Answer is the tagged result of a synthesis attempt. Kind tells callers and
// tests whether the model produced it or the fallback did.
type Answer struct {
	Text string
	Kind AnswerKind
}

// noRelevantContent is returned when retrieval produced nothing to ground on.
const noRelevantContent = "No relevant information found in the uploaded documents."

// Synthesizer turns a question and retrieved chunks into an answer. It
// prefers the language model; when the model is unconfigured, out of quota,
// or keeps failing, it degrades to returning the chunk excerpts. It never
// returns an error: the caller always gets some answer.
type Synthesizer struct {
	model      interfaces.LLM
	timeout    time.Duration
	maxRetries int
	log        *logger.Logger

	mu    sync.Mutex
	state State
}

// NewSynthesizer creates a Synthesizer. model may be nil, in which case the
// synthesizer starts in StateNotConfigured and only ever produces excerpts.
func NewSynthesizer(model interfaces.LLM, timeout time.Duration, maxRetries int, log *logger.Logger) *Synthesizer {
	s := &Synthesizer{
		model:      model,
		timeout:    timeout,
		maxRetries: maxRetries,
		log:        log,
		state:      StateNotConfigured,
	}
	if model != nil {
		s.state = StateAvailable
	}
	return s
}

// State reports the current model state.
func (s *Synthesizer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Reconfigure swaps the language model and resets the state machine. Passing
// nil moves the synthesizer to StateNotConfigured.
func (s *Synthesizer) Reconfigure(model interfaces.LLM) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.model = model
	if model == nil {
		s.state = StateNotConfigured
	} else {
		s.state = StateAvailable
	}
}

// Answer produces an answer for the question grounded in the retrieved
// chunks. The model path is only attempted in StateAvailable; any failure
// there degrades to the excerpt fallback for this call, and quota or auth
// failures also flip the state so later calls skip the model entirely.
func (s *Synthesizer) Answer(ctx context.Context, question string, docs []*schema.Document) *Answer {
	if len(docs) == 0 {
		return &Answer{Text: noRelevantContent, Kind: AnswerExcerpt}
	}

	s.mu.Lock()
	state := s.state
	model := s.model
	s.mu.Unlock()

	if state != StateAvailable {
		return s.fallback(docs)
	}

	text, err := s.generate(ctx, model, buildPrompt(question, docs))
	if err != nil {
		s.log.WithError(err).Warn("LLM synthesis failed, falling back to excerpts")
		return s.fallback(docs)
	}
	return &Answer{Text: text, Kind: AnswerSynthesized}
}

// generate calls the model with a per-attempt timeout, retrying transient
// failures up to maxRetries times. Quota and auth errors fail fast and
// disable the model for the rest of the session.
func (s *Synthesizer) generate(ctx context.Context, model interfaces.LLM, prompt string) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(time.Duration(attempt) * 500 * time.Millisecond):
			}
		}

		callCtx := ctx
		var cancel context.CancelFunc
		if s.timeout > 0 {
			callCtx, cancel = context.WithTimeout(ctx, s.timeout)
		}
		text, err := model.Generate(callCtx, prompt)
		if cancel != nil {
			cancel()
		}
		if err == nil {
			return text, nil
		}
		lastErr = err

		kind := llm.ClassifyError(err)
		if kind.Disabling() {
			s.mu.Lock()
			s.state = StateQuotaExhausted
			s.mu.Unlock()
			s.log.WithError(err).Warn(fmt.Sprintf("LLM disabled for this session (%s error)", kind))
			return "", err
		}
		if !kind.Retryable() {
			return "", err
		}
	}
	return "", lastErr
}

// fallback concatenates the retrieved chunk texts verbatim.
func (s *Synthesizer) fallback(docs []*schema.Document) *Answer {
	texts := make([]string, 0, len(docs))
	for _, doc := range docs {
		texts = append(texts, doc.Text)
	}
	text := "Based on the documents, here is the relevant information:\n\n" + strings.Join(texts, "\n\n")
	return &Answer{Text: text, Kind: AnswerExcerpt}
}

// buildPrompt constructs the grounding prompt from the question and the
// retrieved chunks. The model is told to answer only from the context.
func buildPrompt(question string, docs []*schema.Document) string {
	var sb strings.Builder

	sb.WriteString("Use the following pieces of context to answer the question at the end.\n")
	sb.WriteString("If you don't know the answer, just say that you don't know, don't try to make up an answer.\n")
	sb.WriteString("Always provide a clear and concise answer based on the context.\n\nContext:\n")

	for i, doc := range docs {
		sb.WriteString("---\n")
		sb.WriteString(fmt.Sprintf("Context %d:\n%s\n", i+1, doc.Text))
	}

	sb.WriteString("---\n\n")
	sb.WriteString(fmt.Sprintf("Question: %s\n\nAnswer:", question))

	return sb.String()
}
