// Package ragtest provides deterministic in-process fakes for the embedding
// and language-model collaborators, so pipelines and handlers can be tested
// without network access.
package ragtest

import (
	"context"
	"errors"
	"hash/fnv"
	"math"
	"strings"
	"sync"
)

// EmbedDim is the dimensionality of fake embeddings.
const EmbedDim = 64

// FakeEmbedder produces deterministic bag-of-words embeddings: texts that
// share words get similar vectors, so similarity ranking behaves sensibly.
type FakeEmbedder struct {
	mu    sync.Mutex
	Calls int
	// Err, when set, is returned by every call.
	Err error
}

// Embed returns the deterministic embedding for a single text.
func (f *FakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := f.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch returns deterministic embeddings for a batch of texts.
func (f *FakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	f.mu.Lock()
	f.Calls++
	err := f.Err
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}

	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = embedText(text)
	}
	return out, nil
}

func embedText(text string) []float32 {
	vec := make([]float32, EmbedDim)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, ".,!?;:\"'()")
		if word == "" {
			continue
		}
		h := fnv.New32a()
		h.Write([]byte(word))
		vec[h.Sum32()%EmbedDim]++
	}
	// L2 normalize so cosine similarity equals the dot product.
	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		inv := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= inv
		}
	}
	return vec
}

// FakeLLM is a scriptable language model.
type FakeLLM struct {
	mu sync.Mutex
	// Response is returned on success.
	Response string
	// Errs are returned in order before Response succeeds; once exhausted,
	// calls succeed. A nil entry means that call succeeds.
	Errs  []error
	Calls int
}

// Generate pops the next scripted error, or returns the scripted response.
func (f *FakeLLM) Generate(ctx context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls++
	if len(f.Errs) > 0 {
		err := f.Errs[0]
		f.Errs = f.Errs[1:]
		if err != nil {
			return "", err
		}
	}
	if f.Response == "" {
		return "fake answer", nil
	}
	return f.Response, nil
}

// CallCount returns how many times Generate ran.
func (f *FakeLLM) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Calls
}

// Common scripted errors for synthesizer tests.
var (
	ErrQuota     = errors.New("insufficient_quota: you exceeded your current quota")
	ErrAuth      = errors.New("401 unauthorized: invalid api key")
	ErrTransient = errors.New("request timeout, service temporarily unavailable")
)
