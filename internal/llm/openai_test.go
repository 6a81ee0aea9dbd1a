package llm

import (
	"testing"

	openai "github.com/meguminnnnnnnnn/go-openai"

	"github.com/stretchr/testify/require"
)

func TestNewOpenAIRequiresAPIKey(t *testing.T) {
	_, err := NewOpenAI("gpt-3.5-turbo", "", 0.3)
	require.Error(t, err)
}

func TestOpenAIBuildRequest(t *testing.T) {
	client, err := NewOpenAI("gpt-3.5-turbo", "sk-test", 0.3)
	require.NoError(t, err)

	req := client.buildRequest("What is the capital of France?")
	require.Equal(t, "gpt-3.5-turbo", req.Model)
	require.NotNil(t, req.Temperature)
	require.Equal(t, float32(0.3), *req.Temperature)
	require.Len(t, req.Messages, 1)
	require.Equal(t, openai.ChatMessageRoleUser, req.Messages[0].Role)
	require.Equal(t, "What is the capital of France?", req.Messages[0].Content)
}
