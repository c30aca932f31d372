package core

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const (
	defaultChatModel      = openai.GPT4oMini
	defaultEmbeddingModel = openai.SmallEmbedding3

	// Provider batch limit for embedding requests.
	embeddingBatchSize = 64
)

// Embedder is the narrow contract the corpus manager needs from the
// embedding provider: one vector per input, same order, all-or-nothing.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// ChatCompleter produces one assistant turn, which may be a tool-call
// request rather than final text.
type ChatCompleter interface {
	ChatCompletion(ctx context.Context, messages []openai.ChatCompletionMessage, tools []openai.Tool) (openai.ChatCompletionMessage, openai.FinishReason, error)
}

// LLMService is the OpenAI-backed implementation of Embedder and
// ChatCompleter. One client per process, constructed in main and passed in.
type LLMService struct {
	client *openai.Client
	logger *zap.Logger
}

func NewLLMService(apiKey string, logger *zap.Logger) *LLMService {
	return &LLMService{
		client: openai.NewClient(apiKey),
		logger: logger,
	}
}

// EmbedTexts embeds texts in provider-sized batches. A failure on any batch
// fails the whole call; callers treat that as a hard error and keep
// whatever snapshot they already have.
func (s *LLMService) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	embeddings := make([][]float32, 0, len(texts))
	for i := 0; i < len(texts); i += embeddingBatchSize {
		end := i + embeddingBatchSize
		if end > len(texts) {
			end = len(texts)
		}

		resp, err := s.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Model: defaultEmbeddingModel,
			Input: texts[i:end],
		})
		if err != nil {
			return nil, fmt.Errorf("embedding request failed: %w", err)
		}
		if len(resp.Data) != end-i {
			return nil, fmt.Errorf("embedding count mismatch: got %d, want %d", len(resp.Data), end-i)
		}
		for _, d := range resp.Data {
			embeddings = append(embeddings, d.Embedding)
		}
	}
	return embeddings, nil
}

func (s *LLMService) ChatCompletion(ctx context.Context, messages []openai.ChatCompletionMessage, tools []openai.Tool) (openai.ChatCompletionMessage, openai.FinishReason, error) {
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    defaultChatModel,
		Messages: messages,
		Tools:    tools,
	})
	if err != nil {
		return openai.ChatCompletionMessage{}, "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		s.logger.Warn("chat completion returned no choices")
		return openai.ChatCompletionMessage{}, "", fmt.Errorf("chat completion returned no choices")
	}

	choice := resp.Choices[0]
	return choice.Message, choice.FinishReason, nil
}
