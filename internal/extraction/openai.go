package extraction

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/igestorphone/igestorphone-sub000/pkg/config"
	"github.com/igestorphone/igestorphone-sub000/prometheus"
)

const systemPrompt = `Você extrai listas de preços de fornecedores de celulares a partir de texto livre (mensagens de chat, com emojis e formatação inconsistente).
Responda somente com JSON no formato:
{"valid":bool,"errors":[],"warnings":[],"validated_products":[{"name","model","color","storage","condition","condition_detail","variant","notes","price","confidence"}]}
Regras:
- price é numérico em reais, sem símbolo de moeda.
- condition é o rótulo original da lista (LACRADO, SEMINOVO, SWAP, CPO, ...).
- Não invente valores: campos desconhecidos ficam vazios ou null.
- Um item por produto ofertado; ignore linhas de saudação, totais e propaganda.`

// OpenAIExtractor calls a chat-completion model to turn raw list text into
// candidates.
type OpenAIExtractor struct {
	client      *openai.Client
	model       string
	timeout     time.Duration
	maxAttempts int
	log         *zap.Logger
}

// NewOpenAIExtractor builds an extractor from configuration
func NewOpenAIExtractor(cfg *config.ExtractionConfig, log *zap.Logger) *OpenAIExtractor {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	return &OpenAIExtractor{
		client:      openai.NewClientWithConfig(clientConfig),
		model:       cfg.Model,
		timeout:     cfg.Timeout,
		maxAttempts: attempts,
		log:         log,
	}
}

// ExtractProducts sends the raw list to the model with the list-kind hint
// and parses the JSON answer. A timeout or malformed answer is returned as
// an error with no partial result; the caller decides whether to retry.
// Each attempt gets its own timeout, so a slow first call never starves a
// retry.
func (e *OpenAIExtractor) ExtractProducts(ctx context.Context, rawText, listKind string) (*Result, error) {
	userPrompt := fmt.Sprintf("Tipo de lista: %s\n\nLista:\n%s", listKind, rawText)

	var lastErr error
	for attempt := 1; attempt <= e.maxAttempts; attempt++ {
		start := time.Now()
		resp, err := e.attempt(ctx, userPrompt)
		if err != nil {
			prometheus.RecordExtraction("error", time.Since(start))
			lastErr = fmt.Errorf("extraction call failed: %w", err)
			e.log.Warn("Extraction attempt failed",
				zap.Int("attempt", attempt),
				zap.Error(err))
			if ctx.Err() != nil {
				break
			}
			continue
		}

		if len(resp.Choices) == 0 {
			prometheus.RecordExtraction("empty", time.Since(start))
			lastErr = fmt.Errorf("extraction returned no choices")
			continue
		}

		var result Result
		if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &result); err != nil {
			prometheus.RecordExtraction("malformed", time.Since(start))
			lastErr = fmt.Errorf("extraction returned malformed JSON: %w", err)
			e.log.Warn("Extraction returned malformed JSON",
				zap.Int("attempt", attempt),
				zap.Error(err))
			continue
		}

		prometheus.RecordExtraction("ok", time.Since(start))
		return Sanitize(&result), nil
	}

	return nil, lastErr
}

func (e *OpenAIExtractor) attempt(ctx context.Context, userPrompt string) (openai.ChatCompletionResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	return e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: e.model,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
	})
}
