package expense

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// LLMExtractor extracts expense fields with a chat-completion model. It
// implements the same contract as RegexExtractor and degrades to the
// fallback's result whenever the API call or its output is unusable, so
// extraction never fails regardless of the strategy in use.
type LLMExtractor struct {
	client   *openai.Client
	model    string
	timeout  time.Duration
	fallback Extractor
	logger   *zap.Logger
}

// NewLLMExtractor creates an LLM-backed extractor. fallback must not be nil;
// it supplies the result when the model is unavailable and the currency when
// the model omits one. timeout bounds each API call independently of the
// caller's deadline.
func NewLLMExtractor(apiKey, model string, timeout time.Duration, fallback Extractor, logger *zap.Logger) *LLMExtractor {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &LLMExtractor{
		client:   openai.NewClient(apiKey),
		model:    model,
		timeout:  timeout,
		fallback: fallback,
		logger:   logger,
	}
}

type llmExtraction struct {
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
	Description string `json:"description"`
}

// Extract asks the model for amount, currency and description in JSON mode.
func (e *LLMExtractor) Extract(ctx context.Context, line string) ParsedAmount {
	heuristic := e.fallback.Extract(ctx, line)

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	prompt := fmt.Sprintf(`Extract the expense from this chat message line:

%s

Return JSON with this structure:
{
  "amount": "numeric amount without thousands separators, empty string if none",
  "currency": "3-letter ISO currency code, empty string if not stated",
  "description": "short human-readable description of the expense"
}`, line)

	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       e.model,
		Temperature: 0.1,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You extract structured expense data from short chat messages. Extract only what is stated.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		e.logger.Warn("LLM extraction failed, using regex result",
			zap.Error(err))
		return heuristic
	}
	if len(resp.Choices) == 0 {
		return heuristic
	}

	var out llmExtraction
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &out); err != nil {
		e.logger.Warn("LLM extraction returned unparseable JSON, using regex result",
			zap.Error(err))
		return heuristic
	}

	parsed := ParsedAmount{
		Amount:      strings.ReplaceAll(strings.TrimSpace(out.Amount), ",", ""),
		Currency:    strings.ToUpper(strings.TrimSpace(out.Currency)),
		Description: strings.TrimSpace(out.Description),
	}
	if parsed.Currency == "" {
		parsed.Currency = heuristic.Currency
	}
	if parsed.Description == "" {
		parsed.Description = heuristic.Description
	}
	return parsed
}
