package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"chatrelay/internal/config"
	"chatrelay/internal/entities"
	"chatrelay/internal/interfaces"

	openai "github.com/sashabaranov/go-openai"
)

// ErrEmptyCompletion is returned when the provider answers without any content.
var ErrEmptyCompletion = errors.New("completion provider returned no content")

// AzureOpenAIClient calls a chat completions deployment on Azure OpenAI.
type AzureOpenAIClient struct {
	client      *openai.Client
	deployment  string
	temperature float32
	maxTokens   int
	timeout     time.Duration
}

func NewAzureOpenAIClient(cfg config.AzureConfig) *AzureOpenAIClient {
	oc := openai.DefaultAzureConfig(cfg.APIKey, cfg.Endpoint)
	oc.APIVersion = cfg.APIVersion
	deployment := cfg.Deployment
	oc.AzureModelMapperFunc = func(string) string { return deployment }
	oc.HTTPClient = BuildHTTPClient(cfg.Timeout)

	temperature := float32(config.DefaultTemperature)
	if cfg.Temperature != nil {
		temperature = *cfg.Temperature
	}
	// go-openai drops a zero temperature from the request (omitempty).
	if temperature == 0 {
		temperature = math.SmallestNonzeroFloat32
	}

	return &AzureOpenAIClient{
		client:      openai.NewClientWithConfig(oc),
		deployment:  cfg.Deployment,
		temperature: temperature,
		maxTokens:   cfg.MaxTokens,
		timeout:     cfg.Timeout,
	}
}

// Complete sends the full ordered history and returns the first choice.
// Any transport error, provider error, timeout or empty answer is a failure.
func (c *AzureOpenAIClient) Complete(ctx context.Context, history []entities.Turn) interfaces.CompletionResult {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.deployment,
		Messages:    toChatMessages(history),
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		return interfaces.CompletionResult{
			Err:  fmt.Errorf("chat completion: %w", err),
			Kind: ClassifyError(err, openAIStatus(err)),
		}
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return interfaces.CompletionResult{Err: ErrEmptyCompletion, Kind: "empty_response"}
	}
	return interfaces.CompletionResult{Content: resp.Choices[0].Message.Content}
}

func toChatMessages(history []entities.Turn) []openai.ChatCompletionMessage {
	msgs := make([]openai.ChatCompletionMessage, 0, len(history))
	for _, t := range history {
		var role string
		switch t.Role {
		case entities.RoleSystem:
			role = openai.ChatMessageRoleSystem
		case entities.RoleAssistant:
			role = openai.ChatMessageRoleAssistant
		case entities.RoleUser:
			role = openai.ChatMessageRoleUser
		default:
			continue
		}
		msgs = append(msgs, openai.ChatCompletionMessage{Role: role, Content: t.Content})
	}
	return msgs
}

func openAIStatus(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}
