package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/julianfleck/fragment-editor-api/pkg/token"
)

type AnthropicClient struct {
	client    *anthropic.Client
	model     anthropic.Model
	modelName string
	counter   token.Counter
}

func NewAnthropicClient(apiKey string, counter token.Counter) *AnthropicClient {
	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &AnthropicClient{
		client:    &client,
		model:     anthropic.Model("claude-haiku-4-5"),
		modelName: "claude-4.5-haiku",
		counter:   counter,
	}
}

func (c *AnthropicClient) ModelName() string {
	return c.modelName
}

func (c *AnthropicClient) Generate(ctx context.Context, input GenerateInput) (*GenerateOutput, error) {
	resp, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: maxCompletionTokens(input.TargetTokens),
		System: []anthropic.TextBlockParam{
			{Text: systemPromptFor(input.Operation)},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(buildUserMessage(input))),
		},
	})

	if err != nil {
		var apierr *anthropic.Error
		if errors.As(err, &apierr) {
			return nil, &Error{
				Code:      "api_error",
				Message:   fmt.Sprintf("anthropic API returned status %d", apierr.StatusCode),
				Transient: transientStatus(apierr.StatusCode),
				Err:       err,
			}
		}
		return nil, &Error{
			Code:      "api_error",
			Message:   "anthropic API request failed",
			Transient: true,
			Err:       err,
		}
	}

	if len(resp.Content) == 0 {
		return nil, &Error{
			Code:    "empty_response",
			Message: "no response from anthropic",
		}
	}

	text, err := parseGeneratedText(resp.Content[0].Text)
	if err != nil {
		return nil, err
	}

	return &GenerateOutput{
		Text:   text,
		Tokens: c.counter.Count(text),
	}, nil
}
