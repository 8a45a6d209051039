package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/julianfleck/fragment-editor-api/pkg/token"
)

type OpenAIClient struct {
	client    *openai.Client
	model     openai.ChatModel
	modelName string
	counter   token.Counter
}

func NewOpenAIClient(apiKey string, counter token.Counter) *OpenAIClient {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIClient{
		client:    &client,
		model:     openai.ChatModelGPT4oMini,
		modelName: "gpt-4o-mini",
		counter:   counter,
	}
}

func (c *OpenAIClient) ModelName() string {
	return c.modelName
}

func (c *OpenAIClient) Generate(ctx context.Context, input GenerateInput) (*GenerateOutput, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:               c.model,
		MaxCompletionTokens: openai.Int(maxCompletionTokens(input.TargetTokens)),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPromptFor(input.Operation)),
			openai.UserMessage(buildUserMessage(input)),
		},
	})

	if err != nil {
		var apierr *openai.Error
		if errors.As(err, &apierr) {
			return nil, &Error{
				Code:      "api_error",
				Message:   fmt.Sprintf("openai API returned status %d", apierr.StatusCode),
				Transient: transientStatus(apierr.StatusCode),
				Err:       err,
			}
		}
		return nil, &Error{
			Code:      "api_error",
			Message:   "openai API request failed",
			Transient: true,
			Err:       err,
		}
	}

	if len(resp.Choices) == 0 {
		return nil, &Error{
			Code:    "empty_response",
			Message: "no response from openai",
		}
	}

	text, err := parseGeneratedText(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}

	return &GenerateOutput{
		Text:   text,
		Tokens: c.counter.Count(text),
	}, nil
}
