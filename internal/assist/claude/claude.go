package claude

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/liushuangls/go-anthropic/v2"
)

// requestTimeout bounds each relay call; the model API is the only external
// blocking dependency in the app.
const requestTimeout = 60 * time.Second

// maxTokens caps the reply length; plenty for a chat answer.
const maxTokens = 1024

// Client relays questions to the Anthropic Messages API.
type Client struct {
	api   *anthropic.Client
	model anthropic.Model
}

func New(apiKey, model string, opts ...anthropic.ClientOption) *Client {
	return &Client{
		api:   anthropic.NewClient(apiKey, opts...),
		model: anthropic.Model(model),
	}
}

func (c *Client) Respond(ctx context.Context, question string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	resp, err := c.api.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:     c.model,
		MaxTokens: maxTokens,
		Messages: []anthropic.Message{
			anthropic.NewUserTextMessage(question),
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to call model API: %w", err)
	}

	if len(resp.Content) == 0 {
		return "", errors.New("model returned no content")
	}
	return resp.Content[0].GetText(), nil
}
