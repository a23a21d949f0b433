// Package oracle asks an OpenAI compatible chat completions service for a move.
package oracle

import (
	"context"

	"github.com/gorgonia/wuziqi/game"
	"github.com/gorgonia/wuziqi/game/gomoku"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"
)

// Client is a move oracle backed by a chat completions endpoint. It is safe for concurrent use.
type Client struct {
	Config
	api *openai.Client
}

// New creates a client. An incomplete config (most commonly a missing API key) is an error.
func New(conf Config) (*Client, error) {
	if !conf.IsValid() {
		return nil, errors.Errorf("Invalid oracle config: model %q at %q (API key set: %t)", conf.Model, conf.BaseURL, conf.APIKey != "")
	}
	apiConf := openai.DefaultConfig(conf.APIKey)
	apiConf.BaseURL = conf.BaseURL
	return &Client{
		Config: conf,
		api:    openai.NewClientWithConfig(apiConf),
	}, nil
}

// Suggest asks for player's move on b. The board is only read.
func (c *Client) Suggest(ctx context.Context, b *gomoku.Board, player game.Player) (game.Coord, error) {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	req := openai.ChatCompletionRequest{
		Model: c.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: Prompt(b, player)},
		},
		Temperature: 0.1,
		MaxTokens:   32,
		N:           1,
	}
	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return game.Coord{}, errors.Wrap(err, "Chat completion failed")
	}
	if len(resp.Choices) == 0 {
		return game.Coord{}, errors.New("Chat completion returned no choices")
	}

	reply := resp.Choices[0].Message.Content
	log.Debug().Str("model", c.Model).Str("reply", reply).Msg("Oracle replied")
	return ParseReply(reply, b)
}
