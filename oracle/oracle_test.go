package oracle

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorgonia/wuziqi/game"
	"github.com/gorgonia/wuziqi/game/gomoku"
	"github.com/pkg/errors"
	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderBoard(t *testing.T) {
	b, err := gomoku.Parse(
		"X..",
		".O.",
		"...",
	)
	require.NoError(t, err)
	assert.Equal(t, "X . .\n. O .\n. . .\n", RenderBoard(b))

	p := Prompt(b, game.PlayerTwo)
	assert.Contains(t, p, "You play 'O'")
	assert.Contains(t, p, "3x3")
	assert.Contains(t, p, RenderBoard(b))
}

func TestParseReply(t *testing.T) {
	b := gomoku.New(gomoku.DefaultSize)
	require.NoError(t, b.Place(game.Coord{Row: 7, Col: 7}, game.PlayerOne))

	cases := []struct {
		reply   string
		want    game.Coord
		invalid bool // parsed but not playable
		err     bool
	}{
		{reply: "7,8", want: game.Coord{Row: 7, Col: 8}},
		{reply: "  (3, 4)  ", want: game.Coord{Row: 3, Col: 4}},
		{reply: "I would play\n6,6\n9,9", want: game.Coord{Row: 6, Col: 6}},
		{reply: "row,col\n2,2", want: game.Coord{Row: 2, Col: 2}},
		{reply: "7,7", invalid: true, err: true},
		{reply: "15,0", invalid: true, err: true},
		{reply: "1,2,3", err: true},
		{reply: "no idea", err: true},
		{reply: "", err: true},
	}
	for _, tc := range cases {
		got, err := ParseReply(tc.reply, b)
		if tc.err {
			assert.Error(t, err, "%q", tc.reply)
			assert.Equal(t, tc.invalid, errors.Is(err, game.ErrInvalidMove), "%q", tc.reply)
			continue
		}
		require.NoError(t, err, "%q", tc.reply)
		assert.Equal(t, tc.want, got, "%q", tc.reply)
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv(EnvAPIKey, "")
	t.Setenv(EnvBaseURL, "")
	t.Setenv(EnvModel, "")
	conf := ConfigFromEnv()
	assert.Equal(t, DefaultBaseURL, conf.BaseURL)
	assert.Equal(t, DefaultModel, conf.Model)
	assert.False(t, conf.IsValid(), "no API key")

	_, err := New(conf)
	assert.Error(t, err)

	t.Setenv(EnvAPIKey, "sk-test")
	t.Setenv(EnvBaseURL, "http://localhost:8080/v1")
	t.Setenv(EnvModel, "local-model")
	conf = ConfigFromEnv()
	assert.Equal(t, Config{APIKey: "sk-test", BaseURL: "http://localhost:8080/v1", Model: "local-model", Timeout: DefaultConfig().Timeout}, conf)
	assert.True(t, conf.IsValid())
}

func fakeCompletions(t *testing.T, content string, status int) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req openai.ChatCompletionRequest
		if assert.NoError(t, json.NewDecoder(r.Body).Decode(&req)) {
			assert.Equal(t, "test-model", req.Model)
			if assert.Len(t, req.Messages, 2) {
				assert.Equal(t, openai.ChatMessageRoleSystem, req.Messages[0].Role)
				assert.True(t, strings.Contains(req.Messages[1].Content, ". . ."))
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]any{"message": "overloaded", "type": "server_error"},
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"id":     "chatcmpl-1",
			"object": "chat.completion",
			"model":  "test-model",
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": content},
				"finish_reason": "stop",
			}},
		})
	}))
}

func testClient(t *testing.T, url string) *Client {
	conf := DefaultConfig()
	conf.APIKey = "sk-test"
	conf.BaseURL = url
	conf.Model = "test-model"
	c, err := New(conf)
	require.NoError(t, err)
	return c
}

func TestClientSuggest(t *testing.T) {
	srv := fakeCompletions(t, "8,8", http.StatusOK)
	defer srv.Close()

	b := gomoku.New(gomoku.DefaultSize)
	require.NoError(t, b.Place(game.Coord{Row: 7, Col: 7}, game.PlayerOne))
	before := b.Clone()

	c := testClient(t, srv.URL)
	got, err := c.Suggest(context.Background(), b, game.PlayerTwo)
	require.NoError(t, err)
	assert.Equal(t, game.Coord{Row: 8, Col: 8}, got)
	assert.True(t, b.Eq(before))
}

func TestClientSuggestFailures(t *testing.T) {
	b := gomoku.New(gomoku.DefaultSize)
	require.NoError(t, b.Place(game.Coord{Row: 7, Col: 7}, game.PlayerOne))

	srv := fakeCompletions(t, "7,7", http.StatusOK)
	_, err := testClient(t, srv.URL).Suggest(context.Background(), b, game.PlayerTwo)
	assert.True(t, errors.Is(err, game.ErrInvalidMove))
	srv.Close()

	srv = fakeCompletions(t, "", http.StatusInternalServerError)
	_, err = testClient(t, srv.URL).Suggest(context.Background(), b, game.PlayerTwo)
	assert.Error(t, err)
	srv.Close()
}
