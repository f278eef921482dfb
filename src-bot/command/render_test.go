package command_test

import (
	"errors"
	"io"
	"strings"
	"testing"
	"unicode/utf8"

	"racbot/src-bot/api"
	"racbot/src-bot/command"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitMessage_RoundTrip(t *testing.T) {
	for _, n := range []int{0, 1, 1999, 2000, 2001, 3999, 4000} {
		s := strings.Repeat("é", n)
		head, rest := command.SplitMessage(s, command.MessageLimit)
		assert.Equal(t, s, head+rest, "n=%d", n)
		assert.LessOrEqual(t, utf8.RuneCountInString(head), command.MessageLimit)
		if n <= command.MessageLimit {
			assert.Empty(t, rest)
		} else {
			assert.Equal(t, command.MessageLimit, utf8.RuneCountInString(head))
			assert.Equal(t, n-command.MessageLimit, utf8.RuneCountInString(rest))
		}
	}
}

func TestOutputMessages(t *testing.T) {
	actor := command.Actor{ID: "1", Username: "alice"}

	t.Run("fits", func(t *testing.T) {
		msgs := command.Text("hello").Messages(actor)
		require.Len(t, msgs, 1)
		assert.Equal(t, "hello", msgs[0].Content)
	})

	t.Run("two sends", func(t *testing.T) {
		text := strings.Repeat("a", 2001)
		msgs := command.Text(text).Messages(actor)
		require.Len(t, msgs, 2)
		assert.Equal(t, text, msgs[0].Content+msgs[1].Content)
	})

	t.Run("overflow attached", func(t *testing.T) {
		text := strings.Repeat("b", 4001)
		msgs := command.Text(text).Messages(actor)
		require.Len(t, msgs, 2)
		assert.Empty(t, msgs[1].Content)
		require.Len(t, msgs[1].Files, 1)
		assert.Equal(t, "message_too_long.txt", msgs[1].Files[0].Name)
		attached, err := io.ReadAll(msgs[1].Files[0].Reader)
		require.NoError(t, err)
		assert.Equal(t, text, msgs[0].Content+string(attached))
	})

	t.Run("image", func(t *testing.T) {
		png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
		out := &command.Output{Image: &command.Image{Name: "wordcloud.png", Data: png, Caption: "cloud"}}
		msgs := out.Messages(actor)
		require.Len(t, msgs, 1)
		require.Len(t, msgs[0].Files, 1)
		assert.Equal(t, "image/png", msgs[0].Files[0].ContentType)
		require.Len(t, msgs[0].Embeds, 1)
		assert.Equal(t, "attachment://wordcloud.png", msgs[0].Embeds[0].Image.URL)
		assert.Equal(t, "alice", msgs[0].Embeds[0].Author.Name)
	})
}

func TestRenderError_HTTP(t *testing.T) {
	inv := &command.Invocation{Actor: command.Actor{Username: "alice"}}
	err := &command.HTTPError{
		Status: 403,
		Reason: "Forbidden",
		Body:   api.Body{Kind: api.BodyJSON, Raw: []byte(`{"error":"forbidden"}`)},
	}
	msg := command.RenderError(inv, "r.", err)
	require.Len(t, msg.Embeds, 1)
	embed := msg.Embeds[0]
	assert.Equal(t, "Command Error", embed.Title)
	assert.Equal(t, "HTTP Exception: 403 (Forbidden)", embed.Description)
	require.Len(t, embed.Fields, 1)
	assert.Equal(t, "Response Body", embed.Fields[0].Name)
	assert.Contains(t, embed.Fields[0].Value, `"error": "forbidden"`)
	assert.True(t, strings.HasPrefix(embed.Fields[0].Value, "```js\n"))
}

func TestRenderError_MissingReason(t *testing.T) {
	inv := &command.Invocation{}
	msg := command.RenderError(inv, "r.", &command.HTTPError{Status: 599})
	assert.Equal(t, "HTTP Exception: 599 (No Status Detail)", msg.Embeds[0].Description)
	assert.Empty(t, msg.Embeds[0].Fields)
}

func TestRenderError_BodyIsTruncated(t *testing.T) {
	inv := &command.Invocation{}
	big := `{"trace":"` + strings.Repeat("x", 5000) + `"}`
	msg := command.RenderError(inv, "r.", &command.HTTPError{
		Status: 500,
		Reason: "Internal Server Error",
		Body:   api.Body{Kind: api.BodyJSON, Raw: []byte(big)},
	})
	value := msg.Embeds[0].Fields[0].Value
	assert.LessOrEqual(t, utf8.RuneCountInString(value), 1024)
	assert.True(t, strings.HasSuffix(value, "…\n```"))
}

func TestRenderError_Internal(t *testing.T) {
	err := &command.InternalError{Err: errors.New("nil pointer somewhere")}

	operator := command.RenderError(&command.Invocation{Operator: true}, "r.", err)
	assert.Contains(t, operator.Content, "nil pointer somewhere")
	assert.Empty(t, operator.Embeds)

	member := command.RenderError(&command.Invocation{}, "r.", err)
	assert.Empty(t, member.Content)
	require.Len(t, member.Embeds, 1)
	assert.Equal(t, "HTTP Exception: 500 (woops)", member.Embeds[0].Description)
	assert.NotContains(t, member.Embeds[0].Description, "nil pointer")
}

func TestRenderError_LongInternalKeepsFence(t *testing.T) {
	err := &command.InternalError{Err: errors.New(strings.Repeat("x", 3000))}

	out := command.RenderError(&command.Invocation{Operator: true}, "r.", err)
	assert.Equal(t, command.MessageLimit, utf8.RuneCountInString(out.Content))
	assert.True(t, strings.HasPrefix(out.Content, "```"))
	assert.True(t, strings.HasSuffix(out.Content, "…```"))
}

func TestRenderError_Usage(t *testing.T) {
	err := &command.UsageError{Command: tempban(), Reason: "missing duration"}
	msg := command.RenderError(&command.Invocation{}, "r.", err)
	assert.Contains(t, msg.Content, "missing duration")
	assert.Contains(t, msg.Content, "```r.iisr tempban -target <target>")
}

func TestRenderError_ShapeLeaksNothing(t *testing.T) {
	err := &command.ShapeError{Want: "response", Err: command.ErrEmptyResult}
	msg := command.RenderError(&command.Invocation{}, "r.", err)
	require.Len(t, msg.Embeds, 1)
	assert.Equal(t, "The API returned an unexpected response shape.", msg.Embeds[0].Description)
}

func TestRenderError_Cooldown(t *testing.T) {
	msg := command.RenderError(&command.Invocation{}, "r.", &command.CooldownError{RetryAfter: 2300e6})
	assert.Equal(t, "You are on cooldown. Try again in 3 seconds.", msg.Content)
}

func TestRequireField(t *testing.T) {
	res := &api.Response{Body: api.Body{Kind: api.BodyJSON, Raw: []byte(`{"response":"hi","gone":null}`)}}

	v, err := command.RequireField(res, "response")
	require.NoError(t, err)
	assert.Equal(t, "hi", v.String())

	for _, path := range []string{"gone", "missing"} {
		_, err = command.RequireField(res, path)
		require.ErrorIs(t, err, command.ErrEmptyResult)
		var shape *command.ShapeError
		assert.ErrorAs(t, err, &shape)
	}
}
