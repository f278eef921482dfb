package handler_test

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"racbot/src-bot/api"
	"racbot/src-bot/handler"
	"racbot/src-bot/handler/handlertest"
	"racbot/src-bot/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPing(t *testing.T) {
	as, backend := handlertest.AppState(t, nil)
	handler.Ping(as)

	msg := handlertest.Send(as, handlertest.Member, "r.ping").First(t)
	assert.Equal(t, "pong! 0 ms", msg.Content)
	assert.Zero(t, backend.Hits.Load())
}

func TestPingAPI(t *testing.T) {
	as, _ := handlertest.AppState(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		now := float64(time.Now().UnixNano()) / float64(time.Second)
		_, _ = fmt.Fprintf(w, `{"time":%f}`, now)
	})
	handler.Ping(as)

	msg := handlertest.Send(as, handlertest.Member, "r.ping api").First(t)
	assert.Regexp(t, `^took -?\d+\.\d{2} seconds$`, msg.Content)
}

func TestPingAPI_TimeMustBeNumeric(t *testing.T) {
	as, _ := handlertest.AppState(t, handlertest.JSON(http.StatusOK, `{"time":"soon"}`))
	handler.Ping(as)

	msg := handlertest.Send(as, handlertest.Member, "r.ping api").First(t)
	require.Len(t, msg.Embeds, 1)
	assert.Equal(t, "The API returned an unexpected response shape.", msg.Embeds[0].Description)
}

func TestUsage(t *testing.T) {
	as, _ := handlertest.AppState(t, nil)
	handler.Usage(as)

	msg := handlertest.Send(as, handlertest.Member, "r.usage").First(t)
	require.Len(t, msg.Embeds, 1)
	names := []string{}
	for _, f := range msg.Embeds[0].Fields {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"Uptime", "Heap", "Memory", "Goroutines", "Go version", "Latency"}, names)
	assert.Equal(t, "guild", msg.Embeds[0].Footer.Text)
}

func TestUsageAPI(t *testing.T) {
	as, _ := handlertest.AppState(t, handlertest.JSON(http.StatusOK,
		`{"main":{"cpu":"3.5%","rssMem":"120MB","vmsMem":"1.2GB"},"storage":{}}`))
	handler.Usage(as)

	msg := handlertest.Send(as, handlertest.Member, "r.usage api").First(t)
	assert.Equal(t, "CPU: `3.5%`\nRSS MEMORY: `120MB`\nVMS MEMORY: `1.2GB`", msg.Content)
}

func TestUsageAPI_MissingField(t *testing.T) {
	as, _ := handlertest.AppState(t, handlertest.JSON(http.StatusOK, `{"main":{"cpu":"3.5%"}}`))
	handler.Usage(as)

	msg := handlertest.Send(as, handlertest.Member, "r.usage api").First(t)
	require.Len(t, msg.Embeds, 1)
	assert.Equal(t, "The API returned an unexpected response shape.", msg.Embeds[0].Description)
}

func TestInvite(t *testing.T) {
	as, _ := handlertest.AppState(t, nil, func(c *utils.Config) {
		c.DiscordClientID = "42"
	})
	handler.Invite(as)

	msg := handlertest.Send(as, handlertest.Member, "r.invite").First(t)
	assert.Equal(t, "<https://discord.com/oauth2/authorize?client_id=42&scope=bot+applications.commands>", msg.Content)
}

func TestInvite_Configured(t *testing.T) {
	as, _ := handlertest.AppState(t, nil, func(c *utils.Config) {
		c.InviteURL = "https://example.test/invite"
	})
	handler.Invite(as)

	msg := handlertest.Send(as, handlertest.Member, "r.invite").First(t)
	assert.Equal(t, "<https://example.test/invite>", msg.Content)
}

func TestCharInfo(t *testing.T) {
	as, _ := handlertest.AppState(t, nil)
	handler.CharInfo(as)

	msg := handlertest.Send(as, handlertest.Member, "r.char a😀").First(t)
	assert.Equal(t,
		"`\\U00000061`: LATIN SMALL LETTER A - a — <http://www.fileformat.info/info/unicode/char/61>\n"+
			"`\\U0001f600`: GRINNING FACE - 😀 — <http://www.fileformat.info/info/unicode/char/1f600>",
		msg.Content)
}

func TestCharInfo_TooManyCharacters(t *testing.T) {
	as, _ := handlertest.AppState(t, nil)
	handler.CharInfo(as)

	msg := handlertest.Send(as, handlertest.Member, "r.charinfo "+strings.Repeat("a", 26)).First(t)
	require.Len(t, msg.Embeds, 1)
	assert.Equal(t, "`characters` must be at most 25 characters (got 26).", msg.Embeds[0].Description)
}

func TestCharInfo_ResultTooLong(t *testing.T) {
	as, _ := handlertest.AppState(t, nil)
	handler.CharInfo(as)

	// each line names a long mathematical symbol
	msg := handlertest.Send(as, handlertest.Member, "r.charinfo "+strings.Repeat("𝑨", 25)).First(t)
	require.Len(t, msg.Embeds, 1)
	assert.Contains(t, msg.Embeds[0].Description, "too big to send")
}

func TestMaintenance(t *testing.T) {
	as, backend := handlertest.AppState(t, nil)
	handler.Maintenance(as)
	handler.Ping(as)

	msg := handlertest.Send(as, handlertest.Member, "r.maintenance on").First(t)
	assert.Equal(t, ":warning: You need to be the bot operator to use this command.", msg.Content)
	assert.False(t, as.Flags.Disabled())

	msg = handlertest.Send(as, handlertest.Owner, "r.maintenance ON").First(t)
	assert.Equal(t, "Maintenance mode is on, API commands are disabled.", msg.Content)
	assert.True(t, as.Flags.Disabled())

	msg = handlertest.Send(as, handlertest.Member, "r.ping api").First(t)
	require.Len(t, msg.Embeds, 1)
	assert.Equal(t, "HTTP Exception: 500 (system in recovery)", msg.Embeds[0].Description)
	assert.Zero(t, backend.Hits.Load())

	msg = handlertest.Send(as, handlertest.Owner, "r.maintenance").First(t)
	assert.Equal(t, "Maintenance mode is on.", msg.Content)

	msg = handlertest.Send(as, handlertest.Owner, "r.maintenance off").First(t)
	assert.Equal(t, "Maintenance mode is off.", msg.Content)
	assert.False(t, as.Flags.Disabled())
}

func TestHelp(t *testing.T) {
	as, _ := handlertest.AppState(t, nil)
	handler.Ping(as)
	handler.CharInfo(as)
	handler.Maintenance(as)
	handler.Help(as)

	msg := handlertest.Send(as, handlertest.Member, "r.help").First(t)
	require.Len(t, msg.Embeds, 1)
	overview := msg.Embeds[0]
	require.Len(t, overview.Fields, 4)
	assert.Equal(t, "charinfo", overview.Fields[0].Name)
	assert.Equal(t, "ping", overview.Fields[3].Name)
	assert.Equal(t, "`ping` `ping api`", overview.Fields[3].Value)

	msg = handlertest.Send(as, handlertest.Member, "r.help char").First(t)
	require.Len(t, msg.Embeds, 1)
	assert.Equal(t, "r.charinfo <characters...>", msg.Embeds[0].Title)
	assert.Equal(t, "Aliases", msg.Embeds[0].Fields[0].Name)
}

func TestHelp_Unknown(t *testing.T) {
	as, _ := handlertest.AppState(t, nil)
	handler.Help(as)

	msg := handlertest.Send(as, handlertest.Member, "r.help nope").First(t)
	require.Len(t, msg.Embeds, 1)
	assert.Equal(t, "No command called `nope` found.", msg.Embeds[0].Description)
}

func TestUploadCommands(t *testing.T) {
	as, backend := handlertest.AppState(t, handlertest.JSON(http.StatusCreated, `{}`))
	handler.CharInfo(as)
	handler.Maintenance(as)

	require.NoError(t, handler.UploadCommands(context.Background(), as))

	req, body := backend.Last()
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/bot/commands/upload", req.URL.Path)
	assert.JSONEq(t, `{"commands":[
		{"name":"charinfo","aliases":["char"],"description":"Get the information of up to 25 characters.",
		 "usage":"r.charinfo <characters...>","cooldown":0,"access":"anyone","guild_only":false},
		{"name":"maintenance","aliases":[],"description":"Turn maintenance mode on or off.",
		 "usage":"r.maintenance [state=status]","cooldown":0,"access":"the bot operator","guild_only":false}
	]}`, string(body))
}

func TestUploadCommands_Failure(t *testing.T) {
	as, _ := handlertest.AppState(t, handlertest.JSON(http.StatusUnauthorized, `{"error":"bad key"}`))
	handler.Ping(as)

	err := handler.UploadCommands(context.Background(), as)
	var failure *api.Failure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, http.StatusUnauthorized, failure.Status)
}
