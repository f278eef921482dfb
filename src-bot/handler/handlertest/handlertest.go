// Package handlertest drives registered commands against a fake backend.
package handlertest

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"racbot/src-bot/command"
	"racbot/src-bot/utils"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/require"
)

var (
	Member = command.Actor{ID: "100", Username: "alice", DisplayName: "Alice"}
	Mod    = command.Actor{ID: "200", Username: "mod"}
	Owner  = command.Actor{ID: "1", Username: "owner"}
)

// Recorder is a command.Responder that keeps every message.
type Recorder struct {
	mu        sync.Mutex
	Acks      int
	Replies   []*discordgo.MessageSend
	FollowUps []*discordgo.MessageSend
}

func (r *Recorder) Acknowledge() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Acks++
	return nil
}

func (r *Recorder) Reply(msg *discordgo.MessageSend) (*discordgo.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Replies = append(r.Replies, msg)
	return &discordgo.Message{ID: "reply"}, nil
}

func (r *Recorder) FollowUp(_ *discordgo.Message, msg *discordgo.MessageSend) (*discordgo.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.FollowUps = append(r.FollowUps, msg)
	return &discordgo.Message{ID: "follow-up"}, nil
}

// First returns the first reply, failing the test when there is none.
func (r *Recorder) First(t testing.TB) *discordgo.MessageSend {
	t.Helper()
	require.NotEmpty(t, r.Replies, "no reply was sent")
	return r.Replies[0]
}

// Backend records what the bot sent to the API.
type Backend struct {
	Hits atomic.Int32

	mu   sync.Mutex
	last *http.Request
	body []byte
}

// Last returns the most recent request and its body.
func (b *Backend) Last() (*http.Request, []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.last, b.body
}

// AppState builds an AppState whose API client talks to handler. A nil
// handler answers 200 with an empty JSON object. opts adjust the config
// before the state is built.
func AppState(t testing.TB, handler http.HandlerFunc, opts ...func(*utils.Config)) (*utils.AppState, *Backend) {
	t.Helper()
	if handler == nil {
		handler = JSON(http.StatusOK, `{}`)
	}
	backend := &Backend{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		backend.Hits.Add(1)
		body, _ := io.ReadAll(r.Body)
		backend.mu.Lock()
		backend.last = r.Clone(context.Background())
		backend.body = body
		backend.mu.Unlock()
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	cfg := &utils.Config{
		DiscordAppToken: "token",
		APIBaseURL:      srv.URL + "/",
		APIKey:          "key",
		APIUserAgent:    "racbot-test",
		APITimeout:      2 * time.Second,
		APIOKStatus:     []int{200, 201, 204},
		CommandPrefix:   "r.",
		OwnerID:         Owner.ID,
		ModUsernames:    []string{Mod.Username},
	}
	for _, opt := range opts {
		opt(cfg)
	}
	as, err := utils.NewAppState(cfg)
	require.NoError(t, err)
	return as, backend
}

// JSON answers every request with status and a JSON body.
func JSON(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

// Hang blocks until the client gives up or the server closes.
func Hang(w http.ResponseWriter, r *http.Request) {
	select {
	case <-r.Context().Done():
	case <-time.After(12 * time.Second):
	}
}

// Send runs content as a prefix command typed by actor in a guild channel.
func Send(as *utils.AppState, actor command.Actor, content string) *Recorder {
	return SendIn(as, actor, "guild", content)
}

// SendIn is Send with an explicit guild; an empty guild is a DM. The
// command prefix is optional.
func SendIn(as *utils.AppState, actor command.Actor, guildID, content string) *Recorder {
	if stripped, ok := command.StripPrefix(content, as.Router.Prefix(), ""); ok {
		content = stripped
	}
	rec := &Recorder{}
	as.Router.HandleMessage(context.Background(), command.Message{
		Actor:     actor,
		ChannelID: "chan",
		GuildID:   guildID,
		Content:   content,
		Out:       rec,
	})
	return rec
}
