package fun_handler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"racbot/src-bot/api"
	"racbot/src-bot/command"
	"racbot/src-bot/utils"

	"github.com/bwmarrin/discordgo"
)

// discord returns at most this many messages per history request
const historyPage = 100

// HistorySource reads a channel's message history, newest first.
type HistorySource interface {
	ChannelMessages(channelID string, limit int, beforeID, afterID, aroundID string, options ...discordgo.RequestOption) ([]*discordgo.Message, error)
}

func wordcloud(as *utils.AppState, src HistorySource) *command.Command {
	return &command.Command{
		Name:        "wordcloud",
		Description: "Generate a wordcloud of the channel.",
		Args: []command.Arg{
			{
				Name:        "max_messages",
				Description: "How many messages to read",
				Kind:        command.ArgInt,
				Default:     "500",
				Min:         50,
				Max:         1000,
			},
		},
		Cooldown: 3 * time.Second,
		Run:      wordcloudHandler(as, src),
	}
}

func wordcloudHandler(as *utils.AppState, src HistorySource) command.HandlerFunc {
	return func(ctx context.Context, inv *command.Invocation) (*command.Output, error) {
		maxMessages := inv.Args.Int("max_messages")
		contents, err := channelHistory(ctx, src, inv.ChannelID, maxMessages)
		if err != nil {
			return nil, fmt.Errorf("wordcloudHandler: %w", err)
		}
		inv.Logger.Debug("read channel history", "messages", len(contents))

		return command.Execute(ctx, as.API, inv, command.Call{
			Request: api.Request{
				Endpoint: api.FunWordcloud,
				JSON: map[string]any{
					"text":      strings.Join(contents, " "),
					"max_words": maxMessages,
				},
			},
			Expect: command.ExpectImage,
			Render: func(res *api.Response) (*command.Output, error) {
				return &command.Output{Image: &command.Image{Name: "wordcloud.png", Data: res.Body.Raw}}, nil
			},
		})
	}
}

// channelHistory pages backwards through the channel until want messages
// are read or the history ends.
func channelHistory(ctx context.Context, src HistorySource, channelID string, want int) ([]string, error) {
	contents := make([]string, 0, want)
	before := ""
	read := 0
	for read < want {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		limit := min(historyPage, want-read)
		page, err := src.ChannelMessages(channelID, limit, before, "", "", discordgo.WithContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("channelHistory: %w", err)
		}
		for _, m := range page {
			if m.Content != "" {
				contents = append(contents, m.Content)
			}
		}
		read += len(page)
		if len(page) < limit {
			break
		}
		before = page[len(page)-1].ID
	}
	return contents, nil
}
