package handler

import (
	"context"
	"fmt"
	"runtime"

	"racbot/src-bot/api"
	"racbot/src-bot/command"
	"racbot/src-bot/utils"

	"github.com/bwmarrin/discordgo"
)

func Usage(as *utils.AppState) {
	as.AddCommand(&command.Command{
		Name:        "usage",
		Description: "Get the process usage of the bot.",
		Run:         usageHandler(as),
	}, &command.Command{
		Name:        "usage api",
		Description: "Get the process usage of the API.",
		Run:         usageAPIHandler(as),
	})
}

func usageHandler(as *utils.AppState) command.HandlerFunc {
	return func(_ context.Context, inv *command.Invocation) (*command.Output, error) {
		var m runtime.MemStats
		runtime.ReadMemStats(&m)
		heapUsage := float64(m.HeapAlloc) / 1024 / 1024
		memUsage := float64(m.Sys) / 1024 / 1024

		embed := &discordgo.MessageEmbed{
			Title: "Usage",
			Fields: []*discordgo.MessageEmbedField{
				{
					Name:  "Uptime",
					Value: as.GetUptime().String(),
				},
				{
					Name:   "Heap",
					Value:  fmt.Sprintf("%.2fMB", heapUsage),
					Inline: true,
				},
				{
					Name:   "Memory",
					Value:  fmt.Sprintf("%.2fMB", memUsage),
					Inline: true,
				},
				{
					Name:   "Goroutines",
					Value:  fmt.Sprintf("%d", runtime.NumGoroutine()),
					Inline: true,
				},
				{
					Name:   "Go version",
					Value:  runtime.Version(),
					Inline: true,
				},
				{
					Name:   "Latency",
					Value:  fmt.Sprintf("%dms", as.DgSession.HeartbeatLatency().Milliseconds()),
					Inline: true,
				},
			},
		}
		if inv.GuildID != "" {
			embed.Footer = &discordgo.MessageEmbedFooter{Text: inv.GuildID}
		}
		return &command.Output{Embeds: []*discordgo.MessageEmbed{embed}}, nil
	}
}

func usageAPIHandler(as *utils.AppState) command.HandlerFunc {
	return func(ctx context.Context, inv *command.Invocation) (*command.Output, error) {
		return command.Execute(ctx, as.API, inv, command.Call{
			Request: api.Request{Endpoint: api.UtilityUsage},
			Expect:  command.ExpectObject,
			Render: func(res *api.Response) (*command.Output, error) {
				var stats [3]string
				for i, path := range []string{"main.cpu", "main.rssMem", "main.vmsMem"} {
					v, err := command.RequireField(res, path)
					if err != nil {
						return nil, err
					}
					stats[i] = v.String()
				}
				return command.Text(fmt.Sprintf("CPU: `%s`\nRSS MEMORY: `%s`\nVMS MEMORY: `%s`", stats[0], stats[1], stats[2])), nil
			},
		})
	}
}
