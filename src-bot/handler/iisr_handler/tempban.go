package iisr_handler

import (
	"context"
	"time"

	"racbot/src-bot/api"
	"racbot/src-bot/command"
	"racbot/src-bot/utils"
)

func tempban(as *utils.AppState) *command.Command {
	return &command.Command{
		Name:        "iisr tempban",
		Aliases:     []string{"ban-temp"},
		Description: "Ban a player temporarily in IISR.",
		Flags: []command.Arg{
			banFlags.target,
			{Name: "duration", Description: "How long the ban lasts, e.g. 14 days", Required: true},
			banFlags.serverID,
			banFlags.reason,
		},
		Cooldown:  3 * time.Second,
		GuildOnly: true,
		Run:       tempbanHandler(as),
	}
}

func tempbanHandler(as *utils.AppState) command.HandlerFunc {
	return func(ctx context.Context, inv *command.Invocation) (*command.Output, error) {
		query := banQuery(inv)
		query["duration"] = inv.Args.String("duration")
		return command.Execute(ctx, as.API, inv, command.Call{
			Request: api.Request{
				Endpoint: api.IISRTempBanCreate,
				JSON:     map[string]string{"username": inv.Args.String("target")},
				Query:    query,
			},
		})
	}
}
