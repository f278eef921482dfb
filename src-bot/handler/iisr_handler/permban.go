package iisr_handler

import (
	"context"

	"racbot/src-bot/api"
	"racbot/src-bot/command"
	"racbot/src-bot/utils"
)

func permban(as *utils.AppState) *command.Command {
	return &command.Command{
		Name:        "iisr permban",
		Aliases:     []string{"ban-perm"},
		Description: "Ban a player permanently in IISR.",
		Flags:       []command.Arg{banFlags.target, banFlags.serverID, banFlags.reason},
		GuildOnly:   true,
		Run:         permbanHandler(as),
	}
}

func permbanHandler(as *utils.AppState) command.HandlerFunc {
	return func(ctx context.Context, inv *command.Invocation) (*command.Output, error) {
		return command.Execute(ctx, as.API, inv, command.Call{
			Request: api.Request{
				Endpoint: api.IISRPermBanCreate,
				JSON:     map[string]string{"username": inv.Args.String("target")},
				Query:    banQuery(inv),
			},
		})
	}
}
