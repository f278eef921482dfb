package roguessr_handler

import (
	"context"
	"fmt"

	"racbot/src-bot/api"
	"racbot/src-bot/command"
	"racbot/src-bot/utils"
)

var textArg = command.Arg{Name: "text", Description: "What to announce", Required: true, Rest: true, MaxLen: 500}

func announce(as *utils.AppState) *command.Command {
	return &command.Command{
		Name:        "roguessr server announce",
		Description: "Announce a message on one RoGuessr server.",
		Args:        []command.Arg{serverIDArg, textArg},
		Access:      command.AccessModerator,
		Run: func(ctx context.Context, inv *command.Invocation) (*command.Output, error) {
			return sendAnnouncement(ctx, as, inv, api.RoGuessrAnnounce, map[string]string{
				"server_id": inv.Args.String("server_id"),
			})
		},
	}
}

func announceAll(as *utils.AppState) *command.Command {
	return &command.Command{
		Name:        "roguessr server announce-all",
		Description: "Announce a message on every RoGuessr server.",
		Args:        []command.Arg{textArg},
		Access:      command.AccessModerator,
		Run: func(ctx context.Context, inv *command.Invocation) (*command.Output, error) {
			return sendAnnouncement(ctx, as, inv, api.RoGuessrAnnounceAll, map[string]string{})
		},
	}
}

func sendAnnouncement(ctx context.Context, as *utils.AppState, inv *command.Invocation, endpoint api.EndpointName, query map[string]string) (*command.Output, error) {
	text := inv.Args.String("text")
	query["mod"] = inv.Actor.Username
	query["text"] = text
	return command.Execute(ctx, as.API, inv, command.Call{
		Request: api.Request{Endpoint: endpoint, Query: query},
		Render: func(*api.Response) (*command.Output, error) {
			return command.Text(fmt.Sprintf("ok, sent message of \"%s\"", text)), nil
		},
	})
}
