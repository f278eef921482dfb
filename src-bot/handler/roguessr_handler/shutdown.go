package roguessr_handler

import (
	"context"

	"racbot/src-bot/api"
	"racbot/src-bot/command"
	"racbot/src-bot/utils"
)

func shutdown(as *utils.AppState) *command.Command {
	return &command.Command{
		Name:        "roguessr server shutdown",
		Description: "Shut a RoGuessr server down.",
		Args:        []command.Arg{serverIDArg},
		Access:      command.AccessModerator,
		Run: func(ctx context.Context, inv *command.Invocation) (*command.Output, error) {
			return command.Execute(ctx, as.API, inv, command.Call{
				Request: api.Request{
					Endpoint: api.RoGuessrShutdown,
					JSON:     map[string]string{"id": inv.Args.String("server_id")},
					Query:    map[string]string{"mod": inv.Actor.Username},
				},
			})
		},
	}
}
