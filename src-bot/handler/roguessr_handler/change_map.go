package roguessr_handler

import (
	"context"
	"fmt"

	"racbot/src-bot/api"
	"racbot/src-bot/command"
	"racbot/src-bot/utils"
)

func changeMap(as *utils.AppState) *command.Command {
	return &command.Command{
		Name:        "roguessr game change-map",
		Description: "Change the map a RoGuessr server is playing.",
		Args: []command.Arg{
			serverIDArg,
			{Name: "map_name", Description: "The map to switch to", Required: true, Rest: true, MaxLen: 100},
		},
		Access: command.AccessModerator,
		Run: func(ctx context.Context, inv *command.Invocation) (*command.Output, error) {
			mapName := inv.Args.String("map_name")
			return command.Execute(ctx, as.API, inv, command.Call{
				Request: api.Request{
					Endpoint: api.RoGuessrChangeMap,
					JSON:     map[string]string{"id": inv.Args.String("server_id")},
					Query: map[string]string{
						"mod":      inv.Actor.Username,
						"map_name": mapName,
					},
				},
				Render: func(*api.Response) (*command.Output, error) {
					return command.Text(fmt.Sprintf("ok, changed the map to `%s`", mapName)), nil
				},
			})
		},
	}
}
