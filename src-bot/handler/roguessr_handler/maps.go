package roguessr_handler

import (
	"context"
	"fmt"
	"strings"

	"racbot/src-bot/api"
	"racbot/src-bot/command"
	"racbot/src-bot/utils"

	"github.com/tidwall/gjson"
)

func maps(as *utils.AppState) *command.Command {
	return &command.Command{
		Name:        "roguessr game maps",
		Description: "List the RoGuessr maps.",
		Run: func(ctx context.Context, inv *command.Invocation) (*command.Output, error) {
			return command.Execute(ctx, as.API, inv, command.Call{
				Request: api.Request{Endpoint: api.RoGuessrMaps},
				Expect:  command.ExpectObject,
				Render:  renderMaps,
			})
		},
	}
}

func renderMaps(res *api.Response) (*command.Output, error) {
	list, err := command.RequireField(res, "maps")
	if err != nil {
		return nil, err
	}
	if !list.IsArray() {
		return nil, &command.ShapeError{Want: "maps array", Got: list.Type.String()}
	}
	total, err := command.RequireField(res, "total")
	if err != nil {
		return nil, err
	}
	if total.Type != gjson.Number {
		return nil, &command.ShapeError{Want: "numeric total", Got: total.Type.String()}
	}

	names := make([]string, 0, len(list.Array()))
	for _, m := range list.Array() {
		names = append(names, m.String())
	}
	return command.Text(fmt.Sprintf("```%s\n\n%d maps total```", strings.Join(names, "\n"), total.Int())), nil
}
