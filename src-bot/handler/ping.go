package handler

import (
	"context"
	"fmt"
	"time"

	"racbot/src-bot/api"
	"racbot/src-bot/command"
	"racbot/src-bot/utils"

	"github.com/tidwall/gjson"
)

func Ping(as *utils.AppState) {
	as.AddCommand(&command.Command{
		Name:        "ping",
		Description: "Get the gateway latency of the bot.",
		Run:         pingHandler(as),
	}, &command.Command{
		Name:        "ping api",
		Description: "Ping the API.",
		Run:         pingAPIHandler(as),
	})
}

func pingHandler(as *utils.AppState) command.HandlerFunc {
	return func(context.Context, *command.Invocation) (*command.Output, error) {
		return command.Text(fmt.Sprintf("pong! %d ms", as.DgSession.HeartbeatLatency().Milliseconds())), nil
	}
}

func pingAPIHandler(as *utils.AppState) command.HandlerFunc {
	return func(ctx context.Context, inv *command.Invocation) (*command.Output, error) {
		start := time.Now()
		return command.Execute(ctx, as.API, inv, command.Call{
			Request: api.Request{Endpoint: api.UtilityPing},
			Expect:  command.ExpectObject,
			Render: func(res *api.Response) (*command.Output, error) {
				end, err := command.RequireField(res, "time")
				if err != nil {
					return nil, err
				}
				if end.Type != gjson.Number {
					return nil, &command.ShapeError{Want: "numeric time", Got: end.Type.String()}
				}
				took := end.Float() - float64(start.UnixNano())/float64(time.Second)
				return command.Text(fmt.Sprintf("took %.2f seconds", took)), nil
			},
		})
	}
}
