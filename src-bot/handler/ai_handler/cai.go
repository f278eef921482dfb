package ai_handler

import (
	"context"
	"fmt"
	"strings"

	"racbot/src-bot/api"
	"racbot/src-bot/command"
	"racbot/src-bot/utils"
)

const historyLength = 10

var characterArg = command.Arg{Name: "character_id", Description: "The character.ai character", Required: true, MaxLen: 100}

func cai(as *utils.AppState) *command.Command {
	return &command.Command{
		Name:        "ai cai",
		Description: "Talk to a character.ai character.",
		Args: []command.Arg{
			characterArg,
			{Name: "text", Description: "What to say", Required: true, Rest: true, MaxLen: 2000},
		},
		Run: func(ctx context.Context, inv *command.Invocation) (*command.Output, error) {
			return command.Execute(ctx, as.API, inv, command.Call{
				Request: api.Request{
					Endpoint: api.AICaiCreate,
					JSON: map[string]string{
						"character_id": inv.Args.String("character_id"),
						"text":         inv.Args.String("text"),
					},
				},
				Expect: command.ExpectObject,
				Render: renderResponse,
			})
		},
	}
}

func caiHistory(as *utils.AppState) *command.Command {
	return &command.Command{
		Name:        "ai cai-history",
		Description: "Show the latest messages with a character.ai character.",
		Args:        []command.Arg{characterArg},
		Run: func(ctx context.Context, inv *command.Invocation) (*command.Output, error) {
			return command.Execute(ctx, as.API, inv, command.Call{
				Request: api.Request{
					Endpoint: api.AICaiHistory,
					Query:    map[string]string{"character_id": inv.Args.String("character_id")},
				},
				Expect: command.ExpectObject,
				Render: renderHistory,
			})
		},
	}
}

func renderHistory(res *api.Response) (*command.Output, error) {
	history, err := command.RequireField(res, "history")
	if err != nil {
		return nil, err
	}
	if !history.IsArray() {
		return nil, &command.ShapeError{Want: "history array", Got: history.Type.String()}
	}
	messages := history.Array()
	if len(messages) == 0 {
		return command.Text("No messages yet."), nil
	}
	if len(messages) > historyLength {
		messages = messages[len(messages)-historyLength:]
	}
	lines := make([]string, 0, len(messages))
	for _, m := range messages {
		author := m.Get("author").String()
		if author == "" {
			author = "unknown"
		}
		lines = append(lines, fmt.Sprintf("**%s**: %s", author, m.Get("text").String()))
	}
	return command.Text(strings.Join(lines, "\n")), nil
}
