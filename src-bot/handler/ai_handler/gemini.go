package ai_handler

import (
	"context"
	"time"

	"racbot/src-bot/api"
	"racbot/src-bot/command"
	"racbot/src-bot/utils"
)

func gemini(as *utils.AppState) *command.Command {
	return &command.Command{
		Name:        "ai gemini",
		Description: "Ask Gemini something.",
		Args: []command.Arg{
			{Name: "prompt", Description: "What to ask", Required: true, Rest: true, MaxLen: 2000},
		},
		Cooldown: 3 * time.Second,
		Run: func(ctx context.Context, inv *command.Invocation) (*command.Output, error) {
			return command.Execute(ctx, as.API, inv, command.Call{
				Request: api.Request{
					Endpoint: api.AIGeminiCreate,
					JSON:     map[string]string{"prompt": inv.Args.String("prompt")},
				},
				Expect: command.ExpectObject,
				Render: renderResponse,
			})
		},
	}
}

// renderResponse replies with the "response" text of a chat completion.
func renderResponse(res *api.Response) (*command.Output, error) {
	text, err := command.RequireField(res, "response")
	if err != nil {
		return nil, err
	}
	if text.String() == "" {
		return nil, &command.ShapeError{Want: "response", Err: command.ErrEmptyResult}
	}
	return command.Text(text.String()), nil
}
