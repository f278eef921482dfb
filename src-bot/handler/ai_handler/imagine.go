package ai_handler

import (
	"context"
	"net/http"
	"time"

	"racbot/src-bot/api"
	"racbot/src-bot/command"
	"racbot/src-bot/utils"
)

func imagine(as *utils.AppState) *command.Command {
	return &command.Command{
		Name:        "ai imagine",
		Description: "Generate an image from a prompt.",
		Flags: []command.Arg{
			{Name: "prompt", Description: "What to draw", Required: true, MaxLen: 500},
			{Name: "steps", Description: "Diffusion steps", Kind: command.ArgInt, Default: "25", Min: 1, Max: 50},
		},
		Cooldown: 3 * time.Second,
		Run:      imagineHandler(as),
	}
}

func imagineHandler(as *utils.AppState) command.HandlerFunc {
	return func(ctx context.Context, inv *command.Invocation) (*command.Output, error) {
		prompt := inv.Args.String("prompt")
		return command.Execute(ctx, as.API, inv, command.Call{
			Request: api.Request{
				Endpoint: api.AIImagineCreate,
				JSON: map[string]any{
					"prompt": prompt,
					"steps":  inv.Args.Int("steps"),
				},
			},
			Expect: command.ExpectImage,
			Render: func(res *api.Response) (*command.Output, error) {
				return &command.Output{Image: &command.Image{
					Name:    imageName("imagine", res.Body.Raw),
					Data:    res.Body.Raw,
					Caption: prompt,
				}}, nil
			},
		})
	}
}

func imageName(base string, data []byte) string {
	switch http.DetectContentType(data) {
	case "image/jpeg":
		return base + ".jpg"
	case "image/gif":
		return base + ".gif"
	case "image/webp":
		return base + ".webp"
	default:
		return base + ".png"
	}
}
