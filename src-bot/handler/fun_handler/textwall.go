package fun_handler

import (
	"context"
	"strings"

	"racbot/src-bot/command"
)

func textwall() *command.Command {
	return &command.Command{
		Name:        "textwall",
		Description: "Create a wall of text.",
		Args: []command.Arg{
			{Name: "text", Description: "The text to use", Required: true, Rest: true, MaxLen: 200},
		},
		Run: func(_ context.Context, inv *command.Invocation) (*command.Output, error) {
			return command.Text(wall(inv.Args.String("text"))), nil
		},
	}
}

// wall stacks every rotation of text, one per line.
func wall(text string) string {
	runes := []rune(text)
	var b strings.Builder
	for i := range runes {
		b.WriteString("\n")
		b.WriteString(string(runes[i:]))
		b.WriteString(" ")
		b.WriteString(string(runes[:i]))
	}
	return b.String()
}
