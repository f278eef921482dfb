package handler

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"racbot/src-bot/command"
	"racbot/src-bot/utils"

	"golang.org/x/text/unicode/runenames"
)

func CharInfo(as *utils.AppState) {
	as.AddCommand(&command.Command{
		Name:        "charinfo",
		Aliases:     []string{"char"},
		Description: "Get the information of up to 25 characters.",
		Args: []command.Arg{
			{Name: "characters", Description: "The characters to look up", Required: true, Rest: true, MaxLen: 25},
		},
		Run: charInfoHandler,
	})
}

func charInfoHandler(_ context.Context, inv *command.Invocation) (*command.Output, error) {
	text := inv.Args.String("characters")
	lines := make([]string, 0, utf8.RuneCountInString(text))
	for _, r := range text {
		lines = append(lines, describeRune(r))
	}
	msg := strings.Join(lines, "\n")
	if n := utf8.RuneCountInString(msg); n > command.MessageLimit {
		return nil, &command.ValidationError{
			Arg:     "characters",
			Message: fmt.Sprintf("The result is too big to send (%d characters).", n),
		}
	}
	return command.Text(msg), nil
}

func describeRune(r rune) string {
	name := runenames.Name(r)
	if name == "" {
		name = "Unknown Character"
	}
	return fmt.Sprintf("`\\U%08x`: %s - %c — <http://www.fileformat.info/info/unicode/char/%x>", r, name, r, r)
}
