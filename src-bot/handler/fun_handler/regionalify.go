package fun_handler

import (
	"context"
	"strings"

	"racbot/src-bot/command"
)

var regionalReplacements = map[rune]string{
	'!': "❗",
	'?': "❓",
	'#': "#️⃣",
	'0': "0️⃣",
	'1': "1️⃣",
	'2': "2️⃣",
	'3': "3️⃣",
	'4': "4️⃣",
	'5': "5️⃣",
	'6': "6️⃣",
	'7': "7️⃣",
	'8': "8️⃣",
	'9': "9️⃣",
}

func regionalify() *command.Command {
	return &command.Command{
		Name:        "regionalify",
		Aliases:     []string{"regional"},
		Description: "Replace letters and numbers with regional indicator blocks.",
		Args: []command.Arg{
			{Name: "text", Description: "The text to convert", Required: true, Rest: true, MaxLen: 200},
		},
		Run: func(_ context.Context, inv *command.Invocation) (*command.Output, error) {
			return command.Text(regional(inv.Args.String("text"))), nil
		},
	}
}

func regional(text string) string {
	var b strings.Builder
	for _, r := range text {
		switch {
		case 'a' <= r && r <= 'z', 'A' <= r && r <= 'Z':
			b.WriteString(":regional_indicator_" + strings.ToLower(string(r)) + ":")
		case regionalReplacements[r] != "":
			b.WriteString(regionalReplacements[r])
		case isEmoji(r):
			b.WriteRune(r)
		default:
			b.WriteString(" ")
		}
	}
	return b.String()
}

// isEmoji approximates the pictographic blocks, joiners and variation
// selectors.
func isEmoji(r rune) bool {
	switch r {
	case 0x200d, 0x231a, 0x23cf, 0x23e9, 0xfe0f:
		return true
	}
	return r >= 0x24c2
}
