package roguessr_handler

import (
	"context"

	"racbot/src-bot/api"
	"racbot/src-bot/command"
	"racbot/src-bot/utils"

	"github.com/bwmarrin/discordgo"
	"github.com/tidwall/gjson"
)

// discord caps an embed at 25 fields
const maxFields = 25

func info(as *utils.AppState) *command.Command {
	return &command.Command{
		Name:        "roguessr server info",
		Description: "Show what the API knows about a RoGuessr server.",
		Args:        []command.Arg{serverIDArg},
		Access:      command.AccessModerator,
		Run:         infoHandler(as),
	}
}

func infoHandler(as *utils.AppState) command.HandlerFunc {
	return func(ctx context.Context, inv *command.Invocation) (*command.Output, error) {
		serverID := inv.Args.String("server_id")
		return command.Execute(ctx, as.API, inv, command.Call{
			Request: api.Request{
				Endpoint: api.RoGuessrInfo,
				Query: map[string]string{
					"mod":       inv.Actor.Username,
					"server_id": serverID,
				},
			},
			Render: func(res *api.Response) (*command.Output, error) {
				body := res.Body.JSON()
				if !body.IsObject() {
					return command.Text("done"), nil
				}
				return &command.Output{Embeds: []*discordgo.MessageEmbed{infoEmbed(serverID, body)}}, nil
			},
		})
	}
}

func infoEmbed(serverID string, body gjson.Result) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{Title: "Server " + serverID}
	body.ForEach(func(key, value gjson.Result) bool {
		if len(embed.Fields) == maxFields {
			return false
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   utils.HumanizeKey(key.String()),
			Value:  fieldValue(value),
			Inline: value.Type != gjson.JSON,
		})
		return true
	})
	if len(embed.Fields) == 0 {
		embed.Description = "No details."
	}
	return embed
}

func fieldValue(v gjson.Result) string {
	switch {
	case v.Type == gjson.JSON:
		return "```json\n" + command.Truncate(v.Raw, command.FieldValueLimit-12) + "\n```"
	case v.Type == gjson.Null, v.String() == "":
		return "-"
	default:
		return command.Truncate(v.String(), command.FieldValueLimit)
	}
}
