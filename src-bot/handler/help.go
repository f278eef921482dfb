package handler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"racbot/src-bot/command"
	"racbot/src-bot/utils"

	"github.com/bwmarrin/discordgo"
)

func Help(as *utils.AppState) {
	as.AddCommand(&command.Command{
		Name:        "help",
		Description: "Shows help about the bot, a command, or a group.",
		Args: []command.Arg{
			{Name: "command", Description: "A command or group name", Rest: true, MaxLen: 100},
		},
		Cooldown: 3 * time.Second,
		Run:      helpHandler(as),
	})
}

func helpHandler(as *utils.AppState) command.HandlerFunc {
	return func(_ context.Context, inv *command.Invocation) (*command.Output, error) {
		prefix := as.Router.Prefix()
		name := inv.Args.String("command")
		if name == "" {
			return overview(prefix, as.Router.Commands()), nil
		}
		if cmd, ok := as.Router.Lookup(name); ok {
			return &command.Output{Embeds: []*discordgo.MessageEmbed{commandEmbed(prefix, cmd)}}, nil
		}
		path := strings.Join(strings.Fields(strings.ToLower(name)), " ")
		for _, cmd := range as.Router.Commands() {
			if strings.HasPrefix(cmd.Name, path+" ") {
				return as.Router.GroupHelp(path), nil
			}
		}
		return nil, &command.ValidationError{
			Arg:     "command",
			Message: fmt.Sprintf("No command called `%s` found.", name),
		}
	}
}

// overview lists every command under its top level group.
func overview(prefix string, cmds []*command.Command) *command.Output {
	embed := &discordgo.MessageEmbed{
		Title: "Commands",
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Use %shelp <command> for more info on a command.", prefix),
		},
	}
	fields := map[string]*discordgo.MessageEmbedField{}
	for _, cmd := range cmds {
		top := strings.Fields(cmd.Name)[0]
		field, ok := fields[top]
		if !ok {
			if len(embed.Fields) == 25 {
				continue
			}
			field = &discordgo.MessageEmbedField{Name: top}
			fields[top] = field
			embed.Fields = append(embed.Fields, field)
		} else {
			field.Value += " "
		}
		field.Value += "`" + cmd.Name + "`"
	}
	return &command.Output{Embeds: []*discordgo.MessageEmbed{embed}}
}

func commandEmbed(prefix string, cmd *command.Command) *discordgo.MessageEmbed {
	title := prefix + cmd.Name
	if sig := cmd.Signature(); sig != "" {
		title += " " + sig
	}
	desc := cmd.Description
	if desc == "" {
		desc = "No help given..."
	}
	embed := &discordgo.MessageEmbed{Title: title, Description: desc}
	if len(cmd.Aliases) > 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "Aliases", Value: strings.Join(cmd.Aliases, ", "), Inline: true,
		})
	}
	if cmd.Cooldown > 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "Cooldown", Value: cmd.Cooldown.String(), Inline: true,
		})
	}
	if cmd.Access != command.AccessEveryone {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "Who", Value: cmd.Access.String(), Inline: true,
		})
	}
	if cmd.GuildOnly {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "Where", Value: "servers only", Inline: true,
		})
	}
	return embed
}
