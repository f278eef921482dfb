package handler

import (
	"context"
	"net/url"

	"racbot/src-bot/command"
	"racbot/src-bot/utils"
)

func Invite(as *utils.AppState) {
	as.AddCommand(&command.Command{
		Name:        "invite",
		Description: "Get a link to add the bot to a server.",
		Run: func(context.Context, *command.Invocation) (*command.Output, error) {
			link := inviteURL(as.Config)
			if link == "" {
				return command.Text("No invite link is configured."), nil
			}
			return command.Text("<" + link + ">"), nil
		},
	})
}

func inviteURL(cfg *utils.Config) string {
	if cfg.InviteURL != "" {
		return cfg.InviteURL
	}
	if cfg.DiscordClientID == "" {
		return ""
	}
	q := url.Values{}
	q.Set("client_id", cfg.DiscordClientID)
	q.Set("scope", "bot applications.commands")
	return "https://discord.com/oauth2/authorize?" + q.Encode()
}
