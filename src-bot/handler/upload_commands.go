package handler

import (
	"context"
	"fmt"

	"racbot/src-bot/api"
	"racbot/src-bot/command"
	"racbot/src-bot/utils"
)

type commandInfo struct {
	Name        string   `json:"name"`
	Aliases     []string `json:"aliases"`
	Description string   `json:"description"`
	Usage       string   `json:"usage"`
	Cooldown    float64  `json:"cooldown"`
	Access      string   `json:"access"`
	GuildOnly   bool     `json:"guild_only"`
}

// UploadCommands publishes the command table to the API so it can list
// the bot's commands.
func UploadCommands(ctx context.Context, as *utils.AppState) error {
	cmds := as.Router.Commands()
	infos := make([]commandInfo, 0, len(cmds))
	for _, cmd := range cmds {
		infos = append(infos, describeCommand(as.Router.Prefix(), cmd))
	}
	if _, err := as.API.Call(ctx, api.Request{
		Endpoint: api.BotCommandsUpload,
		JSON:     map[string]any{"commands": infos},
	}); err != nil {
		return fmt.Errorf("UploadCommands: %w", err)
	}
	return nil
}

func describeCommand(prefix string, cmd *command.Command) commandInfo {
	usage := prefix + cmd.Name
	if sig := cmd.Signature(); sig != "" {
		usage += " " + sig
	}
	aliases := cmd.Aliases
	if aliases == nil {
		aliases = []string{}
	}
	return commandInfo{
		Name:        cmd.Name,
		Aliases:     aliases,
		Description: cmd.Description,
		Usage:       usage,
		Cooldown:    cmd.Cooldown.Seconds(),
		Access:      cmd.Access.String(),
		GuildOnly:   cmd.GuildOnly,
	}
}
