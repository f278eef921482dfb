package roguessr_handler

import (
	"time"

	"racbot/src-bot/command"
	"racbot/src-bot/utils"
)

const cooldown = 3 * time.Second

// Init registers the "roguessr" command group. Every subcommand is guild
// only and shares the group's cooldown.
func Init(as *utils.AppState) {
	cmds := []*command.Command{
		shutdown(as),
		info(as),
		announce(as),
		announceAll(as),
		maps(as),
		changeMap(as),
	}
	for _, cmd := range cmds {
		cmd.GuildOnly = true
		cmd.Cooldown = cooldown
	}
	as.AddCommand(cmds...)
}

var serverIDArg = command.Arg{Name: "server_id", Description: "The game server", Required: true}
