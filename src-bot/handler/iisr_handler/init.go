package iisr_handler

import (
	"racbot/src-bot/command"
	"racbot/src-bot/utils"
)

// Init registers the "iisr" command group.
func Init(as *utils.AppState) {
	as.AddCommand(
		tempban(as),
		permban(as),
	)
}

var banFlags = struct {
	target, serverID, reason command.Arg
}{
	target:   command.Arg{Name: "target", Description: "Roblox username to ban", Required: true},
	serverID: command.Arg{Name: "serverid", Description: "Server to ban from"},
	reason:   command.Arg{Name: "reason", Description: "Why the player is banned", MaxLen: 100},
}

// banQuery builds the audit query shared by both ban kinds.
func banQuery(inv *command.Invocation) map[string]string {
	reason := inv.Args.String("reason")
	if reason == "" {
		reason = "No reason provided"
	}
	q := map[string]string{
		"mod":    inv.Actor.Username,
		"reason": reason,
	}
	if id := inv.Args.String("serverid"); id != "" {
		q["server_id"] = id
	}
	return q
}
