package handler

import (
	"context"
	"log/slog"

	"racbot/src-bot/command"
	"racbot/src-bot/utils"
)

// Maintenance lets the operator cut every API command off without
// restarting the bot.
func Maintenance(as *utils.AppState) {
	as.AddCommand(&command.Command{
		Name:        "maintenance",
		Description: "Turn maintenance mode on or off.",
		Args: []command.Arg{
			{Name: "state", Description: "on, off or status", Default: "status", Choices: []string{"on", "off", "status"}},
		},
		Access: command.AccessOperator,
		Run:    maintenanceHandler(as),
	})
}

func maintenanceHandler(as *utils.AppState) command.HandlerFunc {
	return func(_ context.Context, inv *command.Invocation) (*command.Output, error) {
		switch inv.Args.String("state") {
		case "on":
			if !as.Flags.SetDisabled(true) {
				slog.Warn("maintenance mode on", "by", inv.Actor.Username)
			}
			return command.Text("Maintenance mode is on, API commands are disabled."), nil
		case "off":
			if as.Flags.SetDisabled(false) {
				slog.Info("maintenance mode off", "by", inv.Actor.Username)
			}
			return command.Text("Maintenance mode is off."), nil
		default:
			if as.Flags.Disabled() {
				return command.Text("Maintenance mode is on."), nil
			}
			return command.Text("Maintenance mode is off."), nil
		}
	}
}
