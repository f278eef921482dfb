package ai_handler

import (
	"racbot/src-bot/utils"
)

// Init registers the "ai" command group.
func Init(as *utils.AppState) {
	as.AddCommand(
		gemini(as),
		moderate(as),
		imagine(as),
		cai(as),
		caiHistory(as),
	)
}
