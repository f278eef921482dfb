package fun_handler

import "racbot/src-bot/utils"

// Init registers the fun commands at the top level.
func Init(as *utils.AppState) {
	as.AddCommand(
		textwall(),
		regionalify(),
		wordcloud(as, as.DgSession),
	)
}
