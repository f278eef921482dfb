package utils

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// Send a hidden reply to the interaction, for interactions that no
// command owns.
func InteractRespHiddenReply(s *discordgo.Session, i *discordgo.InteractionCreate, content string) error {
	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags:   discordgo.MessageFlagsEphemeral,
			Content: content,
		},
	}); err != nil {
		return fmt.Errorf("InteractRespHiddenReply: %w", err)
	}
	return nil
}
