package command_test

import (
	"testing"

	"racbot/src-bot/command"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMessageSession struct {
	sent   []*discordgo.MessageSend
	typing int
}

func (f *fakeMessageSession) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.sent = append(f.sent, data)
	return &discordgo.Message{ID: "sent", ChannelID: channelID}, nil
}

func (f *fakeMessageSession) ChannelTyping(string, ...discordgo.RequestOption) error {
	f.typing++
	return nil
}

func assertNoMentions(t *testing.T, m *discordgo.MessageAllowedMentions) {
	t.Helper()
	require.NotNil(t, m)
	assert.NotNil(t, m.Parse)
	assert.Empty(t, m.Parse)
	assert.Empty(t, m.Users)
	assert.Empty(t, m.Roles)
}

func TestMessageResponder_ThreadsRepliesWithoutMentions(t *testing.T) {
	s := &fakeMessageSession{}
	invoking := &discordgo.Message{ID: "m1", ChannelID: "chan", GuildID: "guild"}
	r := command.NewMessageResponder(s, invoking)

	require.NoError(t, r.Acknowledge())
	assert.Equal(t, 1, s.typing)

	msg := &discordgo.MessageSend{Content: "hi @everyone"}
	first, err := r.Reply(msg)
	require.NoError(t, err)
	first.ID = "m2"
	_, err = r.FollowUp(first, &discordgo.MessageSend{Content: "rest"})
	require.NoError(t, err)
	_, err = r.FollowUp(nil, &discordgo.MessageSend{Content: "orphan"})
	require.NoError(t, err)

	require.Len(t, s.sent, 3)
	assert.Equal(t, "m1", s.sent[0].Reference.MessageID)
	assert.Equal(t, "chan", s.sent[0].Reference.ChannelID)
	assert.Equal(t, "m2", s.sent[1].Reference.MessageID)
	assert.Equal(t, "m1", s.sent[2].Reference.MessageID)
	for _, sent := range s.sent {
		assertNoMentions(t, sent.AllowedMentions)
	}
	assert.Nil(t, msg.AllowedMentions, "the caller's message is not modified")
}

type fakeInteractionSession struct {
	responses []*discordgo.InteractionResponse
	edits     []*discordgo.WebhookEdit
	followUps []*discordgo.WebhookParams
}

func (f *fakeInteractionSession) InteractionRespond(_ *discordgo.Interaction, resp *discordgo.InteractionResponse, _ ...discordgo.RequestOption) error {
	f.responses = append(f.responses, resp)
	return nil
}

func (f *fakeInteractionSession) InteractionResponseEdit(_ *discordgo.Interaction, edit *discordgo.WebhookEdit, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.edits = append(f.edits, edit)
	return &discordgo.Message{ID: "original"}, nil
}

func (f *fakeInteractionSession) FollowupMessageCreate(_ *discordgo.Interaction, _ bool, data *discordgo.WebhookParams, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.followUps = append(f.followUps, data)
	return &discordgo.Message{ID: "follow-up"}, nil
}

func TestInteractionResponder_DeferredEditAndFollowUps(t *testing.T) {
	s := &fakeInteractionSession{}
	r := command.NewInteractionResponder(s, &discordgo.Interaction{ID: "i1"})

	require.NoError(t, r.Acknowledge())
	require.NoError(t, r.Acknowledge())
	require.Len(t, s.responses, 1)
	assert.Equal(t, discordgo.InteractionResponseDeferredChannelMessageWithSource, s.responses[0].Type)

	first, err := r.Reply(&discordgo.MessageSend{Content: "head"})
	require.NoError(t, err)
	_, err = r.FollowUp(first, &discordgo.MessageSend{Content: "rest"})
	require.NoError(t, err)
	_, err = r.Reply(&discordgo.MessageSend{Content: "again"})
	require.NoError(t, err)

	require.Len(t, s.edits, 1)
	require.NotNil(t, s.edits[0].Content)
	assert.Equal(t, "head", *s.edits[0].Content)
	assertNoMentions(t, s.edits[0].AllowedMentions)

	require.Len(t, s.followUps, 2)
	assert.Equal(t, "rest", s.followUps[0].Content)
	assert.Equal(t, "again", s.followUps[1].Content)
	for _, f := range s.followUps {
		assertNoMentions(t, f.AllowedMentions)
	}
}

func TestInteractionResponder_ImmediateReply(t *testing.T) {
	s := &fakeInteractionSession{}
	r := command.NewInteractionResponder(s, &discordgo.Interaction{ID: "i1"})

	_, err := r.Reply(&discordgo.MessageSend{Content: "pong"})
	require.NoError(t, err)

	require.Len(t, s.responses, 1)
	assert.Equal(t, discordgo.InteractionResponseChannelMessageWithSource, s.responses[0].Type)
	require.NotNil(t, s.responses[0].Data)
	assert.Equal(t, "pong", s.responses[0].Data.Content)
	assertNoMentions(t, s.responses[0].Data.AllowedMentions)
	assert.Empty(t, s.edits)
}
