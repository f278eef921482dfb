package command

import (
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"
)

// Responder delivers the messages of one invocation.
type Responder interface {
	// Acknowledge signals that work started. Called once, after admission.
	Acknowledge() error
	Reply(msg *discordgo.MessageSend) (*discordgo.Message, error)
	// FollowUp sends msg as a reply to parent, which may be nil.
	FollowUp(parent *discordgo.Message, msg *discordgo.MessageSend) (*discordgo.Message, error)
}

func noMentions() *discordgo.MessageAllowedMentions {
	return &discordgo.MessageAllowedMentions{Parse: []discordgo.AllowedMentionType{}}
}

type MessageSession interface {
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelTyping(channelID string, options ...discordgo.RequestOption) error
}

// MessageResponder replies to a prefix command message.
type MessageResponder struct {
	s MessageSession
	m *discordgo.Message
}

func NewMessageResponder(s MessageSession, m *discordgo.Message) *MessageResponder {
	return &MessageResponder{s: s, m: m}
}

func (r *MessageResponder) Acknowledge() error {
	if err := r.s.ChannelTyping(r.m.ChannelID); err != nil {
		return fmt.Errorf("(*MessageResponder).Acknowledge: %w", err)
	}
	return nil
}

func (r *MessageResponder) Reply(msg *discordgo.MessageSend) (*discordgo.Message, error) {
	return r.send(r.m.Reference(), msg)
}

func (r *MessageResponder) FollowUp(parent *discordgo.Message, msg *discordgo.MessageSend) (*discordgo.Message, error) {
	if parent == nil {
		parent = r.m
	}
	return r.send(parent.Reference(), msg)
}

func (r *MessageResponder) send(ref *discordgo.MessageReference, msg *discordgo.MessageSend) (*discordgo.Message, error) {
	out := *msg
	out.Reference = ref
	out.AllowedMentions = noMentions()
	sent, err := r.s.ChannelMessageSendComplex(r.m.ChannelID, &out)
	if err != nil {
		return nil, fmt.Errorf("(*MessageResponder).send: %w", err)
	}
	return sent, nil
}

type InteractionSession interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	InteractionResponseEdit(interaction *discordgo.Interaction, newresp *discordgo.WebhookEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
	FollowupMessageCreate(interaction *discordgo.Interaction, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// InteractionResponder answers a slash command. Once acknowledged the
// deferred response is edited in place.
type InteractionResponder struct {
	s        InteractionSession
	i        *discordgo.Interaction
	mu       sync.Mutex
	deferred bool
	replied  bool
}

func NewInteractionResponder(s InteractionSession, i *discordgo.Interaction) *InteractionResponder {
	return &InteractionResponder{s: s, i: i}
}

func (r *InteractionResponder) Acknowledge() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deferred || r.replied {
		return nil
	}
	err := r.s.InteractionRespond(r.i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	})
	if err != nil {
		return fmt.Errorf("(*InteractionResponder).Acknowledge: %w", err)
	}
	r.deferred = true
	return nil
}

func (r *InteractionResponder) Reply(msg *discordgo.MessageSend) (*discordgo.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.replied {
		return r.followUp(msg)
	}
	r.replied = true

	if r.deferred {
		embeds := msg.Embeds
		content := msg.Content
		sent, err := r.s.InteractionResponseEdit(r.i, &discordgo.WebhookEdit{
			Content:         &content,
			Embeds:          &embeds,
			Files:           msg.Files,
			AllowedMentions: noMentions(),
		})
		if err != nil {
			return nil, fmt.Errorf("(*InteractionResponder).Reply: %w", err)
		}
		return sent, nil
	}

	err := r.s.InteractionRespond(r.i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content:         msg.Content,
			Embeds:          msg.Embeds,
			Files:           msg.Files,
			AllowedMentions: noMentions(),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("(*InteractionResponder).Reply: %w", err)
	}
	return nil, nil
}

func (r *InteractionResponder) FollowUp(_ *discordgo.Message, msg *discordgo.MessageSend) (*discordgo.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.followUp(msg)
}

func (r *InteractionResponder) followUp(msg *discordgo.MessageSend) (*discordgo.Message, error) {
	sent, err := r.s.FollowupMessageCreate(r.i, true, &discordgo.WebhookParams{
		Content:         msg.Content,
		Embeds:          msg.Embeds,
		Files:           msg.Files,
		AllowedMentions: noMentions(),
	})
	if err != nil {
		return nil, fmt.Errorf("(*InteractionResponder).FollowUp: %w", err)
	}
	return sent, nil
}
