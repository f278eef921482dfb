package command

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
)

// Access is who may run a command.
type Access int

const (
	AccessEveryone Access = iota
	AccessModerator
	AccessOperator
)

func (a Access) String() string {
	switch a {
	case AccessModerator:
		return "a moderator"
	case AccessOperator:
		return "the bot operator"
	default:
		return "anyone"
	}
}

// Actor is whoever invoked a command.
type Actor struct {
	ID          string
	Username    string
	DisplayName string
	AvatarURL   string
}

func (a Actor) Name() string {
	if a.DisplayName != "" {
		return a.DisplayName
	}
	return a.Username
}

// Invocation is one execution of a command. It is created by the router
// after admission and never shared between executions.
type Invocation struct {
	ID        uuid.UUID
	Command   *Command
	Actor     Actor
	Operator  bool
	Args      Args
	Deadline  time.Duration
	ChannelID string
	GuildID   string
	Prefix    string
	Logger    *slog.Logger
}

type HandlerFunc func(ctx context.Context, inv *Invocation) (*Output, error)

// Command is a user-invokable action. Name is the full space separated
// path, e.g. "iisr tempban".
type Command struct {
	Name        string
	Aliases     []string
	Description string
	Args        []Arg
	Flags       []Arg
	Cooldown    time.Duration
	Access      Access
	GuildOnly   bool
	Run         HandlerFunc
}

// Signature renders the declared arguments, e.g.
// "-target <target> -duration <duration> [-reason <reason>]".
func (c *Command) Signature() string {
	parts := make([]string, 0, len(c.Args)+len(c.Flags))
	for _, a := range c.Args {
		parts = append(parts, a.positional())
	}
	for _, f := range c.Flags {
		parts = append(parts, f.flag())
	}
	return strings.Join(parts, " ")
}

func (c *Command) Usage(prefix string) string {
	line := prefix + c.Name
	if sig := c.Signature(); sig != "" {
		line += " " + sig
	}
	return "```" + line + "```"
}

// Output is what a successful invocation renders.
type Output struct {
	Content string
	Embeds  []*discordgo.MessageEmbed
	Image   *Image
}

// Image is a binary attachment decorated with an embed.
type Image struct {
	Name    string
	Data    []byte
	Caption string
}

func Text(content string) *Output {
	return &Output{Content: content}
}
