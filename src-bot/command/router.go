package command

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
)

const (
	// subcommand name a runnable group node gets on the slash side
	selfSubcommand = "bot"
	maxPathDepth   = 3
)

// Observer is told the outcome class of every invocation and how long
// each reply took to send.
type Observer interface {
	ObserveCommand(name, outcome string, took time.Duration)
	ObserveSend(took time.Duration)
}

type Options struct {
	Prefix     string
	OperatorID string
	// usernames allowed to run AccessModerator commands
	Moderators []string
	Deadline   time.Duration
	Observer   Observer
	Logger     *slog.Logger
}

// Router owns the command table, admits invocations and renders their
// outcome exactly once.
type Router struct {
	opts       Options
	moderators map[string]struct{}
	commands   map[string]*Command
	lookup     map[string]*Command
	cooldowns  *Cooldowns
	logger     *slog.Logger
}

func NewRouter(opts Options) *Router {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	mods := make(map[string]struct{}, len(opts.Moderators))
	for _, m := range opts.Moderators {
		if m = strings.ToLower(strings.TrimSpace(m)); m != "" {
			mods[m] = struct{}{}
		}
	}
	return &Router{
		opts:       opts,
		moderators: mods,
		commands:   map[string]*Command{},
		lookup:     map[string]*Command{},
		cooldowns:  NewCooldowns(),
		logger:     opts.Logger,
	}
}

func normalize(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

// Register adds cmds to the table. Like http.ServeMux it panics on a
// malformed or duplicate registration.
func (r *Router) Register(cmds ...*Command) {
	for _, cmd := range cmds {
		cmd.Name = normalize(cmd.Name)
		depth := len(strings.Fields(cmd.Name))
		if depth == 0 || depth > maxPathDepth {
			panic(fmt.Sprintf("command: invalid name %q", cmd.Name))
		}
		if cmd.Run == nil {
			panic(fmt.Sprintf("command: %q has no Run", cmd.Name))
		}
		keys := []string{cmd.Name}
		for _, alias := range cmd.Aliases {
			keys = append(keys, normalize(alias))
		}
		for _, key := range keys {
			if _, dup := r.lookup[key]; dup {
				panic(fmt.Sprintf("command: %q registered twice", key))
			}
			r.lookup[key] = cmd
		}
		r.commands[cmd.Name] = cmd
	}
}

// Commands returns the table sorted by name.
func (r *Router) Commands() []*Command {
	cmds := make([]*Command, 0, len(r.commands))
	for _, cmd := range r.commands {
		cmds = append(cmds, cmd)
	}
	sort.Slice(cmds, func(i, j int) bool { return cmds[i].Name < cmds[j].Name })
	return cmds
}

// Lookup finds a command by its name or one of its aliases.
func (r *Router) Lookup(name string) (*Command, bool) {
	cmd, ok := r.lookup[normalize(name)]
	return cmd, ok
}

func (r *Router) Prefix() string {
	return r.opts.Prefix
}

func (r *Router) Cooldowns() *Cooldowns {
	return r.cooldowns
}

// resolve finds the longest registered path at the start of text. When
// none matches but text names a group, group is set instead.
func (r *Router) resolve(text string) (cmd *Command, rest string, group string) {
	tokens := tokenize(text)
	words := make([]string, 0, maxPathDepth)
	for i := 0; i < len(tokens) && i < maxPathDepth; i++ {
		words = append(words, strings.ToLower(tokens[i].text))
	}
	for n := len(words); n >= 1; n-- {
		if cmd, ok := r.lookup[strings.Join(words[:n], " ")]; ok {
			return cmd, text[tokens[n-1].end:], ""
		}
	}
	for n := len(words); n >= 1; n-- {
		if key := strings.Join(words[:n], " "); r.isGroup(key) {
			return nil, "", key
		}
	}
	return nil, "", ""
}

func (r *Router) isGroup(path string) bool {
	return len(r.children(path)) > 0
}

// children returns every command below path, sorted.
func (r *Router) children(path string) []*Command {
	var out []*Command
	for _, cmd := range r.Commands() {
		if strings.HasPrefix(cmd.Name, path+" ") {
			out = append(out, cmd)
		}
	}
	return out
}

// GroupHelp lists the signatures of every command below path.
func (r *Router) GroupHelp(path string) *Output {
	var b strings.Builder
	b.WriteString("```\n")
	for _, cmd := range r.children(path) {
		line := r.opts.Prefix + cmd.Name
		if sig := cmd.Signature(); sig != "" {
			line += " " + sig
		}
		b.WriteString(line + "\n")
	}
	b.WriteString("```")
	return Text(b.String())
}

// Message is a prefix command with the prefix already stripped.
type Message struct {
	Actor     Actor
	ChannelID string
	GuildID   string
	Content   string
	Out       Responder
}

func (r *Router) HandleMessage(ctx context.Context, msg Message) {
	cmd, rest, group := r.resolve(msg.Content)
	if cmd == nil {
		if group == "" {
			return
		}
		// a runnable node with children is matched before this point
		r.reply(r.logger, msg.Out, r.GroupHelp(group).Messages(msg.Actor))
		return
	}
	r.invoke(ctx, cmd, msg.Actor, msg.ChannelID, msg.GuildID, msg.Out, func() (Args, error) {
		return cmd.Parse(rest)
	})
}

// HandleInteraction runs the slash command carried by i.
func (r *Router) HandleInteraction(ctx context.Context, s InteractionSession, i *discordgo.InteractionCreate) {
	data := i.ApplicationCommandData()
	path := []string{data.Name}
	opts := data.Options
	for len(opts) == 1 &&
		(opts[0].Type == discordgo.ApplicationCommandOptionSubCommand ||
			opts[0].Type == discordgo.ApplicationCommandOptionSubCommandGroup) {
		path = append(path, opts[0].Name)
		opts = opts[0].Options
	}

	out := NewInteractionResponder(s, i.Interaction)
	key := normalize(strings.Join(path, " "))
	cmd, ok := r.commands[key]
	if !ok && strings.HasSuffix(key, " "+selfSubcommand) {
		cmd, ok = r.commands[strings.TrimSuffix(key, " "+selfSubcommand)]
	}
	if !ok {
		r.logger.Warn("HandleInteraction: unknown command", "path", key)
		r.reply(r.logger, out, []*discordgo.MessageSend{{Content: "Unknown command."}})
		return
	}

	values := make(map[string]string, len(opts))
	for _, opt := range opts {
		switch opt.Type {
		case discordgo.ApplicationCommandOptionInteger:
			values[opt.Name] = strconv.FormatInt(opt.IntValue(), 10)
		case discordgo.ApplicationCommandOptionString:
			values[opt.Name] = opt.StringValue()
		default:
			values[opt.Name] = fmt.Sprint(opt.Value)
		}
	}

	var user *discordgo.User
	if i.Member != nil {
		user = i.Member.User
	} else {
		user = i.User
	}
	r.invoke(ctx, cmd, ActorFromUser(user, i.Member), i.ChannelID, i.GuildID, out, func() (Args, error) {
		return cmd.Bind(values)
	})
}

func (r *Router) invoke(
	ctx context.Context,
	cmd *Command,
	actor Actor,
	channelID, guildID string,
	out Responder,
	bind func() (Args, error),
) {
	inv := &Invocation{
		ID:        uuid.New(),
		Command:   cmd,
		Actor:     actor,
		Operator:  r.opts.OperatorID != "" && actor.ID == r.opts.OperatorID,
		Deadline:  r.opts.Deadline,
		ChannelID: channelID,
		GuildID:   guildID,
		Prefix:    r.opts.Prefix,
	}
	inv.Logger = r.logger.With("invocation", inv.ID.String(), "command", cmd.Name, "actor", actor.Username)

	start := time.Now()
	output, err := r.dispatch(ctx, cmd, inv, out, bind)
	took := time.Since(start)
	if err != nil {
		err = Classify(err)
	}
	outcome := class(err)
	if r.opts.Observer != nil {
		r.opts.Observer.ObserveCommand(cmd.Name, outcome, took)
	}

	if err != nil {
		if outcome == "internal" {
			inv.Logger.Error("command failed", "error", err)
		} else {
			inv.Logger.Debug("command failed", "class", outcome, "error", err)
		}
		r.reply(inv.Logger, out, []*discordgo.MessageSend{RenderError(inv, r.opts.Prefix, err)})
		return
	}
	inv.Logger.Debug("command done", "took", took)
	if output != nil {
		r.reply(inv.Logger, out, output.Messages(inv.Actor))
	}
}

// dispatch walks admission, validation and execution in that order. No
// network call happens before bind succeeds.
func (r *Router) dispatch(ctx context.Context, cmd *Command, inv *Invocation, out Responder, bind func() (Args, error)) (*Output, error) {
	if err := r.admit(cmd, inv); err != nil {
		return nil, err
	}
	args, err := bind()
	if err != nil {
		return nil, err
	}
	inv.Args = args

	if err := out.Acknowledge(); err != nil {
		inv.Logger.Warn("can't acknowledge", "error", err)
	}
	return r.run(ctx, cmd, inv)
}

func (r *Router) admit(cmd *Command, inv *Invocation) error {
	if cmd.GuildOnly && inv.GuildID == "" {
		return &PermissionError{Command: cmd.Name, Reason: "This command can't be used in private messages."}
	}
	switch cmd.Access {
	case AccessOperator:
		if !inv.Operator {
			return &PermissionError{Command: cmd.Name, Reason: fmt.Sprintf("You need to be %s to use this command.", cmd.Access)}
		}
	case AccessModerator:
		if _, ok := r.moderators[strings.ToLower(inv.Actor.Username)]; !ok && !inv.Operator {
			return &PermissionError{Command: cmd.Name, Reason: fmt.Sprintf("You need to be %s to use this command.", cmd.Access)}
		}
	}
	if wait := r.cooldowns.Admit(cmd.Name+":"+inv.Actor.ID, cmd.Cooldown); wait > 0 {
		return &CooldownError{RetryAfter: wait}
	}
	return nil
}

func (r *Router) run(ctx context.Context, cmd *Command, inv *Invocation) (output *Output, err error) {
	defer func() {
		if p := recover(); p != nil {
			inv.Logger.Error("command panicked", "panic", p, "stack", string(debug.Stack()))
			output, err = nil, &InternalError{Err: fmt.Errorf("panic: %v", p)}
		}
	}()
	return cmd.Run(ctx, inv)
}

func (r *Router) reply(logger *slog.Logger, out Responder, msgs []*discordgo.MessageSend) {
	if len(msgs) == 0 {
		return
	}
	start := time.Now()
	first, err := out.Reply(msgs[0])
	if r.opts.Observer != nil {
		r.opts.Observer.ObserveSend(time.Since(start))
	}
	if err != nil {
		logger.Warn("can't respond", "error", err)
		return
	}
	for _, msg := range msgs[1:] {
		if _, err := out.FollowUp(first, msg); err != nil {
			logger.Warn("can't follow up", "error", err)
			return
		}
	}
}

// OnMessageCreate is the discordgo handler for prefix commands.
func (r *Router) OnMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	botID := ""
	if s.State != nil && s.State.User != nil {
		botID = s.State.User.ID
	}
	content, ok := StripPrefix(m.Content, r.opts.Prefix, botID)
	if !ok {
		return
	}
	r.HandleMessage(context.Background(), Message{
		Actor:     ActorFromUser(m.Author, m.Member),
		ChannelID: m.ChannelID,
		GuildID:   m.GuildID,
		Content:   content,
		Out:       NewMessageResponder(s, m.Message),
	})
}

// StripPrefix removes the command prefix (case-insensitive) or a leading
// mention of botID.
func StripPrefix(content, prefix, botID string) (string, bool) {
	if prefix != "" && len(content) >= len(prefix) && strings.EqualFold(content[:len(prefix)], prefix) {
		return content[len(prefix):], true
	}
	if botID == "" {
		return "", false
	}
	for _, mention := range []string{"<@" + botID + ">", "<@!" + botID + ">"} {
		if strings.HasPrefix(content, mention) {
			return strings.TrimSpace(content[len(mention):]), true
		}
	}
	return "", false
}

func ActorFromUser(u *discordgo.User, member *discordgo.Member) Actor {
	if u == nil {
		return Actor{}
	}
	a := Actor{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.GlobalName,
		AvatarURL:   u.AvatarURL(""),
	}
	if member != nil && member.Nick != "" {
		a.DisplayName = member.Nick
	}
	return a
}

// ApplicationCommands builds the slash command tree from the table.
func (r *Router) ApplicationCommands() []*discordgo.ApplicationCommand {
	var (
		tops  []*discordgo.ApplicationCommand
		byTop = map[string]*discordgo.ApplicationCommand{}
	)
	topFor := func(name string) *discordgo.ApplicationCommand {
		if top, ok := byTop[name]; ok {
			return top
		}
		top := &discordgo.ApplicationCommand{Name: name, Description: name + " commands"}
		byTop[name] = top
		tops = append(tops, top)
		return top
	}

	for _, cmd := range r.Commands() {
		parts := strings.Fields(cmd.Name)
		top := topFor(parts[0])
		branch := r.isGroup(cmd.Name)
		switch len(parts) {
		case 1:
			if branch {
				top.Options = append(top.Options, subcommand(selfSubcommand, cmd))
			} else {
				top.Description = describe(cmd.Description, cmd.Name)
				top.Options = options(cmd)
			}
		case 2:
			if branch {
				g := subcommandGroup(top, parts[1])
				g.Options = append(g.Options, subcommand(selfSubcommand, cmd))
			} else {
				top.Options = append(top.Options, subcommand(parts[1], cmd))
			}
		default:
			g := subcommandGroup(top, parts[1])
			g.Options = append(g.Options, subcommand(parts[2], cmd))
		}
	}
	return tops
}

func subcommandGroup(top *discordgo.ApplicationCommand, name string) *discordgo.ApplicationCommandOption {
	for _, o := range top.Options {
		if o.Type == discordgo.ApplicationCommandOptionSubCommandGroup && o.Name == name {
			return o
		}
	}
	g := &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionSubCommandGroup,
		Name:        name,
		Description: name + " commands",
	}
	top.Options = append(top.Options, g)
	return g
}

func subcommand(name string, cmd *Command) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionSubCommand,
		Name:        name,
		Description: describe(cmd.Description, cmd.Name),
		Options:     options(cmd),
	}
}

// options lists args then flags, required ones first.
func options(cmd *Command) []*discordgo.ApplicationCommandOption {
	var required, optional []*discordgo.ApplicationCommandOption
	for _, list := range [][]Arg{cmd.Args, cmd.Flags} {
		for _, a := range list {
			o := option(a)
			if a.Required {
				required = append(required, o)
			} else {
				optional = append(optional, o)
			}
		}
	}
	return append(required, optional...)
}

func option(a Arg) *discordgo.ApplicationCommandOption {
	o := &discordgo.ApplicationCommandOption{
		Name:        a.Name,
		Description: describe(a.Description, a.Name),
		Required:    a.Required,
	}
	switch a.Kind {
	case ArgInt:
		o.Type = discordgo.ApplicationCommandOptionInteger
		if a.Min != 0 || a.Max != 0 {
			lo := float64(a.Min)
			o.MinValue = &lo
			o.MaxValue = float64(a.Max)
		}
	default:
		o.Type = discordgo.ApplicationCommandOptionString
		o.MaxLength = a.MaxLen
	}
	for _, c := range a.Choices {
		o.Choices = append(o.Choices, &discordgo.ApplicationCommandOptionChoice{Name: c, Value: c})
	}
	return o
}

// describe fits Discord's 1..100 character description rule.
func describe(desc, fallback string) string {
	if desc == "" {
		desc = fallback
	}
	head, _ := SplitMessage(desc, 100)
	return head
}
