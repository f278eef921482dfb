package command

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"racbot/src-bot/api"

	"github.com/bwmarrin/discordgo"
	"github.com/tidwall/gjson"
)

const (
	MessageLimit    = 2000
	FieldValueLimit = 1024
	colorRed        = 0xe74c3c
	colorYellow     = 0xf1c40f
	overflowName    = "message_too_long.txt"
)

// SplitMessage cuts s at rune position limit. rest is empty when s fits.
func SplitMessage(s string, limit int) (head, rest string) {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s, ""
	}
	n := 0
	for i := range s {
		if n == limit {
			return s[:i], s[i:]
		}
		n++
	}
	return s, ""
}

// Messages turns o into at most two sends. The second one, if any, is a
// follow-up carrying the content past MessageLimit, attached as a text file
// when it is still too long.
func (o *Output) Messages(actor Actor) []*discordgo.MessageSend {
	head, rest := SplitMessage(o.Content, MessageLimit)
	first := &discordgo.MessageSend{
		Content: head,
		Embeds:  o.Embeds,
	}
	if o.Image != nil {
		embed := &discordgo.MessageEmbed{
			Description: o.Image.Caption,
			Image:       &discordgo.MessageEmbedImage{URL: "attachment://" + o.Image.Name},
			Author:      author(actor),
		}
		first.Embeds = append(first.Embeds, embed)
		first.Files = append(first.Files, &discordgo.File{
			Name:        o.Image.Name,
			ContentType: http.DetectContentType(o.Image.Data),
			Reader:      bytes.NewReader(o.Image.Data),
		})
	}

	msgs := []*discordgo.MessageSend{first}
	if rest == "" {
		return msgs
	}
	if utf8.RuneCountInString(rest) <= MessageLimit {
		return append(msgs, &discordgo.MessageSend{Content: rest})
	}
	return append(msgs, &discordgo.MessageSend{
		Files: []*discordgo.File{{
			Name:        overflowName,
			ContentType: "text/plain; charset=utf-8",
			Reader:      strings.NewReader(rest),
		}},
	})
}

func author(a Actor) *discordgo.MessageEmbedAuthor {
	return &discordgo.MessageEmbedAuthor{Name: a.Name(), IconURL: a.AvatarURL}
}

// RenderError produces the single message shown for a failed invocation.
// err is expected to be classified already.
func RenderError(inv *Invocation, prefix string, err error) *discordgo.MessageSend {
	var (
		httpErr  *HTTPError
		shape    *ShapeError
		valid    *ValidationError
		usage    *UsageError
		cooldown *CooldownError
		perm     *PermissionError
	)
	switch {
	case errors.As(err, &httpErr):
		return &discordgo.MessageSend{Embeds: []*discordgo.MessageEmbed{httpEmbed(inv.Actor, httpErr)}}
	case errors.As(err, &shape):
		return &discordgo.MessageSend{Embeds: []*discordgo.MessageEmbed{{
			Title:       "Command Error",
			Description: "The API returned an unexpected response shape.",
			Color:       colorRed,
			Author:      author(inv.Actor),
		}}}
	case errors.As(err, &valid):
		return &discordgo.MessageSend{Embeds: []*discordgo.MessageEmbed{{
			Title:       "Invalid Argument",
			Description: valid.Message,
			Color:       colorYellow,
			Author:      author(inv.Actor),
		}}}
	case errors.As(err, &usage):
		line := usage.Reason
		if usage.Command != nil {
			line = fmt.Sprintf("%s\n%s", usage.Reason, usage.Command.Usage(prefix))
		}
		return &discordgo.MessageSend{Content: line}
	case errors.As(err, &cooldown):
		return &discordgo.MessageSend{Content: cooldown.Error()}
	case errors.As(err, &perm):
		return &discordgo.MessageSend{Content: ":warning: " + perm.Reason}
	}

	if inv.Operator {
		const fence = "```"
		text := Truncate(err.Error(), MessageLimit-2*len(fence))
		return &discordgo.MessageSend{Content: fence + text + fence}
	}
	return &discordgo.MessageSend{Embeds: []*discordgo.MessageEmbed{httpEmbed(inv.Actor, &HTTPError{
		Status: http.StatusInternalServerError,
		Reason: "woops",
	})}}
}

func httpEmbed(actor Actor, e *HTTPError) *discordgo.MessageEmbed {
	reason := e.Reason
	if reason == "" {
		reason = "No Status Detail"
	}
	embed := &discordgo.MessageEmbed{
		Title:       "Command Error",
		Description: fmt.Sprintf("HTTP Exception: %d (%s)", e.Status, reason),
		Color:       colorRed,
		Author:      author(actor),
	}
	if dump := dumpBody(e.Body); dump != "" {
		embed.Fields = []*discordgo.MessageEmbedField{{Name: "Response Body", Value: dump}}
	}
	return embed
}

func dumpBody(b api.Body) string {
	var text string
	switch b.Kind {
	case api.BodyJSON:
		text = gjson.GetBytes(b.Raw, "@pretty").Raw
	case api.BodyText:
		text = b.String()
	case api.BodyBytes:
		text = fmt.Sprintf("<%d bytes of %s>", len(b.Raw), b.ContentType)
	default:
		return ""
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	const fenceOpen, fenceClose = "```js\n", "\n```"
	budget := FieldValueLimit - utf8.RuneCountInString(fenceOpen+fenceClose)
	return fenceOpen + Truncate(text, budget) + fenceClose
}

// Truncate shortens s to at most limit runes, marking the cut with "…".
func Truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	head, _ := SplitMessage(s, limit-1)
	return head + "…"
}

// RequireField returns the value at path, or ErrEmptyResult when a
// successful JSON body doesn't carry it.
func RequireField(res *api.Response, path string) (gjson.Result, error) {
	v := res.Body.JSON().Get(path)
	if !v.Exists() || v.Type == gjson.Null {
		return v, &ShapeError{Want: path, Err: ErrEmptyResult}
	}
	return v, nil
}
