package ai_handler

import (
	"context"
	"fmt"
	"sort"

	"racbot/src-bot/api"
	"racbot/src-bot/command"
	"racbot/src-bot/utils"

	"github.com/bwmarrin/discordgo"
	"github.com/tidwall/gjson"
)

const (
	colorFlagged = 0xe74c3c
	colorClean   = 0x2ecc71
	maxFields    = 25
)

func moderate(as *utils.AppState) *command.Command {
	return &command.Command{
		Name:        "ai moderate",
		Description: "Check a text against the moderation model.",
		Args: []command.Arg{
			{Name: "text", Description: "The text to check", Required: true, Rest: true, MaxLen: 2000},
		},
		Run: func(ctx context.Context, inv *command.Invocation) (*command.Output, error) {
			return command.Execute(ctx, as.API, inv, command.Call{
				Request: api.Request{
					Endpoint: api.AIModerationText,
					JSON:     map[string]string{"text": inv.Args.String("text")},
				},
				Expect: command.ExpectObject,
				Render: renderModeration,
			})
		},
	}
}

type categoryScore struct {
	name    string
	score   float64
	flagged bool
}

func renderModeration(res *api.Response) (*command.Output, error) {
	result := res.Body.JSON()
	if first := result.Get("results.0"); first.IsObject() {
		result = first
	}
	flagged := result.Get("flagged")
	if flagged.Type != gjson.True && flagged.Type != gjson.False {
		return nil, &command.ShapeError{Want: "flagged", Err: command.ErrEmptyResult}
	}

	hits := map[string]bool{}
	result.Get("categories").ForEach(func(key, value gjson.Result) bool {
		hits[key.String()] = value.Bool()
		return true
	})
	var scores []categoryScore
	result.Get("category_scores").ForEach(func(key, value gjson.Result) bool {
		scores = append(scores, categoryScore{
			name:    key.String(),
			score:   value.Float(),
			flagged: hits[key.String()],
		})
		return true
	})
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].score > scores[j].score
	})

	embed := &discordgo.MessageEmbed{
		Title:       "Moderation",
		Description: "Flagged: **no**",
		Color:       colorClean,
	}
	if flagged.Bool() {
		embed.Description = "Flagged: **yes**"
		embed.Color = colorFlagged
	}
	for _, s := range scores {
		if len(embed.Fields) == maxFields {
			break
		}
		name := utils.HumanizeKey(s.name)
		if s.flagged {
			name = "⚠️ " + name
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   name,
			Value:  fmt.Sprintf("%.2f%%", s.score*100),
			Inline: true,
		})
	}
	return &command.Output{Embeds: []*discordgo.MessageEmbed{embed}}, nil
}
