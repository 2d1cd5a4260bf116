package handlers

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/misscatmint/kzkitty/model"
)

const embedColor = 0xF8C8DC

// formatRunTime renders seconds as m:ss.mmm, with an hour part only when
// needed.
func formatRunTime(seconds float64) string {
	total := int(seconds)
	millis := int((seconds - float64(total)) * 1000)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d.%03d", h, m, s, millis)
	}
	return fmt.Sprintf("%d:%02d.%03d", m, s, millis)
}

func runKind(run *model.Run) string {
	if run.IsPro() {
		return "PRO"
	}
	return fmt.Sprintf("TP (%d)", run.Teleports)
}

func runEmbed(title string, run *model.Run, record *model.MapRecord) *discordgo.MessageEmbed {
	fields := []*discordgo.MessageEmbedField{
		{Name: "Time", Value: formatRunTime(run.Time), Inline: true},
		{Name: "Type", Value: runKind(run), Inline: true},
		{Name: "Points", Value: fmt.Sprintf("%d", run.Points), Inline: true},
	}
	if run.Place > 0 {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name: "Place", Value: fmt.Sprintf("#%d", run.Place), Inline: true,
		})
	}
	if record != nil {
		tier := record.TierFor(run.Mode)
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:   "Tier",
			Value:  fmt.Sprintf("%d (%s)", tier, model.TierName(tier, run.Mode)),
			Inline: true,
		})
	}

	name := run.PlayerName
	if name == "" {
		name = fmt.Sprintf("%d", run.SteamID64)
	}
	return &discordgo.MessageEmbed{
		Title: fmt.Sprintf("%s — %s [%s]", title, run.MapName, run.Mode.Short()),
		Color: embedColor,
		Fields: append(fields, &discordgo.MessageEmbedField{
			Name: "Player", Value: name, Inline: true,
		}),
		Footer: &discordgo.MessageEmbedFooter{
			Text: run.Date.Format("2006-01-02 15:04") + " UTC",
		},
	}
}

func profileEmbed(profile *model.Profile) *discordgo.MessageEmbed {
	name := profile.PlayerName
	if name == "" {
		name = fmt.Sprintf("%d", profile.SteamID64)
	}
	return &discordgo.MessageEmbed{
		Title: fmt.Sprintf("%s [%s]", name, profile.Mode.Short()),
		Color: embedColor,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Rank", Value: profile.Rank, Inline: true},
			{Name: "Points", Value: fmt.Sprintf("%d", profile.Points), Inline: true},
			{Name: "Average", Value: fmt.Sprintf("%d", profile.Average), Inline: true},
		},
	}
}

func mapEmbed(record *model.MapRecord, wrs []*model.Run, mode model.Mode) *discordgo.MessageEmbed {
	tier := record.TierFor(mode)
	fields := []*discordgo.MessageEmbedField{
		{Name: "Tier", Value: fmt.Sprintf("%d (%s)", tier, model.TierName(tier, mode)), Inline: true},
	}
	if record.Filesize > 0 {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name: "Filesize", Value: fmt.Sprintf("%.1f MB", float64(record.Filesize)/1024/1024), Inline: true,
		})
	}
	if !record.SupportsMode(mode) {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name: "Note", Value: "Not finishable in " + mode.Short(), Inline: false,
		})
	}

	if len(wrs) == 0 {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name: "World Record", Value: "None set", Inline: false,
		})
	}
	for _, wr := range wrs {
		kind := "TP"
		if wr.IsPro() {
			kind = "PRO"
		}
		name := wr.PlayerName
		if name == "" {
			name = fmt.Sprintf("%d", wr.SteamID64)
		}
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:   "World Record (" + kind + ")",
			Value:  fmt.Sprintf("%s by %s", formatRunTime(wr.Time), name),
			Inline: false,
		})
	}

	return &discordgo.MessageEmbed{
		Title:  fmt.Sprintf("%s [%s]", record.Name, strings.ToUpper(mode.Short())),
		Color:  embedColor,
		Fields: fields,
	}
}
