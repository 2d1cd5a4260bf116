package handlers

import (
	"log"

	"github.com/bwmarrin/discordgo"

	"github.com/misscatmint/kzkitty/bot"
)

// Autocomplete stays below this length to avoid spamming the catalog with
// queries for "kz_" style prefixes every map shares.
const minAutocompleteLen = 3

func handleAutocomplete(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	data := i.ApplicationCommandData()
	var choices []*discordgo.ApplicationCommandOptionChoice

	switch data.Name {
	case "pb", "map":
		var focused *discordgo.ApplicationCommandInteractionDataOption
		for _, opt := range data.Options {
			if opt.Focused {
				focused = opt
				break
			}
		}
		if focused == nil || focused.Name != "map" {
			break
		}
		prefix := focused.StringValue()
		if len(prefix) < minAutocompleteLen {
			break
		}
		for _, m := range b.Catalog.Suggest(prefix, 25) {
			choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
				Name:  m.Name,
				Value: m.Name,
			})
		}
	}

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionApplicationCommandAutocompleteResult,
		Data: &discordgo.InteractionResponseData{
			Choices: choices,
		},
	})
	if err != nil {
		log.Printf("Error responding to autocomplete: %v", err)
	}
}
