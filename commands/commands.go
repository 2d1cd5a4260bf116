package commands

import (
	"github.com/bwmarrin/discordgo"

	"github.com/misscatmint/kzkitty/model"
)

func modeChoices() []*discordgo.ApplicationCommandOptionChoice {
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(model.AllModes))
	for _, m := range model.AllModes {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  m.Short() + " (" + string(m) + ")",
			Value: string(m),
		})
	}
	return choices
}

func modeOption(required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "mode",
		Description: "Game mode",
		Required:    required,
		Choices:     modeChoices(),
	}
}

func mapOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:         discordgo.ApplicationCommandOptionString,
		Name:         "map",
		Description:  "Map name",
		Required:     true,
		Autocomplete: true,
	}
}

func playerOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionUser,
		Name:        "player",
		Description: "Look up another registered player",
		Required:    false,
	}
}

// Generate returns the bot's global slash command definitions.
func Generate() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "pb",
			Description: "Show personal best time on a map",
			Options: []*discordgo.ApplicationCommandOption{
				mapOption(),
				modeOption(false),
				playerOption(),
			},
		},
		{
			Name:        "latest",
			Description: "Show most recent personal best",
			Options: []*discordgo.ApplicationCommandOption{
				modeOption(false),
				playerOption(),
			},
		},
		{
			Name:        "profile",
			Description: "Show rank, point total, and point average",
			Options: []*discordgo.ApplicationCommandOption{
				modeOption(false),
				playerOption(),
			},
		},
		{
			Name:        "map",
			Description: "Show map info and world record times",
			Options: []*discordgo.ApplicationCommandOption{
				mapOption(),
				modeOption(false),
			},
		},
		{
			Name:        "register",
			Description: "Register your Steam account",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "profile",
					Description: "Steam profile URL or steamID64",
					Required:    true,
				},
				modeOption(false),
			},
		},
		{
			Name:        "mode",
			Description: "Show or set your default game mode",
			Options: []*discordgo.ApplicationCommandOption{
				modeOption(false),
				{
					Type:        discordgo.ApplicationCommandOptionBoolean,
					Name:        "server",
					Description: "Set the server-wide default instead of your own",
					Required:    false,
				},
			},
		},
		{
			Name:        "status",
			Description: "Show bot and system status",
		},
	}
}
