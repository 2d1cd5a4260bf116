package handlers

import (
	"log"

	"github.com/bwmarrin/discordgo"

	"github.com/misscatmint/kzkitty/bot"
)

func Register(b *bot.Bot) {
	b.CommandHandlers = commandHandlers(b)
	addHandlers(b)
}

func commandHandlers(b *bot.Bot) map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate) {
	return map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate){
		"pb": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			HandlePB(s, i, b)
		},
		"latest": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			HandleLatest(s, i, b)
		},
		"profile": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			HandleProfile(s, i, b)
		},
		"map": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			HandleMapInfo(s, i, b)
		},
		"register": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			HandleRegister(s, i, b)
		},
		"mode": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			HandleMode(s, i, b)
		},
		"status": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			SystemInfoHandler(s, i, b)
		},
	}
}

func addHandlers(b *bot.Bot) {
	b.Session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		log.Printf("Logged in as: %v#%v", s.State.User.Username, s.State.User.Discriminator)
	})
	b.Session.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		switch i.Type {
		case discordgo.InteractionApplicationCommand:
			if h, ok := b.CommandHandlers[i.ApplicationCommandData().Name]; ok {
				h(s, i)
			}
		case discordgo.InteractionApplicationCommandAutocomplete:
			handleAutocomplete(s, i, b)
		}
	})
}
