package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/misscatmint/kzkitty/bot"
	"github.com/misscatmint/kzkitty/model"
)

const commandTimeout = 30 * time.Second

// interactionUser returns the invoking user, which lives in a different
// field for guild and DM interactions.
func interactionUser(i *discordgo.InteractionCreate) *discordgo.User {
	if i.Member != nil {
		return i.Member.User
	}
	return i.User
}

func optionMap(i *discordgo.InteractionCreate) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	options := i.ApplicationCommandData().Options
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(options))
	for _, opt := range options {
		m[opt.Name] = opt
	}
	return m
}

func modeArg(opts map[string]*discordgo.ApplicationCommandInteractionDataOption) *model.Mode {
	opt, ok := opts["mode"]
	if !ok {
		return nil
	}
	m, err := model.ParseMode(opt.StringValue())
	if err != nil {
		return nil
	}
	return &m
}

func targetArg(opts map[string]*discordgo.ApplicationCommandInteractionDataOption) string {
	if opt, ok := opts["player"]; ok {
		if v, ok := opt.Value.(string); ok {
			return v
		}
	}
	return ""
}

func respondEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Printf("Error responding to interaction: %v", err)
	}
}

func deferResponse(s *discordgo.Session, i *discordgo.InteractionCreate) bool {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	})
	if err != nil {
		log.Printf("Error deferring interaction: %v", err)
		return false
	}
	return true
}

func editResponse(s *discordgo.Session, i *discordgo.InteractionCreate, content string, embeds []*discordgo.MessageEmbed) {
	_, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Content: &content,
		Embeds:  &embeds,
	})
	if err != nil {
		log.Printf("Error editing interaction response: %v", err)
	}
}

// errorMessage maps the error taxonomy to the text shown to the user.
// Operational faults get logged and a generic message.
func errorMessage(b *bot.Bot, err error, mapName string) string {
	switch {
	case errors.Is(err, model.ErrNotRegistered):
		return "Not registered. Use /register with your Steam profile first."
	case errors.Is(err, model.ErrInvalidIdentifier):
		return "Invalid Steam profile. Use a steamcommunity.com URL or a steamID64."
	case errors.Is(err, model.ErrUnknownMap):
		msg := fmt.Sprintf("Unknown map %q.", mapName)
		if suggestions := b.Catalog.Suggest(mapName, 5); len(suggestions) > 0 {
			names := make([]string, 0, len(suggestions))
			for _, m := range suggestions {
				names = append(names, m.Name)
			}
			msg += " Did you mean: " + strings.Join(names, ", ")
		}
		return msg
	case errors.Is(err, model.ErrUpstreamUnavailable):
		return "The global API is unavailable right now, try again later."
	default:
		log.Printf("Command failed: %v", err)
		return "Something went wrong, sorry."
	}
}

func HandlePB(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if !deferResponse(s, i) {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	opts := optionMap(i)
	mapName := opts["map"].StringValue()
	run, record, err := b.Resolver.PersonalBest(ctx, i.GuildID, interactionUser(i).ID, mapName, modeArg(opts), targetArg(opts))
	if err != nil {
		editResponse(s, i, errorMessage(b, err, mapName), nil)
		return
	}
	if run == nil {
		editResponse(s, i, "No times found", nil)
		return
	}
	editResponse(s, i, "", []*discordgo.MessageEmbed{runEmbed("Personal Best", run, record)})
}

func HandleLatest(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if !deferResponse(s, i) {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	opts := optionMap(i)
	run, err := b.Resolver.Latest(ctx, i.GuildID, interactionUser(i).ID, modeArg(opts), targetArg(opts))
	if err != nil {
		editResponse(s, i, errorMessage(b, err, ""), nil)
		return
	}
	if run == nil {
		editResponse(s, i, "No times found", nil)
		return
	}
	record := b.Catalog.Lookup(run.MapName)
	editResponse(s, i, "", []*discordgo.MessageEmbed{runEmbed("Latest Run", run, record)})
}

func HandleProfile(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if !deferResponse(s, i) {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	opts := optionMap(i)
	profile, err := b.Resolver.Profile(ctx, i.GuildID, interactionUser(i).ID, modeArg(opts), targetArg(opts))
	if err != nil {
		editResponse(s, i, errorMessage(b, err, ""), nil)
		return
	}
	if profile == nil {
		editResponse(s, i, "No profile found", nil)
		return
	}
	editResponse(s, i, "", []*discordgo.MessageEmbed{profileEmbed(profile)})
}

func HandleMapInfo(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if !deferResponse(s, i) {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	opts := optionMap(i)
	mapName := opts["map"].StringValue()
	record, wrs, mode, err := b.Resolver.MapInfo(ctx, mapName, modeArg(opts))
	if err != nil {
		editResponse(s, i, errorMessage(b, err, mapName), nil)
		return
	}
	editResponse(s, i, "", []*discordgo.MessageEmbed{mapEmbed(record, wrs, mode)})
}

func HandleRegister(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	opts := optionMap(i)
	steamID, err := b.Resolver.Register(ctx, i.GuildID, interactionUser(i).ID, opts["profile"].StringValue(), modeArg(opts))
	if err != nil {
		respondEphemeral(s, i, errorMessage(b, err, ""))
		return
	}
	respondEphemeral(s, i, fmt.Sprintf("Registered as steamID64 %d", steamID))
}

func HandleMode(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	opts := optionMap(i)
	mode := modeArg(opts)

	if mode == nil {
		current, err := b.Resolver.CurrentMode(i.GuildID, interactionUser(i).ID)
		if err != nil {
			respondEphemeral(s, i, errorMessage(b, err, ""))
			return
		}
		respondEphemeral(s, i, fmt.Sprintf("Current mode: %s", current))
		return
	}

	guildDefault := false
	if opt, ok := opts["server"]; ok {
		guildDefault = opt.BoolValue()
	}
	if err := b.Resolver.SetMode(i.GuildID, interactionUser(i).ID, *mode, guildDefault); err != nil {
		respondEphemeral(s, i, errorMessage(b, err, ""))
		return
	}
	if guildDefault {
		respondEphemeral(s, i, fmt.Sprintf("Server default mode set to %s", *mode))
		return
	}
	respondEphemeral(s, i, fmt.Sprintf("Mode set to %s", *mode))
}
