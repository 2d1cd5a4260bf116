package bot

import (
	"log"

	"github.com/bwmarrin/discordgo"
	"github.com/jmoiron/sqlx"

	"github.com/misscatmint/kzkitty/catalog"
	"github.com/misscatmint/kzkitty/kz"
	"github.com/misscatmint/kzkitty/model"
	"github.com/misscatmint/kzkitty/registry"
	"github.com/misscatmint/kzkitty/resolver"
	"github.com/misscatmint/kzkitty/steam"
)

type Bot struct {
	Session         *discordgo.Session
	Config          *model.Config
	DB              *sqlx.DB
	Registry        *registry.Registry
	Catalog         *catalog.Catalog
	Resolver        *resolver.Resolver
	CommandHandlers map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate)
	scheduler       *Scheduler
}

func New(cfg *model.Config, db *sqlx.DB) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.BotToken)
	if err != nil {
		return nil, err
	}
	dg.Identify.Intents = discordgo.IntentsGuilds
	dg.StateEnabled = false

	reg, err := registry.Init(db, cfg.DefaultMode)
	if err != nil {
		return nil, err
	}

	client := kz.New(cfg)
	cat, err := catalog.Init(db, client)
	if err != nil {
		return nil, err
	}

	b := &Bot{
		Session:  dg,
		Config:   cfg,
		DB:       db,
		Registry: reg,
		Catalog:  cat,
		Resolver: resolver.New(reg, cat, client, steam.NewResolver(cfg), cfg.DefaultMode),
	}
	b.scheduler = NewScheduler(b)
	return b, nil
}

func (b *Bot) Close() {
	log.Println("Gracefully shutting down.")
	b.scheduler.Stop()
	b.Session.Close()
}

// RefreshCommands overwrites the bot's global slash commands.
func (b *Bot) RefreshCommands(cmds []*discordgo.ApplicationCommand) {
	log.Printf("Registering %d global commands...", len(cmds))
	if _, err := b.Session.ApplicationCommandBulkOverwrite(b.Config.AppID, "", cmds); err != nil {
		log.Printf("cannot update global commands: %v", err)
	}
}
