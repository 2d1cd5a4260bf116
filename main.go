package main

import (
	"log"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/misscatmint/kzkitty/bot"
	"github.com/misscatmint/kzkitty/config"
	"github.com/misscatmint/kzkitty/handlers"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), os.ModePerm); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}
	// Synchronous writes: a registration that returned success must
	// survive an immediate crash.
	db, err := sqlx.Connect("sqlite3", cfg.DBPath+"?_sync=FULL&_busy_timeout=5000")
	if err != nil {
		log.Fatalf("Error opening database: %v", err)
	}
	defer db.Close()

	b, err := bot.New(cfg, db)
	if err != nil {
		log.Fatalf("Error creating bot: %v", err)
	}

	handlers.Register(b)

	b.Run()

	defer b.Close()
}
