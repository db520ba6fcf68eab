// Command migrate runs schema operations for the Mythology Codex backend.
package main

import (
	"flag"
	"fmt"
	"log"
	"strings"

	"codex/internal/config"
	"codex/internal/database"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func usage() error {
	return fmt.Errorf("usage: go run ./cmd/migrate/main.go <auto>")
}

func run() error {
	flag.Parse()
	if flag.NArg() < 1 {
		return usage()
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}

	cmd := strings.ToLower(strings.TrimSpace(flag.Arg(0)))
	switch cmd {
	case "auto":
		if err := database.Migrate(db); err != nil {
			return fmt.Errorf("automigrations failed: %w", err)
		}
		log.Println("automigrations applied")
	default:
		return usage()
	}

	return nil
}
