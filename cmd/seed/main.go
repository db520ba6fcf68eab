// Command seed populates the database with generated demo data.
package main

import (
	"flag"
	"log"

	"codex/internal/config"
	"codex/internal/database"
	"codex/internal/seed"
)

func main() {
	opts := seed.DefaultOptions()
	flag.IntVar(&opts.NumUsers, "users", opts.NumUsers, "Number of users to create")
	flag.IntVar(&opts.MythologiesPerUser, "worlds", opts.MythologiesPerUser, "Mythology worlds per user")
	flag.IntVar(&opts.FiguresPerMythology, "figures", opts.FiguresPerMythology, "Figures per world")
	flag.IntVar(&opts.NumCrossovers, "crossovers", opts.NumCrossovers, "Crossover requests to generate")
	flag.BoolVar(&opts.ShouldClean, "clean", opts.ShouldClean, "Clean database before seeding")
	flag.BoolVar(&opts.SkipBcrypt, "skip-bcrypt", false, "Store plaintext passwords (dev only, much faster)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	if err := seed.Seed(db, opts); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Println("Seeding complete. All generated accounts use password \"password123\".")
}
