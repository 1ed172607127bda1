package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/zfogg/clipfeed/internal/config"
	"github.com/zfogg/clipfeed/internal/database"
	"github.com/zfogg/clipfeed/internal/models"
	"github.com/zfogg/clipfeed/internal/repository"
	"github.com/zfogg/clipfeed/internal/search"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	// Parse command
	command := "up"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	switch command {
	case "up":
		runMigrationsUp()
	case "down":
		runMigrationsDown()
	case "status":
		showStatus()
	default:
		fmt.Println("Usage: migrate [up|down|status]")
		fmt.Println("  up     - Create or update all tables and feed indexes")
		fmt.Println("  down   - Drop all clipfeed tables (requires --yes)")
		fmt.Println("  status - Show which tables exist")
		os.Exit(1)
	}
}

func connect() *config.Config {
	log.Println("🔄 Connecting to database...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}
	if err := database.Initialize(cfg.Database, cfg.IsDevelopment()); err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}

	log.Println("✅ Database connected")
	return cfg
}

func runMigrationsUp() {
	cfg := connect()
	defer database.Close()

	log.Println("📈 Running migrations...")
	if err := database.Migrate(database.DB); err != nil {
		log.Fatalf("❌ Migration failed: %v", err)
	}

	if cfg.Search.Enabled() {
		log.Println("🔎 Backfilling the tag search index...")
		client, err := search.NewClient(cfg.Search, nil)
		if err != nil {
			log.Fatalf("❌ %v", err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		n, err := search.NewTagIndex(client, repository.NewTagRepository(database.DB)).Backfill(ctx)
		if err != nil {
			log.Fatalf("❌ Tag index backfill failed: %v", err)
		}
		log.Printf("✅ Indexed %d tags", n)
	}

	log.Println("✅ All migrations completed successfully!")
}

func runMigrationsDown() {
	if len(os.Args) < 3 || os.Args[2] != "--yes" {
		log.Println("❌ Refusing to drop tables without --yes")
		log.Println("Usage: migrate down --yes")
		os.Exit(1)
	}

	connect()
	defer database.Close()

	all := models.AllModels()
	// reverse order so join tables go before their parents
	for i := len(all) - 1; i >= 0; i-- {
		if err := database.DB.Migrator().DropTable(all[i]); err != nil {
			log.Fatalf("❌ Failed to drop table: %v", err)
		}
	}

	log.Println("✅ All tables dropped")
}

func showStatus() {
	connect()
	defer database.Close()

	migrator := database.DB.Migrator()
	for _, m := range models.AllModels() {
		stmt := database.DB.Model(m).Statement
		if err := stmt.Parse(m); err != nil {
			log.Fatalf("❌ Failed to parse model: %v", err)
		}
		state := "missing"
		if migrator.HasTable(m) {
			state = "ok"
		}
		fmt.Printf("%-20s %s\n", stmt.Schema.Table, state)
	}
}
