package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/zfogg/clipfeed/internal/auth"
	"github.com/zfogg/clipfeed/internal/config"
	"github.com/zfogg/clipfeed/internal/database"
	"github.com/zfogg/clipfeed/internal/models"
	"github.com/zfogg/clipfeed/internal/seed"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	// Parse command
	command := "dev"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	switch command {
	case "dev":
		seedDev()
	case "test":
		seedTest()
	case "clean":
		cleanSeed()
	case "tokens":
		printTokens()
	default:
		fmt.Println("Usage: seed [dev|test|clean|tokens]")
		fmt.Println("  dev    - Seed development database with realistic data")
		fmt.Println("  test   - Seed test database with minimal data")
		fmt.Println("  clean  - Remove all seed data (use with caution)")
		fmt.Println("  tokens - Print bearer tokens for every profile")
		os.Exit(1)
	}
}

// SEED_RANDOM makes dev data reproducible
func seedValue() uint64 {
	if v := os.Getenv("SEED_RANDOM"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			return n
		}
	}
	return uint64(time.Now().UnixNano())
}

func connect() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}
	if err := database.Initialize(cfg.Database, cfg.IsDevelopment()); err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	if err := database.Migrate(database.DB); err != nil {
		log.Fatalf("❌ Migration failed: %v", err)
	}
	log.Println("✅ Database connected")
	return cfg
}

func seedDev() {
	log.Println("🌱 Seeding development database...")

	connect()
	defer database.Close()

	seeder := seed.NewSeeder(database.DB, seedValue())
	if err := seeder.SeedDev(context.Background(), seed.DefaultCounts); err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Println("✅ Development database seeded successfully!")
}

func seedTest() {
	log.Println("🧪 Seeding test database...")

	cfg := connect()
	defer database.Close()

	profiles, err := seed.NewSeeder(database.DB, 1).SeedTest(context.Background())
	if err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Println("✅ Test database seeded successfully!")
	tokens(cfg, profiles)
}

func cleanSeed() {
	log.Println("🧹 Cleaning seed data...")

	connect()
	defer database.Close()

	if err := seed.NewSeeder(database.DB, 0).Clean(context.Background()); err != nil {
		log.Fatalf("❌ Cleaning failed: %v", err)
	}

	log.Println("✅ Seed data cleaned successfully!")
}

func printTokens() {
	cfg := connect()
	defer database.Close()

	var profiles []models.Profile
	if err := database.DB.Order("username").Find(&profiles).Error; err != nil {
		log.Fatalf("❌ Failed to load profiles: %v", err)
	}
	tokens(cfg, profiles)
}

func tokens(cfg *config.Config, profiles []models.Profile) {
	if cfg.Auth.JWTSecret == "" {
		log.Println("⚠️  JWT_SECRET not set - skipping token generation")
		return
	}

	out, err := seed.DevTokens(auth.NewService([]byte(cfg.Auth.JWTSecret)), profiles, 30*24*time.Hour)
	if err != nil {
		log.Fatalf("❌ Failed to mint tokens: %v", err)
	}

	names := make([]string, 0, len(out))
	for name := range out {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("%-24s %s\n", name, out[name])
	}
}
