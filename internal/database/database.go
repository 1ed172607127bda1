package database

import (
	"fmt"
	"time"

	"github.com/zfogg/clipfeed/internal/config"
	"github.com/zfogg/clipfeed/internal/logger"
	"github.com/zfogg/clipfeed/internal/models"
	"github.com/zfogg/clipfeed/internal/telemetry"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DB holds the database connection
var DB *gorm.DB

// Initialize creates and configures the database connection
func Initialize(cfg config.DatabaseConfig, development bool) error {
	db, err := Open(cfg, development)
	if err != nil {
		return err
	}
	DB = db
	logger.Log.Info("Database connected", zap.String("driver", cfg.Driver))
	return nil
}

// Open connects to the configured driver without touching the global handle
func Open(cfg config.DatabaseConfig, development bool) (*gorm.DB, error) {
	gormLogger := gormlogger.Default.LogMode(gormlogger.Warn)
	if development {
		gormLogger = gormlogger.Default.LogMode(gormlogger.Info)
	}

	gormConfig := &gorm.Config{
		Logger: gormLogger,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		dsn := cfg.URL
		if dsn == "" {
			dsn = "file:clipfeed.db?_foreign_keys=on"
		}
		dialector = sqlite.Open(dsn)
		gormConfig.DisableForeignKeyConstraintWhenMigrating = true
	default:
		dialector = postgres.Open(postgresDSN(cfg))
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Use(telemetry.GORMTracingPlugin()); err != nil {
		return nil, fmt.Errorf("failed to install tracing plugin: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if cfg.Driver == "sqlite" {
		// sqlite serializes writers anyway
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	return db, nil
}

func postgresDSN(cfg config.DatabaseConfig) string {
	if cfg.URL != "" {
		return cfg.URL
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)
}

// Migrate runs auto-migration for all models on db
func Migrate(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("database not initialized")
	}

	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := createIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	logger.Log.Info("Database migrations completed")
	return nil
}

// createIndexes creates the composite indexes the feed queries rely on
func createIndexes(db *gorm.DB) error {
	statements := []string{
		// Trending: audience filter, views then recency
		"CREATE INDEX IF NOT EXISTS idx_media_trending ON media (media_type, audience, view_count DESC, created_at DESC)",
		// Following / recent: owner then recency
		"CREATE INDEX IF NOT EXISTS idx_media_owner_created ON media (owner_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_media_tags_tag_media ON media_tags (tag, media_id)",
		"CREATE INDEX IF NOT EXISTS idx_ads_owner_show ON ads (owner_id, show_ad, media_type)",
		"CREATE INDEX IF NOT EXISTS idx_ad_buyers_user_expires ON ad_buyers (user_id, expires_at)",
		// Liked listing: newest like first
		"CREATE INDEX IF NOT EXISTS idx_media_likes_user_created ON media_likes (user_id, created_at DESC)",
	}
	if db.Dialector.Name() == "postgres" {
		statements = append(statements,
			"CREATE INDEX IF NOT EXISTS idx_tags_label_lower ON tags (LOWER(label) text_pattern_ops)",
		)
	}

	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}

// Close closes the global database connection
func Close() error {
	if DB == nil {
		return nil
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Health pings the global database connection
func Health() error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
