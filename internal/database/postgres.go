package database

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"dikenang-service/internal/comment"
	"dikenang-service/internal/config"
	"dikenang-service/internal/notification"
	"dikenang-service/internal/post"
	"dikenang-service/internal/relationship"
	"dikenang-service/internal/user"
	"dikenang-service/internal/vote"
)

// NewPostgresConnection opens the database, configures the pool,
// migrates the schema and creates supporting indexes.
func NewPostgresConnection(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := cfg.URL
	if dsn == "" {
		dsn = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
			cfg.Host, cfg.User, cfg.Password, cfg.DBName, cfg.Port, cfg.SSLMode)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		// Driver errors become gorm sentinels, so services can match
		// unique violations with errors.Is(err, gorm.ErrDuplicatedKey).
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		return nil, fmt.Errorf("failed to create uuid extension: %w", err)
	}

	if err := db.AutoMigrate(
		&user.User{},
		&user.Badge{},
		&post.Post{},
		&post.Attachment{},
		&vote.Membership{},
		&comment.Comment{},
		&relationship.Relationship{},
		&relationship.Invite{},
		&notification.Notification{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	if err := addIndexes(db); err != nil {
		return nil, fmt.Errorf("failed to add indexes: %w", err)
	}

	return db, nil
}

func addIndexes(db *gorm.DB) error {
	indexes := []struct {
		table   string
		columns []string
	}{
		{"users", []string{"email", "username"}},
		{"posts", []string{"author_id", "relationship_id"}},
		{"attachments", []string{"post_id"}},
		{"vote_memberships", []string{"post_id", "user_id"}},
		{"comments", []string{"post_id", "author_id"}},
		{"relationship_invites", []string{"to_id"}},
		{"notifications", []string{"recipient_id"}},
	}

	for _, idx := range indexes {
		for _, column := range idx.columns {
			name := fmt.Sprintf("idx_%s_%s", idx.table, column)
			stmt := fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (%s)", name, idx.table, column)
			if err := db.Exec(stmt).Error; err != nil {
				return err
			}
		}
	}
	return nil
}
