package storage

import (
	"fmt"
	"log"
	"time"

	"tg-moderator/internal/config"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// DB is the shared database handle. It stays nil when database support is
// disabled; services fall back to their in-memory managers in that case.
var DB *gorm.DB

func buildDSN(db config.DatabaseConfig) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=True&loc=Local",
		db.Username, db.Password, db.Host, db.Port, db.DBName, db.Charset)
}

// Initialize opens the MySQL connection and configures the pool.
func Initialize(cfg *config.Config) error {
	if !cfg.Database.Enabled {
		log.Printf("Database support is disabled")
		return nil
	}

	log.Printf("Connecting to database: %s:%d/%s", cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	var err error
	DB, err = gorm.Open(mysql.Open(buildDSN(cfg.Database)), &gorm.Config{
		Logger: NewGormLogger(cfg.Logger.Level),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get SQL DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	log.Printf("Database connection established successfully")
	return nil
}

// GetDB returns the database connection
func GetDB() *gorm.DB {
	return DB
}
