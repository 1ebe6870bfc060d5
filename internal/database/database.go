package database

import (
	"database/sql"
	"log"
	"net/url"
	"strings"

	"github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/example/parfumier/internal/models"
	"github.com/example/parfumier/internal/utils"
)

var db *gorm.DB

// Connect initializes the database connection and runs migrations.
func Connect(dsn string) *gorm.DB {
	if db != nil {
		return db
	}

	if err := ensureDatabase(dsn); err != nil {
		log.Fatalf("failed to ensure database: %v", err)
	}

	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := conn.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		log.Printf("warning: failed to ensure uuid-ossp extension: %v", err)
	}

	if err := migrate(conn); err != nil {
		log.Fatalf("database migration failed: %v", err)
	}

	db = conn
	return db
}

// DB exposes the initialized gorm.DB instance.
func DB() *gorm.DB {
	return db
}

func migrate(conn *gorm.DB) error {
	migrations := []interface{}{
		&models.Collector{},
		&models.Brand{},
		&models.Perfume{},
		&models.Comment{},
		&models.PasswordResetToken{},
	}

	for _, migration := range migrations {
		if err := conn.AutoMigrate(migration); err != nil {
			return err
		}
	}

	// Brand names are unique case-insensitively; the handler-level duplicate
	// check is only a fast path.
	return conn.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_brands_name_lower ON brands (LOWER(name))`).Error
}

// SeedAdmin makes sure an admin collector exists for the configured
// credentials. Existing accounts are promoted rather than duplicated.
func SeedAdmin(conn *gorm.DB, email, password string) {
	if email == "" || password == "" {
		return
	}

	email = strings.ToLower(strings.TrimSpace(email))

	var existing models.Collector
	err := conn.Where("email = ?", email).First(&existing).Error
	if err == nil {
		if !existing.IsAdmin {
			if err := conn.Model(&existing).Update("is_admin", true).Error; err != nil {
				log.Printf("warning: failed to promote admin %s: %v", email, err)
			}
		}
		return
	}
	if err != gorm.ErrRecordNotFound {
		log.Printf("warning: admin seed lookup failed: %v", err)
		return
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		log.Printf("warning: failed to hash admin password: %v", err)
		return
	}

	admin := models.Collector{
		Email:        email,
		PasswordHash: hash,
		Name:         "Administrator",
		AuthProvider: models.AuthProviderLocal,
		IsAdmin:      true,
	}

	if err := conn.Create(&admin).Error; err != nil {
		log.Printf("warning: failed to seed admin account: %v", err)
		return
	}

	log.Printf("seeded admin account %s", email)
}

func ensureDatabase(dsn string) error {
	if !strings.HasPrefix(dsn, "postgres://") && !strings.HasPrefix(dsn, "postgresql://") {
		return nil
	}

	parsed, err := url.Parse(dsn)
	if err != nil {
		return err
	}

	dbName := strings.TrimPrefix(parsed.Path, "/")
	if dbName == "" {
		return nil
	}

	parsed.Path = "/postgres"
	masterDSN := parsed.String()

	sqlDB, err := sql.Open("postgres", masterDSN)
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		return err
	}

	var exists bool
	if err := sqlDB.QueryRow("SELECT EXISTS (SELECT 1 FROM pg_database WHERE datname = $1)", dbName).Scan(&exists); err != nil {
		return err
	}

	if exists {
		return nil
	}

	_, err = sqlDB.Exec("CREATE DATABASE " + pq.QuoteIdentifier(dbName))
	return err
}
