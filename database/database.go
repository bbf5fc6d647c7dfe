package database

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"capacitaciones/config"
	"capacitaciones/models"
)

// DbInstance struct holds the database connection instance
type DbInstance struct {
	Db *gorm.DB
}

// Database is the global database instance
var Database DbInstance

// Open returns a gorm dialector for the configured driver.
func Open(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case "", "sqlite":
		return sqlite.Open(dsn), nil
	case "postgres":
		return postgres.Open(dsn), nil
	case "mysql":
		return mysql.Open(dsn), nil
	}
	return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
}

// ConnectDb opens the database, runs migrations, seeds the admin user and
// stores the handle in Database.
func ConnectDb(cfg *config.Config, log *zap.Logger) error {
	dialector, err := Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return err
	}

	gormLog := logger.Default.LogMode(logger.Warn)
	if cfg.LogLevel == "debug" {
		gormLog = logger.Default.LogMode(logger.Info)
	}
	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormLog})
	if err != nil {
		return fmt.Errorf("connect %s: %w", cfg.DBDriver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("database instance: %w", err)
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(0)

	if err := runMigrations(db, log); err != nil {
		return err
	}
	if err := SeedAdmin(db, cfg.AdminEmail, cfg.AdminPassword, cfg.SaltRound); err != nil {
		return err
	}

	Database = DbInstance{Db: db}
	return nil
}

func runMigrations(db *gorm.DB, log *zap.Logger) error {
	log.Info("running migrations")
	err := db.AutoMigrate(
		&models.User{},
		&models.Collaborator{},
		&models.Training{},
		&models.Upload{},
		&models.LoginTracking{},
	)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	log.Info("migrations completed")
	return nil
}

// SeedAdmin creates the admin account unless a user with that email exists.
func SeedAdmin(db *gorm.DB, email, password string, saltRound int) error {
	var existing models.User
	err := db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), saltRound)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	return db.Create(&models.User{Name: "Administrador", Email: email, Password: string(hash), Role: models.RoleAdmin}).Error
}

// SeedCollaborators inserts collaborators not yet known by cedula and
// returns how many were created.
func SeedCollaborators(db *gorm.DB, rows []models.Collaborator) (int, error) {
	created := 0
	for _, row := range rows {
		c := row
		res := db.Where(models.Collaborator{Cedula: c.Cedula}).FirstOrCreate(&c)
		if res.Error != nil {
			return created, fmt.Errorf("seed collaborator %s: %w", c.Cedula, res.Error)
		}
		created += int(res.RowsAffected)
	}
	return created, nil
}
