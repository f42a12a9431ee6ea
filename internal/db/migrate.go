package db

import (
	"errors"
	"fmt"

	"github.com/ratethestore/ratethestore-backend/internal/app/model"
	"github.com/ratethestore/ratethestore-backend/pkg/logger"
	"github.com/ratethestore/ratethestore-backend/pkg/util"
	"gorm.io/gorm"
)

// Models lists every table owned by the application, in dependency order.
func Models() []interface{} {
	return []interface{}{
		&model.User{},
		&model.Store{},
		&model.Rating{},
	}
}

// AutoMigrate creates or updates the schema on db, including the
// (user_id, store_id) unique index the rating upsert relies on.
func AutoMigrate(db *gorm.DB) error {
	models := Models()
	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	if !db.Migrator().HasIndex(&model.Rating{}, "idx_ratings_user_store") {
		return errors.New("auto migrate: missing unique index idx_ratings_user_store")
	}
	return nil
}

// Migrate runs database migrations against the global connection
func Migrate() error {
	logger.Info("Running database migrations...")

	if err := AutoMigrate(DB); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(Models()),
	})
	return nil
}

// AdminSeed describes the bootstrap administrator account.
type AdminSeed struct {
	Name       string
	Email      string
	Password   string
	BcryptCost int
}

// SeedAdmin creates the bootstrap administrator when credentials are
// configured and no user with that email exists yet.
func SeedAdmin(db *gorm.DB, seed AdminSeed) error {
	if seed.Email == "" || seed.Password == "" {
		logger.Debug("No bootstrap admin configured, skipping seed")
		return nil
	}

	email := util.NormalizeEmail(seed.Email)

	var count int64
	if err := db.Model(&model.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		logger.Info("Bootstrap admin already exists, skipping...", map[string]interface{}{
			"email": email,
		})
		return nil
	}

	cost := seed.BcryptCost
	if cost == 0 {
		cost = util.DefaultBcryptCost
	}
	hash, err := util.HashPasswordWithCost(seed.Password, cost)
	if err != nil {
		return err
	}

	name := seed.Name
	if name == "" {
		name = "System Administrator"
	}

	admin := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleAdmin,
	}
	if err := db.Create(admin).Error; err != nil {
		return err
	}

	logger.Info("Bootstrap admin created", map[string]interface{}{
		"user_id": admin.ID,
		"email":   email,
	})
	return nil
}
