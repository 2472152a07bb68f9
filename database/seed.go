package database

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kento-cell/MyHobbyCoffee/models"
	"github.com/kento-cell/MyHobbyCoffee/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SeedRoastProfiles inserts the default profiles, leaving edited rows alone.
func SeedRoastProfiles(db *gorm.DB) error {
	profiles := models.DefaultRoastProfiles()
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&profiles).Error; err != nil {
		return fmt.Errorf("seed roast profiles: %w", err)
	}
	return nil
}

// SeedAdmin creates the first admin user. Missing credentials skip seeding.
func SeedAdmin(db *gorm.DB, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		utils.InfoLogger.Println("skip seeding admin: missing ADMIN_EMAIL/ADMIN_PASSWORD")
		return nil
	}

	var existing models.AdminUser
	err := db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		utils.InfoLogger.Printf("admin already exists: %s", email)
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("lookup admin: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	admin := models.AdminUser{
		Email:    email,
		Password: string(hash),
		Role:     utils.RoleAdmin,
	}
	return db.Create(&admin).Error
}

func Seed(db *gorm.DB, adminEmail, adminPassword string) error {
	if err := SeedRoastProfiles(db); err != nil {
		return err
	}
	return SeedAdmin(db, adminEmail, adminPassword)
}
