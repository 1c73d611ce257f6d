// Package dbtest opens throwaway SQLite databases carrying the full schema for package tests.
package dbtest

import (
	"fmt"
	"strings"
	"testing"

	"github.com/angelmondragon/csemotors/pkg/db"
	"github.com/angelmondragon/csemotors/pkg/db/models"
	"gorm.io/gorm"
)

// Open returns an in-memory database private to t, migrated with every model.
func Open(t testing.TB) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	conn, err := db.OpenSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := conn.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}
	return conn
}

// SeedClassification inserts a classification and returns it.
func SeedClassification(t testing.TB, conn *gorm.DB, name string) models.Classification {
	t.Helper()
	c := models.Classification{Name: name}
	if err := conn.Create(&c).Error; err != nil {
		t.Fatalf("seed classification %s: %v", name, err)
	}
	return c
}

// SeedVehicle inserts a vehicle in classificationID. Zero fields get plausible defaults.
func SeedVehicle(t testing.TB, conn *gorm.DB, classificationID int, v models.Vehicle) models.Vehicle {
	t.Helper()
	v.ClassificationID = classificationID
	if v.Make == "" {
		v.Make = "Jeep"
	}
	if v.Model == "" {
		v.Model = "Wrangler"
	}
	if v.Year == 0 {
		v.Year = 2019
	}
	if v.Description == "" {
		v.Description = "Rugged and ready."
	}
	if v.Image == "" {
		v.Image = "/images/vehicles/wrangler.jpg"
	}
	if v.Thumbnail == "" {
		v.Thumbnail = "/images/vehicles/wrangler-tn.jpg"
	}
	if v.Color == "" {
		v.Color = "Yellow"
	}
	if err := conn.Omit("Classification").Create(&v).Error; err != nil {
		t.Fatalf("seed vehicle: %v", err)
	}
	return v
}

// SeedAccount inserts an account with the given role and an opaque password hash.
func SeedAccount(t testing.TB, conn *gorm.DB, a models.Account) models.Account {
	t.Helper()
	if a.FirstName == "" {
		a.FirstName = "Basic"
	}
	if a.LastName == "" {
		a.LastName = "Client"
	}
	if a.PasswordHash == "" {
		a.PasswordHash = "unused"
	}
	if err := conn.Create(&a).Error; err != nil {
		t.Fatalf("seed account: %v", err)
	}
	return a
}
