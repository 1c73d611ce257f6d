package migrate_test

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/angelmondragon/csemotors/pkg/db"
	"github.com/angelmondragon/csemotors/pkg/db/models"
	"github.com/angelmondragon/csemotors/pkg/migrate"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func readMigration(t *testing.T, suffix string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", "*_"+suffix+".sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no %s migration file found", suffix)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}

func TestMigrationsEnforceUniqueness(t *testing.T) {
	checks := map[string][]string{
		"create_account": {
			"CONSTRAINT account_account_email_key UNIQUE (account_email)",
			"DEFAULT 'Client'",
			"DROP TABLE IF EXISTS account",
		},
		"create_classification": {
			"CONSTRAINT classification_classification_name_key UNIQUE (classification_name)",
		},
		"create_inventory": {
			"REFERENCES classification(classification_id)",
			"inv_price numeric(9, 2)",
			"CHECK (inv_price >= 0)",
			"CHECK (inv_miles >= 0)",
		},
		"create_reviews": {
			"CONSTRAINT reviews_inv_account_key UNIQUE (inv_id, account_id)",
			"REFERENCES inventory(inv_id) ON DELETE CASCADE",
			"CHECK (rating BETWEEN 1 AND 5)",
		},
	}

	for suffix, subs := range checks {
		content := readMigration(t, suffix)
		for _, sub := range subs {
			if !strings.Contains(content, sub) {
				t.Errorf("%s: missing expected statement %q", suffix, sub)
			}
		}
	}
}

func TestEmbeddedMigrationsValidate(t *testing.T) {
	if err := migrate.ValidateFS(migrate.FS(), "migrations"); err != nil {
		t.Fatalf("embedded migrations invalid: %v", err)
	}
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("on-disk migrations invalid: %v", err)
	}
	entries, err := fs.ReadDir(migrate.FS(), "migrations")
	if err != nil {
		t.Fatalf("read embedded dir: %v", err)
	}
	if len(entries) < 5 {
		t.Fatalf("expected at least 5 embedded migrations, got %d", len(entries))
	}
}

func TestValidateDirRejectsBadFiles(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bad-name.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := migrate.ValidateDir(dir); err == nil {
		t.Fatal("expected invalid filename error")
	}

	dir = t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "20250101000000_no_down.sql"), []byte("-- +goose Up\nSELECT 1;\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := migrate.ValidateDir(dir); err == nil {
		t.Fatal("expected missing down section error")
	}
}

func TestValidateDirReportsEveryProblem(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"bad-name.sql":                   "-- +goose Up\n-- +goose Down\n",
		"20250101000000_no_down.sql":     "-- +goose Up\nSELECT 1;\n",
		"20250101000000_duplicate.sql":   "-- +goose Up\n-- +goose Down\n",
		"20250102000000_fine.sql":        "-- +goose Up\nSELECT 1;\n-- +goose Down\nSELECT 1;\n",
		"20250103000000_no_sections.sql": "SELECT 1;\n",
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	err := migrate.ValidateDir(dir)
	if err == nil {
		t.Fatal("expected validation errors")
	}
	msg := err.Error()
	for _, want := range []string{"bad-name.sql", "duplicate migration version 20250101000000", "20250103000000_no_sections.sql"} {
		if !strings.Contains(msg, want) {
			t.Errorf("expected %q in %s", want, msg)
		}
	}
	if strings.Contains(msg, "20250102000000_fine.sql") {
		t.Errorf("valid migration reported: %s", msg)
	}
}

func TestCreateSQLMigration(t *testing.T) {
	dir := t.TempDir()
	path, err := migrate.CreateSQLMigration(dir, "Add Vehicle Features")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !strings.HasSuffix(path, "_add_vehicle_features.sql") {
		t.Fatalf("unexpected path %s", path)
	}
	if err := migrate.ValidateDir(dir); err != nil {
		t.Fatalf("created migration should validate: %v", err)
	}
}

func TestSeedClassificationsIsIdempotent(t *testing.T) {
	dsn := db.SQLiteDSN(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if err := migrate.SeedClassifications(ctx, conn); err != nil {
			t.Fatalf("seed run %d: %v", i, err)
		}
	}

	var count int64
	if err := conn.Model(&models.Classification{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if int(count) != len(migrate.DefaultClassifications) {
		t.Fatalf("expected %d classifications, got %d", len(migrate.DefaultClassifications), count)
	}
}
