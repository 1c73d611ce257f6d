package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type testParent struct {
	ID   int
	Name string `gorm:"uniqueIndex"`
}

type testChild struct {
	ID       int
	ParentID int
	Parent   testParent `gorm:"constraint:OnDelete:CASCADE"`
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := SQLiteDSN(fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_")))
	conn, err := gorm.Open(sqlite.Open(dsn), gormConfig())
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&testParent{}, &testChild{}); err != nil {
		t.Fatalf("failed to migrate sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return conn
}

func TestWithTx_CommitsAndRollbacks(t *testing.T) {
	client := Wrap(newTestDB(t))
	ctx := context.Background()

	if err := client.WithTx(ctx, func(tx *gorm.DB) error {
		return tx.Create(&testParent{Name: "committed"}).Error
	}); err != nil {
		t.Fatalf("WithTx commit failed: %v", err)
	}

	var count int64
	if err := client.DB().Model(&testParent{}).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 record, got %d", count)
	}

	err := client.WithTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(&testParent{Name: "rolled"}).Error; err != nil {
			return err
		}
		return errors.New("boom")
	})
	if err == nil {
		t.Fatal("expected WithTx to return an error")
	}
	if err := client.DB().Model(&testParent{}).Count(&count).Error; err != nil {
		t.Fatalf("count failed after rollback: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected rollback to leave 1 record, got %d", count)
	}
}

func TestPing(t *testing.T) {
	client := Wrap(newTestDB(t))
	if err := client.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected ping error: %v", err)
	}
}

func TestIsUniqueViolationFromSQLite(t *testing.T) {
	conn := newTestDB(t)
	if err := conn.Create(&testParent{Name: "SUV"}).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
	err := conn.Create(&testParent{Name: "SUV"}).Error
	if !IsUniqueViolation(err, "") {
		t.Fatalf("expected unique violation, got %v", err)
	}
	if !IsUniqueViolation(err, "test_parents.name") {
		t.Fatalf("expected unique violation on name column, got %v", err)
	}
	if IsUniqueViolation(err, "account.account_email") {
		t.Fatal("constraint filter should not match another column")
	}
}

func TestIsForeignKeyViolationFromSQLite(t *testing.T) {
	conn := newTestDB(t)
	err := conn.Create(&testChild{ParentID: 999}).Error
	if !IsForeignKeyViolation(err) {
		t.Fatalf("expected foreign key violation, got %v", err)
	}
}

func TestPostgresErrorClassification(t *testing.T) {
	pgx := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "account_email_key"})
	if !IsUniqueViolation(pgx, "account_email_key") || IsUniqueViolation(pgx, "other_key") {
		t.Fatal("pgx unique violation not classified by constraint")
	}

	pqErr := &pq.Error{Code: "23503", Constraint: "reviews_inv_id_fkey"}
	if !IsForeignKeyViolation(pqErr) || IsUniqueViolation(pqErr, "") {
		t.Fatal("lib/pq foreign key violation not classified")
	}

	if IsUniqueViolation(nil, "") || IsForeignKeyViolation(nil) {
		t.Fatal("nil errors must not classify")
	}
	if !IsNotFound(fmt.Errorf("wrap: %w", gorm.ErrRecordNotFound)) {
		t.Fatal("expected wrapped record-not-found to be detected")
	}
}

func TestSQLiteDSN(t *testing.T) {
	if got := SQLiteDSN("cse.db"); got != "cse.db?_foreign_keys=on" {
		t.Fatalf("unexpected dsn %q", got)
	}
	if got := SQLiteDSN("file:x?mode=memory"); got != "file:x?mode=memory&_foreign_keys=on" {
		t.Fatalf("unexpected dsn %q", got)
	}
}
