package migrate

import (
	"context"
	"fmt"

	"github.com/angelmondragon/csemotors/pkg/config"
	"github.com/angelmondragon/csemotors/pkg/db"
	"github.com/angelmondragon/csemotors/pkg/db/models"
	"github.com/angelmondragon/csemotors/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultClassifications seeds the navigation on a fresh database.
var DefaultClassifications = []string{"Custom", "Sedan", "Sport", "SUV", "Truck"}

// MaybeRunDev prepares the schema automatically when the feature flag is enabled. SQLite
// databases are migrated from the models; Postgres runs the goose migrations in dev only.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.FeatureFlags.AutoMigrate {
		return nil
	}

	if cfg.FeatureFlags.UseSQLite {
		ctx = logg.WithField(ctx, "driver", "sqlite")
		logg.Info(ctx, "auto-migrating sqlite schema")
		if err := client.AutoMigrate(ctx, models.All()...); err != nil {
			return fmt.Errorf("auto-migrate sqlite: %w", err)
		}
		if err := SeedClassifications(ctx, client.DB()); err != nil {
			return err
		}
		logg.Info(ctx, "sqlite schema ready")
		return nil
	}

	if !cfg.App.IsDev() {
		return nil
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "dir": DefaultDir})
	logg.Info(ctx, "running goose migrations (dev auto-run)")

	if err := Run(ctx, sqlDB, DefaultDir, "up"); err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}

	logg.Info(ctx, "goose migrations completed")
	return nil
}

// SeedClassifications inserts the default classifications, skipping names that exist.
func SeedClassifications(ctx context.Context, conn *gorm.DB) error {
	rows := make([]models.Classification, 0, len(DefaultClassifications))
	for _, name := range DefaultClassifications {
		rows = append(rows, models.Classification{Name: name})
	}
	err := conn.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "classification_name"}}, DoNothing: true}).
		Create(&rows).Error
	if err != nil {
		return fmt.Errorf("seed classifications: %w", err)
	}
	return nil
}
