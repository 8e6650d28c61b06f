package migrate

import (
	"context"
	"fmt"

	"github.com/storefront-labs/storefront-backend/pkg/config"
	"github.com/storefront-labs/storefront-backend/pkg/db"
	"github.com/storefront-labs/storefront-backend/pkg/logger"
)

// MaybeRunDev applies the embedded migrations on boot when running in dev with
// auto-migrate enabled. SQLite gets its schema on connect instead.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}

	ctx = logg.WithField(ctx, "env", cfg.App.Env)
	if cfg.DB.UsesSQLite() {
		logg.Info(ctx, "migrate.skipped_sqlite")
		return nil
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}
	runner, err := NewRunner(sqlDB, Migrations(), logg)
	if err != nil {
		return err
	}

	logg.Info(ctx, "migrate.dev_autorun")
	return runner.Up(ctx)
}
