package main

import (
	"context"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/storefront-labs/storefront-backend/pkg/config"
	"github.com/storefront-labs/storefront-backend/pkg/db"
	"github.com/storefront-labs/storefront-backend/pkg/logger"
	"github.com/storefront-labs/storefront-backend/pkg/migrate"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "migrate"})
	_ = godotenv.Load()

	cmd := flag.String("cmd", "up", "migration command: up|down|status|version|create|validate")
	dir := flag.String("dir", "", "migrations directory (defaults to the embedded schema; create writes to "+migrate.DefaultDir+")")
	name := flag.String("name", "", "migration name (for create)")
	version := flag.String("version", "", "target version (YYYYMMDDHHMMSS) for -cmd=version")
	flag.Parse()

	ctx := context.Background()
	cfg, err := config.Load()
	exitOn(ctx, logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "cmd": *cmd, "dir": *dir})

	var source fs.FS = migrate.Migrations()
	if *dir != "" {
		source = os.DirFS(*dir)
	}

	switch *cmd {
	case "create":
		target := *dir
		if target == "" {
			target = migrate.DefaultDir
		}
		if *name == "" {
			exitOn(ctx, logg, "create", fmt.Errorf("missing -name"))
		}
		path, err := migrate.CreateSQLMigration(target, *name, time.Now())
		exitOn(ctx, logg, "create", err)
		logg.Info(logg.WithField(ctx, "path", path), "migration.created")
		return
	case "validate":
		exitOn(ctx, logg, "validate", migrate.Validate(source))
		logg.Info(ctx, "migration.validated")
		return
	}

	if cfg.DB.UsesSQLite() {
		logg.Info(ctx, "sqlite schema is applied when the api connects; nothing to migrate")
		return
	}

	client, err := db.New(ctx, cfg.DB, logg)
	exitOn(ctx, logg, "database", err)
	defer client.Close()

	sqlDB, err := client.DB().DB()
	exitOn(ctx, logg, "sql database", err)

	runner, err := migrate.NewRunner(sqlDB, source, logg)
	exitOn(ctx, logg, "goose", err)

	switch *cmd {
	case "up":
		err = runner.Up(ctx)
	case "down":
		err = runner.Down(ctx)
	case "status":
		_, err = runner.Status(ctx)
	case "version":
		if *version == "" {
			err = fmt.Errorf("missing -version")
			break
		}
		err = runner.To(ctx, *version)
	default:
		err = fmt.Errorf("unknown -cmd value %q", *cmd)
	}
	exitOn(ctx, logg, *cmd, err)
}

func exitOn(ctx context.Context, logg *logger.Logger, step string, err error) {
	if err == nil {
		return
	}
	logg.Error(logg.WithField(ctx, "step", step), "migrate.failed", err)
	os.Exit(1)
}
