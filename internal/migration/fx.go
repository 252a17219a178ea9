package migration

import (
	"github.com/cohortly/cohortly/internal/config"
	"github.com/cohortly/cohortly/internal/seed"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg *config.Config, log *zap.Logger) error {
		if cfg.DBType != "postgres" {
			log.Named("migrations").Warn("skipping embedded migrations for non-postgres database",
				zap.String("db_type", cfg.DBType))
			return nil
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		if err := RunMigrations(sqlDB); err != nil {
			return err
		}

		if cfg.Environment == "development" {
			return seed.EnsureDevData(conn)
		}
		return nil
	}),
)
