// pkg/db/repository.go
package db

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/smith3v/sentence-trainer/pkg/config"
	"github.com/smith3v/sentence-trainer/pkg/logger"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Export DB variable
var DB *gorm.DB

func InitDB(cfg config.DatabaseConfig) error {
	dialector, err := openDialector(cfg)
	if err != nil {
		logger.Error("invalid database configuration", "error", err)
		return err
	}
	gormLogger, gormErr := newGormLogger(config.AppConfig.Logging.GormLevel)
	if gormErr != nil {
		logger.Error("invalid gorm log level", "value", config.AppConfig.Logging.GormLevel, "error", gormErr)
	}
	DB, err = gorm.Open(dialector, &gorm.Config{Logger: gormLogger})
	if err != nil {
		logger.Error("failed to connect to database", "driver", cfg.Driver, "error", err)
		return err
	}
	if err := Migrate(DB); err != nil {
		logger.Error("failed to auto-migrate database", "error", err)
		return err
	}
	logger.Info("database ready", "driver", DB.Dialector.Name())
	return nil
}

func Migrate(gdb *gorm.DB) error {
	if gdb == nil {
		return nil
	}
	return gdb.AutoMigrate(AllModels()...)
}

func openDialector(cfg config.DatabaseConfig) (gorm.Dialector, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "postgres", "postgresql":
		dsn := "host=" + cfg.Host +
			" user=" + cfg.User +
			" password=" + cfg.Password +
			" dbname=" + cfg.DBName +
			" port=" + strconv.Itoa(cfg.Port) +
			" sslmode=" + cfg.SSLMode
		return postgres.Open(dsn), nil
	case "sqlite", "":
		path := strings.TrimSpace(cfg.Path)
		if path == "" {
			path = "instance/learning_platform.db"
		}
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create sqlite directory: %w", err)
			}
		}
		return sqlite.Open(path + "?_foreign_keys=on"), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}
