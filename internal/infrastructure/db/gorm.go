package db

import (
	"fmt"
	"strings"
	"time"

	"lr-validation-backend/internal/domain/client"
	"lr-validation-backend/internal/domain/document"
	"lr-validation-backend/internal/domain/field"
	"lr-validation-backend/internal/domain/invoice"
	"lr-validation-backend/internal/domain/workflow"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

// Dialector picks the gorm dialector for a configured driver name.
func Dialector(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case DriverMySQL, "":
		return mysql.Open(dsn), nil
	case DriverPostgres:
		return postgres.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unknown db driver %q", driver)
	}
}

func OpenGorm(driver, dsn, logLevel string) (*gorm.DB, error) {
	dial, err := Dialector(driver, dsn)
	if err != nil {
		return nil, err
	}
	return OpenGormWithDialector(dial, WithLogLevel(logLevel))
}

type openOptions struct {
	logLevel logger.LogLevel
}

type OpenOption func(*openOptions)

// WithLogLevel maps silent|error|warn|info onto gorm's logger; anything else means warn.
func WithLogLevel(level string) OpenOption {
	return func(o *openOptions) { o.logLevel = parseLogLevel(level) }
}

func parseLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

func OpenGormWithDialector(dial gorm.Dialector, opts ...OpenOption) (*gorm.DB, error) {
	o := openOptions{logLevel: logger.Warn}
	for _, fn := range opts {
		fn(&o)
	}
	db, err := gorm.Open(dial, &gorm.Config{
		Logger:         logger.Default.LogMode(o.logLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, eris.Wrap(err, "gorm open")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, eris.Wrap(err, "gorm sql handle")
	}
	sqlDB.SetMaxOpenConns(30)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, eris.Wrap(err, "gorm ping")
	}
	zap.L().Info("gorm: connected", zap.String("dialect", dial.Name()))
	return db, nil
}

// Models lists every persisted entity in dependency order.
func Models() []any {
	return []any{
		&client.Client{},
		&client.Branch{},
		&field.TemplateField{},
		&document.Document{},
		&invoice.Invoice{},
		&workflow.Progress{},
	}
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return eris.Wrap(err, "auto-migrate")
	}
	return nil
}
