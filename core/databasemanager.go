package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"axiapac.com/personnel/model"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type LogLevel int

const (
	LogLevelSilent LogLevel = iota + 1
	LogLevelError
	LogLevelWarn
	LogLevelInfo
)

func ParseLogLevel(s string) LogLevel {
	switch strings.ToLower(s) {
	case "error":
		return LogLevelError
	case "warn", "warning":
		return LogLevelWarn
	case "info":
		return LogLevelInfo
	}
	return LogLevelSilent
}

func (l LogLevel) gormLevel() logger.LogLevel {
	switch l {
	case LogLevelError:
		return logger.Error
	case LogLevelWarn:
		return logger.Warn
	case LogLevelInfo:
		return logger.Info
	}
	return logger.Silent
}

type DatabaseManager struct {
	DB       *gorm.DB
	LogLevel LogLevel
}

func dialector(driver, dsn string) (gorm.Dialector, error) {
	switch strings.ToLower(driver) {
	case "mysql":
		return mysql.Open(dsn), nil
	case "postgres", "postgresql":
		return postgres.Open(dsn), nil
	case "sqlite", "":
		if dsn == "" {
			dsn = "personnel.db"
		}
		return sqlite.Open(dsn), nil
	}
	return nil, fmt.Errorf("unsupported database type %q", driver)
}

// New opens the pool for driver (mysql, postgres or sqlite).
func New(driver, dsn string, maxConnection int, level LogLevel) (*DatabaseManager, error) {
	d, err := dialector(driver, dsn)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(d, &gorm.Config{
		Logger:         logger.Default.LogMode(level.gormLevel()),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open gorm: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to open pool: %w", err)
	}
	if maxConnection > 0 {
		sqlDB.SetMaxOpenConns(maxConnection)
		sqlDB.SetMaxIdleConns(maxConnection)
	}
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping pool: %w", err)
	}

	return &DatabaseManager{DB: db, LogLevel: level}, nil
}

// Wrap adapts an already opened gorm handle (tests, lambdas).
func Wrap(db *gorm.DB) *DatabaseManager {
	return &DatabaseManager{DB: db}
}

func (dm *DatabaseManager) Migrate() error {
	return dm.DB.AutoMigrate(model.All()...)
}

// Close closes the global pool
func (dm *DatabaseManager) Close() error {
	sqlDB, err := dm.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Exec runs fn with a request scoped session. Store failures are wrapped as
// internal errors unless fn already returned a typed one.
func (dm *DatabaseManager) Exec(ctx context.Context, fn func(db *gorm.DB) error) error {
	return wrapStoreError(fn(dm.DB.WithContext(ctx)))
}

// Transaction runs fn inside a database transaction.
func (dm *DatabaseManager) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return wrapStoreError(dm.DB.WithContext(ctx).Transaction(fn))
}

func wrapStoreError(err error) error {
	if err == nil {
		return nil
	}
	var typed *Error
	if errors.As(err, &typed) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NotFound("Kayıt bulunamadı")
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return Conflict("Kayıt zaten mevcut")
	}
	return Internal(err)
}
