package database

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/frenchmaster/internal/entities"
)

// SchemaVersion is the only schema version this build reads and writes.
const SchemaVersion = 1

// ErrStorageUnavailable is returned when the durable store cannot be opened.
// Callers are expected to continue in a degraded, cache-only mode.
var ErrStorageUnavailable = errors.New("storage unavailable")

type Database struct {
	DB   *gorm.DB
	Path string
}

// Option tweaks how the database connection is opened.
type Option func(*gorm.Config)

// WithLogLevel overrides the gorm log level (logger.Warn by default).
func WithLogLevel(level logger.LogLevel) Option {
	return func(cfg *gorm.Config) {
		cfg.Logger = logger.Default.LogMode(level)
	}
}

// NewDatabase opens or creates the SQLite file at dbPath and migrates the
// per-category tables. Calling it on an existing file is safe.
func NewDatabase(dbPath string, opts ...Option) (*Database, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("%w: no database path configured", ErrStorageUnavailable)
	}

	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("%w: create database dir: %v", ErrStorageUnavailable, err)
		}
	}

	cfg := &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	db, err := gorm.Open(sqlite.Open(dbPath), cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to connect to database: %v", ErrStorageUnavailable, err)
	}

	database := &Database{DB: db, Path: dbPath}

	if err := database.migrate(); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	log.Printf("Database initialized successfully at %s", dbPath)

	return database, nil
}

func (d *Database) migrate() error {
	if err := d.DB.AutoMigrate(&entities.SchemaInfo{}, &entities.UserData{}, &entities.SeedState{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	for _, category := range entities.AllCategories {
		if err := d.DB.Table(category.Table()).AutoMigrate(&entities.Record{}); err != nil {
			return fmt.Errorf("failed to migrate %s table: %w", category.Table(), err)
		}
	}

	return d.checkSchemaVersion()
}

func (d *Database) checkSchemaVersion() error {
	var info entities.SchemaInfo
	err := d.DB.Order("id ASC").First(&info).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return d.DB.Create(&entities.SchemaInfo{Version: SchemaVersion}).Error
	}
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if info.Version != SchemaVersion {
		return fmt.Errorf("unsupported schema version %d (want %d)", info.Version, SchemaVersion)
	}
	return nil
}

// Ping checks that the underlying connection is still usable.
func (d *Database) Ping() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
