package database

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const memoryDSN = "file:mycircle_fallback?mode=memory&cache=shared&_fk=1"

// New opens the embedded SQLite database at path and migrates the schema.
func New(path string, log zerolog.Logger) (*gorm.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	dsn := fmt.Sprintf("file:%s?_fk=1&_journal_mode=WAL&_busy_timeout=5000", path)
	return Open(dsn, log)
}

// NewWithFallback opens the database at path. When that fails and fallback is
// allowed, an in-memory database seeded with mock profiles is returned instead
// and usingFallback is true.
func NewWithFallback(path string, allowFallback bool, log zerolog.Logger) (db *gorm.DB, usingFallback bool, err error) {
	db, err = New(path, log)
	if err == nil || !allowFallback {
		return db, false, err
	}

	log.Warn().Err(err).Str("path", path).Msg("database: embedded database unavailable, serving mock data")
	db, err = NewMemory(log)
	if err != nil {
		return nil, false, err
	}
	if err := SeedMockData(db); err != nil {
		return nil, false, err
	}
	return db, true, nil
}

// NewMemory opens a migrated in-memory database.
func NewMemory(log zerolog.Logger) (*gorm.DB, error) {
	db, err := Open(memoryDSN, log)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// the shared in-memory database lives only while a connection stays open
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetConnMaxLifetime(0)
	return db, nil
}

// NewRemote connects to the PostgreSQL database used as the remote mirror.
func NewRemote(databaseURL string, log zerolog.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), gormConfig(log))
	if err != nil {
		return nil, err
	}
	logBackend(db, log)
	return db, nil
}

// Open opens and migrates a SQLite database from a raw DSN.
func Open(dsn string, log zerolog.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), gormConfig(log))
	if err != nil {
		return nil, err
	}
	if err := Migrate(db, log); err != nil {
		return nil, err
	}

	logBackend(db, log)
	return db, nil
}

func gormConfig(log zerolog.Logger) *gorm.Config {
	return &gorm.Config{
		Logger: logger.New(&log, logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	}
}

func logBackend(db *gorm.DB, log zerolog.Logger) {
	dialector := db.Dialector.Name()
	switch strings.ToLower(dialector) {
	case "postgres":
		log.Info().Msg("database: connected to PostgreSQL")
	case "sqlite":
		log.Info().Msg("database: using SQLite")
	default:
		log.Info().Str("dialector", dialector).Msg("database: connected")
	}
}
