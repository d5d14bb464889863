package credentials

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/edusurvey/edusurvey/internal/models"
)

const busyTimeoutMillis = 5000

// SQLiteStore keeps the token in a local SQLite file, one row per slot
type SQLiteStore struct {
	db   *gorm.DB
	slot string
}

// OpenSQLiteStore opens (and migrates) the credential database at path
func OpenSQLiteStore(path, slot string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("failed to create credential directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.New(
			log.New(os.Stderr, "\r\n", log.LstdFlags),
			logger.Config{
				LogLevel:                  logger.Error,
				IgnoreRecordNotFoundError: true,
				SlowThreshold:             200 * time.Millisecond,
			},
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open credential database: %w", err)
	}

	// The CLI and the web UI may hold the file open at the same time
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		fmt.Sprintf("PRAGMA busy_timeout=%d", busyTimeoutMillis),
	}
	for _, pragma := range pragmas {
		if err := db.Exec(pragma).Error; err != nil {
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	if err := models.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate credential database: %w", err)
	}

	return &SQLiteStore{db: db, slot: slot}, nil
}

// Save upserts the token for this slot
func (s *SQLiteStore) Save(token string) error {
	cred := &models.Credential{Slot: s.slot, Token: token}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slot"}},
		DoUpdates: clause.AssignmentColumns([]string{"token", "updated_at"}),
	}).Create(cred).Error
	if err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

// Load returns the token for this slot
func (s *SQLiteStore) Load() (string, error) {
	var cred models.Credential
	if err := s.db.Where("slot = ?", s.slot).First(&cred).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to load token: %w", err)
	}
	return cred.Token, nil
}

// Delete removes the slot row; deleting an empty slot is not an error
func (s *SQLiteStore) Delete() error {
	if err := s.db.Where("slot = ?", s.slot).Delete(&models.Credential{}).Error; err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}

// Close closes the underlying database connection
func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
