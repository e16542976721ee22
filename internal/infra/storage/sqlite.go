package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// HighScore is one finished game on the leaderboard.
type HighScore struct {
	ID            uint   `gorm:"primaryKey"`
	User          string `gorm:"index"`
	FinalNetWorth string
	Rounds        int
	Trades        int
	CreatedAt     time.Time
}

// Setting is a persisted key/value preference, e.g. the last player
// name.
type Setting struct {
	Key   string `gorm:"primaryKey"`
	Value string
}

// Storage wraps the SQLite database for scores and settings.
type Storage struct {
	db *gorm.DB
}

// NewStorage opens the database at the user's config directory.
func NewStorage() (*Storage, error) {
	dbPath, err := getDBPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve DB path: %w", err)
	}
	return NewStorageAt(dbPath)
}

// NewStorageAt opens the database at an explicit path. Tests point this
// at a temp directory.
func NewStorageAt(dbPath string) (*Storage, error) {
	dbDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create DB directory: %w", err)
	}

	// Pure Go SQLite, no cgo.
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&HighScore{}, &Setting{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Storage{db: db}, nil
}

// getDBPath resolves the database file path based on OS
func getDBPath() (string, error) {
	var configDir string
	var err error

	if runtime.GOOS == "windows" {
		configDir = os.Getenv("LOCALAPPDATA")
		if configDir == "" {
			configDir, err = os.UserConfigDir()
		}
	} else {
		configDir, err = os.UserConfigDir()
	}

	if err != nil {
		return "", err
	}

	return filepath.Join(configDir, "PortfolioPanic", "data", "portfoliopanic.db"), nil
}

// SaveScore appends a finished game to the leaderboard.
func (s *Storage) SaveScore(score *HighScore) error {
	return s.db.Create(score).Error
}

// TopScores returns up to limit scores ordered by net worth descending.
// Net worth is stored as a decimal string; ordering casts it numerically.
func (s *Storage) TopScores(limit int) ([]HighScore, error) {
	if limit <= 0 {
		limit = 10
	}
	var scores []HighScore
	err := s.db.Order("CAST(final_net_worth AS REAL) DESC").Limit(limit).Find(&scores).Error
	return scores, err
}

// ScoresForUser returns a player's games, most recent first.
func (s *Storage) ScoresForUser(user string) ([]HighScore, error) {
	var scores []HighScore
	err := s.db.Where("user = ?", user).Order("created_at DESC").Find(&scores).Error
	return scores, err
}

// SaveSetting saves a user preference.
func (s *Storage) SaveSetting(key, value string) error {
	return s.db.Save(&Setting{Key: key, Value: value}).Error
}

// LoadSettings loads all user preferences as a map.
func (s *Storage) LoadSettings() (map[string]string, error) {
	var settings []Setting
	if err := s.db.Find(&settings).Error; err != nil {
		return nil, err
	}

	result := make(map[string]string)
	for _, st := range settings {
		result[st.Key] = st.Value
	}
	return result, nil
}
