package localstore

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/pbkdf2"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"shopazon/internal/config"
	"shopazon/internal/models"
)

const keyDerivationSalt = "shopazon-local-cache"

// record is one persisted value under a fixed storage key.
type record struct {
	Key       string `gorm:"primaryKey;type:varchar(64)"`
	Value     string
	UpdatedAt time.Time
}

// TableName overrides the table name.
func (record) TableName() string { return "client_storage" }

// Store is the client-local persisted storage: a small embedded database
// holding the cached session user under a fixed key. Records are stored as
// signed JWT claims so a tampered cache cannot forge a role during the
// render-before-verify window.
type Store struct {
	db         *gorm.DB
	signingKey []byte
	storageKey string
}

// Open connects the cache database (sqlite by default, postgres selectable)
// and derives the record signing key from the configured secret.
func Open(cfg config.SessionConfig) (*Store, error) {
	var dialector gorm.Dialector
	switch cfg.CacheDriver {
	case "postgres":
		dialector = postgres.Open(cfg.CacheDSN)
	default:
		dialector = sqlite.Open(cfg.CacheDSN)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}
	if err := db.AutoMigrate(&record{}); err != nil {
		return nil, fmt.Errorf("migrating cache database: %w", err)
	}

	return &Store{
		db:         db,
		signingKey: pbkdf2.Key([]byte(cfg.Secret), []byte(keyDerivationSalt), 4096, 32, sha256.New),
		storageKey: cfg.StorageKey,
	}, nil
}

// SaveUser persists the user record under the fixed storage key.
func (s *Store) SaveUser(user *models.User) error {
	if user == nil {
		return s.ClearUser()
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  user.ID.String(),
		"user": user,
		"iat":  time.Now().Unix(),
	})
	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return fmt.Errorf("signing cached user: %w", err)
	}
	rec := record{Key: s.storageKey, Value: signed, UpdatedAt: time.Now()}
	if err := s.db.Save(&rec).Error; err != nil {
		return fmt.Errorf("persisting cached user: %w", err)
	}
	return nil
}

// LoadUser returns the cached user, or nil when no record exists. A corrupt
// or badly-signed record loads as absent, not as an error.
func (s *Store) LoadUser() *models.User {
	var rec record
	if err := s.db.First(&rec, "key = ?", s.storageKey).Error; err != nil {
		return nil
	}

	token, err := jwt.Parse(rec.Value, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.signingKey, nil
	})
	if err != nil || !token.Valid {
		return nil
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil
	}

	raw, err := json.Marshal(claims["user"])
	if err != nil {
		return nil
	}
	var user models.User
	if err := json.Unmarshal(raw, &user); err != nil || user.ID == "" {
		return nil
	}
	return &user
}

// ClearUser removes the persisted user record.
func (s *Store) ClearUser() error {
	if err := s.db.Delete(&record{}, "key = ?", s.storageKey).Error; err != nil {
		return fmt.Errorf("clearing cached user: %w", err)
	}
	return nil
}
