package devserver

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tphakala/retinascan/internal/errors"
	"github.com/tphakala/retinascan/internal/logger"
)

// slowQueryThreshold marks statements logged as slow.
const slowQueryThreshold = 200 * time.Millisecond

var (
	ErrUserExists = errors.Newf("username or email already exists").
			Component("devserver").
			Category(errors.CategoryConflict).
			Build()

	ErrInvalidCredentials = errors.Newf("invalid credentials").
				Component("devserver").
				Category(errors.CategoryAuth).
				Build()
)

// User is a registered account.
type User struct {
	ID        string
	Username  string
	Email     string
	CreatedAt time.Time
}

// PredictionRecord is a stored prediction. Confidence is a fraction 0..1.
type PredictionRecord struct {
	ID         string
	UserID     string
	Label      string
	Confidence float64
	CreatedAt  time.Time
}

// userRow is the users table.
type userRow struct {
	ID           string `gorm:"primaryKey;size:36"`
	Username     string `gorm:"uniqueIndex;not null"`
	Email        string `gorm:"not null"`
	EmailKey     string `gorm:"uniqueIndex;not null"` // lower-cased email
	PasswordHash []byte `gorm:"not null"`
	CreatedAt    time.Time
}

func (userRow) TableName() string { return "users" }

func (r userRow) user() User {
	return User{ID: r.ID, Username: r.Username, Email: r.Email, CreatedAt: r.CreatedAt.UTC()}
}

// predictionRow is the predictions table. Seq orders rows created within the
// same clock tick.
type predictionRow struct {
	Seq        uint64    `gorm:"primaryKey;autoIncrement"`
	ID         string    `gorm:"uniqueIndex;size:36;not null"`
	UserID     string    `gorm:"index:idx_predictions_user_created,priority:1;not null"`
	Label      string    `gorm:"not null"`
	Confidence float64   `gorm:"not null"`
	CreatedAt  time.Time `gorm:"index:idx_predictions_user_created,priority:2"`
}

func (predictionRow) TableName() string { return "predictions" }

func (r predictionRow) record() PredictionRecord {
	return PredictionRecord{
		ID:         r.ID,
		UserID:     r.UserID,
		Label:      r.Label,
		Confidence: r.Confidence,
		CreatedAt:  r.CreatedAt.UTC(),
	}
}

// Store keeps users and predictions in a SQLite database.
type Store struct {
	db   *gorm.DB
	cost int
	now  func() time.Time
}

// NewStore opens the database at path and migrates the schema. An empty path
// selects a private in-memory database. Passwords are hashed with the given
// bcrypt cost.
func NewStore(path string, cost int, now func() time.Time) (*Store, error) {
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	if now == nil {
		now = time.Now
	}

	dsn := path
	if dsn == "" {
		// named shared-cache database so every pooled connection sees the same data
		dsn = fmt.Sprintf("file:devserver-%s?mode=memory&cache=shared", uuid.NewString())
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.NewGormLoggerAdapter(GetLogger().Module("db"), slowQueryThreshold),
		NowFunc:        func() time.Time { return now().UTC() },
		TranslateError: true,
	})
	if err != nil {
		return nil, dbError(err, "open")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, dbError(err, "open")
	}
	// sqlite serializes writers; one connection also keeps the in-memory database alive
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&userRow{}, &predictionRow{}); err != nil {
		_ = sqlDB.Close()
		return nil, dbError(err, "migrate")
	}

	return &Store{db: db, cost: cost, now: now}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return dbError(err, "close")
	}
	if err := sqlDB.Close(); err != nil {
		return dbError(err, "close")
	}
	return nil
}

// CreateUser registers a new account. Username and email must both be unused.
func (s *Store) CreateUser(username, email, password string) (User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return User{}, errors.New(err).
			Component("devserver").
			Category(errors.CategoryValidation).
			Context("operation", "hash-password").
			Build()
	}

	row := userRow{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		EmailKey:     strings.ToLower(email),
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		var taken int64
		if err := tx.Model(&userRow{}).
			Where("username = ? OR email_key = ?", row.Username, row.EmailKey).
			Count(&taken).Error; err != nil {
			return err
		}
		if taken > 0 {
			return ErrUserExists
		}
		return tx.Create(&row).Error
	})
	switch {
	case errors.Is(err, ErrUserExists), errors.Is(err, gorm.ErrDuplicatedKey):
		return User{}, ErrUserExists
	case err != nil:
		return User{}, dbError(err, "create-user")
	}
	return row.user(), nil
}

// Authenticate checks username and password.
func (s *Store) Authenticate(username, password string) (User, error) {
	var row userRow
	err := s.db.Where("username = ?", username).First(&row).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return User{}, ErrInvalidCredentials
	case err != nil:
		return User{}, dbError(err, "authenticate")
	}
	if err := bcrypt.CompareHashAndPassword(row.PasswordHash, []byte(password)); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return row.user(), nil
}

// UserCount returns the number of registered accounts.
func (s *Store) UserCount() (int64, error) {
	var n int64
	if err := s.db.Model(&userRow{}).Count(&n).Error; err != nil {
		return 0, dbError(err, "count-users")
	}
	return n, nil
}

// AddPrediction stores a prediction for userID.
func (s *Store) AddPrediction(userID, label string, confidence float64) (PredictionRecord, error) {
	row := predictionRow{
		ID:         uuid.NewString(),
		UserID:     userID,
		Label:      label,
		Confidence: confidence,
		CreatedAt:  s.now().UTC(),
	}
	if err := s.db.Create(&row).Error; err != nil {
		return PredictionRecord{}, dbError(err, "add-prediction")
	}
	return row.record(), nil
}

// History returns up to limit predictions of userID, newest first. A limit of
// zero or less returns all of them.
func (s *Store) History(userID string, limit int) ([]PredictionRecord, error) {
	q := s.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("seq DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var rows []predictionRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, dbError(err, "history")
	}

	out := make([]PredictionRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.record())
	}
	return out, nil
}

func dbError(err error, op string) error {
	return errors.New(err).
		Component("devserver").
		Category(errors.CategoryDatabase).
		Context("operation", op).
		Build()
}
