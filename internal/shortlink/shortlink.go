package shortlink

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/cobom/geoloc193/internal/common"
)

// ShortURL maps an SMS-friendly code to a request's link token. Carrier spam
// filters choke on long tokenized URLs; the short form dodges that.
type ShortURL struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	ShortCode string    `gorm:"type:varchar(10);uniqueIndex;not null"`
	LinkToken string    `gorm:"type:varchar(100);index;not null"`
	CreatedAt time.Time
}

func (ShortURL) TableName() string { return "short_urls" }

var ErrNotFound = errors.New("short code not found")

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

const codeAttempts = 10

// CreateFor returns a short code for the token, reusing an existing one.
func (s *Store) CreateFor(ctx context.Context, linkToken string) (string, error) {
	var existing ShortURL
	err := s.db.WithContext(ctx).
		Where("link_token = ?", linkToken).
		First(&existing).Error
	if err == nil {
		return existing.ShortCode, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	for i := 0; i < codeAttempts; i++ {
		code, err := common.NewShortCode(6)
		if err != nil {
			return "", err
		}
		createErr := s.db.WithContext(ctx).Create(&ShortURL{
			ShortCode: code,
			LinkToken: linkToken,
		}).Error
		if createErr == nil {
			return code, nil
		}
		// Unique collision: roll a new code. The insert itself arbitrates,
		// so two concurrent creators can't claim the same code.
	}
	return "", fmt.Errorf("could not allocate a unique short code after %d attempts", codeAttempts)
}

// Resolve returns the link token behind a short code.
func (s *Store) Resolve(ctx context.Context, code string) (string, error) {
	var row ShortURL
	if err := s.db.WithContext(ctx).
		Where("short_code = ?", code).
		First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}
	return row.LinkToken, nil
}
