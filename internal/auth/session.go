package auth

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/cobom/geoloc193/internal/models"
	"github.com/cobom/geoloc193/internal/store/redisstore"
)

var ErrSessionInvalid = errors.New("session no longer valid")

// SessionValidator enforces one live session per user. The token presented in
// a JWT must still match the token stored at login; a newer login or a logout
// rotates the stored token and kills every older JWT.
type SessionValidator struct {
	db    *gorm.DB
	cache *redisstore.Store
}

// NewSessionValidator wires the validator. cache may be nil, in which case
// every check goes to the database.
func NewSessionValidator(db *gorm.DB, cache *redisstore.Store) *SessionValidator {
	return &SessionValidator{db: db, cache: cache}
}

// Validate checks the session token against the cache first and falls back to
// the users table on a miss. The DB path also rejects deactivated accounts and
// backfills the cache.
func (v *SessionValidator) Validate(ctx context.Context, userID uint64, session string) error {
	if session == "" {
		return ErrSessionInvalid
	}

	if v.cache != nil {
		cached, err := v.cache.GetSessionToken(ctx, userID)
		if err == nil && cached != "" {
			if cached != session {
				return ErrSessionInvalid
			}
			return nil
		}
		// Cache errors and misses both fall through to the DB.
	}

	var user models.User
	if err := v.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSessionInvalid
		}
		return err
	}
	if !user.Active || user.SessionToken != session {
		return ErrSessionInvalid
	}

	if v.cache != nil {
		_ = v.cache.SetSessionToken(ctx, userID, user.SessionToken)
	}
	return nil
}
