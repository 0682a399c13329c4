package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	gormsqlite "github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/cobom/geoloc193/internal/models"
	"github.com/cobom/geoloc193/internal/store/redisstore"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, session string, active bool) *models.User {
	t.Helper()
	u := &models.User{
		Username:     "dispatcher1",
		PasswordHash: "x",
		Name:         "Dispatcher One",
		Role:         models.RoleAgent,
		Active:       true,
		SessionToken: session,
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	// The column defaults to true, so gorm drops a false struct field on
	// insert; flip it explicitly.
	if !active {
		if err := db.Model(u).UpdateColumn("active", false).Error; err != nil {
			t.Fatalf("deactivate user: %v", err)
		}
	}
	return u
}

func TestValidateAgainstDB(t *testing.T) {
	db := openTestDB(t)
	u := seedUser(t, db, "live-token", true)

	v := NewSessionValidator(db, nil)
	ctx := context.Background()

	if err := v.Validate(ctx, u.ID, "live-token"); err != nil {
		t.Fatalf("expected current token to validate: %v", err)
	}
	if err := v.Validate(ctx, u.ID, "stale-token"); !errors.Is(err, ErrSessionInvalid) {
		t.Fatalf("expected stale token rejection, got %v", err)
	}
	if err := v.Validate(ctx, u.ID, ""); !errors.Is(err, ErrSessionInvalid) {
		t.Fatalf("expected empty token rejection, got %v", err)
	}
	if err := v.Validate(ctx, 9999, "live-token"); !errors.Is(err, ErrSessionInvalid) {
		t.Fatalf("expected unknown user rejection, got %v", err)
	}
}

func TestValidateRejectsDeactivatedUser(t *testing.T) {
	db := openTestDB(t)
	u := seedUser(t, db, "live-token", false)

	v := NewSessionValidator(db, nil)
	if err := v.Validate(context.Background(), u.ID, "live-token"); !errors.Is(err, ErrSessionInvalid) {
		t.Fatalf("expected deactivated user rejection, got %v", err)
	}
}

func TestValidateUsesCacheAndBackfills(t *testing.T) {
	db := openTestDB(t)
	u := seedUser(t, db, "live-token", true)

	mr := miniredis.RunT(t)
	cache := redisstore.New(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Hour)

	v := NewSessionValidator(db, cache)
	ctx := context.Background()

	// First check misses the cache, hits the DB and backfills.
	if err := v.Validate(ctx, u.ID, "live-token"); err != nil {
		t.Fatalf("validate: %v", err)
	}
	cached, err := cache.GetSessionToken(ctx, u.ID)
	if err != nil {
		t.Fatalf("cache get: %v", err)
	}
	if cached != "live-token" {
		t.Fatalf("expected backfilled cache, got %q", cached)
	}

	// A stale token is rejected straight from the cache.
	if err := v.Validate(ctx, u.ID, "stale-token"); !errors.Is(err, ErrSessionInvalid) {
		t.Fatalf("expected cached rejection, got %v", err)
	}
}
