package shortlink

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&ShortURL{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func TestCreateForAndResolve(t *testing.T) {
	store := NewStore(openTestDB(t))
	ctx := context.Background()

	code, err := store.CreateFor(ctx, "01TOKEN000000000000000000A")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(code) != 6 {
		t.Fatalf("expected 6-char code, got %q", code)
	}

	token, err := store.Resolve(ctx, code)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if token != "01TOKEN000000000000000000A" {
		t.Fatalf("token mismatch: %q", token)
	}
}

func TestCreateForReusesExistingCode(t *testing.T) {
	store := NewStore(openTestDB(t))
	ctx := context.Background()

	first, err := store.CreateFor(ctx, "tok-1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	second, err := store.CreateFor(ctx, "tok-1")
	if err != nil {
		t.Fatalf("recreate: %v", err)
	}
	if first != second {
		t.Fatalf("expected the same code, got %q and %q", first, second)
	}
}

func TestResolveUnknownCode(t *testing.T) {
	store := NewStore(openTestDB(t))
	if _, err := store.Resolve(context.Background(), "zzzzzz"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
