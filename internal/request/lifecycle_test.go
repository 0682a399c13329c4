package request

import (
	"errors"
	"testing"
	"time"
)

func TestApplyStatusChange_FinalizedStampsChatWindow(t *testing.T) {
	eng := NewEngine(0, 0, 0)
	now := time.Now()
	rec := &Request{Status: StatusReceived}

	change, err := eng.ApplyStatusChange(rec, StatusFinalized, now)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if change.Status != StatusFinalized {
		t.Fatalf("expected finalized, got %q", change.Status)
	}
	if change.ChatExpiresAt == nil {
		t.Fatalf("expected chat expiry to be stamped")
	}
	if got, want := *change.ChatExpiresAt, now.Add(2*time.Hour); !got.Equal(want) {
		t.Fatalf("chat expiry = %v, want %v", got, want)
	}
}

func TestApplyStatusChange_NonFinalLeavesChatWindowAlone(t *testing.T) {
	eng := NewEngine(0, 0, 0)
	rec := &Request{Status: StatusPending}

	change, err := eng.ApplyStatusChange(rec, StatusReceived, time.Now())
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if change.ChatExpiresAt != nil {
		t.Fatalf("expected no chat expiry for %q", change.Status)
	}
}

func TestApplyStatusChange_RejectsUnknownStatus(t *testing.T) {
	eng := NewEngine(0, 0, 0)
	_, err := eng.ApplyStatusChange(&Request{}, Status("cancelled"), time.Now())
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestApplyCoordinates_AutoPromotesPending(t *testing.T) {
	eng := NewEngine(0, 0, 0)
	coords := Coordinates{Latitude: -23.55, Longitude: -46.63}

	change, err := eng.ApplyCoordinates(&Request{Status: StatusPending}, coords, "", time.Now())
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if change.Status != StatusReceived {
		t.Fatalf("expected auto-promotion to received, got %q", change.Status)
	}
	if change.Coordinates != coords {
		t.Fatalf("expected coordinates to pass through verbatim")
	}
}

func TestApplyCoordinates_NoPromotionPastPending(t *testing.T) {
	eng := NewEngine(0, 0, 0)
	change, err := eng.ApplyCoordinates(&Request{Status: StatusFinalized}, Coordinates{}, "", time.Now())
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if change.Status != "" {
		t.Fatalf("expected status untouched, got %q", change.Status)
	}
}

func TestApplyCoordinates_ExplicitStatusWinsOverAutoPromotion(t *testing.T) {
	eng := NewEngine(0, 0, 0)
	change, err := eng.ApplyCoordinates(&Request{Status: StatusPending}, Coordinates{}, StatusFinalized, time.Now())
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if change.Status != StatusFinalized {
		t.Fatalf("expected explicit status as-is, got %q", change.Status)
	}

	if _, err := eng.ApplyCoordinates(&Request{}, Coordinates{}, Status("bogus"), time.Now()); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for bogus explicit status, got %v", err)
	}
}

func TestIsArchivable(t *testing.T) {
	eng := NewEngine(0, 0, 0)
	now := time.Now()

	cases := []struct {
		name string
		rec  Request
		want bool
	}{
		{"finalized and old", Request{Status: StatusFinalized, CreatedAt: now.Add(-3 * time.Hour)}, true},
		{"exactly at the threshold", Request{Status: StatusFinalized, CreatedAt: now.Add(-2 * time.Hour)}, true},
		{"finalized but young", Request{Status: StatusFinalized, CreatedAt: now.Add(-time.Hour)}, false},
		{"not finalized", Request{Status: StatusReceived, CreatedAt: now.Add(-3 * time.Hour)}, false},
		{"already archived", Request{Status: StatusFinalized, Archived: true, CreatedAt: now.Add(-3 * time.Hour)}, false},
	}
	for _, tc := range cases {
		if got := eng.IsArchivable(&tc.rec, now); got != tc.want {
			t.Fatalf("%s: IsArchivable = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestIsLinkExpired(t *testing.T) {
	eng := NewEngine(0, 0, 0)
	now := time.Now()

	if eng.IsLinkExpired(&Request{LinkExpiresAt: now.Add(time.Second)}, now) {
		t.Fatalf("link in the future should not be expired")
	}
	if !eng.IsLinkExpired(&Request{LinkExpiresAt: now.Add(-time.Second)}, now) {
		t.Fatalf("link in the past should be expired")
	}
}

func TestChatAccessible(t *testing.T) {
	eng := NewEngine(0, 0, 0)
	now := time.Now()

	if !eng.ChatAccessible(&Request{}, now) {
		t.Fatalf("chat should be open when no expiry is set")
	}

	future := now.Add(time.Second)
	if !eng.ChatAccessible(&Request{ChatExpiresAt: &future}, now) {
		t.Fatalf("chat should be open before the window passes")
	}

	past := now.Add(-time.Second)
	if eng.ChatAccessible(&Request{ChatExpiresAt: &past}, now) {
		t.Fatalf("chat should be closed after the window passes")
	}
}
