package request

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/cobom/geoloc193/internal/common"
	"gorm.io/gorm"
)

// GeocodePublisher enqueues async address enrichment for a record.
type GeocodePublisher interface {
	PublishGeocode(ctx context.Context, requestID uint64) error
}

// PushNotifier attempts a best-effort delivery to a stored subscription.
type PushNotifier interface {
	Notify(ctx context.Context, subscriptionJSON, title, body, url string) error
}

type Service struct {
	repo     *Repo
	eng      Engine
	geo      GeocodePublisher
	notifier PushNotifier
}

// NewService wires the lifecycle core. geo and notifier may be nil; both are
// fire-and-forget collaborators whose absence never blocks a mutation.
func NewService(repo *Repo, eng Engine, geo GeocodePublisher, notifier PushNotifier) *Service {
	return &Service{repo: repo, eng: eng, geo: geo, notifier: notifier}
}

func (s *Service) Engine() Engine { return s.eng }

func (s *Service) CreateRequest(ctx context.Context, caller Caller, name, phone string) (*Request, error) {
	name = strings.TrimSpace(name)
	phone = strings.TrimSpace(phone)
	if name == "" || phone == "" {
		return nil, fmt.Errorf("%w: requester name and phone required", ErrInvalidInput)
	}

	token, err := common.NewULID()
	if err != nil {
		return nil, err
	}

	rec := &Request{
		OwnerID:       caller.ID,
		RequesterName: name,
		Phone:         phone,
		Status:        StatusPending,
		LinkToken:     token,
		LinkExpiresAt: time.Now().Add(s.eng.LinkTTL),
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *Service) GetRequest(ctx context.Context, identifier string) (*Request, error) {
	rec, err := s.repo.GetByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return rec, nil
}

// GetForCaller loads a record on behalf of staff, applying the role filter.
func (s *Service) GetForCaller(ctx context.Context, caller Caller, identifier string) (*Request, error) {
	rec, err := s.GetRequest(ctx, identifier)
	if err != nil {
		return nil, err
	}
	if !caller.CanView(rec) {
		return nil, ErrForbidden
	}
	return rec, nil
}

// GetByLinkToken resolves a record strictly by its capability token, never by
// numeric id. Public endpoints use this so a guessed row id grants nothing.
func (s *Service) GetByLinkToken(ctx context.Context, token string) (*Request, error) {
	rec, err := s.repo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return rec, nil
}

// GetForRequester loads a record through its capability link. An expired link
// is inert regardless of status.
func (s *Service) GetForRequester(ctx context.Context, token string) (*Request, error) {
	rec, err := s.repo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if s.eng.IsLinkExpired(rec, time.Now()) {
		return nil, ErrLinkExpired
	}
	return rec, nil
}

type ListFilters struct {
	Status          *Status
	IncludeArchived bool
}

func (s *Service) ListRequests(ctx context.Context, caller Caller, f ListFilters) ([]Request, error) {
	if f.Status != nil && !ValidStatus(*f.Status) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, *f.Status)
	}
	filter := ListFilter{Status: f.Status, IncludeArchived: f.IncludeArchived}
	if !caller.SeesAll() {
		filter.OwnerID = &caller.ID
	}
	return s.repo.List(ctx, filter)
}

type UpdateInput struct {
	Status      *Status
	Coordinates *Coordinates
	Address     *string
	City        *string
	Street      *string
	PlusCode    *string
}

const updateRetries = 3

// UpdateRequest applies a staff or requester mutation as a guarded
// read-modify-write. caller is nil on the requester path, where the link
// expiry stands in for authentication. Lost races against a concurrent writer
// are retried a bounded number of times, never silently overwritten.
func (s *Service) UpdateRequest(ctx context.Context, caller *Caller, identifier string, in UpdateInput) (*Request, error) {
	now := time.Now()

	for attempt := 0; attempt < updateRetries; attempt++ {
		rec, err := s.GetRequest(ctx, identifier)
		if err != nil {
			return nil, err
		}
		if caller != nil && !caller.CanMutate(rec) {
			return nil, ErrForbidden
		}
		if caller == nil && s.eng.IsLinkExpired(rec, now) {
			return nil, ErrLinkExpired
		}

		fields := map[string]any{}
		explicit := Status("")
		if in.Status != nil {
			explicit = *in.Status
			change, err := s.eng.ApplyStatusChange(rec, *in.Status, now)
			if err != nil {
				return nil, err
			}
			fields["status"] = change.Status
			if change.ChatExpiresAt != nil {
				fields["chat_expires_at"] = *change.ChatExpiresAt
			}
		}

		coordsSet := false
		if in.Coordinates != nil {
			change, err := s.eng.ApplyCoordinates(rec, *in.Coordinates, explicit, now)
			if err != nil {
				return nil, err
			}
			raw, err := json.Marshal(change.Coordinates)
			if err != nil {
				return nil, err
			}
			fields["coordinates"] = string(raw)
			if in.Status == nil && change.Status != "" {
				fields["status"] = change.Status
			}
			coordsSet = true
		}

		if in.Address != nil {
			fields["address"] = *in.Address
		}
		if in.City != nil {
			fields["city"] = *in.City
		}
		if in.Street != nil {
			fields["street"] = *in.Street
		}
		if in.PlusCode != nil {
			fields["plus_code"] = *in.PlusCode
		}

		if len(fields) == 0 {
			return rec, nil
		}

		rows, err := s.repo.UpdateGuarded(ctx, rec.ID, rec.Status, fields)
		if err != nil {
			return nil, err
		}
		if rows == 0 {
			// Someone moved the record under us; reload and recompute.
			continue
		}

		updated, err := s.repo.GetByID(ctx, rec.ID)
		if err != nil {
			return nil, err
		}

		if coordsSet && s.geo != nil {
			if err := s.geo.PublishGeocode(ctx, rec.ID); err != nil {
				log.Printf("[UpdateRequest] geocode enqueue failed request=%d err=%v", rec.ID, err)
			}
		}
		return updated, nil
	}

	return nil, ErrConflict
}

func (s *Service) PostMessage(ctx context.Context, identifier string, sender Sender, kind Kind, content string, mediaURL, fileName *string) (*Message, error) {
	if !ValidSender(sender) {
		return nil, fmt.Errorf("%w: unknown sender %q", ErrInvalidInput, sender)
	}
	if kind == "" {
		kind = KindText
	}
	if !ValidKind(kind) {
		return nil, fmt.Errorf("%w: unknown message kind %q", ErrInvalidInput, kind)
	}
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: content required", ErrInvalidInput)
	}

	rec, err := s.GetRequest(ctx, identifier)
	if err != nil {
		return nil, err
	}
	if !s.eng.ChatAccessible(rec, time.Now()) {
		return nil, ErrChatExpired
	}

	msg := &Message{
		RequestID: rec.ID,
		Sender:    sender,
		Kind:      kind,
		Content:   content,
		MediaURL:  mediaURL,
		FileName:  fileName,
	}
	if err := s.repo.InsertMessage(ctx, msg); err != nil {
		return nil, err
	}

	// Push delivery is best effort and must never block the saved message.
	if sender == SenderAgent && rec.PushSubscription != nil && s.notifier != nil {
		sub := *rec.PushSubscription
		body := content
		if kind != KindText {
			body = fmt.Sprintf("New %s message", kind)
		}
		go func() {
			nctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := s.notifier.Notify(nctx, sub, "New message from dispatch", body, "/requests/"+rec.LinkToken); err != nil {
				log.Printf("[PostMessage] push delivery failed request=%d err=%v", rec.ID, err)
			}
		}()
	}

	return msg, nil
}

// ListMessages returns the full thread oldest first. When reader names a side,
// the other side's unread messages are marked read (idempotent).
func (s *Service) ListMessages(ctx context.Context, identifier string, reader Sender) ([]Message, error) {
	rec, err := s.GetRequest(ctx, identifier)
	if err != nil {
		return nil, err
	}
	if !s.eng.ChatAccessible(rec, time.Now()) {
		return nil, ErrChatExpired
	}

	if ValidSender(reader) {
		if err := s.repo.MarkRead(ctx, rec.ID, OppositeSender(reader)); err != nil {
			return nil, err
		}
	}
	return s.repo.ListMessages(ctx, rec.ID)
}

func (s *Service) MarkRead(ctx context.Context, identifier string, reader Sender) error {
	if !ValidSender(reader) {
		return fmt.Errorf("%w: unknown sender %q", ErrInvalidInput, reader)
	}
	rec, err := s.GetRequest(ctx, identifier)
	if err != nil {
		return err
	}
	return s.repo.MarkRead(ctx, rec.ID, OppositeSender(reader))
}

func (s *Service) UnreadCount(ctx context.Context, identifier string, reader Sender) (int64, error) {
	if !ValidSender(reader) {
		return 0, fmt.Errorf("%w: unknown sender %q", ErrInvalidInput, reader)
	}
	rec, err := s.GetRequest(ctx, identifier)
	if err != nil {
		return 0, err
	}
	return s.repo.CountUnread(ctx, rec.ID, OppositeSender(reader))
}

type PhoneMatch struct {
	LinkToken     string `json:"link_token"`
	RequesterName string `json:"requester_name"`
	HasLocation   bool   `json:"has_location"`
}

// FindByPhoneSuffix resumes an active case from a caller-supplied phone
// number: the stored phone's last 8 digits must equal the query's last 8
// digits, and the record must still be reachable (link alive, or coordinates
// shared recently). The most recent match wins. The response deliberately
// reveals nothing beyond "no active request found".
func (s *Service) FindByPhoneSuffix(ctx context.Context, phone string, now time.Time) (*PhoneMatch, error) {
	if len(phone) < 8 || !allDigits.MatchString(phone) {
		return nil, fmt.Errorf("%w: phone must be at least 8 digits", ErrInvalidInput)
	}
	want := lastDigits(phone, 8)

	recs, err := s.repo.ListActiveUnfinalized(ctx)
	if err != nil {
		return nil, err
	}
	for i := range recs {
		rec := &recs[i]
		if lastDigits(rec.Phone, 8) != want {
			continue
		}
		linkAlive := rec.LinkExpiresAt.After(now)
		recentLocation := rec.Coordinates != nil && now.Sub(rec.CreatedAt) < s.eng.LinkTTL
		if !linkAlive && !recentLocation {
			continue
		}
		return &PhoneMatch{
			LinkToken:     rec.LinkToken,
			RequesterName: rec.RequesterName,
			HasLocation:   rec.Coordinates != nil,
		}, nil
	}
	return nil, ErrNotFound
}

// SweepArchive archives every eligible record. Idempotent and safe to invoke
// repeatedly or concurrently; each record is archived exactly once.
func (s *Service) SweepArchive(ctx context.Context, now time.Time) (int64, error) {
	return s.repo.Sweep(ctx, now, s.eng.ArchiveAge)
}

func (s *Service) SetPushSubscription(ctx context.Context, identifier, raw string) error {
	if !json.Valid([]byte(raw)) {
		return fmt.Errorf("%w: subscription must be JSON", ErrInvalidInput)
	}
	rec, err := s.GetRequest(ctx, identifier)
	if err != nil {
		return err
	}
	return s.repo.SetPushSubscription(ctx, rec.ID, raw)
}

// lastDigits strips non-digit characters and returns the trailing n digits.
func lastDigits(phone string, n int) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) <= n {
		return digits
	}
	return digits[len(digits)-n:]
}
