package request

import (
	"context"
	"regexp"
	"strconv"
	"time"

	"gorm.io/gorm"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) Create(ctx context.Context, rec *Request) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *Repo) GetByID(ctx context.Context, id uint64) (*Request, error) {
	var rec Request
	if err := r.db.WithContext(ctx).First(&rec, id).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *Repo) GetByToken(ctx context.Context, token string) (*Request, error) {
	var rec Request
	if err := r.db.WithContext(ctx).
		Where("link_token = ?", token).
		First(&rec).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

var allDigits = regexp.MustCompile(`^\d+$`)

// GetByIdentifier resolves either identifier space: all-digit identifiers are
// numeric ids, anything else is a link token. Tokens are ULIDs and never
// all-digit, so the two spaces do not collide.
func (r *Repo) GetByIdentifier(ctx context.Context, identifier string) (*Request, error) {
	if allDigits.MatchString(identifier) {
		id, err := strconv.ParseUint(identifier, 10, 64)
		if err != nil {
			return nil, gorm.ErrRecordNotFound
		}
		return r.GetByID(ctx, id)
	}
	return r.GetByToken(ctx, identifier)
}

type ListFilter struct {
	OwnerID         *uint64
	Status          *Status
	IncludeArchived bool
}

const statusRankExpr = "CASE status WHEN 'pending' THEN 1 WHEN 'received' THEN 2 WHEN 'finalized' THEN 3 ELSE 4 END"

// List returns records ordered by status rank, then newest first.
func (r *Repo) List(ctx context.Context, f ListFilter) ([]Request, error) {
	q := r.db.WithContext(ctx).Model(&Request{})
	if f.OwnerID != nil {
		q = q.Where("owner_id = ?", *f.OwnerID)
	}
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}
	if !f.IncludeArchived {
		q = q.Where("archived = ?", false)
	}

	var recs []Request
	if err := q.Order(statusRankExpr).
		Order("created_at DESC").
		Find(&recs).Error; err != nil {
		return nil, err
	}
	return recs, nil
}

// ListActiveUnfinalized returns non-archived, non-finalized records newest
// first. The phone-suffix matcher filters them in memory.
func (r *Repo) ListActiveUnfinalized(ctx context.Context) ([]Request, error) {
	var recs []Request
	if err := r.db.WithContext(ctx).
		Where("archived = ? AND status <> ?", false, StatusFinalized).
		Order("created_at DESC").
		Find(&recs).Error; err != nil {
		return nil, err
	}
	return recs, nil
}

// UpdateGuarded applies fields only if the record's status still matches what
// the caller read. A zero rows result means a concurrent writer got there
// first; callers reload and retry.
func (r *Repo) UpdateGuarded(ctx context.Context, id uint64, prevStatus Status, fields map[string]any) (int64, error) {
	res := r.db.WithContext(ctx).Model(&Request{}).
		Where("id = ? AND status = ?", id, prevStatus).
		Updates(fields)
	return res.RowsAffected, res.Error
}

// UpdateAddress fills the asynchronously geocoded address fields. No guard:
// address enrichment never races with lifecycle-relevant fields.
func (r *Repo) UpdateAddress(ctx context.Context, id uint64, address, city, street, plusCode string) error {
	return r.db.WithContext(ctx).Model(&Request{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"address":   address,
			"city":      city,
			"street":    street,
			"plus_code": plusCode,
		}).Error
}

func (r *Repo) SetPushSubscription(ctx context.Context, id uint64, raw string) error {
	return r.db.WithContext(ctx).Model(&Request{}).
		Where("id = ?", id).
		Update("push_subscription", raw).Error
}

// Sweep archives every finalized, unarchived record older than cutoff in one
// conditional update. Re-checking status and archived at write time keeps the
// sweep safe against concurrent mutations and repeated invocation.
func (r *Repo) Sweep(ctx context.Context, now time.Time, age time.Duration) (int64, error) {
	res := r.db.WithContext(ctx).Model(&Request{}).
		Where("status = ? AND archived = ? AND created_at <= ?",
			StatusFinalized, false, now.Add(-age)).
		Updates(map[string]any{
			"archived":    true,
			"archived_at": now,
		})
	return res.RowsAffected, res.Error
}

func (r *Repo) InsertMessage(ctx context.Context, m *Message) error {
	return r.db.WithContext(ctx).Create(m).Error
}

// ListMessages returns a request's messages oldest first.
func (r *Repo) ListMessages(ctx context.Context, requestID uint64) ([]Message, error) {
	var msgs []Message
	if err := r.db.WithContext(ctx).
		Where("request_id = ?", requestID).
		Order("id ASC").
		Find(&msgs).Error; err != nil {
		return nil, err
	}
	return msgs, nil
}

func (r *Repo) CountUnread(ctx context.Context, requestID uint64, from Sender) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&Message{}).
		Where("request_id = ? AND sender = ? AND is_read = ?", requestID, from, false).
		Count(&n).Error
	return n, err
}

// MarkRead flips unread messages from the given sender to read. Idempotent:
// already-read rows are untouched.
func (r *Repo) MarkRead(ctx context.Context, requestID uint64, from Sender) error {
	return r.db.WithContext(ctx).Model(&Message{}).
		Where("request_id = ? AND sender = ? AND is_read = ?", requestID, from, false).
		Update("is_read", true).Error
}
