package request

import (
	"fmt"
	"time"
)

// Engine holds the lifecycle rules: which mutations are legal for a record and
// which derived fields they force. All methods are pure functions over the
// record and the supplied clock; the write itself happens in the repo.
type Engine struct {
	// LinkTTL is how long the requester-facing link stays live after creation.
	LinkTTL time.Duration
	// ChatTTL is the chat window opened by a transition to finalized.
	ChatTTL time.Duration
	// ArchiveAge is the minimum age since creation before a finalized record
	// may be archived.
	ArchiveAge time.Duration
}

func NewEngine(linkTTL, chatTTL, archiveAge time.Duration) Engine {
	if linkTTL <= 0 {
		linkTTL = 2 * time.Hour
	}
	if chatTTL <= 0 {
		chatTTL = 2 * time.Hour
	}
	if archiveAge <= 0 {
		archiveAge = 2 * time.Hour
	}
	return Engine{LinkTTL: linkTTL, ChatTTL: chatTTL, ArchiveAge: archiveAge}
}

// StatusChange is the derived outcome of a status mutation.
type StatusChange struct {
	Status Status
	// ChatExpiresAt is set only when the transition is to finalized; it is
	// never cleared by later transitions.
	ChatExpiresAt *time.Time
}

// ApplyStatusChange validates newStatus and computes the fields to persist.
// Backward transitions are not rejected; the stored behavior has no rule
// against them. Every transition to finalized (re)stamps the chat window.
func (e Engine) ApplyStatusChange(rec *Request, newStatus Status, now time.Time) (StatusChange, error) {
	if !ValidStatus(newStatus) {
		return StatusChange{}, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, newStatus)
	}
	change := StatusChange{Status: newStatus}
	if newStatus == StatusFinalized {
		expires := now.Add(e.ChatTTL)
		change.ChatExpiresAt = &expires
	}
	return change, nil
}

// CoordinateChange is the derived outcome of a coordinate submission.
type CoordinateChange struct {
	Coordinates Coordinates
	// Status is empty when the submission leaves status untouched.
	Status Status
}

// ApplyCoordinates overwrites the stored coordinates verbatim. Without an
// explicit status, the first location on a pending record promotes it to
// received; an explicit status is taken as-is.
func (e Engine) ApplyCoordinates(rec *Request, coords Coordinates, explicit Status, now time.Time) (CoordinateChange, error) {
	change := CoordinateChange{Coordinates: coords}
	if explicit != "" {
		if !ValidStatus(explicit) {
			return CoordinateChange{}, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, explicit)
		}
		change.Status = explicit
		return change, nil
	}
	if rec.Status == StatusPending {
		change.Status = StatusReceived
	}
	return change, nil
}

// IsArchivable reports whether the periodic sweep may archive the record.
func (e Engine) IsArchivable(rec *Request, now time.Time) bool {
	return rec.Status == StatusFinalized &&
		!rec.Archived &&
		now.Sub(rec.CreatedAt) >= e.ArchiveAge
}

func (e Engine) IsLinkExpired(rec *Request, now time.Time) bool {
	return now.After(rec.LinkExpiresAt)
}
