package request

import "time"

// ChatAccessible reports whether chat reads/writes are currently permitted,
// independent of who asks. Chat is blocked only once the window stamped at
// finalization has passed; before finalization it is always open.
func (e Engine) ChatAccessible(rec *Request, now time.Time) bool {
	if rec.ChatExpiresAt == nil {
		return true
	}
	return !now.After(*rec.ChatExpiresAt)
}
