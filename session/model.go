package session

import "time"

// Session is the server-side record of a signed-in user.
type Session struct {
	SessionID string
	UserID    string
	UserName  string
	Locale    string

	CreatedAt int64
	ExpiresAt int64
}

// Expired reports whether s is past its absolute expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return s.ExpiresAt > 0 && now.Unix() >= s.ExpiresAt
}
