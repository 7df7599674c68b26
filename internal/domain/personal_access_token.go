package domain

import "time"

// PersonalAccessToken is an API token issued to a back-office user. Only
// the sha256 of the secret part is stored.
type PersonalAccessToken struct {
	ID        int64
	UserID    int64
	TokenHash string
	Abilities string
	ExpiresAt *time.Time
}

func (t PersonalAccessToken) Expired(now time.Time) bool {
	return t.ExpiresAt != nil && t.ExpiresAt.Before(now)
}
