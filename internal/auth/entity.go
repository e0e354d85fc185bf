// AngelaMos | 2026
// entity.go

package auth

import (
	"time"
)

// RefreshToken is one issued long-lived credential. Only the SHA-256 hash
// of the raw token is ever persisted. A token is valid iff revoked_at is
// null and now < expires_at; expiry and revocation are independent axes.
type RefreshToken struct {
	ID        string     `db:"id"`
	TokenHash string     `db:"token_hash"`
	UserID    string     `db:"user_id"`
	ExpiresAt time.Time  `db:"expires_at"`
	CreatedAt time.Time  `db:"created_at"`
	RevokedAt *time.Time `db:"revoked_at"`
	UserAgent string     `db:"user_agent"`
	IPAddress string     `db:"ip_address"`
}

func (t *RefreshToken) IsExpired() bool {
	return time.Now().After(t.ExpiresAt)
}

func (t *RefreshToken) IsRevoked() bool {
	return t.RevokedAt != nil
}

func (t *RefreshToken) IsValid() bool {
	return !t.IsExpired() && !t.IsRevoked()
}
