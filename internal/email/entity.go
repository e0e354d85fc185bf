// AngelaMos | 2026
// entity.go

package email

import (
	"time"
)

const (
	ProviderGmail = "gmail"

	StatusActive  = "active"
	StatusRevoked = "revoked"
	StatusError   = "error"
)

type Connection struct {
	ID             string     `db:"id"`
	UserID         string     `db:"user_id"`
	Provider       string     `db:"provider"`
	EmailAddress   string     `db:"email_address"`
	AccessToken    string     `db:"access_token"`
	RefreshToken   string     `db:"refresh_token"`
	TokenExpiresAt *time.Time `db:"token_expires_at"`
	Scopes         ScopeList  `db:"scopes"`
	Status         string     `db:"status"`
	CreatedAt      time.Time  `db:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at"`
}

func (c *Connection) TokenExpired(now time.Time) bool {
	return c.TokenExpiresAt != nil && !now.Before(*c.TokenExpiresAt)
}
