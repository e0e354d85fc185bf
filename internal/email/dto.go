// AngelaMos | 2026
// dto.go

package email

import (
	"time"
)

type LinkResponse struct {
	ConsentURL string `json:"consent_url"`
	State      string `json:"state"`
}

type ConnectionResponse struct {
	ID             string     `json:"id"`
	Provider       string     `json:"provider"`
	EmailAddress   string     `json:"email_address"`
	TokenExpiresAt *time.Time `json:"token_expires_at,omitempty"`
	Scopes         ScopeList  `json:"scopes"`
	Status         string     `json:"status"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func ToConnectionResponse(c *Connection) ConnectionResponse {
	return ConnectionResponse{
		ID:             c.ID,
		Provider:       c.Provider,
		EmailAddress:   c.EmailAddress,
		TokenExpiresAt: c.TokenExpiresAt,
		Scopes:         c.Scopes,
		Status:         c.Status,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

func ToConnectionResponseList(items []Connection) []ConnectionResponse {
	responses := make([]ConnectionResponse, 0, len(items))
	for i := range items {
		responses = append(responses, ToConnectionResponse(&items[i]))
	}
	return responses
}
