// AngelaMos | 2026
// scopes.go

package email

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// ScopeList is the set of OAuth scopes granted to a connection. It is
// persisted as a JSONB array and validated on both encode and decode so
// a malformed row surfaces as an error instead of silent garbage.
type ScopeList []string

func (s ScopeList) Validate() error {
	for _, scope := range s {
		if strings.TrimSpace(scope) == "" {
			return fmt.Errorf("scope list contains empty entry")
		}
	}
	return nil
}

// Value implements driver.Valuer.
func (s ScopeList) Value() (driver.Value, error) {
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("encode scopes: %w", err)
	}
	if s == nil {
		s = ScopeList{}
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode scopes: %w", err)
	}
	return b, nil
}

// Scan implements sql.Scanner.
func (s *ScopeList) Scan(src any) error {
	var b []byte
	switch v := src.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	case nil:
		*s = ScopeList{}
		return nil
	default:
		return fmt.Errorf("decode scopes: unsupported type %T", src)
	}

	var decoded ScopeList
	if err := json.Unmarshal(b, &decoded); err != nil {
		return fmt.Errorf("decode scopes: %w", err)
	}
	if err := decoded.Validate(); err != nil {
		return fmt.Errorf("decode scopes: %w", err)
	}

	*s = decoded
	return nil
}

// ParseScopes splits a space-delimited scope string as returned by the
// token endpoint.
func ParseScopes(raw string) ScopeList {
	fields := strings.Fields(raw)
	return ScopeList(fields)
}
