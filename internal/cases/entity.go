// AngelaMos | 2026
// entity.go

package cases

import (
	"time"
)

const (
	StatusOpen    = "open"
	StatusStayed  = "stayed"
	StatusSettled = "settled"
	StatusClosed  = "closed"
)

type Case struct {
	ID          string     `db:"id"`
	UserID      string     `db:"user_id"`
	Title       string     `db:"title"`
	CaseNumber  string     `db:"case_number"`
	Court       string     `db:"court"`
	Status      string     `db:"status"`
	Description string     `db:"description"`
	OpenedOn    *time.Time `db:"opened_on"`
	ClosedOn    *time.Time `db:"closed_on"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
}

func (c *Case) IsClosed() bool {
	return c.Status == StatusClosed
}

func ValidStatus(s string) bool {
	switch s {
	case StatusOpen, StatusStayed, StatusSettled, StatusClosed:
		return true
	}
	return false
}
