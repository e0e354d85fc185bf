// AngelaMos | 2026
// entity.go

package contact

import (
	"time"
)

const (
	RoleClient          = "client"
	RoleWitness         = "witness"
	RoleOpposingCounsel = "opposing_counsel"
	RoleExpert          = "expert"
	RoleCourtStaff      = "court_staff"
	RoleOther           = "other"
)

type Contact struct {
	ID           string    `db:"id"`
	UserID       string    `db:"user_id"`
	CaseID       *string   `db:"case_id"`
	Name         string    `db:"name"`
	Role         string    `db:"role"`
	Email        string    `db:"email"`
	Phone        string    `db:"phone"`
	Organization string    `db:"organization"`
	Notes        string    `db:"notes"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func ValidRole(r string) bool {
	switch r {
	case RoleClient, RoleWitness, RoleOpposingCounsel,
		RoleExpert, RoleCourtStaff, RoleOther:
		return true
	}
	return false
}
