// AngelaMos | 2026
// entity.go

package document

import (
	"time"
)

const (
	StatusPending = "pending"
	StatusStored  = "stored"
)

type Document struct {
	ID          string    `db:"id"`
	UserID      string    `db:"user_id"`
	CaseID      string    `db:"case_id"`
	FileName    string    `db:"file_name"`
	ContentType string    `db:"content_type"`
	SizeBytes   int64     `db:"size_bytes"`
	StorageKey  string    `db:"storage_key"`
	SHA256      string    `db:"sha256"`
	Status      string    `db:"status"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (d *Document) IsStored() bool {
	return d.Status == StatusStored
}
