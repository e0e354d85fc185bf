// AngelaMos | 2026
// entity.go

package tag

import (
	"context"
	"time"
)

type Tag struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"-"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Taggable is implemented by entity repositories that support tagging
// through their join table. All three methods scope by owner so a tag
// can only be attached to an entity the caller owns.
type Taggable interface {
	AttachTag(ctx context.Context, ownerID, entityID, tagID string) error
	DetachTag(ctx context.Context, ownerID, entityID, tagID string) error
	ListTags(ctx context.Context, ownerID, entityID string) ([]Tag, error)
}
