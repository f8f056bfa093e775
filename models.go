package authsync

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Profile is the locally cached user-profile metadata, keyed by the
// provider-assigned subject identifier.
type Profile struct {
	bun.BaseModel  `bun:"table:profiles,alias:prf"`
	ID             uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	SubjectID      string     `bun:"subject_id,notnull,unique" json:"subject_id,omitempty"`
	DisplayName    string     `bun:"display_name" json:"display_name,omitempty"`
	PhotoURL       string     `bun:"photo_url" json:"photo_url,omitempty"`
	Email          string     `bun:"email" json:"email,omitempty"`
	Phone          string     `bun:"phone_number" json:"phone_number,omitempty"`
	SignInProvider string     `bun:"sign_in_provider" json:"sign_in_provider,omitempty"`
	LastSeenAt     *time.Time `bun:"last_seen_at,nullzero" json:"last_seen_at,omitempty"`
	CreatedAt      *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt      *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt      *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}
