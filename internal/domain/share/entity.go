package share

import "time"

// SharedLink is a time-boxed grant on a single stored artifact. The password,
// when set, is kept as a bcrypt hash; unlock is an exact-match check against
// it. Expiry is derived from ExpiresAt — there is no stored "expired" state.
type SharedLink struct {
	ID           string    `gorm:"column:id;primaryKey" json:"id"`
	FileName     string    `gorm:"column:file_name" json:"file_name"`
	Locator      string    `gorm:"column:locator" json:"-"`
	PasswordHash *string   `gorm:"column:password_hash" json:"-"`
	ExpiresAt    time.Time `gorm:"column:expires_at;index" json:"expires_at"`
	OwnerID      *int64    `gorm:"column:owner_id;index" json:"owner_id,omitempty"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"created_at"`
}

func (SharedLink) TableName() string { return "shared_links" }

// DropLink is a collection point: conversions and upscales can be grouped
// under it, and it can carry its own stored artifact (e.g. a zip of the
// drop). Ownership is mandatory.
type DropLink struct {
	ID           string    `gorm:"column:id;primaryKey" json:"id"`
	Title        string    `gorm:"column:title" json:"title"`
	Description  string    `gorm:"column:description" json:"description"`
	Locator      *string   `gorm:"column:locator" json:"-"`
	PasswordHash *string   `gorm:"column:password_hash" json:"-"`
	ExpiresAt    time.Time `gorm:"column:expires_at;index" json:"expires_at"`
	OwnerID      int64     `gorm:"column:owner_id;index" json:"owner_id"`
	Active       bool      `gorm:"column:active" json:"active"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"created_at"`
}

func (DropLink) TableName() string { return "drop_links" }

func (l *SharedLink) Expired(now time.Time) bool { return !now.Before(l.ExpiresAt) }
func (l *DropLink) Expired(now time.Time) bool   { return !now.Before(l.ExpiresAt) }
