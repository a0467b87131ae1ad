package conversion

import "time"

// Status is the processing state of a conversion or upscale. Transitions are
// monotonic: pending -> completed or pending -> failed, never out of a
// terminal state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Conversion is one file-conversion job and, once completed, the artifact
// record pointing at its output bytes through Locator. OwnerID is nullable —
// anonymous conversions are allowed; such records are only reachable by the
// admin console once the creating request ends.
type Conversion struct {
	ID         string    `gorm:"column:id;primaryKey" json:"id"`
	SourceName string    `gorm:"column:source_name" json:"source_name"`
	SourceType string    `gorm:"column:source_type" json:"source_type"`
	TargetType string    `gorm:"column:target_type" json:"target_type"`
	SourceSize int64     `gorm:"column:source_size" json:"source_size"`
	ResultSize int64     `gorm:"column:result_size" json:"result_size"`
	Status     Status    `gorm:"column:status" json:"status"`
	Locator    *string   `gorm:"column:locator" json:"-"`
	OwnerID    *int64    `gorm:"column:owner_id;index" json:"owner_id,omitempty"`
	DropLinkID *string   `gorm:"column:drop_link_id;index" json:"drop_link_id,omitempty"`
	CreatedAt  time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Conversion) TableName() string { return "conversions" }

// Upscale is the image-upscale specialization of the same record shape.
type Upscale struct {
	ID          string    `gorm:"column:id;primaryKey" json:"id"`
	SourceName  string    `gorm:"column:source_name" json:"source_name"`
	SourceType  string    `gorm:"column:source_type" json:"source_type"`
	ScaleFactor int       `gorm:"column:scale_factor" json:"scale_factor"`
	SourceSize  int64     `gorm:"column:source_size" json:"source_size"`
	ResultSize  int64     `gorm:"column:result_size" json:"result_size"`
	Status      Status    `gorm:"column:status" json:"status"`
	Locator     *string   `gorm:"column:locator" json:"-"`
	OwnerID     *int64    `gorm:"column:owner_id;index" json:"owner_id,omitempty"`
	DropLinkID  *string   `gorm:"column:drop_link_id;index" json:"drop_link_id,omitempty"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Upscale) TableName() string { return "upscales" }

func (c *Conversion) Terminal() bool { return c.Status != StatusPending }
func (u *Upscale) Terminal() bool    { return u.Status != StatusPending }
