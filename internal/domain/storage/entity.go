package storage

import "time"

// Blob is raw content stored inline in the database. A blob is owned by
// whichever artifact record currently holds its locator; the reaper is the
// only deletion path.
type Blob struct {
	ID        string    `gorm:"column:id;primaryKey" json:"id"`
	Content   []byte    `gorm:"column:content" json:"-"`
	Size      int64     `gorm:"column:size" json:"size"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Blob) TableName() string { return "blobs" }
