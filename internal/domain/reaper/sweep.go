package reaper

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// Sweeper reclaims inline blobs that lost their record without going through
// the cascade — typically a create flow that wrote bytes and then died before
// the record insert. It runs outside the hard-delete path: the grace window
// keeps it from racing a record creation that is merely slow.
type Sweeper struct {
	db *gorm.DB
}

func NewSweeper(db *gorm.DB) *Sweeper {
	return &Sweeper{db: db}
}

// SweepOrphans deletes inline blobs older than grace with zero referencing
// records across all four artifact tables. Returns the number reclaimed.
func (s *Sweeper) SweepOrphans(ctx context.Context, grace time.Duration) (int64, error) {
	cutoff := time.Now().Add(-grace)

	res := s.db.WithContext(ctx).Exec(`
		DELETE FROM blobs
		WHERE created_at < ?
		  AND ('inline:' || id) NOT IN (
			SELECT locator FROM conversions WHERE locator IS NOT NULL
			UNION
			SELECT locator FROM upscales WHERE locator IS NOT NULL
			UNION
			SELECT locator FROM shared_links
			UNION
			SELECT locator FROM drop_links WHERE locator IS NOT NULL
		  )`, cutoff)

	return res.RowsAffected, res.Error
}
