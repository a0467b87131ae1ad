package reaper

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"metaconvert/internal/domain"
)

type Repository interface {
	// FindLocator returns the record's locator (nil when it has none),
	// scoped to the actor unless the actor is administrative. A record that
	// exists but belongs to someone else is indistinguishable from a missing
	// one.
	FindLocator(ctx context.Context, kind Kind, id string, actor domain.Actor) (*string, error)
	// DeleteRecord removes the row under the same scope and reports how many
	// rows went away. Zero rows means a concurrent deleter won the race.
	DeleteRecord(ctx context.Context, kind Kind, id string, actor domain.Actor) (int64, error)
	// ExpiredLinkIDs lists shared/drop links whose expiry lies before cutoff.
	ExpiredLinkIDs(ctx context.Context, kind Kind, cutoff time.Time) ([]string, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) scope(q *gorm.DB, actor domain.Actor) *gorm.DB {
	if actor.Admin {
		return q
	}
	return q.Where("owner_id = ?", actor.UserID)
}

func (r *repository) FindLocator(ctx context.Context, kind Kind, id string, actor domain.Actor) (*string, error) {
	table, err := kind.table()
	if err != nil {
		return nil, err
	}

	var row struct {
		Locator *string `gorm:"column:locator"`
	}
	q := r.db.WithContext(ctx).Table(table).Select("locator").Where("id = ?", id)
	err = r.scope(q, actor).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return row.Locator, nil
}

func (r *repository) DeleteRecord(ctx context.Context, kind Kind, id string, actor domain.Actor) (int64, error) {
	table, err := kind.table()
	if err != nil {
		return 0, err
	}

	q := r.db.WithContext(ctx).Table(table).Where("id = ?", id)
	res := r.scope(q, actor).Delete(nil)
	return res.RowsAffected, res.Error
}

func (r *repository) ExpiredLinkIDs(ctx context.Context, kind Kind, cutoff time.Time) ([]string, error) {
	table, err := kind.table()
	if err != nil {
		return nil, err
	}

	var ids []string
	err = r.db.WithContext(ctx).Table(table).
		Where("expires_at < ?", cutoff).
		Pluck("id", &ids).Error
	return ids, err
}
