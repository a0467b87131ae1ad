package share

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	CreateShared(ctx context.Context, l *SharedLink) error
	// GetActiveShared embeds the expiry predicate in the query: a row with
	// expires_at <= now is as absent as no row at all.
	GetActiveShared(ctx context.Context, id string, now time.Time) (*SharedLink, error)
	ListSharedByOwner(ctx context.Context, ownerID int64, now time.Time) ([]*SharedLink, error)

	CreateDrop(ctx context.Context, l *DropLink) error
	GetActiveDrop(ctx context.Context, id string, now time.Time) (*DropLink, error)
	ListDropsByOwner(ctx context.Context, ownerID int64, now time.Time) ([]*DropLink, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateShared(ctx context.Context, l *SharedLink) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *repository) GetActiveShared(ctx context.Context, id string, now time.Time) (*SharedLink, error) {
	var l SharedLink
	err := r.db.WithContext(ctx).
		Where("id = ? AND expires_at > ?", id, now).
		First(&l).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *repository) ListSharedByOwner(ctx context.Context, ownerID int64, now time.Time) ([]*SharedLink, error) {
	var out []*SharedLink
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND expires_at > ?", ownerID, now).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

func (r *repository) CreateDrop(ctx context.Context, l *DropLink) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *repository) GetActiveDrop(ctx context.Context, id string, now time.Time) (*DropLink, error) {
	var l DropLink
	err := r.db.WithContext(ctx).
		Where("id = ? AND active = ? AND expires_at > ?", id, true, now).
		First(&l).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *repository) ListDropsByOwner(ctx context.Context, ownerID int64, now time.Time) ([]*DropLink, error) {
	var out []*DropLink
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND expires_at > ?", ownerID, now).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}
