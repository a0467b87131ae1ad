package notification

import (
	"context"

	"gorm.io/gorm"

	"metaconvert/internal/domain"
)

type Repository interface {
	CreateBatch(ctx context.Context, batch []Notification) error
	ListByUser(ctx context.Context, userID int64, limit int) ([]Notification, error)
	CountUnread(ctx context.Context, userID int64) (int64, error)
	MarkAsRead(ctx context.Context, id, userID int64) error
	MarkAllAsRead(ctx context.Context, userID int64) error
	// AllUserIDs snapshots the full user id set for ALL_USERS campaigns.
	AllUserIDs(ctx context.Context) ([]int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateBatch(ctx context.Context, batch []Notification) error {
	return r.db.WithContext(ctx).Create(&batch).Error
}

func (r *repository) ListByUser(ctx context.Context, userID int64, limit int) ([]Notification, error) {
	var out []Notification
	q := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&out).Error
	return out, err
}

func (r *repository) CountUnread(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

func (r *repository) MarkAsRead(ctx context.Context, id, userID int64) error {
	res := r.db.WithContext(ctx).Model(&Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) MarkAllAsRead(ctx context.Context, userID int64) error {
	return r.db.WithContext(ctx).Model(&Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true).Error
}

func (r *repository) AllUserIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).Model(&domain.User{}).
		Order("id").
		Pluck("id", &ids).Error
	return ids, err
}
