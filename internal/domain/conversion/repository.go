package conversion

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"metaconvert/internal/domain"
)

type Repository interface {
	CreateConversion(ctx context.Context, c *Conversion) error
	GetConversion(ctx context.Context, id string, actor domain.Actor) (*Conversion, error)
	ListConversions(ctx context.Context, ownerID int64) ([]*Conversion, error)
	UpdateConversionFields(ctx context.Context, id string, actor domain.Actor, fields map[string]any) error
	TransitionConversion(ctx context.Context, id string, from Status, fields map[string]any) (bool, error)

	CreateUpscale(ctx context.Context, u *Upscale) error
	GetUpscale(ctx context.Context, id string, actor domain.Actor) (*Upscale, error)
	ListUpscales(ctx context.Context, ownerID int64) ([]*Upscale, error)
	UpdateUpscaleFields(ctx context.Context, id string, actor domain.Actor, fields map[string]any) error
	TransitionUpscale(ctx context.Context, id string, from Status, fields map[string]any) (bool, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// scoped embeds the ownership predicate in the query itself. Non-admin
// callers can never see another user's rows, and an anonymous caller
// (user id 0) matches nothing — both look like NotFound.
func scoped(q *gorm.DB, actor domain.Actor) *gorm.DB {
	if actor.Admin {
		return q
	}
	return q.Where("owner_id = ?", actor.UserID)
}

func (r *repository) CreateConversion(ctx context.Context, c *Conversion) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *repository) GetConversion(ctx context.Context, id string, actor domain.Actor) (*Conversion, error) {
	var c Conversion
	err := scoped(r.db.WithContext(ctx).Where("id = ?", id), actor).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repository) ListConversions(ctx context.Context, ownerID int64) ([]*Conversion, error) {
	var out []*Conversion
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

// UpdateConversionFields is a partial update: only the supplied fields are
// written, everything else keeps its prior value.
func (r *repository) UpdateConversionFields(ctx context.Context, id string, actor domain.Actor, fields map[string]any) error {
	res := scoped(r.db.WithContext(ctx).Model(&Conversion{}).Where("id = ?", id), actor).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// TransitionConversion applies fields only while the record is still in the
// from status. Returns false when the row is missing or already terminal —
// the status predicate is what makes transitions monotonic under concurrency.
func (r *repository) TransitionConversion(ctx context.Context, id string, from Status, fields map[string]any) (bool, error) {
	res := r.db.WithContext(ctx).Model(&Conversion{}).
		Where("id = ? AND status = ?", id, from).
		Updates(fields)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) CreateUpscale(ctx context.Context, u *Upscale) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *repository) GetUpscale(ctx context.Context, id string, actor domain.Actor) (*Upscale, error) {
	var u Upscale
	err := scoped(r.db.WithContext(ctx).Where("id = ?", id), actor).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repository) ListUpscales(ctx context.Context, ownerID int64) ([]*Upscale, error) {
	var out []*Upscale
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

func (r *repository) UpdateUpscaleFields(ctx context.Context, id string, actor domain.Actor, fields map[string]any) error {
	res := scoped(r.db.WithContext(ctx).Model(&Upscale{}).Where("id = ?", id), actor).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) TransitionUpscale(ctx context.Context, id string, from Status, fields map[string]any) (bool, error) {
	res := r.db.WithContext(ctx).Model(&Upscale{}).
		Where("id = ? AND status = ?", id, from).
		Updates(fields)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
