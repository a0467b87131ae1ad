package conversion

import (
	"context"
	"time"

	"github.com/google/uuid"

	"metaconvert/internal/domain"
	"metaconvert/internal/domain/storage"
)

// Service owns the conversion/upscale record lifecycle. The actual codecs run
// elsewhere; this service receives their already-produced output bytes.
type Service struct {
	repo  Repository
	store *storage.Store
}

func NewService(repo Repository, store *storage.Store) *Service {
	return &Service{repo: repo, store: store}
}

type CreateConversionInput struct {
	SourceName string
	SourceType string
	TargetType string
	SourceSize int64
	DropLinkID *string
}

// CreateConversion registers a pending job. Anonymous actors are allowed —
// the record simply has no owner.
func (s *Service) CreateConversion(ctx context.Context, actor domain.Actor, in CreateConversionInput) (*Conversion, error) {
	if in.SourceName == "" || in.TargetType == "" {
		return nil, ErrInvalidArgument
	}

	c := &Conversion{
		ID:         uuid.New().String(),
		SourceName: in.SourceName,
		SourceType: in.SourceType,
		TargetType: in.TargetType,
		SourceSize: in.SourceSize,
		Status:     StatusPending,
		DropLinkID: in.DropLinkID,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	if !actor.Anonymous() {
		owner := actor.UserID
		c.OwnerID = &owner
	}

	if err := s.repo.CreateConversion(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// CompleteConversion stores the output bytes and moves the record to
// completed. Bytes go in first; if the record turns out to be terminal (or
// gone) the blob is removed again so nothing is left dangling.
func (s *Service) CompleteConversion(ctx context.Context, id string, output []byte, placement storage.Placement) (*Conversion, error) {
	loc, err := s.store.Put(ctx, output, placement)
	if err != nil {
		return nil, err
	}

	locStr := loc.String()
	ok, err := s.repo.TransitionConversion(ctx, id, StatusPending, map[string]any{
		"status":      StatusCompleted,
		"locator":     locStr,
		"result_size": int64(len(output)),
		"updated_at":  time.Now(),
	})
	if err != nil || !ok {
		_ = s.store.Delete(ctx, loc)
		if err != nil {
			return nil, err
		}
		return nil, ErrInvalidTransition
	}

	return s.repo.GetConversion(ctx, id, domain.Actor{Admin: true})
}

// FailConversion moves a pending record to failed.
func (s *Service) FailConversion(ctx context.Context, id string) error {
	ok, err := s.repo.TransitionConversion(ctx, id, StatusPending, map[string]any{
		"status":     StatusFailed,
		"updated_at": time.Now(),
	})
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidTransition
	}
	return nil
}

// RenameConversion is an owner-scoped partial update of the source name.
func (s *Service) RenameConversion(ctx context.Context, actor domain.Actor, id, newName string) error {
	if newName == "" {
		return ErrInvalidArgument
	}
	return s.repo.UpdateConversionFields(ctx, id, actor, map[string]any{
		"source_name": newName,
		"updated_at":  time.Now(),
	})
}

func (s *Service) GetConversion(ctx context.Context, actor domain.Actor, id string) (*Conversion, error) {
	return s.repo.GetConversion(ctx, id, actor)
}

func (s *Service) ListConversions(ctx context.Context, actor domain.Actor) ([]*Conversion, error) {
	return s.repo.ListConversions(ctx, actor.UserID)
}

// DownloadConversion resolves the record's locator to bytes, owner-scoped.
func (s *Service) DownloadConversion(ctx context.Context, actor domain.Actor, id string) ([]byte, *Conversion, error) {
	c, err := s.repo.GetConversion(ctx, id, actor)
	if err != nil {
		return nil, nil, err
	}
	if c.Locator == nil {
		return nil, nil, ErrNotFound
	}
	data, err := s.store.GetString(ctx, *c.Locator)
	if err != nil {
		return nil, nil, err
	}
	return data, c, nil
}

type CreateUpscaleInput struct {
	SourceName  string
	SourceType  string
	ScaleFactor int
	SourceSize  int64
	DropLinkID  *string
}

func (s *Service) CreateUpscale(ctx context.Context, actor domain.Actor, in CreateUpscaleInput) (*Upscale, error) {
	if in.SourceName == "" || in.ScaleFactor < 2 || in.ScaleFactor > 8 {
		return nil, ErrInvalidArgument
	}

	u := &Upscale{
		ID:          uuid.New().String(),
		SourceName:  in.SourceName,
		SourceType:  in.SourceType,
		ScaleFactor: in.ScaleFactor,
		SourceSize:  in.SourceSize,
		Status:      StatusPending,
		DropLinkID:  in.DropLinkID,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	if !actor.Anonymous() {
		owner := actor.UserID
		u.OwnerID = &owner
	}

	if err := s.repo.CreateUpscale(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) CompleteUpscale(ctx context.Context, id string, output []byte, placement storage.Placement) (*Upscale, error) {
	loc, err := s.store.Put(ctx, output, placement)
	if err != nil {
		return nil, err
	}

	ok, err := s.repo.TransitionUpscale(ctx, id, StatusPending, map[string]any{
		"status":      StatusCompleted,
		"locator":     loc.String(),
		"result_size": int64(len(output)),
		"updated_at":  time.Now(),
	})
	if err != nil || !ok {
		_ = s.store.Delete(ctx, loc)
		if err != nil {
			return nil, err
		}
		return nil, ErrInvalidTransition
	}

	return s.repo.GetUpscale(ctx, id, domain.Actor{Admin: true})
}

func (s *Service) FailUpscale(ctx context.Context, id string) error {
	ok, err := s.repo.TransitionUpscale(ctx, id, StatusPending, map[string]any{
		"status":     StatusFailed,
		"updated_at": time.Now(),
	})
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidTransition
	}
	return nil
}

func (s *Service) RenameUpscale(ctx context.Context, actor domain.Actor, id, newName string) error {
	if newName == "" {
		return ErrInvalidArgument
	}
	return s.repo.UpdateUpscaleFields(ctx, id, actor, map[string]any{
		"source_name": newName,
		"updated_at":  time.Now(),
	})
}

func (s *Service) ListUpscales(ctx context.Context, actor domain.Actor) ([]*Upscale, error) {
	return s.repo.ListUpscales(ctx, actor.UserID)
}

func (s *Service) DownloadUpscale(ctx context.Context, actor domain.Actor, id string) ([]byte, *Upscale, error) {
	u, err := s.repo.GetUpscale(ctx, id, actor)
	if err != nil {
		return nil, nil, err
	}
	if u.Locator == nil {
		return nil, nil, ErrNotFound
	}
	data, err := s.store.GetString(ctx, *u.Locator)
	if err != nil {
		return nil, nil, err
	}
	return data, u, nil
}
