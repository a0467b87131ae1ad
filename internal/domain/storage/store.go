package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Placement tells Put which backend receives the bytes.
type Placement string

const (
	// PlaceInline — default for share links and other same-process artifacts.
	PlaceInline Placement = "inline"
	// PlaceExternal — large or long-lived outputs go to the object store.
	PlaceExternal Placement = "external"
)

// Store is the single place that branches on locator scheme. Every other
// component (records, sharing, deletion) works with locators only and stays
// backend-agnostic.
type Store struct {
	db       *gorm.DB
	external *ExternalClient
}

func NewStore(db *gorm.DB, external *ExternalClient) *Store {
	return &Store{db: db, external: external}
}

// Put writes the payload to the backend selected by placement and returns the
// locator. Either the bytes are fully persisted and a locator comes back, or
// the call fails with nothing written.
func (s *Store) Put(ctx context.Context, data []byte, placement Placement) (Locator, error) {
	if len(data) == 0 {
		return Locator{}, ErrEmptyPayload
	}

	switch placement {
	case PlaceInline, "":
		blob := &Blob{
			ID:        uuid.New().String(),
			Content:   data,
			Size:      int64(len(data)),
			CreatedAt: time.Now(),
		}
		if err := s.db.WithContext(ctx).Create(blob).Error; err != nil {
			return Locator{}, fmt.Errorf("inline put: %w", err)
		}
		return InlineLocator(blob.ID), nil

	case PlaceExternal:
		if s.external == nil {
			return Locator{}, ErrBackendUnavailable
		}
		url, err := s.external.Put(ctx, data)
		if err != nil {
			return Locator{}, err
		}
		return ExternalLocator(url), nil

	default:
		return Locator{}, fmt.Errorf("unknown placement %q", placement)
	}
}

// Get resolves a locator to its bytes. Inline locators never perform network
// I/O; external locators never touch the blobs table.
func (s *Store) Get(ctx context.Context, loc Locator) ([]byte, error) {
	switch loc.Scheme {
	case SchemeInline:
		var blob Blob
		err := s.db.WithContext(ctx).Where("id = ?", loc.Ref).First(&blob).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("inline get: %w", err)
		}
		return blob.Content, nil

	case SchemeExternal:
		if s.external == nil {
			return nil, ErrBackendUnavailable
		}
		return s.external.Get(ctx, loc.Ref)

	default:
		return nil, ErrInvalidLocator
	}
}

// GetString parses a stored locator string and resolves it. Records persist
// locators as strings; this is the read path they use.
func (s *Store) GetString(ctx context.Context, locator string) ([]byte, error) {
	loc, err := ParseLocator(locator)
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, loc)
}

// Delete removes the referenced bytes. Idempotent for both backends: deleting
// a locator whose blob is already gone is not an error, so the reaper can
// retry safely and concurrent deleters cannot fail each other.
func (s *Store) Delete(ctx context.Context, loc Locator) error {
	switch loc.Scheme {
	case SchemeInline:
		return s.db.WithContext(ctx).Where("id = ?", loc.Ref).Delete(&Blob{}).Error

	case SchemeExternal:
		if s.external == nil {
			return ErrBackendUnavailable
		}
		return s.external.Delete(ctx, loc.Ref)

	default:
		return ErrInvalidLocator
	}
}
