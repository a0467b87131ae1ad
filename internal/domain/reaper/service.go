package reaper

import (
	"context"
	"log"
	"time"

	"metaconvert/internal/domain"
	"metaconvert/internal/domain/storage"
)

// Service executes cascading deletion: no record outlives its blob, no blob
// survives its last referencing record. The record row goes first — a missing
// record is a clean 404, while a record with a dangling locator would be a
// confusing partial-content bug.
type Service struct {
	repo  Repository
	store *storage.Store
}

func NewService(repo Repository, store *storage.Store) *Service {
	return &Service{repo: repo, store: store}
}

// Delete removes one record and its stored bytes. Scoping: admins bypass
// ownership, everyone else only reaches their own rows, and a scope miss is
// the same ErrNotFound as a genuinely missing id.
func (s *Service) Delete(ctx context.Context, kind Kind, id string, actor domain.Actor) error {
	locStr, err := s.repo.FindLocator(ctx, kind, id, actor)
	if err != nil {
		return err
	}

	n, err := s.repo.DeleteRecord(ctx, kind, id, actor)
	if err != nil {
		return err
	}
	if n == 0 {
		// A concurrent deleter got the row first; it also owns the blob
		// cleanup.
		return ErrNotFound
	}

	if locStr == nil {
		return nil
	}

	loc, err := storage.ParseLocator(*locStr)
	if err != nil {
		// A locator we cannot parse is corrupt data, never user input.
		log.Printf("reaper: corrupt locator %q on %s %s: %v", *locStr, kind, id, err)
		return err
	}

	// Store.Delete is idempotent, so racing deleters and retries are safe.
	// The record is already gone; a failed external delete leaves a
	// transient orphan object, which the sweep path tolerates.
	if err := s.store.Delete(ctx, loc); err != nil {
		if loc.Scheme == storage.SchemeInline {
			return err
		}
		log.Printf("reaper: external delete failed for %s %s: %v", kind, id, err)
	}
	return nil
}

// DeleteTarget names one record in a bulk administrative delete.
type DeleteTarget struct {
	Kind Kind   `json:"kind"`
	ID   string `json:"id"`
}

// BulkDelete processes each target independently and returns how many were
// actually deleted. One bad id does not abort the remainder.
func (s *Service) BulkDelete(ctx context.Context, targets []DeleteTarget, actor domain.Actor) int {
	deleted := 0
	for _, t := range targets {
		if err := s.Delete(ctx, t.Kind, t.ID, actor); err != nil {
			continue
		}
		deleted++
	}
	return deleted
}

// PurgeExpiredLinks cascades over shared/drop links that expired before
// now-retention, reclaiming their blobs through the normal delete path.
func (s *Service) PurgeExpiredLinks(ctx context.Context, retention time.Duration) (int, error) {
	cutoff := time.Now().Add(-retention)
	admin := domain.Actor{Admin: true}

	purged := 0
	for _, kind := range []Kind{KindSharedLink, KindDropLink} {
		ids, err := s.repo.ExpiredLinkIDs(ctx, kind, cutoff)
		if err != nil {
			return purged, err
		}
		for _, id := range ids {
			if err := s.Delete(ctx, kind, id, admin); err != nil {
				log.Printf("reaper: purge %s %s: %v", kind, id, err)
				continue
			}
			purged++
		}
	}
	return purged, nil
}
