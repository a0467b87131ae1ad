package notification

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// broadcastBatchSize caps each insert's payload. Chunks are submitted
// sequentially with no cross-chunk transaction: a failure partway through a
// campaign leaves earlier chunks persisted, so Broadcast is at-least-once
// per chunk, never atomic across the whole campaign.
const broadcastBatchSize = 100

type Service struct {
	repo Repository
	hub  *Hub // nil when live push is disabled
}

func NewService(repo Repository, hub *Hub) *Service {
	return &Service{repo: repo, hub: hub}
}

type BroadcastInput struct {
	// Targets lists recipient user ids. Empty + All resolves the full user
	// set at call time — a snapshot, so users added later do not
	// retroactively receive the campaign.
	Targets []int64
	All     bool
	Title   string
	Message string
	Kind    Kind
	Link    *string
}

type BroadcastResult struct {
	CampaignID string `json:"campaign_id"`
	Count      int    `json:"count"`
}

// Broadcast fans a campaign out to its targets in fixed-size chunks.
func (s *Service) Broadcast(ctx context.Context, in BroadcastInput) (*BroadcastResult, error) {
	if in.Title == "" || in.Message == "" {
		return nil, ErrInvalidArgument
	}

	targets := in.Targets
	if in.All {
		ids, err := s.repo.AllUserIDs(ctx)
		if err != nil {
			return nil, err
		}
		targets = ids
	}
	if len(targets) == 0 {
		return nil, ErrInvalidArgument
	}

	kind := in.Kind
	if kind == "" {
		kind = KindAnnouncement
	}

	campaignID := uuid.New().String()
	now := time.Now()

	written := 0
	for start := 0; start < len(targets); start += broadcastBatchSize {
		end := start + broadcastBatchSize
		if end > len(targets) {
			end = len(targets)
		}

		batch := make([]Notification, 0, end-start)
		for _, userID := range targets[start:end] {
			batch = append(batch, Notification{
				UserID:     userID,
				CampaignID: campaignID,
				Kind:       kind,
				Title:      in.Title,
				Message:    in.Message,
				Link:       in.Link,
				CreatedAt:  now,
			})
		}

		if err := s.repo.CreateBatch(ctx, batch); err != nil {
			return &BroadcastResult{CampaignID: campaignID, Count: written}, err
		}
		written += len(batch)
	}

	if s.hub != nil {
		s.hub.PushCampaign(targets, &Event{
			Type:       EventCampaign,
			CampaignID: campaignID,
			Title:      in.Title,
			Message:    in.Message,
		})
	}

	return &BroadcastResult{CampaignID: campaignID, Count: written}, nil
}

func (s *Service) List(ctx context.Context, userID int64, limit int) ([]Notification, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	list, err := s.repo.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, 0, err
	}

	unread, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		unread = 0
	}
	return list, unread, nil
}

func (s *Service) MarkAsRead(ctx context.Context, id, userID int64) error {
	return s.repo.MarkAsRead(ctx, id, userID)
}

func (s *Service) MarkAllAsRead(ctx context.Context, userID int64) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}
