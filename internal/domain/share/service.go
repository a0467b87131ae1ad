package share

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"metaconvert/internal/domain"
	"metaconvert/internal/domain/storage"
)

// Service is the share-link authority: it mints, resolves and unlocks
// time-boxed grants. TTLs are converted to absolute timestamps at issuance so
// later clock or timezone drift cannot change their meaning.
type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

type IssueSharedInput struct {
	Locator  string
	FileName string
	TTLHours int
	Password string // empty means no password gate
}

// SharedDisplay is the public view of a link. It never carries the locator
// or any password material.
type SharedDisplay struct {
	ID          string    `json:"id"`
	FileName    string    `json:"file_name"`
	HasPassword bool      `json:"has_password"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// IssueShared mints a shared link for an already-stored artifact.
func (s *Service) IssueShared(ctx context.Context, actor domain.Actor, in IssueSharedInput) (*SharedLink, error) {
	if in.FileName == "" || in.TTLHours <= 0 {
		return nil, ErrInvalidArgument
	}
	if _, err := storage.ParseLocator(in.Locator); err != nil {
		return nil, ErrInvalidArgument
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	now := s.now()
	l := &SharedLink{
		ID:           uuid.New().String(),
		FileName:     in.FileName,
		Locator:      in.Locator,
		PasswordHash: hash,
		ExpiresAt:    now.Add(time.Duration(in.TTLHours) * time.Hour),
		CreatedAt:    now,
	}
	if !actor.Anonymous() {
		owner := actor.UserID
		l.OwnerID = &owner
	}

	if err := s.repo.CreateShared(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

// ResolveShared returns the public metadata of an active link. Expired and
// absent links are identical ErrNotFound.
func (s *Service) ResolveShared(ctx context.Context, id string) (*SharedDisplay, error) {
	l, err := s.repo.GetActiveShared(ctx, id, s.now())
	if err != nil {
		return nil, err
	}
	return &SharedDisplay{
		ID:          l.ID,
		FileName:    l.FileName,
		HasPassword: l.PasswordHash != nil,
		ExpiresAt:   l.ExpiresAt,
	}, nil
}

// UnlockShared exchanges a (correct) password for the stored locator. The
// lookup re-checks expiry: a matching password never resurrects an expired
// link.
func (s *Service) UnlockShared(ctx context.Context, id, password string) (string, error) {
	l, err := s.repo.GetActiveShared(ctx, id, s.now())
	if err != nil {
		return "", err
	}
	if !passwordMatches(l.PasswordHash, password) {
		return "", ErrUnauthorized
	}
	return l.Locator, nil
}

func (s *Service) ListShared(ctx context.Context, actor domain.Actor) ([]*SharedLink, error) {
	return s.repo.ListSharedByOwner(ctx, actor.UserID, s.now())
}

type IssueDropInput struct {
	Title       string
	Description string
	TTLDays     int
	Password    string
}

type DropDisplay struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	HasPassword bool      `json:"has_password"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// IssueDrop mints a drop link. Drop links always have an owner.
func (s *Service) IssueDrop(ctx context.Context, actor domain.Actor, in IssueDropInput) (*DropLink, error) {
	if actor.Anonymous() {
		return nil, ErrUnauthorized
	}
	if in.Title == "" || in.TTLDays <= 0 {
		return nil, ErrInvalidArgument
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	now := s.now()
	l := &DropLink{
		ID:           uuid.New().String(),
		Title:        in.Title,
		Description:  in.Description,
		PasswordHash: hash,
		ExpiresAt:    now.Add(time.Duration(in.TTLDays) * 24 * time.Hour),
		OwnerID:      actor.UserID,
		Active:       true,
		CreatedAt:    now,
	}

	if err := s.repo.CreateDrop(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

func (s *Service) ResolveDrop(ctx context.Context, id string) (*DropDisplay, error) {
	l, err := s.repo.GetActiveDrop(ctx, id, s.now())
	if err != nil {
		return nil, err
	}
	return &DropDisplay{
		ID:          l.ID,
		Title:       l.Title,
		Description: l.Description,
		HasPassword: l.PasswordHash != nil,
		ExpiresAt:   l.ExpiresAt,
	}, nil
}

// UnlockDrop verifies the password gate and returns the drop's own locator
// ("" when the drop has no stored artifact of its own).
func (s *Service) UnlockDrop(ctx context.Context, id, password string) (string, error) {
	l, err := s.repo.GetActiveDrop(ctx, id, s.now())
	if err != nil {
		return "", err
	}
	if !passwordMatches(l.PasswordHash, password) {
		return "", ErrUnauthorized
	}
	if l.Locator == nil {
		return "", nil
	}
	return *l.Locator, nil
}

func (s *Service) ListDrops(ctx context.Context, actor domain.Actor) ([]*DropLink, error) {
	return s.repo.ListDropsByOwner(ctx, actor.UserID, s.now())
}

func hashPassword(password string) (*string, error) {
	if password == "" {
		return nil, nil
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	h := string(hashed)
	return &h, nil
}

func passwordMatches(hash *string, candidate string) bool {
	if hash == nil {
		return true
	}
	return bcrypt.CompareHashAndPassword([]byte(*hash), []byte(candidate)) == nil
}
