package share

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"

	_ "modernc.org/sqlite"

	"metaconvert/internal/domain"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(
		gormsqlite.New(gormsqlite.Config{DriverName: "sqlite", DSN: ":memory:"}),
		&gorm.Config{},
	)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&SharedLink{}, &DropLink{}))
	return db
}

func testService(t *testing.T) *Service {
	return NewService(NewRepository(testDB(t)))
}

var (
	alice = domain.Actor{UserID: 1}
	anon  = domain.Actor{}
)

func TestIssueShared_AbsoluteExpiry(t *testing.T) {
	svc := testService(t)
	issuedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issuedAt }

	l, err := svc.IssueShared(context.Background(), alice, IssueSharedInput{
		Locator:  "inline:blob-1",
		FileName: "report.pdf",
		TTLHours: 48,
	})
	require.NoError(t, err)

	// TTL is frozen into an absolute timestamp at issuance.
	assert.Equal(t, issuedAt.Add(48*time.Hour), l.ExpiresAt)
	assert.Nil(t, l.PasswordHash)
	require.NotNil(t, l.OwnerID)
	assert.Equal(t, int64(1), *l.OwnerID)
}

func TestIssueShared_Invalid(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	_, err := svc.IssueShared(ctx, alice, IssueSharedInput{Locator: "inline:x", TTLHours: 1})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = svc.IssueShared(ctx, alice, IssueSharedInput{Locator: "inline:x", FileName: "a", TTLHours: 0})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = svc.IssueShared(ctx, alice, IssueSharedInput{Locator: "not-a-locator", FileName: "a", TTLHours: 1})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestSharedPasswordGate(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	l, err := svc.IssueShared(ctx, alice, IssueSharedInput{
		Locator:  "inline:blob-1",
		FileName: "secret.zip",
		TTLHours: 24,
		Password: "hunter2",
	})
	require.NoError(t, err)

	disp, err := svc.ResolveShared(ctx, l.ID)
	require.NoError(t, err)
	assert.True(t, disp.HasPassword)
	assert.Equal(t, "secret.zip", disp.FileName)

	_, err = svc.UnlockShared(ctx, l.ID, "wrong")
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.UnlockShared(ctx, l.ID, "")
	assert.ErrorIs(t, err, ErrUnauthorized)

	loc, err := svc.UnlockShared(ctx, l.ID, "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "inline:blob-1", loc)
}

func TestSharedNoPassword_UnlocksUnconditionally(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	l, err := svc.IssueShared(ctx, alice, IssueSharedInput{
		Locator:  "inline:blob-2",
		FileName: "open.pdf",
		TTLHours: 24,
	})
	require.NoError(t, err)

	// Any candidate passes when no gate was set.
	loc, err := svc.UnlockShared(ctx, l.ID, "anything")
	require.NoError(t, err)
	assert.Equal(t, "inline:blob-2", loc)
}

func TestSharedExpiry(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	issuedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issuedAt }

	l, err := svc.IssueShared(ctx, alice, IssueSharedInput{
		Locator:  "inline:blob-3",
		FileName: "fleeting.pdf",
		TTLHours: 1,
		Password: "hunter2",
	})
	require.NoError(t, err)

	// Still live just before the deadline.
	svc.now = func() time.Time { return issuedAt.Add(59 * time.Minute) }
	_, err = svc.ResolveShared(ctx, l.ID)
	require.NoError(t, err)

	// After expiry the link is indistinguishable from an absent one, and a
	// correct password does not resurrect it.
	svc.now = func() time.Time { return issuedAt.Add(61 * time.Minute) }
	_, err = svc.ResolveShared(ctx, l.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.UnlockShared(ctx, l.ID, "hunter2")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolveShared_Missing(t *testing.T) {
	svc := testService(t)

	_, err := svc.ResolveShared(context.Background(), "no-such-link")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListShared_OnlyOwn(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	_, err := svc.IssueShared(ctx, alice, IssueSharedInput{
		Locator: "inline:a", FileName: "a.pdf", TTLHours: 24,
	})
	require.NoError(t, err)
	_, err = svc.IssueShared(ctx, domain.Actor{UserID: 2}, IssueSharedInput{
		Locator: "inline:b", FileName: "b.pdf", TTLHours: 24,
	})
	require.NoError(t, err)

	links, err := svc.ListShared(ctx, alice)
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, "a.pdf", links[0].FileName)
}

func TestIssueDrop_RequiresOwner(t *testing.T) {
	svc := testService(t)

	_, err := svc.IssueDrop(context.Background(), anon, IssueDropInput{
		Title:   "inbox",
		TTLDays: 7,
	})
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestDropLifecycle(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	issuedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issuedAt }

	d, err := svc.IssueDrop(ctx, alice, IssueDropInput{
		Title:       "client uploads",
		Description: "drop files here",
		TTLDays:     7,
		Password:    "letmein",
	})
	require.NoError(t, err)
	assert.Equal(t, issuedAt.Add(7*24*time.Hour), d.ExpiresAt)
	assert.Equal(t, int64(1), d.OwnerID)
	assert.True(t, d.Active)

	disp, err := svc.ResolveDrop(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, "client uploads", disp.Title)
	assert.True(t, disp.HasPassword)

	_, err = svc.UnlockDrop(ctx, d.ID, "nope")
	assert.ErrorIs(t, err, ErrUnauthorized)

	// A drop with no stored artifact unlocks to an empty locator.
	loc, err := svc.UnlockDrop(ctx, d.ID, "letmein")
	require.NoError(t, err)
	assert.Empty(t, loc)

	svc.now = func() time.Time { return issuedAt.Add(8 * 24 * time.Hour) }
	_, err = svc.ResolveDrop(ctx, d.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestIssueDrop_Invalid(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	_, err := svc.IssueDrop(ctx, alice, IssueDropInput{TTLDays: 7})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = svc.IssueDrop(ctx, alice, IssueDropInput{Title: "x", TTLDays: -1})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}
