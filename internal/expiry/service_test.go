package expiry

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	mailMocks "docnotify/internal/mail/mocks"
	"docnotify/internal/model"
	"docnotify/internal/repository"
	repoMocks "docnotify/internal/repository/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type cycleFixture struct {
	docs   *repoMocks.MockDocumentRepository
	users  *repoMocks.MockUserRepository
	notifs *repoMocks.MockNotificationRepository
	prefs  *repoMocks.MockPreferenceRepository
	mailer *mailMocks.MockTransport
	svc    *Service
}

func newCycleFixture(t *testing.T, now time.Time) *cycleFixture {
	t.Helper()

	f := &cycleFixture{
		docs:   new(repoMocks.MockDocumentRepository),
		users:  new(repoMocks.MockUserRepository),
		notifs: new(repoMocks.MockNotificationRepository),
		prefs:  new(repoMocks.MockPreferenceRepository),
		mailer: new(mailMocks.MockTransport),
	}

	clock := &fakeClock{now: now}
	scanner, err := NewScanner(f.docs, DefaultOffsets, time.UTC)
	require.NoError(t, err)
	fanout := NewFanout(f.notifs, f.prefs, f.mailer, nil, clock, time.UTC)
	f.svc = NewService(scanner, f.users, fanout, nil, time.UTC)
	return f
}

func TestService_FanOutCompleteness(t *testing.T) {
	// A document owned by U expiring today with admins {A1, A2} produces
	// exactly three notifications in one cycle.
	now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	f := newCycleFixture(t, now)

	expires := time.Date(2024, 1, 1, 15, 0, 0, 0, time.UTC)
	doc := model.Document{ID: "doc-1", OwnerID: "u-1", Filename: "lease.pdf", ExpiresAt: &expires}
	owner := &model.User{ID: "u-1", Name: "Uma", Email: "uma@example.com"}
	admins := []model.User{
		{ID: "a-1", Name: "Admin One", Email: "a1@example.com", IsAdmin: true},
		{ID: "a-2", Name: "Admin Two", Email: "a2@example.com", IsAdmin: true},
	}

	f.users.On("ListAdmins", mock.Anything).Return(admins, nil).Once()
	f.docs.On("FindExpiringBetween", mock.Anything, day(2024, 1, 1), day(2024, 1, 2)).
		Return([]model.Document{doc}, nil).Once()
	f.docs.On("FindExpiringBetween", mock.Anything, mock.Anything, mock.Anything).
		Return([]model.Document{}, nil)
	f.users.On("FindByID", mock.Anything, "u-1").Return(owner, nil)

	var claimedFor []string
	f.notifs.On("ClaimAndInsert", mock.Anything, mock.MatchedBy(func(n *model.Notification) bool {
		claimedFor = append(claimedFor, n.UserID)
		return true
	})).Return(&repository.ClaimResult{Created: true}, nil).Times(3)

	f.prefs.On("Allows", mock.Anything, mock.Anything, model.NotificationTypeDocumentExpiring).Return(true, nil)
	f.mailer.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	summary, err := f.svc.RunNow(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, summary.DocumentsScanned)
	assert.Equal(t, 3, summary.NotificationsCreated)
	assert.Equal(t, 3, summary.EmailsSent)
	assert.Equal(t, 0, summary.EmailsFailed)
	assert.ElementsMatch(t, []string{"u-1", "a-1", "a-2"}, claimedFor)
	f.notifs.AssertExpectations(t)
}

func TestService_SecondRunSameDayIsIdempotent(t *testing.T) {
	now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	f := newCycleFixture(t, now)

	expires := time.Date(2024, 1, 1, 15, 0, 0, 0, time.UTC)
	doc := model.Document{ID: "doc-1", OwnerID: "u-1", Filename: "lease.pdf", ExpiresAt: &expires}
	owner := &model.User{ID: "u-1", Name: "Uma", Email: "uma@example.com"}

	f.users.On("ListAdmins", mock.Anything).Return([]model.User{}, nil)
	f.docs.On("FindExpiringBetween", mock.Anything, day(2024, 1, 1), day(2024, 1, 2)).
		Return([]model.Document{doc}, nil)
	f.docs.On("FindExpiringBetween", mock.Anything, mock.Anything, mock.Anything).
		Return([]model.Document{}, nil)
	f.users.On("FindByID", mock.Anything, "u-1").Return(owner, nil)

	// First run claims; the same claim on the second run hits the unique
	// index and is suppressed.
	f.notifs.On("ClaimAndInsert", mock.Anything, mock.Anything).
		Return(&repository.ClaimResult{Created: true}, nil).Once()
	f.notifs.On("ClaimAndInsert", mock.Anything, mock.Anything).
		Return(&repository.ClaimResult{Created: false}, nil).Once()
	f.prefs.On("Allows", mock.Anything, "u-1", model.NotificationTypeDocumentExpiring).Return(true, nil)
	f.mailer.On("Send", mock.Anything, "uma@example.com", mock.Anything, mock.Anything).Return(nil).Once()

	first, err := f.svc.RunNow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, first.NotificationsCreated)
	assert.Equal(t, 1, first.EmailsSent)

	second, err := f.svc.RunNow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, second.NotificationsCreated)
	assert.Equal(t, 0, second.EmailsSent)
	f.mailer.AssertExpectations(t)
}

func TestService_EmailFailureIsolation(t *testing.T) {
	// A1's email transport fails, A2's succeeds: both still get in-app rows.
	now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	f := newCycleFixture(t, now)

	expires := time.Date(2024, 1, 1, 15, 0, 0, 0, time.UTC)
	doc := model.Document{ID: "doc-1", OwnerID: "u-1", Filename: "lease.pdf", ExpiresAt: &expires}
	owner := &model.User{ID: "u-1", Name: "Uma"}
	admins := []model.User{
		{ID: "a-1", Name: "Admin One", Email: "a1@example.com", IsAdmin: true},
		{ID: "a-2", Name: "Admin Two", Email: "a2@example.com", IsAdmin: true},
	}

	f.users.On("ListAdmins", mock.Anything).Return(admins, nil)
	f.docs.On("FindExpiringBetween", mock.Anything, day(2024, 1, 1), day(2024, 1, 2)).
		Return([]model.Document{doc}, nil)
	f.docs.On("FindExpiringBetween", mock.Anything, mock.Anything, mock.Anything).
		Return([]model.Document{}, nil)
	f.users.On("FindByID", mock.Anything, "u-1").Return(owner, nil)

	f.notifs.On("ClaimAndInsert", mock.Anything, mock.Anything).
		Return(&repository.ClaimResult{Created: true}, nil).Times(3)
	f.prefs.On("Allows", mock.Anything, mock.Anything, model.NotificationTypeDocumentExpiring).Return(true, nil)
	f.mailer.On("Send", mock.Anything, "a1@example.com", mock.Anything, mock.Anything).
		Return(errors.New("smtp refused"))
	f.mailer.On("Send", mock.Anything, "a2@example.com", mock.Anything, mock.Anything).Return(nil)

	summary, err := f.svc.RunNow(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 3, summary.NotificationsCreated)
	assert.Equal(t, 1, summary.EmailsSent)
	assert.Equal(t, 1, summary.EmailsFailed)
}

func TestService_MissingOwnerSkipsDocument(t *testing.T) {
	now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	f := newCycleFixture(t, now)

	expires := time.Date(2024, 1, 1, 15, 0, 0, 0, time.UTC)
	orphan := model.Document{ID: "doc-orphan", OwnerID: "ghost", Filename: "old.pdf", ExpiresAt: &expires}

	f.users.On("ListAdmins", mock.Anything).Return([]model.User{{ID: "a-1", IsAdmin: true}}, nil)
	f.docs.On("FindExpiringBetween", mock.Anything, day(2024, 1, 1), day(2024, 1, 2)).
		Return([]model.Document{orphan}, nil)
	f.docs.On("FindExpiringBetween", mock.Anything, mock.Anything, mock.Anything).
		Return([]model.Document{}, nil)
	f.users.On("FindByID", mock.Anything, "ghost").Return(nil, sql.ErrNoRows)

	summary, err := f.svc.RunNow(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, summary.DocumentsScanned)
	// No notifications at all, not even for admins: the document is skipped entirely.
	assert.Equal(t, 0, summary.NotificationsCreated)
	f.notifs.AssertNotCalled(t, "ClaimAndInsert", mock.Anything, mock.Anything)
}

func TestService_RecipientFailureIsolation(t *testing.T) {
	// A failed claim for the owner still lets the admin be notified.
	now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	f := newCycleFixture(t, now)

	expires := time.Date(2024, 1, 1, 15, 0, 0, 0, time.UTC)
	doc := model.Document{ID: "doc-1", OwnerID: "u-1", Filename: "lease.pdf", ExpiresAt: &expires}
	owner := &model.User{ID: "u-1", Name: "Uma"}
	admins := []model.User{{ID: "a-1", Name: "Admin One", IsAdmin: true}}

	f.users.On("ListAdmins", mock.Anything).Return(admins, nil)
	f.docs.On("FindExpiringBetween", mock.Anything, day(2024, 1, 1), day(2024, 1, 2)).
		Return([]model.Document{doc}, nil)
	f.docs.On("FindExpiringBetween", mock.Anything, mock.Anything, mock.Anything).
		Return([]model.Document{}, nil)
	f.users.On("FindByID", mock.Anything, "u-1").Return(owner, nil)

	f.notifs.On("ClaimAndInsert", mock.Anything, mock.MatchedBy(func(n *model.Notification) bool {
		return n.UserID == "u-1"
	})).Return(nil, errors.New("insert failed"))
	f.notifs.On("ClaimAndInsert", mock.Anything, mock.MatchedBy(func(n *model.Notification) bool {
		return n.UserID == "a-1"
	})).Return(&repository.ClaimResult{Created: true}, nil)

	summary, err := f.svc.RunNow(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, summary.NotificationsCreated)
	assert.Equal(t, 1, summary.RecipientsSkipped)
}
