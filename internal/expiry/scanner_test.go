package expiry

import (
	"context"
	"errors"
	"testing"
	"time"

	"docnotify/internal/model"
	repoMocks "docnotify/internal/repository/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNewScanner(t *testing.T) {
	mDocs := new(repoMocks.MockDocumentRepository)

	t.Run("rejects empty offsets", func(t *testing.T) {
		s, err := NewScanner(mDocs, nil, time.UTC)
		assert.Error(t, err)
		assert.Nil(t, s)
	})

	t.Run("rejects duplicate offsets", func(t *testing.T) {
		s, err := NewScanner(mDocs, []int{7, 3, 7}, time.UTC)
		assert.Error(t, err)
		assert.Nil(t, s)
	})

	t.Run("accepts default offsets", func(t *testing.T) {
		s, err := NewScanner(mDocs, DefaultOffsets, time.UTC)
		assert.NoError(t, err)
		assert.NotNil(t, s)
	})
}

func TestScanner_DayWindows(t *testing.T) {
	mDocs := new(repoMocks.MockDocumentRepository)
	s, err := NewScanner(mDocs, DefaultOffsets, time.UTC)
	require.NoError(t, err)

	now := time.Date(2024, 1, 1, 8, 30, 0, 0, time.UTC)

	// Each offset queries exactly its own calendar-day window.
	for _, tc := range []struct {
		offset int
		start  time.Time
	}{
		{7, day(2024, 1, 8)},
		{3, day(2024, 1, 4)},
		{1, day(2024, 1, 2)},
		{0, day(2024, 1, 1)},
		{-3, day(2023, 12, 29)},
	} {
		mDocs.On("FindExpiringBetween", mock.Anything, tc.start, tc.start.AddDate(0, 0, 1)).
			Return([]model.Document{}, nil).Once()
	}

	scanned, failed := s.Scan(context.Background(), now, func(model.Document, int) {
		t.Fatal("no documents expected")
	})

	assert.Equal(t, 0, scanned)
	assert.Equal(t, 0, failed)
	mDocs.AssertExpectations(t)
}

func TestScanner_OffsetDisjointness(t *testing.T) {
	// A document expiring on 2024-01-04 with now = 2024-01-01 lands in the
	// +3 batch and no other.
	mDocs := new(repoMocks.MockDocumentRepository)
	s, err := NewScanner(mDocs, DefaultOffsets, time.UTC)
	require.NoError(t, err)

	now := day(2024, 1, 1)
	expires := time.Date(2024, 1, 4, 12, 0, 0, 0, time.UTC)
	doc := model.Document{ID: "doc-1", OwnerID: "u-1", Filename: "a.pdf", ExpiresAt: &expires, Status: model.DocumentStatusActive}

	mDocs.On("FindExpiringBetween", mock.Anything, day(2024, 1, 4), day(2024, 1, 5)).
		Return([]model.Document{doc}, nil).Once()
	mDocs.On("FindExpiringBetween", mock.Anything, mock.Anything, mock.Anything).
		Return([]model.Document{}, nil)

	var got []int
	scanned, failed := s.Scan(context.Background(), now, func(d model.Document, off int) {
		assert.Equal(t, "doc-1", d.ID)
		got = append(got, off)
	})

	assert.Equal(t, 1, scanned)
	assert.Equal(t, 0, failed)
	assert.Equal(t, []int{3}, got)
	mDocs.AssertExpectations(t)
}

func TestScanner_OffsetFailureIsolation(t *testing.T) {
	// A query failure on one offset skips that batch only; the remaining
	// offsets still run.
	mDocs := new(repoMocks.MockDocumentRepository)
	s, err := NewScanner(mDocs, []int{7, 0}, time.UTC)
	require.NoError(t, err)

	now := day(2024, 1, 1)
	expires := time.Date(2024, 1, 1, 18, 0, 0, 0, time.UTC)
	doc := model.Document{ID: "doc-today", OwnerID: "u-1", ExpiresAt: &expires}

	mDocs.On("FindExpiringBetween", mock.Anything, day(2024, 1, 8), day(2024, 1, 9)).
		Return(nil, errors.New("db down")).Once()
	mDocs.On("FindExpiringBetween", mock.Anything, day(2024, 1, 1), day(2024, 1, 2)).
		Return([]model.Document{doc}, nil).Once()

	var got []string
	scanned, failed := s.Scan(context.Background(), now, func(d model.Document, off int) {
		got = append(got, d.ID)
	})

	assert.Equal(t, 1, scanned)
	assert.Equal(t, 1, failed)
	assert.Equal(t, []string{"doc-today"}, got)
	mDocs.AssertExpectations(t)
}
