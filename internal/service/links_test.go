package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/joshdurbin/golinks/internal/domain"
	"github.com/joshdurbin/golinks/internal/logger"
	"github.com/joshdurbin/golinks/internal/metrics"
	"github.com/joshdurbin/golinks/internal/repository/mocks"
)

// fakeRecorder remembers which shortcuts were recorded
type fakeRecorder struct {
	mu       sync.Mutex
	recorded []string
	closed   bool
	closeErr error
}

func (f *fakeRecorder) Record(shortcut string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recorded = append(f.recorded, shortcut)
}

func (f *fakeRecorder) Close() error {
	f.closed = true
	return f.closeErr
}

func newTestService(repo *mocks.LinkRepository) (*linkService, *fakeRecorder, *metrics.Metrics) {
	rec := &fakeRecorder{}
	m := metrics.New(prometheus.NewRegistry())
	svc := NewLinkService(repo, rec, logger.Discard(), m).(*linkService)
	return svc, rec, m
}

func testLink(shortcut, url string, clicks int64) *domain.Link {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return &domain.Link{
		ID:         1,
		Shortcut:   shortcut,
		URL:        url,
		CreatedAt:  now,
		UpdatedAt:  now,
		ClickCount: clicks,
	}
}

func TestLinkService_Resolve(t *testing.T) {
	t.Run("hit records click", func(t *testing.T) {
		repo := &mocks.LinkRepository{}
		repo.On("Get", mock.Anything, "gh").Return(testLink("gh", "https://github.com", 0), nil)
		svc, rec, m := newTestService(repo)

		target, err := svc.Resolve(context.Background(), "/gh")
		require.NoError(t, err)
		assert.Equal(t, "https://github.com", target)
		assert.Equal(t, []string{"gh"}, rec.recorded)
		assert.Equal(t, float64(1), testutil.ToFloat64(m.Redirects.WithLabelValues(metrics.ResultHit)))
		repo.AssertExpectations(t)
	})

	t.Run("path without leading slash", func(t *testing.T) {
		repo := &mocks.LinkRepository{}
		repo.On("Get", mock.Anything, "gh").Return(testLink("gh", "https://github.com", 0), nil)
		svc, _, _ := newTestService(repo)

		target, err := svc.Resolve(context.Background(), "gh")
		require.NoError(t, err)
		assert.Equal(t, "https://github.com", target)
	})

	t.Run("miss has no side effects", func(t *testing.T) {
		repo := &mocks.LinkRepository{}
		repo.On("Get", mock.Anything, "nope").Return(nil, fmt.Errorf("%w: nope", domain.ErrNotFound))
		svc, rec, m := newTestService(repo)

		_, err := svc.Resolve(context.Background(), "/nope")
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.Empty(t, rec.recorded)
		assert.Equal(t, float64(1), testutil.ToFloat64(m.Redirects.WithLabelValues(metrics.ResultMiss)))
		repo.AssertExpectations(t)
		repo.AssertNotCalled(t, "Add", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("empty path", func(t *testing.T) {
		repo := &mocks.LinkRepository{}
		svc, rec, _ := newTestService(repo)

		_, err := svc.Resolve(context.Background(), "/")
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.Empty(t, rec.recorded)
		repo.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	})

	t.Run("storage failure", func(t *testing.T) {
		repo := &mocks.LinkRepository{}
		repo.On("Get", mock.Anything, "gh").Return(nil, domain.ErrStorageClosed)
		svc, rec, _ := newTestService(repo)

		_, err := svc.Resolve(context.Background(), "/gh")
		assert.ErrorIs(t, err, domain.ErrStorageClosed)
		assert.NotErrorIs(t, err, domain.ErrNotFound)
		assert.Empty(t, rec.recorded)
	})
}

func TestLinkService_AddLink(t *testing.T) {
	description := "code"

	tests := []struct {
		name        string
		req         domain.LinkRequest
		setupMocks  func(*mocks.LinkRepository)
		expectedErr error
	}{
		{
			name: "successful add",
			req:  domain.LinkRequest{Shortcut: "gh", URL: "https://github.com", Description: &description},
			setupMocks: func(repo *mocks.LinkRepository) {
				repo.On("Add", mock.Anything, "gh", "https://github.com", &description).
					Return(testLink("gh", "https://github.com", 0), nil)
			},
		},
		{
			name:        "empty shortcut",
			req:         domain.LinkRequest{URL: "https://github.com"},
			setupMocks:  func(repo *mocks.LinkRepository) {},
			expectedErr: domain.ErrInvalidInput,
		},
		{
			name:        "empty url",
			req:         domain.LinkRequest{Shortcut: "gh"},
			setupMocks:  func(repo *mocks.LinkRepository) {},
			expectedErr: domain.ErrInvalidInput,
		},
		{
			name: "duplicate",
			req:  domain.LinkRequest{Shortcut: "gh", URL: "https://github.com"},
			setupMocks: func(repo *mocks.LinkRepository) {
				repo.On("Add", mock.Anything, "gh", "https://github.com", (*string)(nil)).
					Return(nil, domain.ErrDuplicateShortcut)
			},
			expectedErr: domain.ErrDuplicateShortcut,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mocks.LinkRepository{}
			tt.setupMocks(repo)
			svc, _, _ := newTestService(repo)

			link, err := svc.AddLink(context.Background(), tt.req)
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.Nil(t, link)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.req.Shortcut, link.Shortcut)
			}

			repo.AssertExpectations(t)
		})
	}
}

func TestLinkService_UpdateLink(t *testing.T) {
	repo := &mocks.LinkRepository{}
	repo.On("Update", mock.Anything, "gh", "https://gitlab.com", (*string)(nil)).Return(true, nil)
	repo.On("Update", mock.Anything, "nope", "https://gitlab.com", (*string)(nil)).Return(false, nil)
	svc, _, _ := newTestService(repo)
	ctx := context.Background()

	updated, err := svc.UpdateLink(ctx, domain.LinkRequest{Shortcut: "gh", URL: "https://gitlab.com"})
	require.NoError(t, err)
	assert.True(t, updated)

	updated, err = svc.UpdateLink(ctx, domain.LinkRequest{Shortcut: "nope", URL: "https://gitlab.com"})
	require.NoError(t, err)
	assert.False(t, updated)

	_, err = svc.UpdateLink(ctx, domain.LinkRequest{Shortcut: "gh"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	repo.AssertExpectations(t)
}

func TestLinkService_DeleteLink(t *testing.T) {
	repo := &mocks.LinkRepository{}
	repo.On("Delete", mock.Anything, "gh").Return(true, nil)
	repo.On("Delete", mock.Anything, "nope").Return(false, nil)
	repo.On("Delete", mock.Anything, "broken").Return(false, assert.AnError)
	svc, _, m := newTestService(repo)
	ctx := context.Background()

	deleted, err := svc.DeleteLink(ctx, "gh")
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = svc.DeleteLink(ctx, "nope")
	require.NoError(t, err)
	assert.False(t, deleted)

	_, err = svc.DeleteLink(ctx, "broken")
	assert.Error(t, err)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.Mutations.WithLabelValues("delete", metrics.ResultSuccess)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Mutations.WithLabelValues("delete", metrics.ResultError)))
	repo.AssertExpectations(t)
}

func TestLinkService_ListLinksAndStats(t *testing.T) {
	links := []*domain.Link{
		testLink("c", "https://c.example", 3),
		testLink("b", "https://b.example", 7),
		testLink("a", "https://a.example", 1),
	}
	repo := &mocks.LinkRepository{}
	repo.On("List", mock.Anything).Return(links, nil)
	svc, _, _ := newTestService(repo)
	ctx := context.Background()

	listed, err := svc.ListLinks(ctx)
	require.NoError(t, err)
	assert.Equal(t, links, listed)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalLinks)
	assert.Equal(t, int64(11), stats.TotalClicks)
	require.NotNil(t, stats.MostClicked)
	assert.Equal(t, "b", stats.MostClicked.Shortcut)
}

func TestLinkService_Stats_Error(t *testing.T) {
	repo := &mocks.LinkRepository{}
	repo.On("List", mock.Anything).Return(nil, assert.AnError)
	svc, _, _ := newTestService(repo)

	_, err := svc.Stats(context.Background())
	assert.ErrorIs(t, err, assert.AnError)
}

func TestLinkService_Close(t *testing.T) {
	t.Run("closes recorder then repository", func(t *testing.T) {
		repo := &mocks.LinkRepository{}
		repo.On("Close").Return(nil)
		svc, rec, _ := newTestService(repo)

		require.NoError(t, svc.Close())
		assert.True(t, rec.closed)
		repo.AssertExpectations(t)
	})

	t.Run("recorder error", func(t *testing.T) {
		repo := &mocks.LinkRepository{}
		svc, rec, _ := newTestService(repo)
		rec.closeErr = assert.AnError

		err := svc.Close()
		assert.ErrorIs(t, err, assert.AnError)
		repo.AssertNotCalled(t, "Close")
	})
}

func TestComputeStats(t *testing.T) {
	t.Run("no links", func(t *testing.T) {
		stats := ComputeStats(nil)
		assert.Equal(t, 0, stats.TotalLinks)
		assert.Equal(t, int64(0), stats.TotalClicks)
		assert.Nil(t, stats.MostClicked)
	})

	t.Run("totals and maximum", func(t *testing.T) {
		links := []*domain.Link{
			testLink("a", "https://a.example", 3),
			testLink("b", "https://b.example", 7),
			testLink("c", "https://c.example", 1),
		}

		stats := ComputeStats(links)
		assert.Equal(t, 3, stats.TotalLinks)
		assert.Equal(t, int64(11), stats.TotalClicks)
		assert.Same(t, links[1], stats.MostClicked)
	})

	t.Run("ties go to the first link", func(t *testing.T) {
		links := []*domain.Link{
			testLink("newest", "https://a.example", 5),
			testLink("middle", "https://b.example", 5),
			testLink("oldest", "https://c.example", 2),
		}

		stats := ComputeStats(links)
		assert.Same(t, links[0], stats.MostClicked)
	})

	t.Run("all zero", func(t *testing.T) {
		links := []*domain.Link{
			testLink("a", "https://a.example", 0),
			testLink("b", "https://b.example", 0),
		}

		stats := ComputeStats(links)
		assert.Equal(t, int64(0), stats.TotalClicks)
		assert.Same(t, links[0], stats.MostClicked)
	})
}
