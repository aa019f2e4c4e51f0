package usecase

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/ntananh/github-stats/internal/gateway"
)

// mockFetcher is a mock implementation of the gateway.Fetcher interface.
// It allows us to simulate the behavior of the GitHub gateway without
// making real API calls.
type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) FetchViewer(ctx context.Context, login string) (*gateway.UserProfile, error) {
	args := m.Called(ctx, login)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.UserProfile), args.Error(1)
}

func (m *mockFetcher) FetchFollowerCounts(ctx context.Context, login string) (*gateway.FollowerCounts, error) {
	args := m.Called(ctx, login)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.FollowerCounts), args.Error(1)
}

func (m *mockFetcher) FetchRepoCount(ctx context.Context, login string, affiliations []string) (int, error) {
	args := m.Called(ctx, login, affiliations)
	return args.Int(0), args.Error(1)
}

func (m *mockFetcher) FetchStarTotal(ctx context.Context, login string, affiliations []string) (int, error) {
	args := m.Called(ctx, login, affiliations)
	return args.Int(0), args.Error(1)
}

func (m *mockFetcher) FetchRepoOverviews(ctx context.Context, login string, affiliations []string) ([]gateway.RepoOverview, error) {
	args := m.Called(ctx, login, affiliations)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]gateway.RepoOverview), args.Error(1)
}

func (m *mockFetcher) FetchCommitHistoryPage(ctx context.Context, owner, name, cursor string) (*gateway.HistoryPage, error) {
	args := m.Called(ctx, owner, name, cursor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.HistoryPage), args.Error(1)
}

func (m *mockFetcher) FetchContributionTotal(ctx context.Context, login string, from, to time.Time) (int, error) {
	args := m.Called(ctx, login, from, to)
	return args.Int(0), args.Error(1)
}

// mockReconciler stands in for the Reconciler in aggregator tests.
type mockReconciler struct {
	mock.Mock
}

func (m *mockReconciler) Reconcile(ctx context.Context, login, ownerID string, affiliations []string, force bool) (*LOCResult, error) {
	args := m.Called(ctx, login, ownerID, affiliations, force)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*LOCResult), args.Error(1)
}
