package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/ntananh/github-stats/internal/cache"
	"github.com/ntananh/github-stats/internal/domain"
	"github.com/ntananh/github-stats/internal/gateway"
)

// Affiliation filters: owned repositories for the repo/star counts, the
// wider set for LOC accounting and the contributed-repo count.
var (
	ownerAffiliations = []string{"OWNER"}
	allAffiliations   = []string{"OWNER", "COLLABORATOR", "ORGANIZATION_MEMBER"}
)

// locReconciler is the slice of Reconciler the aggregator depends on.
type locReconciler interface {
	Reconcile(ctx context.Context, login, ownerID string, affiliations []string, force bool) (*LOCResult, error)
}

// Aggregator is the use case for building one account's finished
// statistics record. It orchestrates the fetching and combining of data.
type Aggregator struct {
	fetcher      gateway.Fetcher
	reconciler   locReconciler
	logger       *logrus.Logger
	timings      *Timings
	archivePath  string
	archiveOwner string
	now          func() time.Time
}

// NewAggregator creates a new Aggregator instance. The archive ledger at
// archivePath is folded in only when the measured login is archiveOwner;
// its data belongs to that one identity.
func NewAggregator(fetcher gateway.Fetcher, reconciler locReconciler, logger *logrus.Logger, timings *Timings, archivePath, archiveOwner string) *Aggregator {
	return &Aggregator{
		fetcher:      fetcher,
		reconciler:   reconciler,
		logger:       logger,
		timings:      timings,
		archivePath:  archivePath,
		archiveOwner: archiveOwner,
		now:          time.Now,
	}
}

// Aggregate performs the main business logic: resolve the account
// identity, reconcile the LOC ledger sequentially, then fetch the
// independent counts concurrently and combine everything into one
// immutable record. The LOCResult is returned alongside for reporting.
func (a *Aggregator) Aggregate(ctx context.Context, login string, force bool) (*domain.AggregateStats, *LOCResult, error) {
	a.logger.Info("usecase: starting aggregation")

	var profile *gateway.UserProfile
	err := a.timings.Track("account data", func() error {
		var err error
		profile, err = a.fetcher.FetchViewer(ctx, login)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	// The ledger has a single writer; reconciliation stays strictly
	// sequential.
	start := time.Now()
	loc, err := a.reconciler.Reconcile(ctx, login, profile.ID, allAffiliations, force)
	locPhase := "LOC (no cache)"
	if loc != nil && loc.Cached {
		locPhase = "LOC (cached)"
	}
	a.timings.Observe(locPhase, time.Since(start))
	if err != nil {
		return nil, nil, err
	}

	var (
		stars, repoCount, contribCount int
		followers                      *gateway.FollowerCounts
	)
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return a.timings.Track("stars counter", func() error {
			var err error
			stars, err = a.fetcher.FetchStarTotal(egCtx, login, ownerAffiliations)
			return err
		})
	})
	eg.Go(func() error {
		return a.timings.Track("repo counter", func() error {
			var err error
			repoCount, err = a.fetcher.FetchRepoCount(egCtx, login, ownerAffiliations)
			return err
		})
	})
	eg.Go(func() error {
		return a.timings.Track("contrib counter", func() error {
			var err error
			contribCount, err = a.fetcher.FetchRepoCount(egCtx, login, allAffiliations)
			return err
		})
	})
	eg.Go(func() error {
		return a.timings.Track("follower stats", func() error {
			var err error
			followers, err = a.fetcher.FetchFollowerCounts(egCtx, login)
			return err
		})
	})
	if err := eg.Wait(); err != nil {
		return nil, nil, err
	}

	stats := &domain.AggregateStats{
		Login:            profile.Login,
		Name:             profile.Name,
		Bio:              profile.Bio,
		AvatarURL:        profile.AvatarURL,
		Age:              domain.AccountAge(profile.CreatedAt, a.now()),
		Commits:          loc.OwnedCommits,
		Stars:            stars,
		Repos:            repoCount,
		ContributedRepos: contribCount,
		Followers:        followers.Followers,
		Following:        followers.Following,
		LinesAdded:       loc.Additions,
		LinesDeleted:     loc.Deletions,
		NetLines:         loc.Net,
		CachedLOC:        loc.Cached,
	}
	if stats.Login == "" {
		stats.Login = login
	}

	if strings.EqualFold(login, a.archiveOwner) {
		contrib, err := cache.LoadArchive(a.archivePath)
		if err != nil {
			// The archive is optional input; an unreadable one
			// contributes nothing, same as an absent one.
			a.logger.WithError(err).Warn("archive ledger unreadable, skipped")
		} else if contrib.Repos > 0 || contrib.Commits > 0 {
			stats.LinesAdded += contrib.Additions
			stats.LinesDeleted += contrib.Deletions
			stats.NetLines += contrib.Net
			stats.Commits += contrib.Commits
			stats.ContributedRepos += contrib.Repos
		}
	}

	a.logger.Info("usecase: aggregation complete")
	return stats, loc, nil
}
