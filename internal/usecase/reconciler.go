package usecase

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ntananh/github-stats/internal/cache"
	"github.com/ntananh/github-stats/internal/gateway"
)

// LOCResult is the outcome of one reconciliation run. Cached is true
// only when the whole run was served from the ledger: no rebuild fired
// and no record had to be refetched.
type LOCResult struct {
	Additions    int
	Deletions    int
	Net          int
	OwnedCommits int
	Cached       bool

	// RefetchDurations holds the wall time of each per-repository
	// history walk, for the timing report.
	RefetchDurations []time.Duration
}

// Reconciler compares the persisted ledger against the remote's current
// commit counts, refetches only what went stale, and rewrites the ledger
// once at the end of the run.
type Reconciler struct {
	fetcher    gateway.Fetcher
	paginator  *HistoryPaginator
	logger     *logrus.Logger
	cacheDir   string
	headerSize int
}

func NewReconciler(fetcher gateway.Fetcher, logger *logrus.Logger, cacheDir string, headerSize int) *Reconciler {
	return &Reconciler{
		fetcher:    fetcher,
		paginator:  NewHistoryPaginator(fetcher, logger),
		logger:     logger,
		cacheDir:   cacheDir,
		headerSize: headerSize,
	}
}

// Reconcile enumerates the account's repositories, trusts every ledger
// record whose stored commit count matches the remote total, refetches
// the rest, and persists the ledger once after all updates.
//
// If the tracked set changed size, or force is set, every record is
// reset to zero first. If any history fetch fails, the ledger's current
// in-memory state is saved before the error propagates, so the next run
// resumes with the work done so far.
func (r *Reconciler) Reconcile(ctx context.Context, login, ownerID string, affiliations []string, force bool) (*LOCResult, error) {
	repos, err := r.fetcher.FetchRepoOverviews(ctx, login, affiliations)
	if err != nil {
		return nil, err
	}
	repos = dedupeRepos(repos)

	path := filepath.Join(r.cacheDir, cache.LedgerFilename(login))
	led, err := cache.Load(path, r.headerSize)
	if err != nil {
		return nil, err
	}

	result := &LOCResult{Cached: true}
	if led.Len() != len(repos) || force {
		keys := make([]string, 0, len(repos))
		for _, repo := range repos {
			keys = append(keys, cache.RepoKey(repo.NameWithOwner))
		}
		led.Rebuild(keys)
		result.Cached = false
		r.logger.WithFields(logrus.Fields{"repos": len(repos), "forced": force}).
			Info("ledger rebuilt, all records invalidated")
	}

	for _, repo := range repos {
		key := cache.RepoKey(repo.NameWithOwner)
		rec, ok := led.Lookup(key)
		if !ok {
			// Unknown key without a size change cannot happen after the
			// rebuild above; skip rather than guess.
			continue
		}
		if rec.RemoteCommits == repo.TotalCommits {
			continue
		}
		result.Cached = false

		owner, name, found := strings.Cut(repo.NameWithOwner, "/")
		if !repo.HasDefaultBranch || !found {
			// Anomalous shape: normalise to a zero record, keep going.
			*rec = cache.Record{RepoKey: key}
			continue
		}

		start := time.Now()
		totals, err := r.paginator.Accumulate(ctx, owner, name, ownerID)
		if err != nil {
			if saveErr := led.Save(); saveErr != nil {
				r.logger.WithError(saveErr).Error("emergency ledger save failed")
			} else {
				r.logger.WithField("path", path).
					Warn("fetch failed, partial ledger state saved")
			}
			return nil, fmt.Errorf("refreshing %s: %w", repo.NameWithOwner, err)
		}
		result.RefetchDurations = append(result.RefetchDurations, time.Since(start))

		rec.RemoteCommits = repo.TotalCommits
		rec.OwnedCommits = totals.OwnedCommits
		rec.Additions = totals.Additions
		rec.Deletions = totals.Deletions
	}

	if err := led.Save(); err != nil {
		return nil, err
	}

	result.Additions, result.Deletions = led.Totals()
	result.Net = result.Additions - result.Deletions
	result.OwnedCommits = led.OwnedCommitTotal()
	return result, nil
}

func dedupeRepos(repos []gateway.RepoOverview) []gateway.RepoOverview {
	seen := make(map[string]bool, len(repos))
	out := repos[:0]
	for _, repo := range repos {
		if seen[repo.NameWithOwner] {
			continue
		}
		seen[repo.NameWithOwner] = true
		out = append(out, repo)
	}
	return out
}
