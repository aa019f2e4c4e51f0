// Package usecase contains the business logic of the application.
package usecase

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/ntananh/github-stats/internal/gateway"
)

// HistoryTotals is the accumulated outcome of walking one repository's
// commit history: line changes and commit count attributable to the
// account owner only.
type HistoryTotals struct {
	Additions    int
	Deletions    int
	OwnedCommits int
}

// HistoryPaginator walks a repository's commit history page by page and
// attributes additions/deletions to the account owner.
type HistoryPaginator struct {
	fetcher gateway.Fetcher
	logger  *logrus.Logger
}

func NewHistoryPaginator(fetcher gateway.Fetcher, logger *logrus.Logger) *HistoryPaginator {
	return &HistoryPaginator{fetcher: fetcher, logger: logger}
}

// Accumulate iterates cursor-based history pages until the remote
// signals the end. Only commits whose author id equals ownerID count;
// commits with no resolvable author are skipped. A repository without a
// reachable default branch yields zero totals immediately.
func (p *HistoryPaginator) Accumulate(ctx context.Context, owner, name, ownerID string) (HistoryTotals, error) {
	var totals HistoryTotals
	cursor := ""
	for {
		page, err := p.fetcher.FetchCommitHistoryPage(ctx, owner, name, cursor)
		if err != nil {
			return HistoryTotals{}, err
		}
		if page.NoDefaultBranch {
			return HistoryTotals{}, nil
		}
		for _, commit := range page.Commits {
			if commit.AuthorID == "" || commit.AuthorID != ownerID {
				continue
			}
			totals.OwnedCommits++
			totals.Additions += commit.Additions
			totals.Deletions += commit.Deletions
		}
		if len(page.Commits) == 0 || !page.HasNextPage {
			return totals, nil
		}
		cursor = page.EndCursor
		p.logger.WithFields(logrus.Fields{"repo": owner + "/" + name, "owned": totals.OwnedCommits}).
			Debug("fetching next page of commit history")
	}
}
