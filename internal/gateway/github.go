// Package gateway provides a gateway to the GitHub API,
// abstracting away the underlying REST and GraphQL clients.
package gateway

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/shurcooL/githubv4"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"
)

// Operation names double as query-counter keys, so the end-of-run report
// groups calls by what they were for.
const (
	opUserGetter     = "user_getter"
	opFollowerGetter = "follower_getter"
	opReposStars     = "graph_repos_stars"
	opRecursiveLOC   = "recursive_loc"
	opGraphCommits   = "graph_commits"
	opLOCQuery       = "loc_query"
)

// UserProfile is the account identity and profile card data.
type UserProfile struct {
	ID        string
	Login     string
	Name      string
	Bio       string
	AvatarURL string
	CreatedAt time.Time
}

// FollowerCounts holds the account's social counts.
type FollowerCounts struct {
	Followers int
	Following int
}

// RepoOverview is one entry of the account's repository enumeration:
// just enough to decide whether the cached totals for the repository are
// still trustworthy.
type RepoOverview struct {
	NameWithOwner    string
	TotalCommits     int
	HasDefaultBranch bool
}

// CommitEntry is a single commit of a history page. AuthorID is empty
// when the commit has no resolvable author account.
type CommitEntry struct {
	AuthorID  string
	Additions int
	Deletions int
}

// HistoryPage is one page of a repository's commit history.
// NoDefaultBranch marks a repository whose history cannot be walked at
// all; such pages carry no commits and no cursor.
type HistoryPage struct {
	Commits         []CommitEntry
	EndCursor       string
	HasNextPage     bool
	NoDefaultBranch bool
}

// Fetcher defines the behavior of a gateway for fetching information from GitHub.
type Fetcher interface {
	FetchViewer(ctx context.Context, login string) (*UserProfile, error)
	FetchFollowerCounts(ctx context.Context, login string) (*FollowerCounts, error)
	FetchRepoCount(ctx context.Context, login string, affiliations []string) (int, error)
	FetchStarTotal(ctx context.Context, login string, affiliations []string) (int, error)
	FetchRepoOverviews(ctx context.Context, login string, affiliations []string) ([]RepoOverview, error)
	FetchCommitHistoryPage(ctx context.Context, owner, name, cursor string) (*HistoryPage, error)
	FetchContributionTotal(ctx context.Context, login string, from, to time.Time) (int, error)
}

// GitHubGateway is the concrete implementation of the Fetcher interface.
type GitHubGateway struct {
	restClient    *github.Client
	graphqlClient *githubv4.Client
	queries       *QueryCounter
	logger        *logrus.Logger
}

// NewGitHubGateway is a constructor that creates a new instance of GitHubGateway.
func NewGitHubGateway(token string, timeout time.Duration, logger *logrus.Logger) (*GitHubGateway, error) {
	rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(1*time.Hour, nil))
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := &http.Client{
		Timeout: timeout,
		Transport: &oauth2.Transport{
			Base:   rateLimitWaiter,
			Source: ts,
		},
	}
	return &GitHubGateway{
		restClient:    github.NewClient(httpClient),
		graphqlClient: githubv4.NewClient(httpClient),
		queries:       NewQueryCounter(),
		logger:        logger,
	}, nil
}

// Queries exposes the per-operation call counter for reporting.
func (g *GitHubGateway) Queries() *QueryCounter { return g.queries }

func (g *GitHubGateway) query(ctx context.Context, op string, q interface{}, variables map[string]interface{}) error {
	g.queries.Increment(op)
	if err := g.graphqlClient.Query(ctx, q, variables); err != nil {
		if isRateLimit(err) {
			return &RateLimitError{Op: op, Queries: g.queries.Total()}
		}
		return &APIError{Op: op, Queries: g.queries.Total(), Err: err}
	}
	return nil
}

// FetchViewer resolves the account's node id and profile card fields.
func (g *GitHubGateway) FetchViewer(ctx context.Context, login string) (*UserProfile, error) {
	var q struct {
		User struct {
			ID        githubv4.ID
			Login     string
			Name      string
			Bio       string
			AvatarURL string `graphql:"avatarUrl"`
			CreatedAt githubv4.DateTime
		} `graphql:"user(login: $login)"`
	}
	variables := map[string]interface{}{"login": githubv4.String(login)}
	if err := g.query(ctx, opUserGetter, &q, variables); err != nil {
		return nil, err
	}
	return &UserProfile{
		ID:        fmt.Sprint(q.User.ID),
		Login:     q.User.Login,
		Name:      q.User.Name,
		Bio:       q.User.Bio,
		AvatarURL: q.User.AvatarURL,
		CreatedAt: q.User.CreatedAt.Time,
	}, nil
}

// FetchFollowerCounts returns the follower and following totals.
func (g *GitHubGateway) FetchFollowerCounts(ctx context.Context, login string) (*FollowerCounts, error) {
	var q struct {
		User struct {
			Followers struct{ TotalCount int }
			Following struct{ TotalCount int }
		} `graphql:"user(login: $login)"`
	}
	variables := map[string]interface{}{"login": githubv4.String(login)}
	if err := g.query(ctx, opFollowerGetter, &q, variables); err != nil {
		return nil, err
	}
	return &FollowerCounts{
		Followers: q.User.Followers.TotalCount,
		Following: q.User.Following.TotalCount,
	}, nil
}

// repoStarsQuery serves both the repository count and the star total.
type repoStarsQuery struct {
	User struct {
		Repositories struct {
			TotalCount int
			Edges      []struct {
				Node struct {
					Stargazers struct{ TotalCount int }
				}
			}
			PageInfo struct {
				EndCursor   githubv4.String
				HasNextPage bool
			}
		} `graphql:"repositories(first: 100, after: $cursor, ownerAffiliations: $affiliations)"`
	} `graphql:"user(login: $login)"`
}

// FetchRepoCount returns how many repositories match the affiliation
// filters. The total rides on the first page; no pagination needed.
func (g *GitHubGateway) FetchRepoCount(ctx context.Context, login string, affiliations []string) (int, error) {
	var q repoStarsQuery
	variables := map[string]interface{}{
		"login":        githubv4.String(login),
		"affiliations": toAffiliations(affiliations),
		"cursor":       (*githubv4.String)(nil),
	}
	if err := g.query(ctx, opReposStars, &q, variables); err != nil {
		return 0, err
	}
	return q.User.Repositories.TotalCount, nil
}

// FetchStarTotal sums stargazers across every matching repository.
func (g *GitHubGateway) FetchStarTotal(ctx context.Context, login string, affiliations []string) (int, error) {
	variables := map[string]interface{}{
		"login":        githubv4.String(login),
		"affiliations": toAffiliations(affiliations),
		"cursor":       (*githubv4.String)(nil),
	}
	total := 0
	for {
		var q repoStarsQuery
		if err := g.query(ctx, opReposStars, &q, variables); err != nil {
			return 0, err
		}
		for _, edge := range q.User.Repositories.Edges {
			total += edge.Node.Stargazers.TotalCount
		}
		if !q.User.Repositories.PageInfo.HasNextPage {
			break
		}
		variables["cursor"] = githubv4.NewString(q.User.Repositories.PageInfo.EndCursor)
		g.logger.Debug("fetching next page of starred repositories")
	}
	return total, nil
}

// repoOverviewQuery enumerates repositories with their default-branch
// history length. The smaller page keeps the nested history lookup
// within the API's node limits.
type repoOverviewQuery struct {
	User struct {
		Repositories struct {
			Edges []struct {
				Node struct {
					NameWithOwner    string
					DefaultBranchRef *struct {
						Target struct {
							Commit struct {
								History struct{ TotalCount int }
							} `graphql:"... on Commit"`
						}
					}
				}
			}
			PageInfo struct {
				EndCursor   githubv4.String
				HasNextPage bool
			}
		} `graphql:"repositories(first: 60, after: $cursor, ownerAffiliations: $affiliations)"`
	} `graphql:"user(login: $login)"`
}

// FetchRepoOverviews walks the full repository enumeration, page by
// page, and returns the entries in observation order.
func (g *GitHubGateway) FetchRepoOverviews(ctx context.Context, login string, affiliations []string) ([]RepoOverview, error) {
	variables := map[string]interface{}{
		"login":        githubv4.String(login),
		"affiliations": toAffiliations(affiliations),
		"cursor":       (*githubv4.String)(nil),
	}
	var overviews []RepoOverview
	for {
		var q repoOverviewQuery
		if err := g.query(ctx, opLOCQuery, &q, variables); err != nil {
			return nil, err
		}
		for _, edge := range q.User.Repositories.Edges {
			overview := RepoOverview{NameWithOwner: edge.Node.NameWithOwner}
			if ref := edge.Node.DefaultBranchRef; ref != nil {
				overview.HasDefaultBranch = true
				overview.TotalCommits = ref.Target.Commit.History.TotalCount
			}
			overviews = append(overviews, overview)
		}
		if !q.User.Repositories.PageInfo.HasNextPage {
			break
		}
		variables["cursor"] = githubv4.NewString(q.User.Repositories.PageInfo.EndCursor)
		g.logger.WithField("repos", len(overviews)).Debug("fetching next page of repositories")
	}
	return overviews, nil
}

type commitHistoryQuery struct {
	Repository struct {
		DefaultBranchRef *struct {
			Target struct {
				Commit struct {
					History struct {
						Edges []struct {
							Node struct {
								Author struct {
									User *struct {
										ID githubv4.ID
									}
								}
								Additions int
								Deletions int
							}
						}
						PageInfo struct {
							EndCursor   githubv4.String
							HasNextPage bool
						}
					} `graphql:"history(first: 100, after: $cursor)"`
				} `graphql:"... on Commit"`
			}
		}
	} `graphql:"repository(name: $name, owner: $owner)"`
}

// FetchCommitHistoryPage returns one page of a repository's default
// branch history. The caller passes the previous page's EndCursor back
// verbatim to continue; an empty cursor starts from the newest commit.
func (g *GitHubGateway) FetchCommitHistoryPage(ctx context.Context, owner, name, cursor string) (*HistoryPage, error) {
	variables := map[string]interface{}{
		"owner":  githubv4.String(owner),
		"name":   githubv4.String(name),
		"cursor": (*githubv4.String)(nil),
	}
	if cursor != "" {
		variables["cursor"] = githubv4.NewString(githubv4.String(cursor))
	}
	var q commitHistoryQuery
	if err := g.query(ctx, opRecursiveLOC, &q, variables); err != nil {
		return nil, err
	}
	if q.Repository.DefaultBranchRef == nil {
		return &HistoryPage{NoDefaultBranch: true}, nil
	}
	history := q.Repository.DefaultBranchRef.Target.Commit.History
	page := &HistoryPage{
		EndCursor:   string(history.PageInfo.EndCursor),
		HasNextPage: history.PageInfo.HasNextPage,
	}
	for _, edge := range history.Edges {
		entry := CommitEntry{
			Additions: edge.Node.Additions,
			Deletions: edge.Node.Deletions,
		}
		if edge.Node.Author.User != nil {
			entry.AuthorID = fmt.Sprint(edge.Node.Author.User.ID)
		}
		page.Commits = append(page.Commits, entry)
	}
	return page, nil
}

// FetchContributionTotal returns the contribution-calendar commit total
// for a date range.
func (g *GitHubGateway) FetchContributionTotal(ctx context.Context, login string, from, to time.Time) (int, error) {
	var q struct {
		User struct {
			ContributionsCollection struct {
				ContributionCalendar struct {
					TotalContributions int
				}
			} `graphql:"contributionsCollection(from: $from, to: $to)"`
		} `graphql:"user(login: $login)"`
	}
	variables := map[string]interface{}{
		"login": githubv4.String(login),
		"from":  githubv4.DateTime{Time: from},
		"to":    githubv4.DateTime{Time: to},
	}
	if err := g.query(ctx, opGraphCommits, &q, variables); err != nil {
		return 0, err
	}
	return q.User.ContributionsCollection.ContributionCalendar.TotalContributions, nil
}

// FetchRateLimit probes the REST rate-limit endpoint. Reporting only;
// not part of the Fetcher contract.
func (g *GitHubGateway) FetchRateLimit(ctx context.Context) (remaining, limit int, err error) {
	limits, _, err := g.restClient.RateLimit.Get(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to fetch rate limit with REST API: %w", err)
	}
	core := limits.GetCore()
	return core.Remaining, core.Limit, nil
}

func toAffiliations(affiliations []string) []githubv4.RepositoryAffiliation {
	out := make([]githubv4.RepositoryAffiliation, 0, len(affiliations))
	for _, a := range affiliations {
		out = append(out, githubv4.RepositoryAffiliation(a))
	}
	return out
}
