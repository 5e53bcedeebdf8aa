package review

import (
	"context"

	"github.com/bazelbuild/continuous-integration/bcrbot/internal/githubclt"
)

// GithubClient is the subset of GitHub operations used by the package.
type GithubClient interface {
	PullRequest(ctx context.Context, owner, repo string, number int) (*githubclt.PullRequest, error)
	ListPullRequestFiles(ctx context.Context, owner, repo string, number, page, perPage int) ([]string, error)
	ListPullRequestCommits(ctx context.Context, owner, repo string, number int) ([]*githubclt.Commit, error)
	ListPullRequestReviews(ctx context.Context, owner, repo string, number int) ([]*githubclt.Review, error)
	CreateReview(ctx context.Context, owner, repo string, number int, event githubclt.ReviewEvent, body string) error
	DismissReview(ctx context.Context, owner, repo string, number int, reviewID int64, message string) error
	MergePullRequest(ctx context.Context, owner, repo string, number int, expectedHeadSHA, method string) error
	AddLabel(ctx context.Context, owner, repo string, pullRequestOrIssueNumber int, label string) error

	FileContent(ctx context.Context, owner, repo, path, ref string) ([]byte, error)
	UserID(ctx context.Context, login string) (int64, error)
	AuthenticatedUser(ctx context.Context) (string, error)
	IsModuleMaintainer(ctx context.Context, owner, repo string, userID int64) (bool, error)
	HasMergedPullRequest(ctx context.Context, owner, repo, author string) (bool, error)
}
