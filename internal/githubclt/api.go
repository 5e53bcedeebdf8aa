package githubclt

import (
	"context"
	"time"
)

//go:generate mockgen -package mocks -destination mocks/api.go . API,PRIterator

// API is the set of GitHub operations used by the bot.
// It is implemented by Client and DryClient.
type API interface {
	PullRequest(ctx context.Context, owner, repo string, number int) (*PullRequest, error)
	ListPullRequests(ctx context.Context, owner, repo, state, sort, sortDirection string) PRIterator
	ListPullRequestFiles(ctx context.Context, owner, repo string, number, page, perPage int) ([]string, error)
	ListPullRequestCommits(ctx context.Context, owner, repo string, number int) ([]*Commit, error)
	ListPullRequestReviews(ctx context.Context, owner, repo string, number int) ([]*Review, error)
	CreateReview(ctx context.Context, owner, repo string, number int, event ReviewEvent, body string) error
	DismissReview(ctx context.Context, owner, repo string, number int, reviewID int64, message string) error
	MergePullRequest(ctx context.Context, owner, repo string, number int, expectedHeadSHA, method string) error
	ClosePullRequest(ctx context.Context, owner, repo string, number int) error

	CreateIssueComment(ctx context.Context, owner, repo string, issueOrPRNr int, comment string) error
	ListIssueComments(ctx context.Context, owner, repo string, issueOrPRNr int, since time.Time) ([]*Comment, error)
	AddLabel(ctx context.Context, owner, repo string, pullRequestOrIssueNumber int, label string) error
	CreateCommentReaction(ctx context.Context, owner, repo string, commentID int64, reaction string) error

	FileContent(ctx context.Context, owner, repo, path, ref string) ([]byte, error)
	UserID(ctx context.Context, login string) (int64, error)
	AuthenticatedUser(ctx context.Context) (string, error)
	IsModuleMaintainer(ctx context.Context, owner, repo string, userID int64) (bool, error)
	HasMergedPullRequest(ctx context.Context, owner, repo, author string) (bool, error)

	FindWorkflowByPath(ctx context.Context, owner, repo, path string) (*Workflow, error)
	CountWorkflowRuns(ctx context.Context, owner, repo string, workflowID int64, status string) (int, error)
}

var (
	_ API = &Client{}
	_ API = &DryClient{}
)
