package review

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/bazelbuild/continuous-integration/bcrbot/internal/githubclt"
	"github.com/bazelbuild/continuous-integration/bcrbot/internal/logfields"
	"github.com/bazelbuild/continuous-integration/bcrbot/internal/set"
)

// Approvals are the reviews of a pull request that were submitted after
// the last non-merge commit.
type Approvals struct {
	Cutoff       time.Time
	CutoffCommit string
	// Latest is the most recent review per reviewer.
	Latest map[string]*githubclt.Review
	// Approvers are the reviewers whose latest review approved the
	// pull request.
	Approvers set.Set[string]
}

// Cutoff returns the last commit with exactly one parent and its
// timestamp. The timestamp is the later one of the author and committer
// date, a rebased or amended commit keeps its author date.
// If all commits are merge commits, ErrNoNonMergeCommit is returned.
func Cutoff(commits []*githubclt.Commit) (*githubclt.Commit, time.Time, error) {
	for i := len(commits) - 1; i >= 0; i-- {
		c := commits[i]
		if c.ParentCount != 1 {
			continue
		}

		ts := c.AuthoredAt
		if c.CommittedAt.After(ts) {
			ts = c.CommittedAt
		}

		return c, ts, nil
	}

	return nil, time.Time{}, ErrNoNonMergeCommit
}

// LatestReviews returns per reviewer the most recent review that was
// submitted at or after cutoff.
// If a reviewer submitted multiple reviews at the same time, the first one
// in reviews is kept.
func LatestReviews(reviews []*githubclt.Review, cutoff time.Time) map[string]*githubclt.Review {
	result := map[string]*githubclt.Review{}

	for _, r := range reviews {
		if r.SubmittedAt.IsZero() || r.SubmittedAt.Before(cutoff) {
			continue
		}

		existing, exists := result[r.Reviewer]
		if !exists || r.SubmittedAt.After(existing.SubmittedAt) {
			result[r.Reviewer] = r
		}
	}

	return result
}

// ApproversOf returns the reviewers whose review is an approval.
func ApproversOf(latest map[string]*githubclt.Review) set.Set[string] {
	result := set.New[string]()

	for reviewer, r := range latest {
		if r.State == githubclt.ReviewStateApproved {
			result.Add(reviewer)
		}
	}

	return result
}

// ApprovalCollector retrieves the approvals that apply to the current
// changes of a pull request.
type ApprovalCollector struct {
	clt    GithubClient
	logger *zap.Logger
}

func NewApprovalCollector(clt GithubClient) *ApprovalCollector {
	return &ApprovalCollector{
		clt:    clt,
		logger: zap.L().Named(loggerName).Named("approvals"),
	}
}

func (c *ApprovalCollector) Collect(ctx context.Context, owner, repo string, number int) (*Approvals, error) {
	commits, err := c.clt.ListPullRequestCommits(ctx, owner, repo, number)
	if err != nil {
		return nil, fmt.Errorf("listing commits failed: %w", err)
	}

	commit, cutoff, err := Cutoff(commits)
	if err != nil {
		return nil, err
	}

	reviews, err := c.clt.ListPullRequestReviews(ctx, owner, repo, number)
	if err != nil {
		return nil, fmt.Errorf("listing reviews failed: %w", err)
	}

	latest := LatestReviews(reviews, cutoff)
	result := Approvals{
		Cutoff:       cutoff,
		CutoffCommit: commit.SHA,
		Latest:       latest,
		Approvers:    ApproversOf(latest),
	}

	c.logger.Debug(
		"collected approvals",
		logfields.RepositoryOwner(owner),
		logfields.Repository(repo),
		logfields.PullRequest(number),
		logfields.Commit(commit.SHA),
		logfields.Event("approvals_collected"),
		zap.Time("review_cutoff", cutoff),
		zap.Int("reviews", len(reviews)),
		zap.Strings("approvers", result.Approvers.Sorted()),
	)

	return &result, nil
}
