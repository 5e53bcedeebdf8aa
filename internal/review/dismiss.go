package review

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/bazelbuild/continuous-integration/bcrbot/internal/githubclt"
	"github.com/bazelbuild/continuous-integration/bcrbot/internal/logfields"
)

const dismissMessage = "Require module maintainers' approval for newly pushed changes."

// DismissApprovals dismisses all approving reviews of a pull request.
// It is run when new commits are pushed to a pull request, the
// approvals then do not apply to the current changes anymore.
// The number of dismissed reviews is returned.
func DismissApprovals(ctx context.Context, clt GithubClient, owner, repo string, number int) (int, error) {
	logger := zap.L().Named(loggerName).With(
		logfields.RepositoryOwner(owner),
		logfields.Repository(repo),
		logfields.PullRequest(number),
	)

	reviews, err := clt.ListPullRequestReviews(ctx, owner, repo, number)
	if err != nil {
		return 0, fmt.Errorf("listing reviews failed: %w", err)
	}

	var cnt int
	for _, r := range reviews {
		if r.State != githubclt.ReviewStateApproved {
			continue
		}

		if err := clt.DismissReview(ctx, owner, repo, number, r.ID, dismissMessage); err != nil {
			return cnt, fmt.Errorf("dismissing review %d of %s failed: %w", r.ID, r.Reviewer, err)
		}

		metrics.SideEffectInc(ActionDismissApproval)
		cnt++

		logger.Info(
			"dismissed approval",
			logfields.Event("review_approval_dismissed"),
			logfields.Reviewer(r.Reviewer),
			zap.Int64("github_review_id", r.ID),
		)
	}

	return cnt, nil
}
