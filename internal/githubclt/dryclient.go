package githubclt

import (
	"context"

	"go.uber.org/zap"

	"github.com/bazelbuild/continuous-integration/bcrbot/internal/logfields"
)

// DryClient is a github-client that does not do any changes on github.
// All operations that could cause a change are simulated and always succeed.
// All all other operations are forwarded to a wrapped API.
type DryClient struct {
	API
	logger *zap.Logger
}

func NewDryClient(clt API, logger *zap.Logger) *DryClient {
	return &DryClient{
		API:    clt,
		logger: logger.Named("dry_github_client"),
	}
}

func (c *DryClient) CreateReview(_ context.Context, _, _ string, number int, event ReviewEvent, _ string) error {
	c.logger.Info("simulated creating of pull request review, no review created on github",
		logfields.PullRequest(number),
		zap.String("github_review_event", string(event)),
	)
	return nil
}

func (c *DryClient) DismissReview(_ context.Context, _, _ string, number int, reviewID int64, _ string) error {
	c.logger.Info("simulated dismissing of pull request review, no review dismissed on github",
		logfields.PullRequest(number),
		zap.Int64("github_review_id", reviewID),
	)
	return nil
}

func (c *DryClient) MergePullRequest(_ context.Context, _, _ string, number int, expectedHeadSHA, method string) error {
	c.logger.Info("simulated merging of pull request, pull request was not merged on github",
		logfields.PullRequest(number),
		logfields.Commit(expectedHeadSHA),
		zap.String("github_merge_method", method),
	)
	return nil
}

func (c *DryClient) ClosePullRequest(_ context.Context, _, _ string, number int) error {
	c.logger.Info("simulated closing of pull request, pull request was not closed on github",
		logfields.PullRequest(number),
	)
	return nil
}

func (c *DryClient) CreateIssueComment(_ context.Context, _, _ string, issueOrPRNr int, comment string) error {
	c.logger.Info("simulated creating of github issue comment, no comment created on github",
		logfields.PullRequest(issueOrPRNr),
		zap.String("github_comment", comment),
	)
	return nil
}

func (c *DryClient) AddLabel(_ context.Context, _, _ string, pullRequestOrIssueNumber int, label string) error {
	c.logger.Info("simulated adding of label, no label added on github",
		logfields.PullRequest(pullRequestOrIssueNumber),
		logfields.Label(label),
	)
	return nil
}

func (c *DryClient) CreateCommentReaction(_ context.Context, _, _ string, commentID int64, reaction string) error {
	c.logger.Info("simulated adding of comment reaction, no reaction created on github",
		zap.Int64("github_comment_id", commentID),
		zap.String("github_reaction", reaction),
	)
	return nil
}
