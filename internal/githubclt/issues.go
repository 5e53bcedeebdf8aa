package githubclt

import (
	"context"
	"errors"
	"time"

	"github.com/google/go-github/v59/github"
)

// CreateIssueComment creates a comment in a issue or pull request
func (clt *Client) CreateIssueComment(ctx context.Context, owner, repo string, issueOrPRNr int, comment string) error {
	_, _, err := clt.restClt.Issues.CreateComment(ctx, owner, repo, issueOrPRNr, &github.IssueComment{Body: &comment})
	return clt.wrapRetryableErrors(err)
}

// ListIssueComments returns all comments of an issue or pull request that
// were created or updated at or after since.
// If since is the zero value, all comments are returned.
func (clt *Client) ListIssueComments(ctx context.Context, owner, repo string, issueOrPRNr int, since time.Time) ([]*Comment, error) {
	var result []*Comment

	opts := github.IssueListCommentsOptions{
		ListOptions: github.ListOptions{PerPage: 100},
	}
	if !since.IsZero() {
		opts.Since = &since
	}

	for {
		comments, resp, err := clt.restClt.Issues.ListComments(ctx, owner, repo, issueOrPRNr, &opts)
		if err != nil {
			return nil, clt.wrapRetryableErrors(err)
		}

		for _, c := range comments {
			result = append(result, &Comment{
				ID:        c.GetID(),
				Author:    c.GetUser().GetLogin(),
				Body:      c.GetBody(),
				CreatedAt: c.GetCreatedAt().Time,
			})
		}

		if resp.NextPage == 0 {
			return result, nil
		}
		opts.Page = resp.NextPage
	}
}

// AddLabel adds a label to Pull-Request or Issue.
func (clt *Client) AddLabel(ctx context.Context, owner, repo string, pullRequestOrIssueNumber int, label string) error {
	if label == "" {
		// by default github removes all labels when none is provided,
		// we do not need this functionality, as safe guard fail if
		// because of a bug an empty label value is passed:
		return errors.New("provided label is empty")
	}
	_, _, err := clt.restClt.Issues.AddLabelsToIssue(ctx, owner, repo, pullRequestOrIssueNumber, []string{label})
	return clt.wrapRetryableErrors(err)
}

// CreateCommentReaction adds a reaction to an issue comment.
// Valid values for reaction are the ones documented for the GitHub
// reactions API, e.g. ReactionPlusOne.
func (clt *Client) CreateCommentReaction(ctx context.Context, owner, repo string, commentID int64, reaction string) error {
	_, _, err := clt.restClt.Reactions.CreateIssueCommentReaction(ctx, owner, repo, commentID, reaction)
	return clt.wrapRetryableErrors(err)
}
