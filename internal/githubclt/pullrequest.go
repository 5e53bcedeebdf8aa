package githubclt

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/go-github/v59/github"

	"github.com/bazelbuild/continuous-integration/bcrbot/internal/logfields"
)

// PullRequest returns the pull request with the given number.
func (clt *Client) PullRequest(ctx context.Context, owner, repo string, number int) (*PullRequest, error) {
	pr, _, err := clt.restClt.PullRequests.Get(ctx, owner, repo, number)
	if err != nil {
		return nil, clt.wrapNotFound(err, fmt.Sprintf("pull request #%d", number))
	}

	return toPullRequest(pr), nil
}

func toPullRequest(pr *github.PullRequest) *PullRequest {
	result := PullRequest{
		Number:   pr.GetNumber(),
		HeadSHA:  pr.GetHead().GetSHA(),
		Author:   pr.GetUser().GetLogin(),
		AuthorID: pr.GetUser().GetID(),
		Draft:    pr.GetDraft(),
		State:    pr.GetState(),
		Raw:      pr,
	}

	for _, l := range pr.Labels {
		result.Labels = append(result.Labels, l.GetName())
	}

	return &result
}

// ListPullRequestFiles returns the filenames of one page of files changed
// in a pull request. Pages start at 1.
func (clt *Client) ListPullRequestFiles(ctx context.Context, owner, repo string, number, page, perPage int) ([]string, error) {
	files, _, err := clt.restClt.PullRequests.ListFiles(ctx, owner, repo, number, &github.ListOptions{
		Page:    page,
		PerPage: perPage,
	})
	if err != nil {
		return nil, clt.wrapRetryableErrors(err)
	}

	result := make([]string, 0, len(files))
	for _, f := range files {
		result = append(result, f.GetFilename())
	}

	return result, nil
}

// ListPullRequestCommits returns all commits of a pull request in the
// order they are listed by GitHub, oldest first.
func (clt *Client) ListPullRequestCommits(ctx context.Context, owner, repo string, number int) ([]*Commit, error) {
	var result []*Commit

	opts := github.ListOptions{PerPage: 100}
	for {
		commits, resp, err := clt.restClt.PullRequests.ListCommits(ctx, owner, repo, number, &opts)
		if err != nil {
			return nil, clt.wrapRetryableErrors(err)
		}

		for _, c := range commits {
			result = append(result, &Commit{
				SHA:         c.GetSHA(),
				ParentCount: len(c.Parents),
				AuthoredAt:  c.GetCommit().GetAuthor().GetDate().Time,
				CommittedAt: c.GetCommit().GetCommitter().GetDate().Time,
			})
		}

		if resp.NextPage == 0 {
			return result, nil
		}
		opts.Page = resp.NextPage
	}
}

// ListPullRequestReviews returns all reviews of a pull request.
func (clt *Client) ListPullRequestReviews(ctx context.Context, owner, repo string, number int) ([]*Review, error) {
	var result []*Review

	opts := github.ListOptions{PerPage: 100}
	for {
		reviews, resp, err := clt.restClt.PullRequests.ListReviews(ctx, owner, repo, number, &opts)
		if err != nil {
			return nil, clt.wrapRetryableErrors(err)
		}

		for _, r := range reviews {
			result = append(result, &Review{
				ID:          r.GetID(),
				Reviewer:    r.GetUser().GetLogin(),
				State:       ReviewState(r.GetState()),
				SubmittedAt: r.GetSubmittedAt().Time,
			})
		}

		if resp.NextPage == 0 {
			return result, nil
		}
		opts.Page = resp.NextPage
	}
}

// CreateReview submits a review with the given event and body.
func (clt *Client) CreateReview(ctx context.Context, owner, repo string, number int, event ReviewEvent, body string) error {
	_, _, err := clt.restClt.PullRequests.CreateReview(ctx, owner, repo, number, &github.PullRequestReviewRequest{
		Body:  &body,
		Event: github.String(string(event)),
	})
	return clt.wrapRetryableErrors(err)
}

// DismissReview dismisses a submitted review.
func (clt *Client) DismissReview(ctx context.Context, owner, repo string, number int, reviewID int64, message string) error {
	_, _, err := clt.restClt.PullRequests.DismissReview(ctx, owner, repo, number, reviewID, &github.PullRequestReviewDismissalRequest{
		Message: &message,
	})
	return clt.wrapRetryableErrors(err)
}

// MergePullRequest merges a pull request with the given method.
// expectedHeadSHA must match the current head of the pull request,
// otherwise GitHub rejects the merge.
// When GitHub refuses to merge the pull request an error wrapping
// ErrMergeRejected is returned.
func (clt *Client) MergePullRequest(ctx context.Context, owner, repo string, number int, expectedHeadSHA, method string) error {
	res, _, err := clt.restClt.PullRequests.Merge(ctx, owner, repo, number, "", &github.PullRequestOptions{
		SHA:         expectedHeadSHA,
		MergeMethod: method,
	})
	if err != nil {
		var respErr *github.ErrorResponse
		if errors.As(err, &respErr) && respErr.Response != nil {
			switch respErr.Response.StatusCode {
			case http.StatusMethodNotAllowed, http.StatusConflict, http.StatusUnprocessableEntity:
				return fmt.Errorf("%w: %s", ErrMergeRejected, respErr.Message)
			}
		}

		return clt.wrapRetryableErrors(err)
	}

	if !res.GetMerged() {
		return fmt.Errorf("%w: %s", ErrMergeRejected, res.GetMessage())
	}

	clt.logger.Debug("pull request merged",
		logfields.RepositoryOwner(owner),
		logfields.Repository(repo),
		logfields.PullRequest(number),
		logfields.Commit(res.GetSHA()),
		logfields.Event("github_pull_request_merged"),
	)

	return nil
}

// ClosePullRequest closes a pull request without merging it.
func (clt *Client) ClosePullRequest(ctx context.Context, owner, repo string, number int) error {
	_, _, err := clt.restClt.PullRequests.Edit(ctx, owner, repo, number, &github.PullRequest{
		State: github.String("closed"),
	})
	return clt.wrapRetryableErrors(err)
}

type PRIterator interface {
	Next() (*PullRequest, error)
}

type PRIter struct {
	clt *Client

	ctx   context.Context
	owner string
	repo  string

	filterState   string
	sortOrder     string
	sortDirection string

	unseen []*github.PullRequest

	nextPage int
	finished bool
}

// Next returns the next pullRequest.
// When the last result was returned a nil PullRequest is returned.
func (it *PRIter) Next() (*PullRequest, error) {
	if len(it.unseen) > 0 {
		result := it.unseen[0]
		it.unseen = it.unseen[1:]

		return toPullRequest(result), nil
	}

	if it.finished {
		return nil, nil
	}

	prs, resp, err := it.clt.restClt.PullRequests.List(it.ctx, it.owner, it.repo, &github.PullRequestListOptions{
		State:     it.filterState,
		Sort:      it.sortOrder,
		Direction: it.sortDirection,
		ListOptions: github.ListOptions{
			Page:    it.nextPage,
			PerPage: 100,
		},
	})
	if err != nil {
		return nil, it.clt.wrapRetryableErrors(err)
	}

	if resp.NextPage == 0 || len(prs) == 0 {
		it.finished = true
	} else {
		it.nextPage = resp.NextPage
	}

	it.unseen = prs

	if len(prs) == 0 {
		return nil, nil
	}

	return it.Next()
}

// ListPullRequests returns an iterator for receiving all pull requests.
// The parameters state, sort, sortDirection expect the same values then their pendants in the struct github.PullRequestListOptions.
func (clt *Client) ListPullRequests(ctx context.Context, owner, repo, state, sort, sortDirection string) PRIterator { // interface is returned to make the method mockable
	return &PRIter{
		clt:           clt,
		ctx:           ctx,
		owner:         owner,
		repo:          repo,
		sortOrder:     sort,
		sortDirection: sortDirection,
		filterState:   state,
		nextPage:      1,
	}
}
