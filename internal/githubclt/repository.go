package githubclt

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/go-github/v59/github"
)

// FileContent returns the content of the file at path in the git reference
// ref. ref can be a branch name, tag, commit SHA or a fully qualified
// reference like refs/pull/1/head.
// If the file does not exist, an error wrapping ErrNotFound is returned.
func (clt *Client) FileContent(ctx context.Context, owner, repo, path, ref string) ([]byte, error) {
	file, _, _, err := clt.restClt.Repositories.GetContents(ctx, owner, repo, path, &github.RepositoryContentGetOptions{Ref: ref})
	if err != nil {
		return nil, clt.wrapNotFound(err, path)
	}

	if file == nil {
		return nil, fmt.Errorf("%s is a directory, expected a file", path)
	}

	content, err := file.GetContent()
	if err != nil {
		return nil, fmt.Errorf("decoding content of %s failed: %w", path, err)
	}

	return []byte(content), nil
}

// UserID returns the numeric id of the GitHub user with the given login.
// If the user does not exist, an error wrapping ErrNotFound is returned.
func (clt *Client) UserID(ctx context.Context, login string) (int64, error) {
	if login == "" {
		return 0, errors.New("login is empty")
	}

	user, _, err := clt.restClt.Users.Get(ctx, login)
	if err != nil {
		return 0, clt.wrapNotFound(err, "user "+login)
	}

	return user.GetID(), nil
}

// AuthenticatedUser returns the login of the user the client authenticates as.
func (clt *Client) AuthenticatedUser(ctx context.Context) (string, error) {
	user, _, err := clt.restClt.Users.Get(ctx, "")
	if err != nil {
		return "", clt.wrapRetryableErrors(err)
	}

	return user.GetLogin(), nil
}

// IsModuleMaintainer returns true if a metadata.json file in the repository
// contains the given user id.
// The result is based on the GitHub code search index and can lag behind
// the repository content.
func (clt *Client) IsModuleMaintainer(ctx context.Context, owner, repo string, userID int64) (bool, error) {
	query := fmt.Sprintf("user:%s repo:%s filename:metadata.json %s", owner, repo, strconv.FormatInt(userID, 10))

	res, _, err := clt.restClt.Search.Code(ctx, query, &github.SearchOptions{
		ListOptions: github.ListOptions{PerPage: 1},
	})
	if err != nil {
		return false, clt.wrapRetryableErrors(err)
	}

	return res.GetTotal() > 0, nil
}

// FindWorkflowByPath returns the GitHub Actions workflow defined in the
// file at path, e.g. ".github/workflows/ci.yml".
// If no workflow with the path exists, an error wrapping ErrNotFound is
// returned.
func (clt *Client) FindWorkflowByPath(ctx context.Context, owner, repo, path string) (*Workflow, error) {
	opts := github.ListOptions{PerPage: 100}
	for {
		workflows, resp, err := clt.restClt.Actions.ListWorkflows(ctx, owner, repo, &opts)
		if err != nil {
			return nil, clt.wrapRetryableErrors(err)
		}

		for _, wf := range workflows.Workflows {
			if wf.GetPath() == path {
				return &Workflow{
					ID:   wf.GetID(),
					Name: wf.GetName(),
					Path: wf.GetPath(),
				}, nil
			}
		}

		if resp.NextPage == 0 {
			return nil, fmt.Errorf("workflow %s: %w", path, ErrNotFound)
		}
		opts.Page = resp.NextPage
	}
}

// CountWorkflowRuns returns the number of runs of a workflow that have the
// given status, e.g. "queued" or "in_progress".
func (clt *Client) CountWorkflowRuns(ctx context.Context, owner, repo string, workflowID int64, status string) (int, error) {
	runs, _, err := clt.restClt.Actions.ListWorkflowRunsByID(ctx, owner, repo, workflowID, &github.ListWorkflowRunsOptions{
		Status:      status,
		ListOptions: github.ListOptions{PerPage: 1},
	})
	if err != nil {
		return 0, clt.wrapRetryableErrors(err)
	}

	return runs.GetTotalCount(), nil
}
