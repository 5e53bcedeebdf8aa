package githubclt

import (
	"slices"
	"time"

	"github.com/google/go-github/v59/github"
)

// PullRequest contains the pull request fields the bot evaluates.
type PullRequest struct {
	Number   int
	HeadSHA  string
	Author   string
	AuthorID int64
	Draft    bool
	State    string
	Labels   []string

	// Raw is the pull request as returned by the GitHub API, it is nil
	// when the PullRequest was not created from an API response.
	Raw *github.PullRequest
}

func (p *PullRequest) HasLabel(label string) bool {
	return slices.Contains(p.Labels, label)
}

// Commit is a commit of a pull request.
type Commit struct {
	SHA         string
	ParentCount int
	AuthoredAt  time.Time
	CommittedAt time.Time
}

// ReviewState is the state of a submitted pull request review.
type ReviewState string

const (
	ReviewStateApproved         ReviewState = "APPROVED"
	ReviewStateChangesRequested ReviewState = "CHANGES_REQUESTED"
	ReviewStateCommented        ReviewState = "COMMENTED"
	ReviewStateDismissed        ReviewState = "DISMISSED"
	ReviewStatePending          ReviewState = "PENDING"
)

// Review is a pull request review.
type Review struct {
	ID          int64
	Reviewer    string
	State       ReviewState
	SubmittedAt time.Time
}

// ReviewEvent is the action that is performed when a review is submitted.
type ReviewEvent string

const (
	ReviewEventApprove        ReviewEvent = "APPROVE"
	ReviewEventRequestChanges ReviewEvent = "REQUEST_CHANGES"
	ReviewEventComment        ReviewEvent = "COMMENT"
)

// Comment is an issue or pull request comment.
type Comment struct {
	ID        int64
	Author    string
	Body      string
	CreatedAt time.Time
}

// Workflow is a GitHub Actions workflow.
type Workflow struct {
	ID   int64
	Name string
	Path string
}

// Reactions that can be added to comments.
const (
	ReactionPlusOne  = "+1"
	ReactionConfused = "confused"
)
