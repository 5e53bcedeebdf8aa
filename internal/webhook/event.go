package webhook

import (
	"fmt"
	"os"

	"github.com/google/go-github/v59/github"
	"go.uber.org/zap"

	"github.com/bazelbuild/continuous-integration/bcrbot/internal/logfields"
)

// GitHub event type names.
const (
	EventTypePullRequest       = "pull_request"
	EventTypePullRequestTarget = "pull_request_target"
	EventTypePullRequestReview = "pull_request_review"
	EventTypeIssueComment      = "issue_comment"
)

// Event is a preprocessed GitHub event.
// Fields that are not part of the event have their zero value.
type Event struct {
	// DeliveryID is the unique GitHub ID of a webhook delivery, it is
	// empty for events read from a file.
	DeliveryID string
	// Type is the GitHub event type, e.g. pull_request.
	Type   string
	Action string

	RepositoryOwner string
	Repository      string

	PullRequest int
	// Author is the login of the pull request author.
	Author  string
	HeadSHA string

	CommentID     int64
	CommentAuthor string
	CommentBody   string

	// Payload is the parsed event as returned by github.ParseWebHook().
	Payload any
}

func (e *Event) String() string {
	if e.DeliveryID == "" {
		return fmt.Sprintf("%s.%s", e.Type, e.Action)
	}

	return fmt.Sprintf("%s.%s (deliveryID: %s)", e.Type, e.Action, e.DeliveryID)
}

// IsComment returns true if the event is about a created pull request
// comment.
func (e *Event) IsComment() bool {
	return e.Type == EventTypeIssueComment && e.Action == "created" && e.PullRequest != 0
}

func (e *Event) LogFields() []zap.Field {
	fields := make([]zap.Field, 0, 6) // cap == max. size of fields we append

	fields = append(fields, logfields.EventProvider("github"))

	if e.DeliveryID != "" {
		fields = append(fields, logfields.DeliveryID(e.DeliveryID))
	}

	if e.Repository != "" {
		fields = append(fields, logfields.Repository(e.Repository))
	}

	if e.PullRequest != 0 {
		fields = append(fields, logfields.PullRequest(e.PullRequest))
	}

	if e.HeadSHA != "" {
		fields = append(fields, logfields.Commit(e.HeadSHA))
	}

	if e.CommentAuthor != "" {
		fields = append(fields, logfields.Author(e.CommentAuthor))
	}

	return fields
}

// Parse parses a GitHub event payload of type eventType.
// pull_request_target events are parsed as pull_request events.
func Parse(eventType, deliveryID string, payload []byte) (*Event, error) {
	parseType := eventType
	if parseType == EventTypePullRequestTarget {
		parseType = EventTypePullRequest
	}

	parsed, err := github.ParseWebHook(parseType, payload)
	if err != nil {
		return nil, fmt.Errorf("parsing %s event failed: %w", eventType, err)
	}

	ev := Event{
		DeliveryID: deliveryID,
		Type:       parseType,
		Payload:    parsed,
	}

	switch event := parsed.(type) {
	case *github.PullRequestEvent:
		ev.Action = event.GetAction()
		ev.setRepository(event.GetRepo())
		ev.setPullRequest(event.GetPullRequest())

	case *github.PullRequestReviewEvent:
		ev.Action = event.GetAction()
		ev.setRepository(event.GetRepo())
		ev.setPullRequest(event.GetPullRequest())

	case *github.IssueCommentEvent:
		ev.Action = event.GetAction()
		ev.setRepository(event.GetRepo())

		if issue := event.GetIssue(); issue != nil && issue.IsPullRequest() {
			ev.PullRequest = issue.GetNumber()
			ev.Author = issue.GetUser().GetLogin()
		}

		if comment := event.GetComment(); comment != nil {
			ev.CommentID = comment.GetID()
			ev.CommentAuthor = comment.GetUser().GetLogin()
			ev.CommentBody = comment.GetBody()
		}
	}

	return &ev, nil
}

// ParseEventFile reads and parses an event payload file, as provided by
// GitHub Actions via GITHUB_EVENT_PATH.
func ParseEventFile(eventType, path string) (*Event, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading event file failed: %w", err)
	}

	return Parse(eventType, "", payload)
}

func (e *Event) setRepository(repo *github.Repository) {
	if repo == nil {
		return
	}

	e.Repository = repo.GetName()
	e.RepositoryOwner = repo.GetOwner().GetLogin()
}

func (e *Event) setPullRequest(pr *github.PullRequest) {
	if pr == nil {
		return
	}

	e.PullRequest = pr.GetNumber()
	e.Author = pr.GetUser().GetLogin()
	e.HeadSHA = pr.GetHead().GetSHA()
}
