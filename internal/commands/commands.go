// Package commands executes commands that are posted as pull request
// comments, e.g. "@bazel-io skip_check unstable_url".
package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/bazelbuild/continuous-integration/bcrbot/internal/githubclt"
	"github.com/bazelbuild/continuous-integration/bcrbot/internal/logfields"
	"github.com/bazelbuild/continuous-integration/bcrbot/internal/review"
)

const loggerName = "commands"

// DefTrigger is the mention that starts a command.
const DefTrigger = "@bazel-io"

const (
	skipCheckCmd = "skip_check"
	abandonCmd   = "abandon"
)

// SkipCheckLabels maps the checks that can be skipped to the label that
// disables them.
var SkipCheckLabels = map[string]string{
	"unstable_url":        "skip-url-stability-check",
	"compatibility_level": "skip-compatibility-level-check",
	"incompatible_flags":  "skip-incompatible-flags-test",
}

var ErrUnknownCheck = errors.New("unknown check")

type GithubClient interface {
	review.GithubClient
	CreateIssueComment(ctx context.Context, owner, repo string, issueOrPRNr int, comment string) error
	CreateCommentReaction(ctx context.Context, owner, repo string, commentID int64, reaction string) error
	ClosePullRequest(ctx context.Context, owner, repo string, number int) error
}

// Comment is a pull request comment that can contain a command.
type Comment struct {
	ID          int64
	PullRequest int
	Author      string
	Body        string
}

type Config struct {
	RepositoryOwner string
	Repository      string
	StableBranch    string
	Trigger         string
}

// Handler executes commands.
type Handler struct {
	clt         GithubClient
	cfg         *Config
	changes     *review.ChangeSetResolver
	maintainers *review.MaintainerResolver
	logger      *zap.Logger
}

func New(clt GithubClient, cfg *Config) *Handler {
	return &Handler{
		clt:         clt,
		cfg:         cfg,
		changes:     review.NewChangeSetResolver(clt),
		maintainers: review.NewMaintainerResolver(clt, cfg.StableBranch),
		logger:      zap.L().Named(loggerName),
	}
}

// Handle executes the command in the comment.
// If the comment does not contain a command, false is returned.
func (h *Handler) Handle(ctx context.Context, c *Comment) (bool, error) {
	handled, err := h.SkipCheck(ctx, c)
	if handled || err != nil {
		return handled, err
	}

	return h.Abandon(ctx, c)
}

// SkipCheck handles "<trigger> skip_check <check>" commands by adding the
// label that disables the check to the pull request.
// If the check is unknown, the comment gets a confused reaction and an
// error wrapping ErrUnknownCheck is returned.
// If the comment is not a skip_check command, false is returned.
func (h *Handler) SkipCheck(ctx context.Context, c *Comment) (bool, error) {
	prefix := h.cfg.Trigger + " " + skipCheckCmd + " "
	if !strings.HasPrefix(c.Body, prefix) {
		return false, nil
	}

	check := strings.TrimSpace(strings.TrimPrefix(c.Body, prefix))
	logger := h.logger.With(
		logfields.PullRequest(c.PullRequest),
		logfields.Author(c.Author),
		zap.String("check", check),
	)

	label, exists := SkipCheckLabels[check]
	if !exists {
		logger.Info("skip_check command for unknown check", logfields.Event("command_unknown_check"))

		if err := h.react(ctx, c, githubclt.ReactionConfused); err != nil {
			return true, err
		}

		return true, fmt.Errorf("%w: %s", ErrUnknownCheck, check)
	}

	if err := h.clt.AddLabel(ctx, h.cfg.RepositoryOwner, h.cfg.Repository, c.PullRequest, label); err != nil {
		return true, fmt.Errorf("adding label %s failed: %w", label, err)
	}

	logger.Info("check skipped", logfields.Event("command_check_skipped"), logfields.Label(label))

	return true, h.react(ctx, c, githubclt.ReactionPlusOne)
}

// Abandon handles "<trigger> abandon" commands. If the comment author
// maintains one of the modules changed by the pull request, it is closed.
// If the comment is not an abandon command, false is returned.
func (h *Handler) Abandon(ctx context.Context, c *Comment) (bool, error) {
	if strings.TrimSpace(c.Body) != h.cfg.Trigger+" "+abandonCmd {
		return false, nil
	}

	owner, repo := h.cfg.RepositoryOwner, h.cfg.Repository
	logger := h.logger.With(
		logfields.PullRequest(c.PullRequest),
		logfields.Author(c.Author),
	)

	cs, err := h.changes.Resolve(ctx, owner, repo, c.PullRequest)
	if err != nil {
		return true, err
	}

	if cs.Modules.Len() == 0 {
		logger.Info(
			"abandon command on pull request without module changes, maintainers can not be determined",
			logfields.Event("command_abandon_no_modules"),
		)
		return true, h.react(ctx, c, githubclt.ReactionConfused)
	}

	resolution, err := h.maintainers.Resolve(ctx, owner, repo, cs.Modules, false)
	if err != nil {
		return true, fmt.Errorf("resolving maintainers failed: %w", err)
	}

	if !resolution.Maintainers.IsMaintainer(c.Author) {
		logger.Info(
			"ignoring abandon command, commenter is not a maintainer of a changed module",
			logfields.Event("command_abandon_denied"),
		)

		body := fmt.Sprintf(
			"@%s, you don't have permissions to abandon this PR since you are not a maintainer of any of the modified modules.",
			c.Author,
		)
		if err := h.clt.CreateIssueComment(ctx, owner, repo, c.PullRequest, body); err != nil {
			return true, fmt.Errorf("creating comment failed: %w", err)
		}

		return true, h.react(ctx, c, githubclt.ReactionConfused)
	}

	body := fmt.Sprintf(
		"This PR is being closed as requested by @%s, who is a maintainer of the modified module(s).",
		c.Author,
	)
	if err := h.clt.CreateIssueComment(ctx, owner, repo, c.PullRequest, body); err != nil {
		return true, fmt.Errorf("creating comment failed: %w", err)
	}

	if err := h.clt.ClosePullRequest(ctx, owner, repo, c.PullRequest); err != nil {
		return true, fmt.Errorf("closing pull request failed: %w", err)
	}

	logger.Info("pull request closed on request of a maintainer", logfields.Event("command_abandon_closed"))

	return true, h.react(ctx, c, githubclt.ReactionPlusOne)
}

func (h *Handler) react(ctx context.Context, c *Comment, reaction string) error {
	err := h.clt.CreateCommentReaction(ctx, h.cfg.RepositoryOwner, h.cfg.Repository, c.ID, reaction)
	if err != nil {
		return fmt.Errorf("adding %s reaction to comment failed: %w", reaction, err)
	}

	return nil
}
