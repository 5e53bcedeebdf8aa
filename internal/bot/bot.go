// Package bot runs the bcrbot operations for pull requests of the
// registry repository.
package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/bazelbuild/continuous-integration/bcrbot/internal/cfg"
	"github.com/bazelbuild/continuous-integration/bcrbot/internal/commands"
	"github.com/bazelbuild/continuous-integration/bcrbot/internal/gate"
	"github.com/bazelbuild/continuous-integration/bcrbot/internal/githubclt"
	"github.com/bazelbuild/continuous-integration/bcrbot/internal/logfields"
	"github.com/bazelbuild/continuous-integration/bcrbot/internal/moddiff"
	"github.com/bazelbuild/continuous-integration/bcrbot/internal/notify"
	"github.com/bazelbuild/continuous-integration/bcrbot/internal/prfilter"
	"github.com/bazelbuild/continuous-integration/bcrbot/internal/retryer"
	"github.com/bazelbuild/continuous-integration/bcrbot/internal/review"
	"github.com/bazelbuild/continuous-integration/bcrbot/internal/webhook"
)

const loggerName = "bot"

var (
	ErrMissingPullRequest = errors.New("pull request number is unknown")
	ErrMissingComment     = errors.New("event is not a pull request comment")
)

// Bot executes the operation modes.
type Bot struct {
	clt   githubclt.API
	owner string
	repo  string

	reconciler *review.Reconciler
	notifier   *notify.Notifier
	commands   *commands.Handler
	differ     *moddiff.Differ
	filter     *prfilter.Filter
	// gate is nil when the gate is disabled.
	gate    *gate.Gate
	retryer *retryer.Retryer

	logger *zap.Logger
}

// Request contains the inputs of a mode execution.
type Request struct {
	// PullRequest is the pull request number, if it is 0 the number from
	// Event is used.
	PullRequest int
	// Event is the GitHub event that triggered the execution, it can be nil.
	Event *webhook.Event
	// Output receives the module diff.
	Output io.Writer
}

func (r *Request) pullRequest() (int, error) {
	if r.PullRequest != 0 {
		return r.PullRequest, nil
	}

	if r.Event != nil && r.Event.PullRequest != 0 {
		return r.Event.PullRequest, nil
	}

	return 0, ErrMissingPullRequest
}

// New creates a Bot from the configuration. The configuration must have
// been validated.
func New(clt githubclt.API, config *cfg.Config) (*Bot, error) {
	owner, repo, err := config.RepositoryOwnerAndName()
	if err != nil {
		return nil, err
	}

	filter, err := prfilter.New(config.Review.PRFilterQuery)
	if err != nil {
		return nil, fmt.Errorf("review.pr_filter_query: %w", err)
	}

	b := Bot{
		clt:   clt,
		owner: owner,
		repo:  repo,
		reconciler: review.NewReconciler(clt, &review.Config{
			RepositoryOwner:   owner,
			Repository:        repo,
			StableBranch:      config.StableBranch,
			AllowSelfApproval: config.Review.AuthorSelfApproval,
			Policy: review.Policy{
				MergeMethod:          config.Review.MergeMethod,
				CITriggerLabel:       config.Review.CITriggerLabel,
				LowCIPriorityLabel:   config.Review.LowCIPriorityLabel,
				AutoMergedLabel:      config.Review.AutoMergedLabel,
				ManyModulesThreshold: config.Review.ManyModulesThreshold,
			},
		}),
		notifier: notify.New(clt, &notify.Config{
			RepositoryOwner:      owner,
			Repository:           repo,
			StableBranch:         config.StableBranch,
			FallbackTeam:         config.Notify.FallbackTeam,
			MaxMaintainerGroups:  config.Notify.MaxMaintainerGroups,
			ManyModulesThreshold: config.Review.ManyModulesThreshold,
			LowCIPriorityLabel:   config.Review.LowCIPriorityLabel,
			CommentDedupWindow:   cfg.Duration(config.Notify.CommentDedupWindow),
		}),
		commands: commands.New(clt, &commands.Config{
			RepositoryOwner: owner,
			Repository:      repo,
			StableBranch:    config.StableBranch,
			Trigger:         config.Commands.Trigger,
		}),
		differ: moddiff.New(clt, &moddiff.Config{
			RepositoryOwner: owner,
			Repository:      repo,
			CheckoutDir:     config.CheckoutDir,
		}),
		filter:  filter,
		retryer: retryer.New(retryer.WithTimeout(cfg.Duration(config.Review.RetryTimeout))),
		logger: zap.L().Named(loggerName).With(
			logfields.RepositoryOwner(owner),
			logfields.Repository(repo),
		),
	}

	if !config.Gate.Disabled {
		b.gate = gate.New(
			clt, owner, repo, config.Gate.WorkflowPath,
			gate.WithPollInterval(cfg.Duration(config.Gate.PollInterval)),
			gate.WithTimeout(cfg.Duration(config.Gate.Timeout)),
		)
	}

	return &b, nil
}

// Stop aborts retrying failed operations.
func (b *Bot) Stop() {
	b.retryer.Stop()
}

// Run executes the operation of mode.
// ModeServe is not supported, it is run via an EventLoop.
func (b *Bot) Run(ctx context.Context, mode Mode, req *Request) error {
	logger := b.logger.With(logfields.Mode(string(mode)))
	logger.Debug("running mode", logfields.Event("mode_started"))

	switch mode {
	case ModeReviewPRs:
		return b.ReviewOpenPRs(ctx)

	case ModeReviewPR:
		nr, err := req.pullRequest()
		if err != nil {
			return err
		}

		_, err = b.ReviewPR(ctx, nr)
		return ignoreStale(err)

	case ModeNotifyMaintainers:
		nr, err := req.pullRequest()
		if err != nil {
			return err
		}

		var author string
		if req.Event != nil {
			author = req.Event.Author
		}

		return ignoreStale(b.NotifyMaintainers(ctx, nr, author))

	case ModeDismissApprovals:
		nr, err := req.pullRequest()
		if err != nil {
			return err
		}

		return b.DismissApprovals(ctx, nr)

	case ModeDiffModule:
		nr, err := req.pullRequest()
		if err != nil {
			return err
		}

		return ignoreStale(b.differ.Diff(ctx, nr, req.Output))

	case ModeHandleComment:
		return b.HandleComment(ctx, req.Event)

	case ModeSkipCheck:
		return b.SkipCheck(ctx, req.Event)

	default:
		return fmt.Errorf("mode %q can not be run", mode)
	}
}

// ignoreStale returns nil if err is a *review.StaleDataError.
// Stale results are neither a success nor a failure, the pull request is
// evaluated again on its next change.
func ignoreStale(err error) error {
	if review.IsStale(err) {
		zap.L().Named(loggerName).Info(
			"pull request changed during evaluation, result discarded",
			logfields.Event("evaluation_stale"),
			zap.Error(err),
		)
		return nil
	}

	return err
}

// ReviewPR reviews a pull request. Retryable errors are retried.
func (b *Bot) ReviewPR(ctx context.Context, number int) (*review.Result, error) {
	var result *review.Result

	err := b.retryer.Run(ctx, func(ctx context.Context) error {
		var err error
		result, err = b.reconciler.ReviewPR(ctx, number)
		return err
	}, []zap.Field{logfields.PullRequest(number), logfields.Mode(string(ModeReviewPR))})

	return result, err
}

// ReviewOpenPRs reviews all open pull requests that match the filter
// query.
// Unless the gate is disabled, it first waits until no run of the
// approval dismissal workflow is in progress.
// A failure to review a pull request does not abort the run, all
// failures are returned together when all pull requests were processed.
func (b *Bot) ReviewOpenPRs(ctx context.Context) error {
	var stats runStat
	var errs []error

	stats.StartTime = time.Now()
	logger := b.logger.With(logfields.Mode(string(ModeReviewPRs)))

	err := b.reviewOpenPRs(ctx, logger, &stats, &errs)
	stats.EndTime = time.Now()

	if err != nil {
		metrics.ReviewRunsInc(resultFailure)
		logger.Error(
			"reviewing open pull requests failed",
			append(stats.LogFields(), logfields.Event("review_run_failed"), zap.Error(err))...,
		)
		return err
	}

	if len(errs) > 0 {
		metrics.ReviewRunsInc(resultFailure)
		logger.Warn(
			"reviewing open pull requests finished with failures",
			append(stats.LogFields(), logfields.Event("review_run_finished_with_failures"))...,
		)
		return errors.Join(errs...)
	}

	metrics.ReviewRunsInc(resultSuccess)
	logger.Info(
		"reviewed open pull requests",
		append(stats.LogFields(), logfields.Event("review_run_finished"))...,
	)

	return nil
}

func (b *Bot) reviewOpenPRs(ctx context.Context, logger *zap.Logger, stats *runStat, errs *[]error) error {
	if b.gate != nil {
		if err := b.gate.Wait(ctx); err != nil {
			return fmt.Errorf("waiting for approval dismissal workflow runs failed: %w", err)
		}
	}

	it := b.clt.ListPullRequests(ctx, b.owner, b.repo, "open", "created", "asc")
	for {
		var pr *githubclt.PullRequest

		err := b.retryer.Run(ctx, func(context.Context) error {
			var err error
			pr, err = it.Next()
			return err
		}, []zap.Field{logfields.Mode(string(ModeReviewPRs))})
		if err != nil {
			return fmt.Errorf("listing open pull requests failed: %w", err)
		}

		if pr == nil {
			return nil
		}

		stats.Seen++
		logger := logger.With(logfields.PullRequest(pr.Number))

		match, err := b.filter.Match(ctx, pr)
		if err != nil {
			stats.Failures++
			*errs = append(*errs, fmt.Errorf("pr #%d: evaluating filter query failed: %w", pr.Number, err))
			logger.Error("evaluating filter query failed", logfields.Event("pr_filter_failed"), zap.Error(err))
			continue
		}

		if !match {
			stats.Filtered++
			logger.Debug(
				"skipping pull request, filter query does not match",
				logfields.Event("pr_filtered"),
				zap.Stringer("pr_filter_query", b.filter),
			)
			continue
		}

		result, err := b.ReviewPR(ctx, pr.Number)
		if err != nil {
			if review.IsStale(err) {
				stats.Stale++
				logger.Info(
					"pull request changed during evaluation, result discarded",
					logfields.Event("evaluation_stale"),
					zap.Error(err),
				)
				continue
			}

			if ctx.Err() != nil {
				return ctx.Err()
			}

			stats.Failures++
			*errs = append(*errs, fmt.Errorf("pr #%d: %w", pr.Number, err))
			logger.Error("reviewing pull request failed", logfields.Event("pr_review_failed"), zap.Error(err))
			continue
		}

		stats.Reviewed++
		if result.Outcome == review.OutcomeMerged {
			stats.Merged++
		}
	}
}

// NotifyMaintainers notifies the maintainers of the modules changed by
// the pull request. If author is empty, it is retrieved from GitHub.
func (b *Bot) NotifyMaintainers(ctx context.Context, number int, author string) error {
	return b.retryer.Run(ctx, func(ctx context.Context) error {
		if author == "" {
			pr, err := b.clt.PullRequest(ctx, b.owner, b.repo, number)
			if err != nil {
				return fmt.Errorf("retrieving pull request failed: %w", err)
			}
			author = pr.Author
		}

		_, err := b.notifier.Notify(ctx, number, author)
		return err
	}, []zap.Field{logfields.PullRequest(number), logfields.Mode(string(ModeNotifyMaintainers))})
}

// DismissApprovals dismisses all approvals of the pull request.
func (b *Bot) DismissApprovals(ctx context.Context, number int) error {
	return b.retryer.Run(ctx, func(ctx context.Context) error {
		_, err := review.DismissApprovals(ctx, b.clt, b.owner, b.repo, number)
		return err
	}, []zap.Field{logfields.PullRequest(number), logfields.Mode(string(ModeDismissApprovals))})
}

func commentFromEvent(ev *webhook.Event) (*commands.Comment, error) {
	if ev == nil || !ev.IsComment() {
		return nil, ErrMissingComment
	}

	return &commands.Comment{
		ID:          ev.CommentID,
		PullRequest: ev.PullRequest,
		Author:      ev.CommentAuthor,
		Body:        ev.CommentBody,
	}, nil
}

// HandleComment executes the abandon command if the comment of the
// event contains it.
func (b *Bot) HandleComment(ctx context.Context, ev *webhook.Event) error {
	c, err := commentFromEvent(ev)
	if err != nil {
		return err
	}

	return b.retryer.Run(ctx, func(ctx context.Context) error {
		_, err := b.commands.Abandon(ctx, c)
		return err
	}, ev.LogFields())
}

// SkipCheck executes the skip_check command if the comment of the event
// contains it.
func (b *Bot) SkipCheck(ctx context.Context, ev *webhook.Event) error {
	c, err := commentFromEvent(ev)
	if err != nil {
		return err
	}

	return b.retryer.Run(ctx, func(ctx context.Context) error {
		_, err := b.commands.SkipCheck(ctx, c)
		return err
	}, ev.LogFields())
}
