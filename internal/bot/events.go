package bot

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/bazelbuild/continuous-integration/bcrbot/internal/logfields"
	"github.com/bazelbuild/continuous-integration/bcrbot/internal/webhook"
)

// ErrEventIgnored is returned by HandleEvent for events that do not
// trigger any operation.
var ErrEventIgnored = errors.New("event ignored")

// HandleEvent runs the operations that are triggered by a GitHub event:
//   - opened, reopened and ready_for_review pull requests: notify
//     maintainers and review,
//   - pushes to pull requests: dismiss approvals and notify maintainers,
//   - submitted or dismissed reviews: review,
//   - created pull request comments: run commands.
//
// Events of other repositories and other event types are ignored,
// ErrEventIgnored is returned for them.
func (b *Bot) HandleEvent(ctx context.Context, ev *webhook.Event) error {
	if ev.Repository != "" && (ev.Repository != b.repo || ev.RepositoryOwner != b.owner) {
		return ErrEventIgnored
	}

	switch ev.Type {
	case webhook.EventTypePullRequest:
		switch ev.Action {
		case "opened", "reopened", "ready_for_review":
			if err := ignoreStale(b.NotifyMaintainers(ctx, ev.PullRequest, ev.Author)); err != nil {
				return err
			}

			_, err := b.ReviewPR(ctx, ev.PullRequest)
			return ignoreStale(err)

		case "synchronize":
			if err := b.DismissApprovals(ctx, ev.PullRequest); err != nil {
				return err
			}

			return ignoreStale(b.NotifyMaintainers(ctx, ev.PullRequest, ev.Author))
		}

	case webhook.EventTypePullRequestReview:
		switch ev.Action {
		case "submitted", "dismissed":
			_, err := b.ReviewPR(ctx, ev.PullRequest)
			return ignoreStale(err)
		}

	case webhook.EventTypeIssueComment:
		if !ev.IsComment() {
			return ErrEventIgnored
		}

		c, err := commentFromEvent(ev)
		if err != nil {
			return err
		}

		var handled bool
		err = b.retryer.Run(ctx, func(ctx context.Context) error {
			var err error
			handled, err = b.commands.Handle(ctx, c)
			return ignoreStale(err)
		}, ev.LogFields())
		if err != nil {
			return err
		}

		if !handled {
			return ErrEventIgnored
		}

		return nil
	}

	return ErrEventIgnored
}

// processEvent runs HandleEvent, logs the result and records it as metric.
func (b *Bot) processEvent(ctx context.Context, ev *webhook.Event) {
	logger := b.logger.With(ev.LogFields()...).With(
		zap.String("github.event_type", ev.Type),
		zap.String("github.event_action", ev.Action),
	)

	logger.Debug("processing event", logfields.Event("event_processing_started"))

	err := b.HandleEvent(ctx, ev)
	switch {
	case err == nil:
		metrics.ProcessedEventsInc(ev.Type, resultSuccess)
		logger.Info("event processed", logfields.Event("event_processed"))

	case errors.Is(err, ErrEventIgnored):
		metrics.ProcessedEventsInc(ev.Type, resultIgnored)
		logger.Debug("event ignored", logfields.Event("event_ignored"))

	default:
		metrics.ProcessedEventsInc(ev.Type, resultFailure)
		logger.Error(
			"processing event failed",
			logfields.Event("event_processing_failed"),
			zap.Error(err),
		)
	}
}
