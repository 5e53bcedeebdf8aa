package bot

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/bazelbuild/continuous-integration/bcrbot/internal/logfields"
	"github.com/bazelbuild/continuous-integration/bcrbot/internal/webhook"
)

const DefEventChannelBufferSize = 512

// EvLoop processes GitHub events and periodically reviews all open pull
// requests.
// Events and reviews are processed sequentially in a single go-routine.
type EvLoop struct {
	bot            *Bot
	ch             chan *webhook.Event
	reviewInterval time.Duration
	logger         *zap.Logger

	ctx      context.Context
	cancelFn context.CancelFunc
	stopped  chan struct{}
}

// NewEventLoop creates an event loop. If reviewInterval is >0 all open
// pull requests are reviewed in this interval, the first time when the
// loop starts.
func NewEventLoop(b *Bot, reviewInterval time.Duration) *EvLoop {
	ctx, cancelFn := context.WithCancel(context.Background())

	return &EvLoop{
		bot:            b,
		ch:             make(chan *webhook.Event, DefEventChannelBufferSize),
		reviewInterval: reviewInterval,
		logger:         zap.L().Named(loggerName).Named("event-loop"),
		ctx:            ctx,
		cancelFn:       cancelFn,
		stopped:        make(chan struct{}),
	}
}

// C returns the event channel.
// Events sent to this channel will be processed.
func (e *EvLoop) C() chan<- *webhook.Event {
	return e.ch
}

// Start processes events until Stop() is called.
func (e *EvLoop) Start() {
	defer close(e.stopped)

	e.logger.Info(
		"ready to process events",
		logfields.Event("eventloop_started"),
		zap.Duration("periodic_review_interval", e.reviewInterval),
	)

	var reviewC <-chan time.Time
	if e.reviewInterval > 0 {
		ticker := time.NewTicker(e.reviewInterval)
		defer ticker.Stop()
		reviewC = ticker.C

		e.reviewOpenPRs()
	}

	for {
		select {
		case <-e.ctx.Done():
			e.logger.Info(
				"event loop terminated",
				logfields.Event("eventloop_terminated"),
			)
			return

		case ev := <-e.ch:
			e.bot.processEvent(e.ctx, ev)

		case <-reviewC:
			e.reviewOpenPRs()
		}
	}
}

func (e *EvLoop) reviewOpenPRs() {
	// failures are logged by ReviewOpenPRs
	_ = e.bot.ReviewOpenPRs(e.ctx)
}

// Stop cancels running operations, terminates the event loop and waits
// until Start() returned.
// Events that are queued in the channel are discarded.
func (e *EvLoop) Stop() {
	e.logger.Debug("event loop terminating", logfields.Event("eventloop_terminating"))

	e.cancelFn()
	e.bot.Stop()

	<-e.stopped
}
