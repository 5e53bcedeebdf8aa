// Package webhook receives and parses GitHub webhook events.
package webhook

import (
	"net/http"

	"github.com/google/go-github/v59/github"
	"go.uber.org/zap"

	"github.com/bazelbuild/continuous-integration/bcrbot/internal/logfields"
)

const loggerName = "github-webhook"

// Handler listens for GitHub webhook HTTP requests, validates and converts
// them to Events and forwards them to an event channel.
type Handler struct {
	logger        *zap.Logger
	webhookSecret []byte
	c             chan<- *Event
}

type Option func(*Handler)

func WithPayloadSecret(secret string) Option {
	return func(h *Handler) {
		h.webhookSecret = []byte(secret)
	}
}

func New(eventChan chan<- *Event, opts ...Option) *Handler {
	h := Handler{
		c:      eventChan,
		logger: zap.L().Named(loggerName),
	}

	for _, o := range opts {
		o(&h)
	}

	return &h
}

func (h *Handler) ServeHTTP(resp http.ResponseWriter, req *http.Request) {
	deliveryID := github.DeliveryID(req)
	hookType := github.WebHookType(req)

	logger := h.logger.With(
		logfields.EventProvider("github"),
		logfields.DeliveryID(deliveryID),
		zap.String("github.webhook_type", hookType),
	)

	payload, err := github.ValidatePayload(req, h.webhookSecret)
	if err != nil {
		logger.Info(
			"received invalid http request, payload validation failed",
			logfields.Event("github_http_request_validation_failed"),
			zap.Error(err),
		)
		http.Error(resp, err.Error(), http.StatusBadRequest)
		return
	}

	logger.Debug(
		"received http request",
		logfields.Event("github_event_received"),
		zap.ByteString("http_body", payload),
	)

	ev, err := Parse(hookType, deliveryID, payload)
	if err != nil {
		logger.Info(
			"received invalid http request, parsing failed",
			logfields.Event("github_event_parsing_failed"),
			zap.Error(err),
		)
		http.Error(resp, err.Error(), http.StatusBadRequest)
		return
	}

	select {
	case h.c <- ev:
		logger.Debug("event forwarded to channel",
			logfields.Event("github_event_forwarded"),
		)

	default:
		logger.Warn(
			"event lost, forwarding event to channel failed",
			zap.String("error", "could not forward event to channel, send would have blocked"),
			logfields.Event("github_forwarding_event_failed"),
		)

		http.Error(resp, "queue full", http.StatusServiceUnavailable)
		return
	}
}
