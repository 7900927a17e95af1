// Package handler provides the HTTP handlers for webhook intake.
package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/go-github/v73/github"

	"github.com/smart-review/smart-review/internal/core"
	"github.com/smart-review/smart-review/internal/jobs"
)

// WebhookHandler verifies and translates GitHub webhooks into review jobs.
type WebhookHandler struct {
	webhookSecret string
	dispatcher    core.JobDispatcher
	logger        *slog.Logger
}

// NewWebhookHandler creates a webhook handler.
func NewWebhookHandler(webhookSecret string, dispatcher core.JobDispatcher, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{
		webhookSecret: webhookSecret,
		dispatcher:    dispatcher,
		logger:        logger,
	}
}

// Handle processes GitHub webhook requests. Only issue-comment events carry
// the "/review" command; everything else is acknowledged and ignored.
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	payload, err := github.ValidatePayload(r, []byte(h.webhookSecret))
	if err != nil {
		h.logger.Error("invalid webhook payload signature", "error", err)
		http.Error(w, "Invalid signature", http.StatusUnauthorized)
		return
	}

	event, err := github.ParseWebHook(github.WebHookType(r), payload)
	if err != nil {
		h.logger.Error("could not parse webhook", "error", err)
		http.Error(w, "Could not parse webhook", http.StatusBadRequest)
		return
	}

	switch e := event.(type) {
	case *github.IssueCommentEvent:
		h.handleIssueComment(r.Context(), w, e)
	default:
		h.logger.Debug("ignoring unhandled webhook event type", "type", github.WebHookType(r))
		_, _ = fmt.Fprint(w, "Event type not handled")
	}
}

func (h *WebhookHandler) handleIssueComment(ctx context.Context, w http.ResponseWriter, event *github.IssueCommentEvent) {
	reviewEvent, err := core.EventFromIssueComment(event)
	if err != nil {
		h.logger.Debug("ignoring issue comment", "reason", err.Error(), "repo", event.GetRepo().GetFullName())
		_, _ = fmt.Fprint(w, "Comment ignored")
		return
	}

	if err := h.dispatcher.Dispatch(ctx, reviewEvent); err != nil {
		h.logger.Error("failed to dispatch review job", "error", err, "repo", reviewEvent.RepoFullName)
		if errors.Is(err, jobs.ErrQueueFull) {
			http.Error(w, "Review queue is full, try again later", http.StatusServiceUnavailable)
			return
		}
		http.Error(w, "Failed to start review job", http.StatusInternalServerError)
		return
	}

	h.logger.Info("review job dispatched", "repo", reviewEvent.RepoFullName, "pr", reviewEvent.PRNumber)
	w.WriteHeader(http.StatusAccepted)
	_, _ = fmt.Fprint(w, "Review job accepted")
}
