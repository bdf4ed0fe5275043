package handlers

import (
	"context"
	"log/slog"

	"github.com/crucial707/landscape-lab/internal/events"
	"github.com/crucial707/landscape-lab/internal/repo"
)

// Auditor records committed changes in the audit log and publishes them as
// events. Failures are logged and never fail the request. A nil *Auditor or
// nil fields are allowed.
type Auditor struct {
	Repo   *repo.AuditRepo
	Events events.Publisher
}

func (a *Auditor) Record(ctx context.Context, actorID int, action, resourceType string, resourceID int, details string) {
	if a == nil {
		return
	}
	if a.Repo != nil {
		if err := a.Repo.Log(ctx, actorID, action, resourceType, resourceID, details); err != nil {
			slog.Warn("audit log write failed", "action", action, "resource_type", resourceType, "resource_id", resourceID, "error", err)
		}
	}
	if a.Events != nil {
		if err := a.Events.Publish(ctx, events.New(resourceType, action, resourceID, actorID)); err != nil {
			slog.Warn("event publish failed", "action", action, "resource_type", resourceType, "resource_id", resourceID, "error", err)
		}
	}
}
