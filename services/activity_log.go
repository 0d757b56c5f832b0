package services

import (
	"context"
	"log"
	"time"

	"cardifyAPI/internal/store"
	"cardifyAPI/internal/types/applog"
)

const (
	ActorSystem = "System"
)

// ActivityLog is the global audit trail, capped at applog.MaxEntries.
type ActivityLog struct {
	logs     *store.Collection[applog.AppLog]
	notifier Notifier
}

func NewActivityLog(logs *store.Collection[applog.AppLog], notifier Notifier) *ActivityLog {
	return &ActivityLog{logs: logs, notifier: notifier}
}

// Add records an entry. A failed write is logged and otherwise ignored so
// it never fails the mutation being audited.
func (a *ActivityLog) Add(ctx context.Context, actor, message string) {
	entry := applog.AppLog{
		ID:        store.NewID("log"),
		Timestamp: time.Now(),
		Actor:     actor,
		Message:   message,
	}
	if err := a.logs.Insert(ctx, entry); err != nil {
		log.Printf("Failed to write to activity log: %v", err)
	}
}

func (a *ActivityLog) List() []applog.AppLog {
	return a.logs.List()
}

func (a *ActivityLog) Clear(ctx context.Context) error {
	if err := a.logs.Clear(ctx); err != nil {
		return err
	}
	a.notifier.Notify(ctx, success("All logs have been cleared."))
	return nil
}
