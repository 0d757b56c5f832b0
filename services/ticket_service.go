package services

import (
	"context"
	"fmt"
	"time"

	"cardifyAPI/internal/store"
	"cardifyAPI/internal/types/event"
	"cardifyAPI/internal/types/ticket"
)

type TicketService struct {
	tickets  *store.Collection[ticket.Ticket]
	events   *store.Collection[event.Event]
	activity *ActivityLog
	notifier Notifier
}

func NewTicketService(stores *Stores, activity *ActivityLog, notifier Notifier) *TicketService {
	return &TicketService{
		tickets:  stores.Tickets,
		events:   stores.Events,
		activity: activity,
		notifier: notifier,
	}
}

func (s *TicketService) List() []ticket.Ticket {
	return s.tickets.List()
}

func (s *TicketService) Get(id string) (ticket.Ticket, bool) {
	return s.tickets.Get(id)
}

// ListByEvent returns the tickets bound to eventID. It reads the tickets'
// own eventId, so tickets of a deleted event are still found.
func (s *TicketService) ListByEvent(eventID string) []ticket.Ticket {
	return s.tickets.Filter(func(t *ticket.Ticket) bool {
		return t.EventID == eventID
	})
}

// Create adds a ticket. When it is bound to a known event, the event's
// name and date are copied onto the ticket unless already supplied.
func (s *TicketService) Create(ctx context.Context, actor string, t ticket.Ticket) (ticket.Ticket, error) {
	if t.EventID != "" {
		if e, ok := s.events.Get(t.EventID); ok {
			if t.EventName == "" {
				t.EventName = e.Name
			}
			if t.EventDate.IsZero() {
				t.EventDate = e.Date
			}
		}
	}

	t.ID = store.NewID("tkt")
	t.Tags = []string{}
	t.ScanLog = []ticket.ScanLogEntry{}
	if t.Color == "" {
		t.Color = ticket.DefaultColor
	}
	if t.CreatedBy == "" {
		t.CreatedBy = actor
	}

	if err := store.Validate(t); err != nil {
		return ticket.Ticket{}, err
	}
	if err := s.tickets.Insert(ctx, t); err != nil {
		return ticket.Ticket{}, fmt.Errorf("failed to create ticket: %w", err)
	}

	logActor := t.CreatedBy
	if logActor == "" {
		logActor = ActorSystem
	}

	mutated("tickets", "create", 1)
	s.notifier.Notify(ctx, success("Ticket created successfully."))
	s.activity.Add(ctx, logActor, fmt.Sprintf("Created ticket for %s in event \"%s\"", t.OwnerName, t.EventName))
	return t, nil
}

func (s *TicketService) Update(ctx context.Context, actor, id string, patch ticket.Patch) (ticket.Ticket, bool, error) {
	current, ok := s.tickets.Get(id)
	if !ok {
		skipped("tickets", "update", id)
		return ticket.Ticket{}, false, nil
	}
	patch.Apply(&current)
	if err := store.Validate(current); err != nil {
		return ticket.Ticket{}, false, err
	}

	updated, ok, err := s.tickets.Update(ctx, id, patch.Apply)
	if err != nil {
		return ticket.Ticket{}, false, fmt.Errorf("failed to update ticket: %w", err)
	}
	if !ok {
		skipped("tickets", "update", id)
		return ticket.Ticket{}, false, nil
	}

	mutated("tickets", "update", 1)
	s.notifier.Notify(ctx, success("Ticket updated successfully."))
	s.activity.Add(ctx, actor, fmt.Sprintf("Updated ticket for %s", updated.OwnerName))
	return updated, true, nil
}

func (s *TicketService) Delete(ctx context.Context, actor, id string) (bool, error) {
	removed, err := s.tickets.DeleteMany(ctx, []string{id})
	if err != nil {
		return false, fmt.Errorf("failed to delete ticket: %w", err)
	}
	if len(removed) == 0 {
		skipped("tickets", "delete", id)
		return false, nil
	}

	mutated("tickets", "delete", 1)
	s.notifier.Notify(ctx, success("Ticket deleted successfully."))
	s.activity.Add(ctx, actor, fmt.Sprintf("Deleted ticket for %s", removed[0].OwnerName))
	return true, nil
}

func (s *TicketService) DeleteMany(ctx context.Context, actor string, ids []string) (int, error) {
	removed, err := s.tickets.DeleteMany(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("failed to delete tickets: %w", err)
	}
	if len(removed) == 0 {
		skipped("tickets", "delete_many", ids...)
		return 0, nil
	}

	mutated("tickets", "delete", len(removed))
	s.notifier.Notify(ctx, success(fmt.Sprintf("%d ticket(s) deleted successfully.", len(removed))))
	s.activity.Add(ctx, actor, fmt.Sprintf("Deleted %d ticket(s)", len(removed)))
	return len(removed), nil
}

func (s *TicketService) AddTagsToMany(ctx context.Context, actor string, ids, tags []string) (int, error) {
	updated, err := s.tickets.UpdateMany(ctx, ids, func(t *ticket.Ticket) {
		t.Tags = store.MergeTags(t.Tags, tags)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to tag tickets: %w", err)
	}
	if len(updated) == 0 {
		skipped("tickets", "add_tags", ids...)
		return 0, nil
	}

	mutated("tickets", "add_tags", len(updated))
	s.notifier.Notify(ctx, success(fmt.Sprintf("Tags added to %d ticket(s).", len(updated))))
	s.activity.Add(ctx, actor, fmt.Sprintf("Added tags to %d ticket(s)", len(updated)))
	return len(updated), nil
}

// AddScanLogEntry prepends a check-in note to the ticket's own scan log.
// The activity log gets a separate entry attributed to the system.
func (s *TicketService) AddScanLogEntry(ctx context.Context, ticketID, message string) (ticket.ScanLogEntry, bool, error) {
	if err := store.Validate(ticket.ScanLogRequest{Message: message}); err != nil {
		return ticket.ScanLogEntry{}, false, err
	}

	entry := ticket.ScanLogEntry{
		ID:        store.NewID("log"),
		Timestamp: time.Now(),
		Message:   message,
	}

	updated, ok, err := s.tickets.Update(ctx, ticketID, func(t *ticket.Ticket) {
		t.ScanLog = append([]ticket.ScanLogEntry{entry}, t.ScanLog...)
	})
	if err != nil {
		return ticket.ScanLogEntry{}, false, fmt.Errorf("failed to add scan log entry: %w", err)
	}
	if !ok {
		skipped("tickets", "scan_log", ticketID)
		return ticket.ScanLogEntry{}, false, nil
	}

	mutated("tickets", "scan_log", 1)
	s.notifier.Notify(ctx, notificationLogEntry(message))
	s.activity.Add(ctx, ActorSystem, fmt.Sprintf("Added scan log to ticket for %s: \"%s\"", updated.OwnerName, message))
	return entry, true, nil
}
