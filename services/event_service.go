package services

import (
	"context"
	"fmt"

	"cardifyAPI/internal/store"
	"cardifyAPI/internal/types/event"
)

// EventService never cascades to tickets; a deleted event leaves its
// tickets in place with their copied name and date.
type EventService struct {
	events   *store.Collection[event.Event]
	activity *ActivityLog
	notifier Notifier
}

func NewEventService(stores *Stores, activity *ActivityLog, notifier Notifier) *EventService {
	return &EventService{events: stores.Events, activity: activity, notifier: notifier}
}

func (s *EventService) List() []event.Event {
	return s.events.List()
}

func (s *EventService) Get(id string) (event.Event, bool) {
	return s.events.Get(id)
}

func (s *EventService) Create(ctx context.Context, actor string, e event.Event) (event.Event, error) {
	e.ID = store.NewID("evt")
	e.Tags = orEmpty(e.Tags)

	if err := store.Validate(e); err != nil {
		return event.Event{}, err
	}
	if err := s.events.Insert(ctx, e); err != nil {
		return event.Event{}, fmt.Errorf("failed to create event: %w", err)
	}

	mutated("events", "create", 1)
	s.notifier.Notify(ctx, success("Event created successfully."))
	s.activity.Add(ctx, actor, fmt.Sprintf("Created event: \"%s\"", e.Name))
	return e, nil
}

func (s *EventService) Update(ctx context.Context, actor, id string, patch event.Patch) (event.Event, bool, error) {
	current, ok := s.events.Get(id)
	if !ok {
		skipped("events", "update", id)
		return event.Event{}, false, nil
	}
	before := current.Name
	patch.Apply(&current)
	if err := store.Validate(current); err != nil {
		return event.Event{}, false, err
	}

	updated, ok, err := s.events.Update(ctx, id, patch.Apply)
	if err != nil {
		return event.Event{}, false, fmt.Errorf("failed to update event: %w", err)
	}
	if !ok {
		skipped("events", "update", id)
		return event.Event{}, false, nil
	}

	mutated("events", "update", 1)
	s.notifier.Notify(ctx, success("Event updated successfully."))
	s.activity.Add(ctx, actor, fmt.Sprintf("Updated event: \"%s\"", before))
	return updated, true, nil
}

func (s *EventService) Delete(ctx context.Context, actor, id string) (bool, error) {
	removed, err := s.events.DeleteMany(ctx, []string{id})
	if err != nil {
		return false, fmt.Errorf("failed to delete event: %w", err)
	}
	if len(removed) == 0 {
		skipped("events", "delete", id)
		return false, nil
	}

	mutated("events", "delete", 1)
	s.notifier.Notify(ctx, success("Event deleted successfully."))
	s.activity.Add(ctx, actor, fmt.Sprintf("Deleted event: \"%s\"", removed[0].Name))
	return true, nil
}

func (s *EventService) DeleteMany(ctx context.Context, actor string, ids []string) (int, error) {
	removed, err := s.events.DeleteMany(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("failed to delete events: %w", err)
	}
	if len(removed) == 0 {
		skipped("events", "delete_many", ids...)
		return 0, nil
	}

	mutated("events", "delete", len(removed))
	s.notifier.Notify(ctx, success(fmt.Sprintf("%d event(s) deleted successfully.", len(removed))))
	s.activity.Add(ctx, actor, fmt.Sprintf("Deleted %d event(s)", len(removed)))
	return len(removed), nil
}
