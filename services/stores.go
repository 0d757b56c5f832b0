package services

import (
	"context"
	"fmt"

	"cardifyAPI/internal/broadcast"
	"cardifyAPI/internal/seed"
	"cardifyAPI/internal/storage"
	"cardifyAPI/internal/store"
	"cardifyAPI/internal/types/applog"
	"cardifyAPI/internal/types/event"
	"cardifyAPI/internal/types/member"
	"cardifyAPI/internal/types/ticket"
	"cardifyAPI/internal/types/vcard"
)

// Stores is built once at startup and shared by every service.
type Stores struct {
	VCards  *store.Collection[vcard.VCard]
	Tickets *store.Collection[ticket.Ticket]
	Events  *store.Collection[event.Event]
	Members *store.Collection[member.ClubMember]
	Logs    *store.Collection[applog.AppLog]
}

type StoreOptions struct {
	Namespace   string
	Storage     storage.Storage
	Broadcaster broadcast.Broadcaster
	Migrator    store.Upgrader
	Fixtures    *seed.Fixtures
}

func OpenStores(ctx context.Context, opts StoreOptions) (*Stores, error) {
	fixtures := opts.Fixtures
	if fixtures == nil {
		fixtures = seed.Empty()
	}

	s := &Stores{
		VCards: store.NewCollection(store.Options[vcard.VCard]{
			Name: "vcards", Namespace: opts.Namespace, Storage: opts.Storage,
			ID:   func(v *vcard.VCard) string { return v.ID },
			Seed: fixtures.VCards, Migrator: opts.Migrator, Broadcaster: opts.Broadcaster,
		}),
		Tickets: store.NewCollection(store.Options[ticket.Ticket]{
			Name: "tickets", Namespace: opts.Namespace, Storage: opts.Storage,
			ID:   func(t *ticket.Ticket) string { return t.ID },
			Seed: fixtures.Tickets, Migrator: opts.Migrator, Broadcaster: opts.Broadcaster,
		}),
		Events: store.NewCollection(store.Options[event.Event]{
			Name: "events", Namespace: opts.Namespace, Storage: opts.Storage,
			ID:   func(e *event.Event) string { return e.ID },
			Seed: fixtures.Events, Migrator: opts.Migrator, Broadcaster: opts.Broadcaster,
		}),
		Members: store.NewCollection(store.Options[member.ClubMember]{
			Name: "members", Namespace: opts.Namespace, Storage: opts.Storage,
			ID:   func(m *member.ClubMember) string { return m.ID },
			Seed: fixtures.Members, Migrator: opts.Migrator, Broadcaster: opts.Broadcaster,
		}),
		Logs: store.NewCollection(store.Options[applog.AppLog]{
			Name: "logs", Namespace: opts.Namespace, Storage: opts.Storage,
			ID:          func(l *applog.AppLog) string { return l.ID },
			Cap:         applog.MaxEntries,
			ReadThrough: true,
			Migrator:    opts.Migrator, Broadcaster: opts.Broadcaster,
		}),
	}

	loaders := []struct {
		name string
		load func(context.Context) error
	}{
		{"vcards", s.VCards.Load},
		{"tickets", s.Tickets.Load},
		{"events", s.Events.Load},
		{"members", s.Members.Load},
		{"logs", s.Logs.Load},
	}
	for _, l := range loaders {
		if err := l.load(ctx); err != nil {
			s.Close()
			return nil, fmt.Errorf("failed to load %s: %w", l.name, err)
		}
	}
	return s, nil
}

// Close stops following external changes.
func (s *Stores) Close() {
	s.VCards.Close()
	s.Tickets.Close()
	s.Events.Close()
	s.Members.Close()
	s.Logs.Close()
}
