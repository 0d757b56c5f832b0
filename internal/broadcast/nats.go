package broadcast

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/nats-io/nats.go"
)

const DefaultSubject = "cardify.storage.changed"

// NATS shares changes between processes that persist to the same backend.
type NATS struct {
	conn    *nats.Conn
	subject string
}

func NewNATS(url, subject string) (*NATS, error) {
	conn, err := nats.Connect(url, nats.Name("cardify-api"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	if subject == "" {
		subject = DefaultSubject
	}
	return &NATS{conn: conn, subject: subject}, nil
}

func (n *NATS) Publish(_ context.Context, change Change) error {
	payload, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("failed to marshal change: %w", err)
	}
	if err := n.conn.Publish(n.subject, payload); err != nil {
		return fmt.Errorf("failed to publish change for %s: %w", change.Key, err)
	}
	return nil
}

func (n *NATS) Subscribe(fn func(Change)) (func(), error) {
	sub, err := n.conn.Subscribe(n.subject, func(msg *nats.Msg) {
		var change Change
		if err := json.Unmarshal(msg.Data, &change); err != nil {
			log.Printf("broadcast: dropping malformed change message: %v", err)
			return
		}
		fn(change)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", n.subject, err)
	}

	return func() {
		if err := sub.Unsubscribe(); err != nil {
			log.Printf("broadcast: unsubscribe failed: %v", err)
		}
	}, nil
}

func (n *NATS) Close() error {
	n.conn.Close()
	return nil
}
