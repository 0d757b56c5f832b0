package services

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"cardifyAPI/internal/scanner"
	"cardifyAPI/internal/types/scan"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 4096
)

// StreamClient is a scanner client connected over a websocket. Decoded
// frames it sends become the session's frame source; state snapshots go
// back the other way.
type StreamClient struct {
	conn   *websocket.Conn
	send   chan []byte
	frames chan scanner.Frame
	done   chan struct{}
	once   sync.Once
}

func NewStreamClient(conn *websocket.Conn) *StreamClient {
	return &StreamClient{
		conn:   conn,
		send:   make(chan []byte, 256),
		frames: make(chan scanner.Frame, 16),
		done:   make(chan struct{}),
	}
}

func (c *StreamClient) Frames() <-chan scanner.Frame { return c.frames }

// Stop asks the write pump to close the connection.
func (c *StreamClient) Stop() error {
	c.once.Do(func() { close(c.done) })
	return nil
}

func (c *StreamClient) sendSnapshot(snap scan.Snapshot) {
	data, err := json.Marshal(snap)
	if err != nil {
		log.Printf("[scan %s] failed to encode snapshot: %v", snap.SessionID, err)
		return
	}
	select {
	case c.send <- data:
	case <-c.done:
	default:
		log.Printf("[scan %s] stream client too slow, dropping it", snap.SessionID)
		c.Stop()
	}
}

// ServeStream runs a stream client against session id until the client
// disconnects or the session closes. Disconnecting closes the session.
func (s *ScanService) ServeStream(ctx context.Context, id string, conn *websocket.Conn) error {
	sess, ok := s.lookup(id)
	if !ok {
		conn.Close()
		return ErrScanSessionNotFound
	}

	client := NewStreamClient(conn)
	sess.addClient(client)
	defer sess.removeClient(client)

	client.sendSnapshot(sess.Snapshot())
	go client.writePump()
	go client.readPump(ctx, s, id)

	err := scanner.Run(ctx, sess.Session, client, func(snap scan.Snapshot, outcome scanner.Outcome) {
		s.afterFrame(ctx, sess, snap, outcome)
	})
	s.Close(id)
	client.Stop()

	if errors.Is(err, scanner.ErrSessionClosed) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (c *StreamClient) readPump(ctx context.Context, svc *ScanService, sessionID string) {
	defer func() {
		close(c.frames)
		c.Stop()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[scan %s] stream read error: %v", sessionID, err)
			}
			return
		}

		var msg scan.StreamMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			log.Printf("[scan %s] ignoring malformed stream message: %v", sessionID, err)
			continue
		}

		switch msg.Action {
		case scan.ActionFrame:
			select {
			case c.frames <- scanner.Frame{Text: msg.Text}:
			case <-c.done:
				return
			}
		case scan.ActionReset:
			if _, err := svc.Reset(ctx, sessionID); err != nil {
				log.Printf("[scan %s] reset failed: %v", sessionID, err)
			}
		case scan.ActionLog:
			if _, err := svc.AddLog(ctx, sessionID, msg.Message); err != nil {
				log.Printf("[scan %s] add log failed: %v", sessionID, err)
			}
		case scan.ActionCameraError:
			if _, err := svc.CameraError(ctx, sessionID, msg.Message); err != nil {
				log.Printf("[scan %s] camera error report failed: %v", sessionID, err)
			}
		default:
			log.Printf("[scan %s] unknown stream action %q", sessionID, msg.Action)
		}
	}
}

func (c *StreamClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-c.done:
			// flush what is queued, then say goodbye
			for {
				select {
				case message := <-c.send:
					c.conn.SetWriteDeadline(time.Now().Add(writeWait))
					if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
						return
					}
					continue
				default:
				}
				break
			}
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
