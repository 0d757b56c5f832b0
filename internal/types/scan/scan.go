package scan

import (
	"time"

	"cardifyAPI/internal/types/ticket"
)

type State string

const (
	StateScanning State = "scanning"
	StateValid    State = "valid"
	StateError    State = "error"
	StateClosed   State = "closed"
)

type Snapshot struct {
	SessionID string          `json:"sessionId"`
	State     State           `json:"state"`
	Message   string          `json:"message,omitempty"`
	Ticket    *ticket.Summary `json:"ticket,omitempty"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

type FrameRequest struct {
	Text string `json:"text"`
}

type LogRequest struct {
	Message string `json:"message" validate:"required"`
}

type CameraErrorRequest struct {
	Message string `json:"message"`
}

// StreamMessage is what a scanner client sends over the live stream.
type StreamMessage struct {
	Action  string `json:"action"`
	Text    string `json:"text,omitempty"`
	Message string `json:"message,omitempty"`
}

const (
	ActionFrame       = "frame"
	ActionReset       = "reset"
	ActionLog         = "log"
	ActionCameraError = "camera_error"
)
