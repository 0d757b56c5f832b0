package applog

import "time"

// MaxEntries caps the activity log; the oldest entries are dropped first.
const MaxEntries = 200

type AppLog struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Actor     string    `json:"actor"`
	Message   string    `json:"message"`
}
