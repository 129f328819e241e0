package events

import "time"

// RunCompleted is published after every conversion run.
type RunCompleted struct {
	RunID    string    `json:"run_id"`
	Time     time.Time `json:"time"`
	Status   string    `json:"status"`
	Sessions int       `json:"sessions"`
	// Written lists the destinations that received the payload.
	Written []string `json:"written,omitempty"`
	Error   string   `json:"error,omitempty"`
}
