package monitor

import "time"

type Status struct {
	Database   bool      `json:"database"`
	Sessions   bool      `json:"sessions"`
	Buffer     bool      `json:"buffer"`
	BufferSize int       `json:"buffer_size"`
	LastCheck  time.Time `json:"last_check"`
}

// Healthy reports whether the request path dependencies are reachable.
func (s Status) Healthy() bool {
	return s.Database && s.Sessions
}
