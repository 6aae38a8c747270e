package monitor

import "time"

type Status struct {
	Healthy   bool            `json:"healthy"`
	Backends  map[string]bool `json:"backends"`
	LastCheck time.Time       `json:"last_check"`
}
