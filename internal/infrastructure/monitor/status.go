package monitor

import "time"

type Status struct {
	Services  map[string]bool `json:"services"`
	LastCheck time.Time       `json:"last_check"`
}

// Healthy reports whether every checked dependency answered.
func (s Status) Healthy() bool {
	if len(s.Services) == 0 {
		return false
	}
	for _, ok := range s.Services {
		if !ok {
			return false
		}
	}
	return true
}
