package events

import "time"

type RunCompletedEvent struct {
	RunID          string    `json:"run_id"`
	Name           string    `json:"name,omitempty"`
	TopAlternative string    `json:"top_alternative"`
	Alternatives   int       `json:"alternatives"`
	Criteria       int       `json:"criteria"`
	StabilityIndex *float64  `json:"stability_index,omitempty"`
	DurationMs     int64     `json:"duration_ms"`
	Timestamp      time.Time `json:"timestamp"`
}

type RunFailedEvent struct {
	RunID     string    `json:"run_id"`
	Name      string    `json:"name,omitempty"`
	Kind      string    `json:"kind"`
	Error     string    `json:"error"`
	Timestamp time.Time `json:"timestamp"`
}

type ConsistencyWarningEvent struct {
	RunID     string  `json:"run_id"`
	Group     string  `json:"group"`
	CR        float64 `json:"cr"`
	Threshold float64 `json:"threshold"`
}

type JobEvent struct {
	JobID     string    `json:"job_id"`
	Kind      string    `json:"kind"`
	Status    string    `json:"status"`
	Done      int       `json:"done,omitempty"`
	Total     int       `json:"total,omitempty"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
