package models

import "time"

// ImportRecord maps a source item key to the value its import produced, such as the destination album id.
type ImportRecord struct {
	JobID     string    `json:"job_id"`
	Key       string    `json:"key"`
	Label     string    `json:"label"`
	Value     string    `json:"value"`
	CreatedAt time.Time `json:"created_at"`
}
