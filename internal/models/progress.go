package models

import "time"

// BatchProgress tracks the progress of a bounded fan-out
type BatchProgress struct {
	TotalItems     int       `json:"total_items"`
	ProcessedItems int       `json:"processed_items"`
	FailedItems    int       `json:"failed_items"`
	InFlight       int       `json:"in_flight"`
	StartTime      time.Time `json:"start_time"`
	LastUpdateTime time.Time `json:"last_update_time"`
	Errors         []error   `json:"-"`
}

// Done reports whether every item has completed, successfully or not
func (p BatchProgress) Done() bool {
	return p.ProcessedItems+p.FailedItems >= p.TotalItems
}
