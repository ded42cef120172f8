package structures

import "time"

// Structure describes an account coding structure: how the chart of accounts
// is segmented. Pattern holds dash separated segment lengths, e.g. "1-2-2-4".
type Structure struct {
	ID        int64     `json:"id"`
	Code      string    `json:"code"`
	Title     string    `json:"title"`
	Pattern   string    `json:"pattern"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
