package rbac

import "time"

// Role represents a high-level permission grouping.
type Role struct {
	ID          int64
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Permission represents an atomic capability, e.g. "ledgers.edit".
type Permission struct {
	ID          int64
	Name        string
	Description string
}
