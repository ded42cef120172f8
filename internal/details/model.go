package details

import (
	"errors"
	"time"
)

// Kind separates the predefined detail dimensions from user-created ones.
type Kind string

const (
	KindSystem Kind = "system"
	KindUser   Kind = "user"
)

// DetailType is a category of detail dimension, such as a project or cost
// center axis. System types are seeded by migration and cannot be edited
// or deleted.
type DetailType struct {
	ID        int64     `json:"id"`
	Code      string    `json:"code"`
	Title     string    `json:"title"`
	Kind      Kind      `json:"kind"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (t DetailType) Protected() bool {
	return t.Kind == KindSystem
}

// DetailInstance is a concrete member of a DetailType. DetailCode starts
// nil and moves to a non-empty value exactly once; only coded instances
// may be referenced from voucher items.
type DetailInstance struct {
	ID         int64     `json:"id"`
	TypeID     int64     `json:"type_id"`
	EntityCode string    `json:"entity_code"`
	Title      string    `json:"title"`
	DetailCode *string   `json:"detail_code"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Assigned reports whether the instance has a detail code.
func (i DetailInstance) Assigned() bool {
	return i.DetailCode != nil && *i.DetailCode != ""
}

// CanReference reports whether the instance may appear in postings.
func (i DetailInstance) CanReference() bool {
	return i.Assigned()
}

var (
	// ErrEmptyCode rejects an assignment with a blank code.
	ErrEmptyCode = errors.New("detail code must not be empty")
	// ErrAlreadyAssigned rejects re-assignment of a coded instance.
	ErrAlreadyAssigned = errors.New("detail code already assigned")
)
