package doctypes

import "time"

// Kind tags whether a document type is predefined or user created.
type Kind string

const (
	// KindSystem marks predefined types; they cannot be edited or deleted.
	KindSystem Kind = "system"
	// KindUser marks ad hoc types, fully editable.
	KindUser Kind = "user"
)

// DocType categorises accounting documents (e.g. opening, ordinary, closing).
type DocType struct {
	ID        int64     `json:"id"`
	Code      string    `json:"code"`
	Title     string    `json:"title"`
	Kind      Kind      `json:"kind"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Protected reports whether the record refuses edits and deletes.
func (d DocType) Protected() bool {
	return d.Kind == KindSystem
}
