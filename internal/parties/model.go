package parties

import "time"

// Party is a counterparty record. A party may optionally be linked to a
// console user, in which case the party title names that user on printed
// documents.
type Party struct {
	ID         int64     `json:"id"`
	Code       string    `json:"code"`
	Title      string    `json:"title"`
	NationalID string    `json:"national_id"`
	Phone      string    `json:"phone"`
	Address    string    `json:"address"`
	UserID     *int64    `json:"user_id,omitempty"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
