package organization

import "time"

// Info is the single-row organisation profile printed on voucher headers.
type Info struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	LegalName   string    `json:"legal_name"`
	NationalID  string    `json:"national_id"`
	EconomicID  string    `json:"economic_id"`
	Address     string    `json:"address"`
	Phone       string    `json:"phone"`
	FiscalStart string    `json:"fiscal_start"`
	UpdatedAt   time.Time `json:"updated_at"`
}
