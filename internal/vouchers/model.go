package vouchers

import "time"

// Status follows the document workflow. Vouchers are assembled read-only
// here, posting and validation happen upstream.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusTemporary Status = "temporary"
	StatusReviewed  Status = "reviewed"
	StatusFinal     Status = "final"
)

// Voucher is a document header. TotalDebit and TotalCredit are stored
// amounts, reproduced verbatim on output and never recomputed from items.
type Voucher struct {
	ID               int64     `json:"id"`
	LedgerID         int64     `json:"ledger_id"`
	BranchID         *int64    `json:"branch_id,omitempty"`
	VoucherDate      time.Time `json:"voucher_date"`
	VoucherNumber    string    `json:"voucher_number"`
	DailyNumber      string    `json:"daily_number"`
	CrossReference   string    `json:"cross_reference"`
	SubsidiaryNumber string    `json:"subsidiary_number"`
	Description      string    `json:"description"`
	Status           Status    `json:"status"`
	TotalDebit       int64     `json:"total_debit"`
	TotalCredit      int64     `json:"total_credit"`
	CreatedBy        int64     `json:"created_by"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// ItemDetails is the jsonb payload attached to a line item. Keys of
// SelectedDetails are detail type ids, values are detail instance ids.
type ItemDetails struct {
	SelectedDetails map[int64]int64 `json:"selected_details"`
	CurrencyCode    string          `json:"currency_code"`
}

// VoucherItem is one debit/credit line of a voucher.
type VoucherItem struct {
	ID             int64       `json:"id"`
	VoucherID      int64       `json:"voucher_id"`
	RowNumber      int         `json:"row_number"`
	AccountID      int64       `json:"account_id"`
	Description    string      `json:"description"`
	TrackingNumber string      `json:"tracking_number,omitempty"`
	Quantity       *float64    `json:"quantity,omitempty"`
	Debit          int64       `json:"debit"`
	Credit         int64       `json:"credit"`
	Details        ItemDetails `json:"details"`
}

// AccountRef is the slice of an account row the assembler needs.
type AccountRef struct {
	Code  string
	Title string
}

// InstanceRef is the slice of a detail instance the assembler needs.
type InstanceRef struct {
	Title      string
	DetailCode string
}

// DocumentRow is one fully resolved, print-ready line.
type DocumentRow struct {
	RowNumber      int    `json:"row_number"`
	AccountCode    string `json:"account_code"`
	AccountTitle   string `json:"account_title"`
	Description    string `json:"description"`
	TrackingNumber string `json:"tracking_number,omitempty"`
	DetailLabels   string `json:"detail_labels"`
	CurrencyTitle  string `json:"currency_title"`
	Debit          string `json:"debit"`
	Credit         string `json:"credit"`
}

// Document is the assembled print view of one voucher.
type Document struct {
	VoucherID        int64         `json:"voucher_id"`
	VoucherNumber    string        `json:"voucher_number"`
	VoucherDate      time.Time     `json:"voucher_date"`
	DailyNumber      string        `json:"daily_number"`
	CrossReference   string        `json:"cross_reference"`
	SubsidiaryNumber string        `json:"subsidiary_number"`
	Description      string        `json:"description"`
	Status           Status        `json:"status"`
	LedgerTitle      string        `json:"ledger_title"`
	BranchTitle      string        `json:"branch_title,omitempty"`
	CreatorName      string        `json:"creator_name"`
	Rows             []DocumentRow `json:"rows"`
	TotalDebit       string        `json:"total_debit"`
	TotalCredit      string        `json:"total_credit"`
	TotalsMismatch   bool          `json:"totals_mismatch"`
	Warnings         []string      `json:"warnings,omitempty"`
}
