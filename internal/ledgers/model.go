package ledgers

import "time"

// Ledger is a named accounting book with its own currency and account
// structure. At most one ledger carries IsMain at any time.
type Ledger struct {
	ID            int64     `json:"id"`
	Code          string    `json:"code"`
	Title         string    `json:"title"`
	StructureCode string    `json:"structure_code"`
	CurrencyCode  string    `json:"currency_code"`
	IsMain        bool      `json:"is_main"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// MutationState reports how a main-flag mutation settled after the
// verifying re-read.
type MutationState string

const (
	// StateCommitted means the re-read confirmed the expected flag layout.
	StateCommitted MutationState = "committed"
	// StateZeroFlagged means the clear step landed but the set step did
	// not, leaving no main ledger. The caller may retry immediately.
	StateZeroFlagged MutationState = "zero_flagged"
	// StateConflicted means the re-read found more than one main ledger,
	// usually a race with another writer. Requires manual correction.
	StateConflicted MutationState = "conflicted"
)

// FlagOutcome is the verified result of a SetMain call.
type FlagOutcome struct {
	State     MutationState `json:"state"`
	MainCount int64         `json:"main_count"`
	Warning   string        `json:"warning,omitempty"`
}
