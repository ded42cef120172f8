package shared

// Canonical permission identifiers. Each module owns exactly one resource
// name; handlers never try alternate spellings.
const (
	PermLedgersView = "ledgers.view"
	PermLedgersEdit = "ledgers.edit"

	PermDetailsView = "details.view"
	PermDetailsEdit = "details.edit"

	PermMasterView = "master.view"
	PermMasterEdit = "master.edit"

	PermPartiesView = "parties.view"
	PermPartiesEdit = "parties.edit"

	PermVouchersView  = "vouchers.view"
	PermVouchersPrint = "vouchers.print"

	PermUsersView = "users.view"
	PermUsersEdit = "users.edit"
)
