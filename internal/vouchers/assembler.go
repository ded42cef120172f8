package vouchers

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/daftar-erp/daftar/internal/refdata"
)

const (
	// placeholderLabel stands in for any reference that cannot be resolved.
	placeholderLabel = "Unknown"
	// detailSeparator joins resolved detail labels on one row.
	detailSeparator = " | "
)

// Assembler joins a voucher header, its items and every referenced record
// into one print-ready Document.
//
// Assembly runs in two ordered waves. The first wave loads the items and
// the header-level references in parallel. Once the item list is known,
// the second wave batch-loads the distinct accounts and detail instances
// the items reference. Only a missing header is terminal; every other miss
// degrades to a placeholder so the document always reaches the caller.
type Assembler struct {
	logger     *slog.Logger
	repo       Repository
	currencies refdata.Lookup
}

func NewAssembler(logger *slog.Logger, repo Repository, currencies refdata.Lookup) *Assembler {
	return &Assembler{logger: logger, repo: repo, currencies: currencies}
}

// headerRefs collects the wave-one lookups. Each goroutine writes only its
// own fields.
type headerRefs struct {
	items       []VoucherItem
	itemsErr    error
	ledgerTitle string
	ledgerErr   error
	branchTitle string
	branchErr   error
	creatorName string
	creatorErr  error
}

func (a *Assembler) Assemble(ctx context.Context, voucherID int64, lang string) (Document, error) {
	header, err := a.repo.GetVoucher(ctx, voucherID)
	if err != nil {
		// Not found is terminal for the whole document.
		return Document{}, err
	}

	refs := a.loadHeaderRefs(ctx, header)
	if refs.itemsErr != nil {
		return Document{}, fmt.Errorf("load voucher items: %w", refs.itemsErr)
	}

	accounts, instances, warnings := a.loadItemRefs(ctx, refs.items)

	doc := Document{
		VoucherID:        header.ID,
		VoucherNumber:    header.VoucherNumber,
		VoucherDate:      header.VoucherDate,
		DailyNumber:      header.DailyNumber,
		CrossReference:   header.CrossReference,
		SubsidiaryNumber: header.SubsidiaryNumber,
		Description:      header.Description,
		Status:           header.Status,
		LedgerTitle:      refs.ledgerTitle,
		BranchTitle:      refs.branchTitle,
		CreatorName:      refs.creatorName,
		Warnings:         warnings,
	}
	if refs.ledgerErr != nil {
		doc.LedgerTitle = placeholderLabel
		doc.Warnings = append(doc.Warnings, "ledger reference could not be resolved")
	}
	if refs.branchErr != nil {
		doc.BranchTitle = placeholderLabel
		doc.Warnings = append(doc.Warnings, "branch reference could not be resolved")
	}
	if refs.creatorErr != nil {
		// Identity resolution never blocks assembly.
		doc.CreatorName = ""
	}

	formatter := newAmountFormatter(lang)
	var itemDebit, itemCredit int64
	for _, item := range refs.items {
		itemDebit += item.Debit
		itemCredit += item.Credit
		doc.Rows = append(doc.Rows, a.buildRow(item, accounts, instances, formatter))
	}

	// Totals are reproduced from the header, never recomputed. A mismatch
	// against the item sums is reported but does not alter the output.
	doc.TotalDebit = formatter.Format(header.TotalDebit)
	doc.TotalCredit = formatter.Format(header.TotalCredit)
	if itemDebit != header.TotalDebit || itemCredit != header.TotalCredit {
		doc.TotalsMismatch = true
		doc.Warnings = append(doc.Warnings, "header totals differ from item sums")
		a.logger.Warn("voucher totals mismatch",
			"voucher_id", header.ID,
			"header_debit", header.TotalDebit, "item_debit", itemDebit,
			"header_credit", header.TotalCredit, "item_credit", itemCredit)
	}
	return doc, nil
}

func (a *Assembler) loadHeaderRefs(ctx context.Context, header Voucher) headerRefs {
	var refs headerRefs

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		refs.items, refs.itemsErr = a.repo.ItemsByVoucher(gctx, header.ID)
		return nil
	})
	g.Go(func() error {
		refs.ledgerTitle, refs.ledgerErr = a.repo.LedgerTitle(gctx, header.LedgerID)
		return nil
	})
	if header.BranchID != nil {
		branchID := *header.BranchID
		g.Go(func() error {
			refs.branchTitle, refs.branchErr = a.repo.BranchTitle(gctx, branchID)
			return nil
		})
	}
	g.Go(func() error {
		partyTitle, fullName, err := a.repo.CreatorIdentity(gctx, header.CreatedBy)
		if err != nil {
			refs.creatorErr = err
			return nil
		}
		// Prefer the linked party, then the stored full name, then empty.
		switch {
		case partyTitle != "":
			refs.creatorName = partyTitle
		case fullName != "":
			refs.creatorName = fullName
		default:
			refs.creatorName = ""
		}
		return nil
	})
	// Goroutines report through refs, never through the group.
	_ = g.Wait()
	return refs
}

// loadItemRefs batch-loads the distinct accounts and detail instances the
// items reference. Failures degrade to empty maps with a warning.
func (a *Assembler) loadItemRefs(ctx context.Context, items []VoucherItem) (map[int64]AccountRef, map[int64]InstanceRef, []string) {
	accountIDs := make(map[int64]struct{})
	instanceIDs := make(map[int64]struct{})
	for _, item := range items {
		accountIDs[item.AccountID] = struct{}{}
		for _, instanceID := range item.Details.SelectedDetails {
			instanceIDs[instanceID] = struct{}{}
		}
	}

	var (
		accounts  map[int64]AccountRef
		instances map[int64]InstanceRef
		warnings  []string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		accounts, err = a.repo.AccountsByIDs(gctx, keys(accountIDs))
		if err != nil {
			a.logger.Warn("account batch lookup failed", "error", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		instances, err = a.repo.InstancesByIDs(gctx, keys(instanceIDs))
		if err != nil {
			a.logger.Warn("detail instance batch lookup failed", "error", err)
		}
		return nil
	})
	_ = g.Wait()

	if accounts == nil {
		accounts = map[int64]AccountRef{}
		warnings = append(warnings, "account references could not be resolved")
	}
	if instances == nil {
		instances = map[int64]InstanceRef{}
		warnings = append(warnings, "detail references could not be resolved")
	}
	return accounts, instances, warnings
}

func (a *Assembler) buildRow(item VoucherItem, accounts map[int64]AccountRef, instances map[int64]InstanceRef, formatter amountFormatter) DocumentRow {
	row := DocumentRow{
		RowNumber:      item.RowNumber,
		Description:    item.Description,
		TrackingNumber: item.TrackingNumber,
		Debit:          formatter.Format(item.Debit),
		Credit:         formatter.Format(item.Credit),
	}

	if ref, ok := accounts[item.AccountID]; ok {
		row.AccountCode = ref.Code
		row.AccountTitle = ref.Title
	} else {
		row.AccountCode = placeholderLabel
		row.AccountTitle = placeholderLabel
	}

	row.DetailLabels = a.detailLabels(item.Details.SelectedDetails, instances)

	if item.Details.CurrencyCode != "" {
		// The currency store is scoped per field, a miss falls back to the
		// raw code rather than a placeholder.
		if title, ok := a.currencies.TitleByCode(item.Details.CurrencyCode); ok {
			row.CurrencyTitle = title
		} else {
			row.CurrencyTitle = item.Details.CurrencyCode
		}
	}
	return row
}

// detailLabels joins the resolved instance titles in type-id order so the
// output is stable across assemblies.
func (a *Assembler) detailLabels(selected map[int64]int64, instances map[int64]InstanceRef) string {
	if len(selected) == 0 {
		return ""
	}
	typeIDs := make([]int64, 0, len(selected))
	for typeID := range selected {
		typeIDs = append(typeIDs, typeID)
	}
	sort.Slice(typeIDs, func(i, j int) bool { return typeIDs[i] < typeIDs[j] })

	labels := make([]string, 0, len(typeIDs))
	for _, typeID := range typeIDs {
		if ref, ok := instances[selected[typeID]]; ok {
			labels = append(labels, ref.Title)
		} else {
			labels = append(labels, placeholderLabel)
		}
	}
	return strings.Join(labels, detailSeparator)
}

func keys(set map[int64]struct{}) []int64 {
	out := make([]int64, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	return out
}
