// Package peppol describes the Peppol e-invoicing contract exposed by the
// ERP backend and the two list views built on top of it.
package peppol

import (
	"github.com/xe-erp/peppol-web/internal/odoo"
)

const (
	// ModelMove is the backend model holding invoices and bills.
	ModelMove = "account.move"
	// ModelCompany is the backend company model.
	ModelCompany = "res.company"
	// ModelUsers is the backend user model.
	ModelUsers = "res.users"

	// MethodFetchAllEDIStatus refreshes the Peppol status of every sent invoice.
	MethodFetchAllEDIStatus = "action_get_all_account_peppol_edi_status"
	// MethodReceivePurchaseInvoices pulls incoming Peppol bills.
	MethodReceivePurchaseInvoices = "action_receive_purchase_invoices"
	// MethodIsPeppolEnabled reports whether the current company is enabled and verified.
	MethodIsPeppolEnabled = "get_is_peppol_enabled"
	// MethodHasGroup checks the current user's group membership.
	MethodHasGroup = "has_group"

	// GroupPeppolInvoice is the group allowed to see the Peppol buttons.
	GroupPeppolInvoice = "xe_account_peppol.group_peppol_invoice"
)

// ActionRecordArg is the positional argument both action methods expect.
// Its meaning belongs to the backend; it is passed through unchanged.
const ActionRecordArg = 1

var (
	// FetchInvoiceStatusCall refreshes invoice Peppol statuses.
	FetchInvoiceStatusCall = odoo.Call{Model: ModelMove, Method: MethodFetchAllEDIStatus, Args: []any{ActionRecordArg}}
	// ReceivePurchaseInvoicesCall fetches incoming Peppol bills.
	ReceivePurchaseInvoicesCall = odoo.Call{Model: ModelMove, Method: MethodReceivePurchaseInvoices, Args: []any{ActionRecordArg}}
	// PeppolEnabledCall asks whether the current company has Peppol enabled.
	PeppolEnabledCall = odoo.Call{Model: ModelCompany, Method: MethodIsPeppolEnabled, Args: []any{[]any{}}}
)

// HasGroupCall builds the group membership lookup for group.
func HasGroupCall(group string) odoo.Call {
	return odoo.Call{Model: ModelUsers, Method: MethodHasGroup, Args: []any{group}}
}

// MoveKind selects which journal entries a list shows.
type MoveKind string

const (
	// KindInvoices covers customer invoices and credit notes.
	KindInvoices MoveKind = "invoices"
	// KindBills covers vendor bills and refunds.
	KindBills MoveKind = "bills"
)

// MoveTypes returns the backend move_type values of the kind.
func (k MoveKind) MoveTypes() []string {
	switch k {
	case KindInvoices:
		return []string{"out_invoice", "out_refund"}
	case KindBills:
		return []string{"in_invoice", "in_refund"}
	}
	return nil
}

// Title is the list heading of the kind.
func (k MoveKind) Title() string {
	switch k {
	case KindInvoices:
		return "Invoices"
	case KindBills:
		return "Bills"
	}
	return string(k)
}

// EDIStatus is the Peppol status of a move.
type EDIStatus string

// Peppol statuses reported by the access point.
const (
	EDIUploaded          EDIStatus = "uploaded"
	EDIUnconfirmed       EDIStatus = "unconfirmed"
	EDIUnpaid            EDIStatus = "unpaid"
	EDIPartiallyPaid     EDIStatus = "partially_paid"
	EDIPaid              EDIStatus = "paid"
	EDIDirectlyArchived  EDIStatus = "directly_archived"
	EDIWillNotBePaid     EDIStatus = "will_not_be_paid"
	EDIPrintAndPostReady EDIStatus = "print_and_post_ready"
	EDIDeliveryPending   EDIStatus = "delivery_pending"
	EDIDeliveryRequested EDIStatus = "delivery_requested"
	EDIDeliveryFailed    EDIStatus = "delivery_failed"
	EDIValidationFailed  EDIStatus = "validation_failed"
	EDIArchiving         EDIStatus = "archiving"
	EDIToBeArchived      EDIStatus = "to_be_archived"
	EDIIncoming          EDIStatus = "incoming"
	EDIRecycleBin        EDIStatus = "recycle_bin"
)

var ediLabels = map[EDIStatus]string{
	EDIUploaded:          "Uploaded",
	EDIUnconfirmed:       "Unconfirmed",
	EDIUnpaid:            "Unpaid",
	EDIPartiallyPaid:     "Partially Paid",
	EDIPaid:              "Paid",
	EDIDirectlyArchived:  "Directly Archived",
	EDIWillNotBePaid:     "Will Not Be Paid",
	EDIPrintAndPostReady: "Print and Post Ready",
	EDIDeliveryPending:   "Delivery Pending",
	EDIDeliveryRequested: "Delivery Requested",
	EDIDeliveryFailed:    "Delivery Failed",
	EDIValidationFailed:  "Validation Failed",
	EDIArchiving:         "Archiving",
	EDIToBeArchived:      "Archived",
	EDIIncoming:          "Incoming",
	EDIRecycleBin:        "Recycle Bin",
}

// Label returns the human readable status. Unknown values are shown as-is.
func (s EDIStatus) Label() string {
	if s == "" {
		return ""
	}
	if label, ok := ediLabels[s]; ok {
		return label
	}
	return string(s)
}

// Tone groups statuses for badge styling.
func (s EDIStatus) Tone() string {
	switch s {
	case EDIPaid, EDIDirectlyArchived, EDIToBeArchived:
		return "success"
	case EDIDeliveryFailed, EDIValidationFailed, EDIWillNotBePaid, EDIRecycleBin:
		return "danger"
	case "":
		return "muted"
	}
	return "info"
}

// Move is a row of the invoices or bills list.
type Move struct {
	ID             int64
	Name           string
	Partner        string
	InvoiceDate    odoo.Date
	DueDate        odoo.Date
	AmountTotal    float64
	Currency       string
	State          string
	EDIStatus      EDIStatus
	PeppolID       string
	SentViaPeppol  bool
	PeppolEndpoint string
}
