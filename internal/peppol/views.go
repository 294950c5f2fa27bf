package peppol

import (
	"context"
	"log/slog"

	"github.com/xe-erp/peppol-web/internal/listview"
)

// View registry keys.
const (
	InvoicesViewKey = "fetch_invoices_tree_btn"
	BillsViewKey    = "fetch_bills_tree_btn"
)

// ViewOptions controls the page rendered by a list view.
type ViewOptions struct {
	Page    int
	PerPage int
	Logger  *slog.Logger
}

// InvoicesView builds the customer invoices list with the status refresh button.
// The button is shown to members of the Peppol group and enabled when the
// company has Peppol enabled.
func InvoicesView(gw *Gateway, opts ViewOptions) *listview.Controller[Move] {
	return listview.New(listview.Config[Move]{
		Name:  InvoicesViewKey,
		Title: KindInvoices.Title(),
		Rows:  movesLoader(gw, KindInvoices, opts),
		Button: listview.Button{
			Key:         "get_sales_invoice",
			Label:       "Fetch Peppol Status",
			Call:        FetchInvoiceStatusCall,
			VisibleWhen: gw.UserHasGroup,
			EnabledWhen: gw.IsPeppolEnabled,
		},
		Invoker: gw,
		Logger:  opts.Logger,
	})
}

// BillsView builds the vendor bills list with the receive button.
func BillsView(gw *Gateway, opts ViewOptions) *listview.Controller[Move] {
	return listview.New(listview.Config[Move]{
		Name:  BillsViewKey,
		Title: KindBills.Title(),
		Rows:  movesLoader(gw, KindBills, opts),
		Button: listview.Button{
			Key:         "get_purchase_invoice",
			Label:       "Receive Peppol Bills",
			Call:        ReceivePurchaseInvoicesCall,
			VisibleWhen: gw.UserHasGroup,
			EnabledWhen: gw.IsPeppolEnabled,
		},
		Invoker: gw,
		Logger:  opts.Logger,
	})
}

// View returns the list controller registered for kind.
func View(kind MoveKind, gw *Gateway, opts ViewOptions) *listview.Controller[Move] {
	if kind == KindBills {
		return BillsView(gw, opts)
	}
	return InvoicesView(gw, opts)
}

func movesLoader(gw *Gateway, kind MoveKind, opts ViewOptions) listview.RowLoader[Move] {
	return func(ctx context.Context) ([]Move, error) {
		return gw.ListMoves(ctx, kind, opts.Page, opts.PerPage)
	}
}
