package peppol

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/xe-erp/peppol-web/internal/odoo"
)

// Invoker issues a remote call and returns its raw result.
type Invoker interface {
	Invoke(ctx context.Context, call odoo.Call) (json.RawMessage, error)
}

// Gateway exposes the Peppol related backend calls for one session.
type Gateway struct {
	invoker Invoker
	group   string
}

// NewGateway constructs a Gateway. An empty group falls back to GroupPeppolInvoice.
func NewGateway(invoker Invoker, group string) *Gateway {
	if group == "" {
		group = GroupPeppolInvoice
	}
	return &Gateway{invoker: invoker, group: group}
}

// Group returns the group gating the Peppol buttons.
func (g *Gateway) Group() string {
	return g.group
}

// Invoke forwards a raw call to the backend.
func (g *Gateway) Invoke(ctx context.Context, call odoo.Call) (json.RawMessage, error) {
	if g == nil || g.invoker == nil {
		return nil, odoo.ErrNotConfigured
	}
	return g.invoker.Invoke(ctx, call)
}

// IsPeppolEnabled reports whether the current company has Peppol enabled.
func (g *Gateway) IsPeppolEnabled(ctx context.Context) (bool, error) {
	raw, err := g.Invoke(ctx, PeppolEnabledCall)
	if err != nil {
		return false, fmt.Errorf("peppol: enabled check: %w", err)
	}
	return odoo.Truthy(raw), nil
}

// UserHasGroup reports whether the session user belongs to the Peppol group.
func (g *Gateway) UserHasGroup(ctx context.Context) (bool, error) {
	if g == nil {
		return false, odoo.ErrNotConfigured
	}
	raw, err := g.Invoke(ctx, HasGroupCall(g.group))
	if err != nil {
		return false, fmt.Errorf("peppol: group check: %w", err)
	}
	return odoo.Truthy(raw), nil
}

// FetchInvoiceStatus asks the backend to refresh all invoice statuses.
func (g *Gateway) FetchInvoiceStatus(ctx context.Context) error {
	if _, err := g.Invoke(ctx, FetchInvoiceStatusCall); err != nil {
		return fmt.Errorf("peppol: fetch invoice status: %w", err)
	}
	return nil
}

// ReceivePurchaseInvoices asks the backend to import incoming bills.
func (g *Gateway) ReceivePurchaseInvoices(ctx context.Context) error {
	if _, err := g.Invoke(ctx, ReceivePurchaseInvoicesCall); err != nil {
		return fmt.Errorf("peppol: receive purchase invoices: %w", err)
	}
	return nil
}

var moveFields = []string{
	"name",
	"partner_id",
	"invoice_date",
	"invoice_date_due",
	"amount_total",
	"currency_id",
	"state",
	"account_peppol_edi_status",
	"peppol_sales_invoice_id",
	"is_send_via_peppol",
	"peppol_endpoint",
}

type moveRecord struct {
	ID             int64         `json:"id"`
	Name           odoo.String   `json:"name"`
	Partner        odoo.Many2One `json:"partner_id"`
	InvoiceDate    odoo.Date     `json:"invoice_date"`
	DueDate        odoo.Date     `json:"invoice_date_due"`
	AmountTotal    odoo.Float    `json:"amount_total"`
	Currency       odoo.Many2One `json:"currency_id"`
	State          odoo.String   `json:"state"`
	EDIStatus      odoo.String   `json:"account_peppol_edi_status"`
	PeppolID       odoo.String   `json:"peppol_sales_invoice_id"`
	SentViaPeppol  bool          `json:"is_send_via_peppol"`
	PeppolEndpoint odoo.String   `json:"peppol_endpoint"`
}

func (r moveRecord) toDomain() Move {
	return Move{
		ID:             r.ID,
		Name:           string(r.Name),
		Partner:        r.Partner.Name,
		InvoiceDate:    r.InvoiceDate,
		DueDate:        r.DueDate,
		AmountTotal:    float64(r.AmountTotal),
		Currency:       r.Currency.Name,
		State:          string(r.State),
		EDIStatus:      EDIStatus(r.EDIStatus),
		PeppolID:       string(r.PeppolID),
		SentViaPeppol:  r.SentViaPeppol,
		PeppolEndpoint: string(r.PeppolEndpoint),
	}
}

func moveDomain(kind MoveKind) []any {
	return []any{[]any{"move_type", "in", kind.MoveTypes()}}
}

// ListMoves returns one page of invoices or bills, newest first.
func (g *Gateway) ListMoves(ctx context.Context, kind MoveKind, page, perPage int) ([]Move, error) {
	if kind.MoveTypes() == nil {
		return nil, fmt.Errorf("peppol: unknown move kind %q", kind)
	}
	if perPage <= 0 {
		perPage = 20
	}
	if page <= 0 {
		page = 1
	}
	if page-1 > math.MaxInt32/perPage {
		return nil, fmt.Errorf("peppol: list %s: page %d out of range", kind, page)
	}
	call := odoo.Call{
		Model:  ModelMove,
		Method: "search_read",
		Args:   []any{moveDomain(kind)},
		Kwargs: map[string]any{
			"fields": moveFields,
			"limit":  perPage,
			"offset": (page - 1) * perPage,
			"order":  "invoice_date desc, id desc",
		},
	}
	raw, err := g.Invoke(ctx, call)
	if err != nil {
		return nil, fmt.Errorf("peppol: list %s: %w", kind, err)
	}
	var records []moveRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("peppol: decode %s: %w", kind, err)
	}
	moves := make([]Move, 0, len(records))
	for _, rec := range records {
		moves = append(moves, rec.toDomain())
	}
	return moves, nil
}

// CountMoves returns the number of invoices or bills visible to the user.
func (g *Gateway) CountMoves(ctx context.Context, kind MoveKind) (int, error) {
	if kind.MoveTypes() == nil {
		return 0, fmt.Errorf("peppol: unknown move kind %q", kind)
	}
	raw, err := g.Invoke(ctx, odoo.Call{Model: ModelMove, Method: "search_count", Args: []any{moveDomain(kind)}})
	if err != nil {
		return 0, fmt.Errorf("peppol: count %s: %w", kind, err)
	}
	var n odoo.Int64
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, fmt.Errorf("peppol: decode count: %w", err)
	}
	return int(n), nil
}
