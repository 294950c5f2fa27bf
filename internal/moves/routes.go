package moves

import (
	"github.com/go-chi/chi/v5"

	"github.com/xe-erp/peppol-web/internal/peppol"
)

type route struct {
	list   string
	action string
}

var routes = map[peppol.MoveKind]route{
	peppol.KindInvoices: {list: "/invoices", action: "/invoices/fetch-status"},
	peppol.KindBills:    {list: "/bills", action: "/bills/receive"},
}

func routeFor(kind peppol.MoveKind) route {
	if r, ok := routes[kind]; ok {
		return r
	}
	return routes[peppol.KindInvoices]
}

// MountRoutes registers the list and action endpoints. The caller is
// expected to guard the router with a login check.
func (h *Handler) MountRoutes(r chi.Router) {
	for _, kind := range []peppol.MoveKind{peppol.KindInvoices, peppol.KindBills} {
		rt := routeFor(kind)
		r.Get(rt.list, h.list(kind))
		r.Post(rt.action, h.action(kind))
	}
}
