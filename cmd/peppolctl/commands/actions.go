package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/xe-erp/peppol-web/internal/peppol"
)

// ErrUnknownAction is returned for action names that are not registered.
var ErrUnknownAction = errors.New("peppolctl: unknown action")

type action func(ctx context.Context, gw *peppol.Gateway, out io.Writer) error

var actions = map[string]action{
	"fetch-status": func(ctx context.Context, gw *peppol.Gateway, out io.Writer) error {
		if err := gw.FetchInvoiceStatus(ctx); err != nil {
			return err
		}
		_, err := fmt.Fprintln(out, "invoice statuses refreshed")
		return err
	},
	"receive-bills": func(ctx context.Context, gw *peppol.Gateway, out io.Writer) error {
		before, err := gw.CountMoves(ctx, peppol.KindBills)
		if err != nil {
			return err
		}
		if err := gw.ReceivePurchaseInvoices(ctx); err != nil {
			return err
		}
		after, err := gw.CountMoves(ctx, peppol.KindBills)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(out, "received %d bill(s)\n", max(after-before, 0))
		return err
	},
	"peppol-enabled": func(ctx context.Context, gw *peppol.Gateway, out io.Writer) error {
		enabled, err := gw.IsPeppolEnabled(ctx)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(out, "peppol enabled: %t\n", enabled)
		return err
	},
	"has-group": func(ctx context.Context, gw *peppol.Gateway, out io.Writer) error {
		ok, err := gw.UserHasGroup(ctx)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(out, "member of %s: %t\n", gw.Group(), ok)
		return err
	},
}

func actionNames() []string {
	names := make([]string, 0, len(actions))
	for name := range actions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// runAction executes the named action against gw.
func runAction(ctx context.Context, name string, gw *peppol.Gateway, out io.Writer) error {
	fn, ok := actions[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownAction, name)
	}
	return fn(ctx, gw, out)
}
