package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xe-erp/peppol-web/internal/app"
	"github.com/xe-erp/peppol-web/internal/peppol"
)

func callCmd() *cobra.Command {
	var login, password string
	cmd := &cobra.Command{
		Use:       "call <action>",
		Short:     "Run a Peppol action with the service account",
		Long:      "Run a Peppol action with the service account.\nActions: " + strings.Join(actionNames(), ", "),
		Args:      cobra.ExactArgs(1),
		ValidArgs: actionNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, ok := actions[args[0]]; !ok {
				return fmt.Errorf("%w: %s", ErrUnknownAction, args[0])
			}
			if login == "" {
				login = cfg.OdooServiceLogin
			}
			if password == "" {
				password = cfg.OdooServicePassword
			}
			if login == "" || password == "" {
				return errors.New("peppolctl: service account required, set ODOO_SERVICE_LOGIN and ODOO_SERVICE_PASSWORD or pass --login/--password")
			}

			ctx := cmd.Context()
			backend := app.NewBackend(cfg, logger)
			sess, err := backend.Authenticate(ctx, login, password)
			if err != nil {
				return err
			}
			defer func() {
				if err := backend.Logout(context.WithoutCancel(ctx), sess.ID); err != nil {
					logger.Warn("logout", slog.Any("error", err))
				}
			}()

			gw := peppol.ClientConnector(backend).Open(sess.ID, cfg.PeppolGroup)
			return runAction(ctx, args[0], gw, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&login, "login", "", "backend login (default ODOO_SERVICE_LOGIN)")
	cmd.Flags().StringVar(&password, "password", "", "backend password (default ODOO_SERVICE_PASSWORD)")
	return cmd
}
