// Package moves serves the customer invoice and vendor bill lists with their
// Peppol action buttons.
package moves

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/xe-erp/peppol-web/internal/listview"
	"github.com/xe-erp/peppol-web/internal/observability"
	"github.com/xe-erp/peppol-web/internal/odoo"
	"github.com/xe-erp/peppol-web/internal/peppol"
	"github.com/xe-erp/peppol-web/internal/platform/httpx"
	"github.com/xe-erp/peppol-web/internal/shared"
	"github.com/xe-erp/peppol-web/internal/usermenu"
	"github.com/xe-erp/peppol-web/internal/view"
)

// AuditRecorder stores action records.
type AuditRecorder interface {
	Record(ctx context.Context, log shared.ActionLog) error
}

// IdempotencyStore claims submission keys.
type IdempotencyStore interface {
	CheckAndInsert(ctx context.Context, key, scope string) error
	Delete(ctx context.Context, key string) error
}

// Options carries the optional collaborators of a Handler.
type Options struct {
	Group       string
	PerPage     int
	Menu        *usermenu.Registry
	Audit       AuditRecorder
	Idempotency IdempotencyStore
	Metrics     *observability.Metrics
}

// Handler wires the list and action endpoints.
type Handler struct {
	logger    *slog.Logger
	templates *view.Engine
	csrf      *shared.CSRFManager
	connect   peppol.Connector
	opts      Options
}

// NewHandler builds a Handler.
func NewHandler(logger *slog.Logger, templates *view.Engine, csrf *shared.CSRFManager, connect peppol.Connector, opts Options) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.PerPage <= 0 {
		opts.PerPage = 40
	}
	return &Handler{logger: logger, templates: templates, csrf: csrf, connect: connect, opts: opts}
}

type buttonData struct {
	Key     string
	Label   string
	Action  string
	Visible bool
	Enabled bool
}

type pageData struct {
	View           string
	Rows           []peppol.Move
	Button         buttonData
	Pagination     shared.Pagination
	IdempotencyKey string
}

func (h *Handler) list(kind peppol.MoveKind) http.HandlerFunc {
	route := routeFor(kind)
	return func(w http.ResponseWriter, r *http.Request) {
		sess := shared.SessionFromContext(r.Context())
		login, ok := sess.BackendLogin()
		if !ok {
			http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
			return
		}
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		if page <= 0 {
			page = 1
		}
		gw := h.connect.Open(login.SessionID, h.opts.Group)

		// The row window follows the clamped pager, so the count comes first.
		total, err := gw.CountMoves(r.Context(), kind)
		if err != nil {
			h.loadFailed(w, r, sess, kind, err)
			return
		}
		pager := shared.NewPagination(page, h.opts.PerPage, total)
		ctrl := peppol.View(kind, gw, peppol.ViewOptions{Page: pager.Page, PerPage: pager.PerPage, Logger: h.logger})
		if err := ctrl.Start(r.Context()); err != nil {
			h.loadFailed(w, r, sess, kind, err)
			return
		}

		csrfToken, _ := h.csrf.EnsureToken(r.Context(), sess)
		vis := ctrl.Visibility()
		button := ctrl.Button()
		data := pageData{
			View: ctrl.Name(),
			Rows: ctrl.Rows(),
			Button: buttonData{
				Key:     button.Key,
				Label:   button.Label,
				Action:  route.action,
				Visible: vis.Visible,
				Enabled: vis.Enabled,
			},
			Pagination:     pager,
			IdempotencyKey: uuid.NewString(),
		}
		viewData := view.TemplateData{
			Title:       ctrl.Title(),
			CSRFToken:   csrfToken,
			Flash:       sess.PopFlash(),
			CurrentPath: r.URL.Path,
			User:        &login,
			Menu:        h.opts.Menu.Items(),
			Data:        data,
		}
		if err := h.templates.Render(w, "pages/moves.html", viewData); err != nil {
			h.logger.Error("render moves", slog.Any("error", err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
	}
}

func (h *Handler) action(kind peppol.MoveKind) http.HandlerFunc {
	route := routeFor(kind)
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			httpx.RespondError(w, r, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
			return
		}
		sess := shared.SessionFromContext(r.Context())
		login, ok := sess.BackendLogin()
		if !ok {
			http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
			return
		}
		ctx := r.Context()
		gw := h.connect.Open(login.SessionID, h.opts.Group)
		ctrl := peppol.View(kind, gw, peppol.ViewOptions{Logger: h.logger})
		button := ctrl.Button()
		record := func(outcome string, elapsed time.Duration, meta map[string]any) {
			h.opts.Metrics.ObserveAction(ctrl.Name(), button.Key, outcome, elapsed)
			h.audit(ctx, login, ctrl.Name(), button.Key, outcome, meta)
		}

		key := r.PostFormValue(shared.IdempotencyFormField)
		if !h.claim(ctx, key, "peppol:"+ctrl.Name()) {
			record(observability.OutcomeDuplicate, 0, map[string]any{"key": key})
			http.Redirect(w, r, route.list, http.StatusSeeOther)
			return
		}

		if err := ctrl.Resolve(ctx); err != nil {
			h.release(ctx, key)
			h.logger.Error("resolve button", slog.String("view", ctrl.Name()), slog.Any("error", err))
			httpx.RespondError(w, r, fmt.Errorf("%w: %v", httpx.ErrUpstream, err))
			return
		}

		reload := listview.ReloaderFunc(func(context.Context) error {
			sess.AddFlash(shared.FlashMessage{Kind: "success", Message: button.Label + " done"})
			http.Redirect(w, r, route.list, http.StatusSeeOther)
			return nil
		})
		start := time.Now()
		err := ctrl.Click(ctx, reload)
		elapsed := time.Since(start)
		switch {
		case err == nil:
			record(observability.OutcomeSuccess, elapsed, nil)
			h.logger.Info("peppol action", slog.String("view", ctrl.Name()), slog.String("button", button.Key), slog.Int64("uid", login.UID), slog.Duration("elapsed", elapsed))
		case errors.Is(err, listview.ErrUnavailable):
			h.release(ctx, key)
			record(observability.OutcomeUnavailable, 0, nil)
			httpx.RespondError(w, r, fmt.Errorf("%w: %s is not available", httpx.ErrForbidden, button.Label))
		default:
			h.release(ctx, key)
			record(observability.OutcomeFailure, elapsed, map[string]any{"error": err.Error()})
			h.logger.Error("peppol action failed", slog.String("view", ctrl.Name()), slog.String("button", button.Key), slog.Any("error", err))
			if h.sessionExpired(w, r, sess, err) {
				return
			}
			if errors.Is(err, odoo.ErrAccessDenied) {
				httpx.RespondError(w, r, fmt.Errorf("%w: %s", httpx.ErrForbidden, backendMessage(err)))
				return
			}
			httpx.RespondError(w, r, fmt.Errorf("%w: %s", httpx.ErrUpstream, backendMessage(err)))
		}
	}
}

func (h *Handler) loadFailed(w http.ResponseWriter, r *http.Request, sess *shared.Session, kind peppol.MoveKind, err error) {
	if h.sessionExpired(w, r, sess, err) {
		return
	}
	h.logger.Error("load list view", slog.String("kind", string(kind)), slog.Any("error", err))
	httpx.RespondError(w, r, fmt.Errorf("%w: %s", httpx.ErrUpstream, kind.Title()))
}

// claim reports whether the submission may proceed. Store errors never block
// the action.
func (h *Handler) claim(ctx context.Context, key, scope string) bool {
	if h.opts.Idempotency == nil || key == "" {
		return true
	}
	err := h.opts.Idempotency.CheckAndInsert(ctx, key, scope)
	switch {
	case err == nil:
		return true
	case errors.Is(err, shared.ErrIdempotencyConflict):
		return false
	default:
		h.logger.Warn("idempotency claim", slog.Any("error", err))
		return true
	}
}

func (h *Handler) release(ctx context.Context, key string) {
	if h.opts.Idempotency == nil || key == "" {
		return
	}
	if err := h.opts.Idempotency.Delete(ctx, key); err != nil {
		h.logger.Warn("idempotency release", slog.Any("error", err))
	}
}

func (h *Handler) audit(ctx context.Context, login shared.BackendLogin, viewName, action, outcome string, meta map[string]any) {
	if h.opts.Audit == nil {
		return
	}
	err := h.opts.Audit.Record(ctx, shared.ActionLog{
		ActorID: login.UID,
		Actor:   login.Login,
		View:    viewName,
		Action:  action,
		Outcome: outcome,
		Meta:    meta,
	})
	if err != nil {
		h.logger.Warn("audit action", slog.Any("error", err))
	}
}

// sessionExpired sends the user back to the login page when the backend
// dropped the session.
func (h *Handler) sessionExpired(w http.ResponseWriter, r *http.Request, sess *shared.Session, err error) bool {
	if !errors.Is(err, odoo.ErrSessionExpired) {
		return false
	}
	if sess != nil {
		sess.ClearBackendLogin()
		sess.AddFlash(shared.FlashMessage{Kind: "error", Message: "Your session expired, sign in again"})
	}
	http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
	return true
}

// backendMessage extracts the user facing message of a backend error.
func backendMessage(err error) string {
	var rpcErr *odoo.RPCError
	if errors.As(err, &rpcErr) {
		if rpcErr.Detail != "" {
			return rpcErr.Detail
		}
		if rpcErr.Message != "" {
			return rpcErr.Message
		}
	}
	return "the backend did not complete the action"
}
