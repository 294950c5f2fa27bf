// Package view renders the embedded HTML pages.
package view

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/xe-erp/peppol-web/internal/shared"
	"github.com/xe-erp/peppol-web/internal/usermenu"
	"github.com/xe-erp/peppol-web/web"
)

var errNoEngine = errors.New("view: engine not initialised")

// Engine holds the parsed page set.
type Engine struct {
	set *template.Template
}

// TemplateData is what every page receives.
type TemplateData struct {
	Title       string
	CSRFToken   string
	Flash       *shared.FlashMessage
	CurrentPath string
	User        *shared.BackendLogin
	Menu        []usermenu.Item
	Data        any
}

var (
	amountPrinter = message.NewPrinter(language.English)
	buffers       = sync.Pool{New: func() any { return new(bytes.Buffer) }}
)

func helpers() template.FuncMap {
	return template.FuncMap{
		"formatDate":   formatDate,
		"formatAmount": formatAmount,
		"isSeparator":  func(it usermenu.Item) bool { return it.Kind == usermenu.KindSeparator },
		"isLogout":     func(it usermenu.Item) bool { return it.Kind == usermenu.KindLogout },
		"add":          func(a, b int) int { return a + b },
		"sub":          func(a, b int) int { return a - b },
	}
}

// NewEngine parses layouts, partials and pages from the embedded tree.
func NewEngine() (*Engine, error) {
	set, err := template.New("peppolweb").Funcs(helpers()).ParseFS(web.Templates,
		"templates/layouts/*.html",
		"templates/partials/*.html",
		"templates/pages/*.html",
	)
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Engine{set: set}, nil
}

// Render writes page with a 200 status.
func (e *Engine) Render(w http.ResponseWriter, page string, data TemplateData) error {
	return e.RenderStatus(w, http.StatusOK, page, data)
}

// RenderStatus writes page with status. Nothing is written when execution
// fails.
func (e *Engine) RenderStatus(w http.ResponseWriter, status int, page string, data TemplateData) error {
	if e == nil || e.set == nil {
		return errNoEngine
	}
	buf := buffers.Get().(*bytes.Buffer)
	buf.Reset()
	defer buffers.Put(buf)

	if err := e.set.ExecuteTemplate(buf, page, data); err != nil {
		return fmt.Errorf("render %s: %w", page, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("02 Jan 2006")
}

func formatAmount(amount float64, currency string) string {
	out := amountPrinter.Sprintf("%.2f", amount)
	if currency = strings.TrimSpace(currency); currency != "" {
		out += " " + currency
	}
	return out
}
