// Package views renders the site's HTML pages. Every page shares one layout carrying the
// classification nav, the caller's identity, the drained flash queue and form errors.
package views

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/angelmondragon/csemotors/api/responses"
	"github.com/angelmondragon/csemotors/api/validators"
	"github.com/angelmondragon/csemotors/pkg/auth"
	"github.com/angelmondragon/csemotors/pkg/db/models"
	pkgerrors "github.com/angelmondragon/csemotors/pkg/errors"
	"github.com/angelmondragon/csemotors/pkg/flash"
	"github.com/angelmondragon/csemotors/pkg/logger"
)

//go:embed templates
var templateFS embed.FS

const layoutFile = "templates/layout.html"

// Page names.
const (
	PageHome                = "index"
	PageError               = "error"
	PageClassification      = "inventory/classification"
	PageVehicleDetail       = "inventory/detail"
	PageInventoryManagement = "inventory/management"
	PageAddClassification   = "inventory/add-classification"
	PageAddInventory        = "inventory/add-inventory"
	PageEditInventory       = "inventory/edit-inventory"
	PageDeleteConfirm       = "inventory/delete-confirm"
	PageLogin               = "account/login"
	PageRegister            = "account/register"
	PageAccountManagement   = "account/management"
	PageAccountUpdate       = "account/update"
	PageMyReviews           = "reviews/my-reviews"
	PageEditReview          = "reviews/edit"
)

// NavSource supplies the classifications listed in the navigation bar.
type NavSource interface {
	ListClassifications(ctx context.Context) ([]models.Classification, error)
}

// Page is what a handler hands to Render.
type Page struct {
	Title  string
	Errors []string
	Values map[string]string
	Data   any
}

// FormPage builds a page that re-displays a submitted form with its errors.
func FormPage(title string, result *validators.Result, data any) Page {
	return Page{
		Title:  title,
		Errors: result.Messages(),
		Values: result.PublicValues(),
		Data:   data,
	}
}

type viewModel struct {
	Title    string
	Nav      []models.Classification
	Identity auth.Identity
	Flash    []flash.Message
	Errors   []string
	Values   map[string]string
	Data     any
	Year     int
}

// Renderer executes the embedded page templates.
type Renderer struct {
	pages map[string]*template.Template
	nav   NavSource
	logg  *logger.Logger
	now   func() time.Time
}

// New parses every page template against the shared layout.
func New(nav NavSource, logg *logger.Logger) (*Renderer, error) {
	pages, err := parsePages(templateFS)
	if err != nil {
		return nil, err
	}
	return &Renderer{pages: pages, nav: nav, logg: logg, now: time.Now}, nil
}

func parsePages(fsys fs.FS) (map[string]*template.Template, error) {
	files, err := fs.Glob(fsys, "templates/*/*.html")
	if err != nil {
		return nil, err
	}
	roots, err := fs.Glob(fsys, "templates/*.html")
	if err != nil {
		return nil, err
	}
	files = append(files, roots...)

	pages := make(map[string]*template.Template, len(files))
	for _, file := range files {
		if file == layoutFile {
			continue
		}
		name := strings.TrimSuffix(strings.TrimPrefix(file, "templates/"), ".html")
		tmpl, err := template.New("layout.html").Funcs(funcs()).ParseFS(fsys, layoutFile, file)
		if err != nil {
			return nil, fmt.Errorf("parse page %s: %w", name, err)
		}
		pages[name] = tmpl
	}
	return pages, nil
}

// Render writes page name with status. The flash queue of the request is drained into the page.
func (v *Renderer) Render(w http.ResponseWriter, r *http.Request, status int, name string, page Page) {
	ctx := r.Context()
	tmpl, ok := v.pages[name]
	if !ok {
		v.fail(w, r, fmt.Errorf("unknown page %q", name))
		return
	}

	model := viewModel{
		Title:    page.Title,
		Nav:      v.navigation(ctx),
		Identity: auth.IdentityFromContext(ctx),
		Flash:    flash.FromContext(ctx).Drain(ctx),
		Errors:   page.Errors,
		Values:   page.Values,
		Data:     page.Data,
		Year:     v.now().Year(),
	}
	if model.Values == nil {
		model.Values = map[string]string{}
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, model); err != nil {
		v.fail(w, r, fmt.Errorf("execute page %s: %w", name, err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// RenderError writes the generic error page for err. Server-side failures are logged and
// shown with the public crash message only.
func (v *Renderer) RenderError(w http.ResponseWriter, r *http.Request, err error) {
	code := pkgerrors.CodeOf(err)
	meta := pkgerrors.MetadataFor(code)

	title := http.StatusText(meta.HTTPStatus)
	message := pkgerrors.PublicMessage(err)
	switch {
	case code == pkgerrors.CodeNotFound:
		title = "404"
		message = meta.PublicMessage
	case meta.HTTPStatus >= http.StatusInternalServerError:
		title = "Server Error"
		message = meta.PublicMessage
		responses.LogError(r.Context(), v.logg, err)
	}

	v.Render(w, r, meta.HTTPStatus, PageError, Page{
		Title: title,
		Data:  map[string]string{"Message": message},
	})
}

func (v *Renderer) navigation(ctx context.Context) []models.Classification {
	if v.nav == nil {
		return nil
	}
	list, err := v.nav.ListClassifications(ctx)
	if err != nil {
		if v.logg != nil {
			v.logg.Error(ctx, "views.nav_failed", err)
		}
		return nil
	}
	return list
}

func (v *Renderer) fail(w http.ResponseWriter, r *http.Request, err error) {
	if v.logg != nil {
		v.logg.Error(r.Context(), "views.render_failed", err)
	}
	http.Error(w, pkgerrors.MetadataFor(pkgerrors.CodeInternal).PublicMessage, http.StatusInternalServerError)
}
