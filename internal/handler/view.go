package handler

import (
	"bytes"
	"errors"
	"log"
	"net/http"
	"strings"

	"concerthub-api/internal/fragment"
	"concerthub-api/internal/middleware"
	"concerthub-api/internal/view"
	"concerthub-api/pkg/apierror"
	"concerthub-api/pkg/response"

	"github.com/go-chi/chi/v5"
)

// ViewHandler serves composed pages and raw fragments.
type ViewHandler struct {
	loader *fragment.Loader
	layout *view.Layout
}

// NewViewHandler creates a new view handler.
func NewViewHandler(loader *fragment.Loader, layout *view.Layout) *ViewHandler {
	return &ViewHandler{loader: loader, layout: layout}
}

// Index handles GET /
func (h *ViewHandler) Index(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/app/"+view.SectionHome, http.StatusFound)
}

// Section handles GET /app/{section}
func (h *ViewHandler) Section(w http.ResponseWriter, r *http.Request) {
	section := chi.URLParam(r, "section")
	if !view.ValidSection(section) || section == view.SectionCheckout {
		response.Error(w, apierror.NotFound("Unknown section: "+section))
		return
	}
	h.render(w, r, section)
}

// Checkout handles GET /checkout?id=
func (h *ViewHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, view.SectionCheckout)
}

func (h *ViewHandler) render(w http.ResponseWriter, r *http.Request, section string) {
	ctx := r.Context()
	q := r.URL.Query()

	sh := view.NewShell(h.loader, fragment.Params{
		view.ParamQuery:   strings.TrimSpace(q.Get("q")),
		view.ParamSession: middleware.GetSessionID(ctx),
		view.ParamID:      q.Get("id"),
	})

	if err := sh.Start(ctx, section); err != nil {
		writeError(w, err)
		return
	}
	if err := sh.Navigate(ctx, section); err != nil {
		writeError(w, err)
		return
	}
	page, err := sh.Page(ctx)
	if err != nil {
		writeError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := h.layout.Render(&buf, page); err != nil {
		response.Error(w, apierror.InternalError("Failed to render page"))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// Component handles GET /components/{file}
func (h *ViewHandler) Component(w http.ResponseWriter, r *http.Request) {
	h.raw(w, r, "components/")
}

// Fragment handles GET /section/{file}
func (h *ViewHandler) Fragment(w http.ResponseWriter, r *http.Request) {
	h.raw(w, r, "section/")
}

func (h *ViewHandler) raw(w http.ResponseWriter, r *http.Request, dir string) {
	file := chi.URLParam(r, "file")
	name, ok := strings.CutSuffix(file, ".html")
	if !ok || name == "" {
		response.Error(w, apierror.NotFound("Fragment not found: "+dir+file))
		return
	}

	data, err := h.loader.Raw(r.Context(), dir+name)
	if err != nil {
		if !errors.Is(err, fragment.ErrNotFound) {
			log.Printf("[View] Failed to fetch %s%s: %v", dir, name, err)
		}
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(data)
}
