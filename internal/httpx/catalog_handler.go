package httpx

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/ariefcatur/go-realtime-checkout/internal/catalog"
	"github.com/go-chi/chi/v5"
)

type SKULister interface {
	ListByCategory(ctx context.Context, categoryID int64, ordering string, page, pageSize int) (*catalog.Page, error)
}

// CatalogHandler is public; it needs no user.
type CatalogHandler struct {
	SKUs SKULister
}

func (h *CatalogHandler) Register(r chi.Router) {
	r.Get("/categories/{id}/skus", h.list)
}

func (h *CatalogHandler) list(w http.ResponseWriter, r *http.Request) {
	categoryID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || categoryID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_category")
		return
	}
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	pageSize, _ := strconv.Atoi(q.Get("page_size"))

	out, err := h.SKUs.ListByCategory(r.Context(), categoryID, q.Get("ordering"), page, pageSize)
	if errors.Is(err, catalog.ErrBadOrdering) {
		writeError(w, http.StatusBadRequest, "invalid_ordering")
		return
	}
	if err != nil {
		log.Printf("[httpx] list category %d: %v", categoryID, err)
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	writeJSON(w, http.StatusOK, out)
}
