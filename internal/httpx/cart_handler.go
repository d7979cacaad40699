package httpx

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/ariefcatur/go-realtime-checkout/internal/cart"
	"github.com/ariefcatur/go-realtime-checkout/internal/orders"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type CartService interface {
	Add(ctx context.Context, userID, skuID int64, count int, selected bool) error
	Update(ctx context.Context, userID, skuID int64, count int, selected bool) error
	Delete(ctx context.Context, userID, skuID int64) error
	SelectAll(ctx context.Context, userID int64, selected bool) error
	List(ctx context.Context, userID int64) ([]cart.Entry, error)
}

type SKUReader interface {
	FindSKUs(ctx context.Context, ids []int64) ([]orders.SKU, error)
}

// CartHandler serves /cart. Routes expect RequireUser.
type CartHandler struct {
	Cart    CartService
	SKUs    SKUReader
	Timeout time.Duration
}

type CartItemReq struct {
	SKUID    int64 `json:"sku_id" validate:"required,gt=0"`
	Count    int   `json:"count" validate:"required,min=1"`
	Selected *bool `json:"selected"`
}

type CartDeleteReq struct {
	SKUID int64 `json:"sku_id" validate:"required,gt=0"`
}

type CartSelectReq struct {
	Selected *bool `json:"selected" validate:"required"`
}

type CartItem struct {
	ID              int64           `json:"id"`
	Name            string          `json:"name"`
	DefaultImageURL string          `json:"default_image_url"`
	Price           decimal.Decimal `json:"price"`
	Count           int             `json:"count"`
	Selected        bool            `json:"selected"`
}

func (h *CartHandler) Register(r chi.Router) {
	r.Get("/cart", h.list)
	r.Post("/cart", h.add)
	r.Put("/cart", h.update)
	r.Delete("/cart", h.delete)
	r.Put("/cart/selection", h.selectAll)
}

func (h *CartHandler) timeout() time.Duration {
	if h.Timeout > 0 {
		return h.Timeout
	}
	return 3 * time.Second
}

// checkStock answers false after writing the 400 when the sku is unknown or
// has fewer units than count.
func (h *CartHandler) checkStock(ctx context.Context, w http.ResponseWriter, skuID int64, count int) bool {
	skus, err := h.SKUs.FindSKUs(ctx, []int64{skuID})
	if err != nil {
		log.Printf("[httpx] find sku %d: %v", skuID, err)
		writeError(w, http.StatusInternalServerError, "internal_error")
		return false
	}
	if len(skus) == 0 {
		writeError(w, http.StatusBadRequest, "sku_not_found")
		return false
	}
	if count > skus[0].Stock {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":     "insufficient_stock",
			"sku_id":    skuID,
			"available": skus[0].Stock,
		})
		return false
	}
	return true
}

func (h *CartHandler) add(w http.ResponseWriter, r *http.Request) {
	var req CartItemReq
	if !bindJSON(w, r, &req) {
		return
	}
	selected := req.Selected == nil || *req.Selected
	uid := userID(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout())
	defer cancel()

	if !h.checkStock(ctx, w, req.SKUID, req.Count) {
		return
	}
	if err := h.Cart.Add(ctx, uid, req.SKUID, req.Count, selected); err != nil {
		h.cartError(w, uid, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"sku_id": req.SKUID, "count": req.Count, "selected": selected})
}

func (h *CartHandler) update(w http.ResponseWriter, r *http.Request) {
	var req CartItemReq
	if !bindJSON(w, r, &req) {
		return
	}
	selected := req.Selected == nil || *req.Selected
	uid := userID(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout())
	defer cancel()

	if !h.checkStock(ctx, w, req.SKUID, req.Count) {
		return
	}
	if err := h.Cart.Update(ctx, uid, req.SKUID, req.Count, selected); err != nil {
		h.cartError(w, uid, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sku_id": req.SKUID, "count": req.Count, "selected": selected})
}

func (h *CartHandler) delete(w http.ResponseWriter, r *http.Request) {
	var req CartDeleteReq
	if !bindJSON(w, r, &req) {
		return
	}
	uid := userID(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout())
	defer cancel()

	if err := h.Cart.Delete(ctx, uid, req.SKUID); err != nil {
		h.cartError(w, uid, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CartHandler) selectAll(w http.ResponseWriter, r *http.Request) {
	var req CartSelectReq
	if !bindJSON(w, r, &req) {
		return
	}
	uid := userID(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout())
	defer cancel()

	if err := h.Cart.SelectAll(ctx, uid, *req.Selected); err != nil {
		h.cartError(w, uid, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"selected": *req.Selected})
}

func (h *CartHandler) list(w http.ResponseWriter, r *http.Request) {
	uid := userID(r.Context())
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout())
	defer cancel()

	entries, err := h.Cart.List(ctx, uid)
	if err != nil {
		h.cartError(w, uid, err)
		return
	}
	out := make([]CartItem, 0, len(entries))
	if len(entries) == 0 {
		writeJSON(w, http.StatusOK, out)
		return
	}

	ids := make([]int64, len(entries))
	for i, e := range entries {
		ids[i] = e.SKUID
	}
	skus, err := h.SKUs.FindSKUs(ctx, ids)
	if err != nil {
		log.Printf("[httpx] cart skus user=%d: %v", uid, err)
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	byID := make(map[int64]orders.SKU, len(skus))
	for _, s := range skus {
		byID[s.ID] = s
	}
	// sku yang sudah dihapus dari katalog tidak ditampilkan
	for _, e := range entries {
		s, ok := byID[e.SKUID]
		if !ok {
			continue
		}
		out = append(out, CartItem{
			ID:              s.ID,
			Name:            s.Name,
			DefaultImageURL: s.DefaultImageURL,
			Price:           s.Price,
			Count:           e.Count,
			Selected:        e.Selected,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *CartHandler) cartError(w http.ResponseWriter, uid int64, err error) {
	if errors.Is(err, cart.ErrInvalidCount) {
		writeError(w, http.StatusBadRequest, "invalid_count")
		return
	}
	log.Printf("[httpx] cart user=%d: %v", uid, err)
	writeError(w, http.StatusInternalServerError, "internal_error")
}
