package httpx

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/ariefcatur/go-realtime-checkout/internal/orders"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type HistoryStore interface {
	Add(ctx context.Context, userID, skuID int64) error
	List(ctx context.Context, userID int64) ([]int64, error)
}

// HistoryHandler serves /browse_histories. Routes expect RequireUser.
type HistoryHandler struct {
	History HistoryStore
	SKUs    SKUReader
	Timeout time.Duration
}

type HistoryReq struct {
	SKUID int64 `json:"sku_id" validate:"required,gt=0"`
}

type HistoryItem struct {
	ID              int64           `json:"id"`
	Name            string          `json:"name"`
	Price           decimal.Decimal `json:"price"`
	DefaultImageURL string          `json:"default_image_url"`
}

func (h *HistoryHandler) Register(r chi.Router) {
	r.Get("/browse_histories", h.list)
	r.Post("/browse_histories", h.add)
}

func (h *HistoryHandler) timeout() time.Duration {
	if h.Timeout > 0 {
		return h.Timeout
	}
	return 3 * time.Second
}

func (h *HistoryHandler) add(w http.ResponseWriter, r *http.Request) {
	var req HistoryReq
	if !bindJSON(w, r, &req) {
		return
	}
	uid := userID(r.Context())
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout())
	defer cancel()

	skus, err := h.SKUs.FindSKUs(ctx, []int64{req.SKUID})
	if err != nil {
		log.Printf("[httpx] find sku %d: %v", req.SKUID, err)
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	if len(skus) == 0 {
		writeError(w, http.StatusBadRequest, "sku_not_found")
		return
	}
	if err := h.History.Add(ctx, uid, req.SKUID); err != nil {
		log.Printf("[httpx] history add user=%d: %v", uid, err)
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"sku_id": req.SKUID})
}

func (h *HistoryHandler) list(w http.ResponseWriter, r *http.Request) {
	uid := userID(r.Context())
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout())
	defer cancel()

	ids, err := h.History.List(ctx, uid)
	if err != nil {
		log.Printf("[httpx] history list user=%d: %v", uid, err)
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	out := make([]HistoryItem, 0, len(ids))
	if len(ids) == 0 {
		writeJSON(w, http.StatusOK, out)
		return
	}

	skus, err := h.SKUs.FindSKUs(ctx, ids)
	if err != nil {
		log.Printf("[httpx] history skus user=%d: %v", uid, err)
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	byID := make(map[int64]orders.SKU, len(skus))
	for _, s := range skus {
		byID[s.ID] = s
	}
	// urutan mengikuti history, bukan urutan dari db
	for _, id := range ids {
		s, ok := byID[id]
		if !ok {
			continue
		}
		out = append(out, HistoryItem{ID: s.ID, Name: s.Name, Price: s.Price, DefaultImageURL: s.DefaultImageURL})
	}
	writeJSON(w, http.StatusOK, out)
}
