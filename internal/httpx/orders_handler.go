package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/ariefcatur/go-realtime-checkout/internal/orders"
	"github.com/ariefcatur/go-realtime-checkout/internal/redisx"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

type OrderService interface {
	PlaceOrder(ctx context.Context, userID, addressID int64, pay orders.PayMethod) (*orders.Order, error)
	Settlement(ctx context.Context, userID int64) (*orders.Settlement, error)
	GetOrder(ctx context.Context, userID int64, orderID string) (*orders.Order, error)
}

type AddressChecker interface {
	Owns(ctx context.Context, userID, addressID int64) (bool, error)
}

// OrdersHandler serves the checkout endpoints. Routes expect RequireUser.
type OrdersHandler struct {
	Orders    OrderService
	Addresses AddressChecker
	Redis     redis.Cmdable
	Timeout   time.Duration

	// lookups collapses concurrent status cache misses for one order.
	lookups singleflight.Group
}

type PlaceOrderReq struct {
	AddressID int64            `json:"address_id" validate:"required,gt=0"`
	PayMethod orders.PayMethod `json:"pay_method" validate:"required,oneof=1 2"`
}

type PlaceOrderResp struct {
	OrderID string `json:"order_id"`
}

// statusView is what order_status:{id} caches.
type statusView struct {
	OrderID    string        `json:"order_id"`
	UserID     int64         `json:"user_id"`
	Status     orders.Status `json:"status"`
	StatusName string        `json:"status_name"`
}

func (h *OrdersHandler) Register(r chi.Router) {
	r.Post("/orders", h.placeOrder)
	r.Get("/orders/settlement", h.settlement)
	r.Get("/orders/{id}", h.getOrder)
	r.Get("/orders/{id}/status", h.getStatus)
}

func (h *OrdersHandler) timeout() time.Duration {
	if h.Timeout > 0 {
		return h.Timeout
	}
	return 5 * time.Second
}

func (h *OrdersHandler) placeOrder(w http.ResponseWriter, r *http.Request) {
	var req PlaceOrderReq
	if !bindJSON(w, r, &req) {
		return
	}
	uid := userID(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout())
	defer cancel()

	ok, err := h.Addresses.Owns(ctx, uid, req.AddressID)
	if err != nil {
		log.Printf("[httpx] address check user=%d address=%d: %v", uid, req.AddressID, err)
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_address")
		return
	}

	order, err := h.Orders.PlaceOrder(ctx, uid, req.AddressID, req.PayMethod)
	if err != nil {
		writeOrderError(w, uid, err)
		return
	}

	// cache status supaya GET status cepat
	h.cacheStatus(ctx, order.OrderID, uid, order.Status)
	writeJSON(w, http.StatusCreated, PlaceOrderResp{OrderID: order.OrderID})
}

func writeOrderError(w http.ResponseWriter, uid int64, err error) {
	var (
		stockErr    *orders.InsufficientStockError
		notFoundErr *orders.NotFoundError
	)
	switch {
	case errors.As(err, &stockErr):
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":     "insufficient_stock",
			"sku_id":    stockErr.SKUID,
			"requested": stockErr.Requested,
			"available": stockErr.Available,
		})
	case errors.As(err, &notFoundErr):
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":  "sku_not_in_cart",
			"sku_id": notFoundErr.SKUID,
		})
	case errors.Is(err, orders.ErrInvalidPayMethod):
		writeError(w, http.StatusBadRequest, "invalid_pay_method")
	case errors.Is(err, orders.ErrEmptySelection):
		writeError(w, http.StatusBadRequest, "empty_selection")
	default:
		log.Printf("[httpx] place order user=%d: %v", uid, err)
		writeError(w, http.StatusInternalServerError, "order_placement_failed")
	}
}

func (h *OrdersHandler) settlement(w http.ResponseWriter, r *http.Request) {
	uid := userID(r.Context())
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout())
	defer cancel()

	s, err := h.Orders.Settlement(ctx, uid)
	if err != nil {
		var notFoundErr *orders.NotFoundError
		if errors.As(err, &notFoundErr) {
			writeOrderError(w, uid, err)
			return
		}
		log.Printf("[httpx] settlement user=%d: %v", uid, err)
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *OrdersHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")
	uid := userID(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout())
	defer cancel()

	o, err := h.Orders.GetOrder(ctx, uid, orderID)
	if errors.Is(err, orders.ErrOrderNotFound) {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}
	if err != nil {
		log.Printf("[httpx] get order %s: %v", orderID, err)
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) getStatus(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")
	uid := userID(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout())
	defer cancel()

	// 1) coba cache
	key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
	if b, err := h.Redis.Get(ctx, key).Bytes(); err == nil {
		var v statusView
		if json.Unmarshal(b, &v) == nil {
			if v.UserID != uid {
				writeError(w, http.StatusNotFound, "not_found")
				return
			}
			writeJSON(w, http.StatusOK, v)
			return
		}
	}

	// 2) fallback DB
	// lookup dipakai bersama, jadi tidak ikut batal kalau caller pertama pergi
	v, err, _ := h.lookups.Do(fmt.Sprintf("%d:%s", uid, orderID), func() (any, error) {
		lctx, lcancel := context.WithTimeout(context.WithoutCancel(ctx), h.timeout())
		defer lcancel()
		return h.Orders.GetOrder(lctx, uid, orderID)
	})
	if errors.Is(err, orders.ErrOrderNotFound) {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}
	if err != nil {
		log.Printf("[httpx] get status %s: %v", orderID, err)
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	o := v.(*orders.Order)
	writeJSON(w, http.StatusOK, h.cacheStatus(ctx, o.OrderID, o.UserID, o.Status))
}

func (h *OrdersHandler) cacheStatus(ctx context.Context, orderID string, uid int64, st orders.Status) statusView {
	v := statusView{OrderID: orderID, UserID: uid, Status: st, StatusName: st.String()}
	b, _ := json.Marshal(v)
	key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
	if err := h.Redis.Set(ctx, key, b, redisx.TTLStatusCache).Err(); err != nil {
		log.Printf("[httpx] cache status %s: %v", orderID, err)
	}
	return v
}
