package httpx

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/ariefcatur/go-realtime-checkout/internal/address"
	"github.com/go-chi/chi/v5"
)

type AddressService interface {
	List(ctx context.Context, userID int64) ([]address.Address, int64, error)
	Create(ctx context.Context, a *address.Address) error
	Update(ctx context.Context, a *address.Address) error
	Delete(ctx context.Context, userID, addressID int64) error
	SetDefault(ctx context.Context, userID, addressID int64) error
	SetTitle(ctx context.Context, userID, addressID int64, title string) error
}

// AddressHandler serves /addresses. Routes expect RequireUser.
type AddressHandler struct {
	Addresses AddressService
	Timeout   time.Duration
}

type AddressReq struct {
	Title      string `json:"title" validate:"omitempty,max=20"`
	Receiver   string `json:"receiver" validate:"required,max=20"`
	ProvinceID int64  `json:"province_id" validate:"required,gt=0"`
	CityID     int64  `json:"city_id" validate:"required,gt=0"`
	DistrictID int64  `json:"district_id" validate:"required,gt=0"`
	Place      string `json:"place" validate:"required,max=50"`
	Mobile     string `json:"mobile" validate:"required,mobile"`
	Tel        string `json:"tel" validate:"omitempty,max=20"`
	Email      string `json:"email" validate:"omitempty,email,max=30"`
}

type AddressTitleReq struct {
	Title string `json:"title" validate:"required,max=20"`
}

func (h *AddressHandler) Register(r chi.Router) {
	r.Get("/addresses", h.list)
	r.Post("/addresses", h.create)
	r.Put("/addresses/{id}", h.update)
	r.Delete("/addresses/{id}", h.delete)
	r.Put("/addresses/{id}/status", h.setDefault)
	r.Put("/addresses/{id}/title", h.setTitle)
}

func (h *AddressHandler) timeout() time.Duration {
	if h.Timeout > 0 {
		return h.Timeout
	}
	return 3 * time.Second
}

func (req AddressReq) toAddress(uid int64) *address.Address {
	return &address.Address{
		UserID:     uid,
		Title:      req.Title,
		Receiver:   req.Receiver,
		ProvinceID: req.ProvinceID,
		CityID:     req.CityID,
		DistrictID: req.DistrictID,
		Place:      req.Place,
		Mobile:     req.Mobile,
		Tel:        req.Tel,
		Email:      req.Email,
	}
}

// pathID parses {id}; on failure it writes the 400 and returns false.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_id")
		return 0, false
	}
	return id, true
}

func (h *AddressHandler) list(w http.ResponseWriter, r *http.Request) {
	uid := userID(r.Context())
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout())
	defer cancel()

	list, defaultID, err := h.Addresses.List(ctx, uid)
	if err != nil {
		h.addressError(w, uid, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"user_id":            uid,
		"default_address_id": defaultID,
		"limit":              address.MaxPerUser,
		"addresses":          list,
	})
}

func (h *AddressHandler) create(w http.ResponseWriter, r *http.Request) {
	var req AddressReq
	if !bindJSON(w, r, &req) {
		return
	}
	uid := userID(r.Context())
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout())
	defer cancel()

	a := req.toAddress(uid)
	if err := h.Addresses.Create(ctx, a); err != nil {
		h.addressError(w, uid, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

func (h *AddressHandler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req AddressReq
	if !bindJSON(w, r, &req) {
		return
	}
	uid := userID(r.Context())
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout())
	defer cancel()

	a := req.toAddress(uid)
	a.ID = id
	if err := h.Addresses.Update(ctx, a); err != nil {
		h.addressError(w, uid, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *AddressHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	uid := userID(r.Context())
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout())
	defer cancel()

	if err := h.Addresses.Delete(ctx, uid, id); err != nil {
		h.addressError(w, uid, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AddressHandler) setDefault(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	uid := userID(r.Context())
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout())
	defer cancel()

	if err := h.Addresses.SetDefault(ctx, uid, id); err != nil {
		h.addressError(w, uid, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "OK"})
}

func (h *AddressHandler) setTitle(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req AddressTitleReq
	if !bindJSON(w, r, &req) {
		return
	}
	uid := userID(r.Context())
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout())
	defer cancel()

	if err := h.Addresses.SetTitle(ctx, uid, id, req.Title); err != nil {
		h.addressError(w, uid, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "title": req.Title})
}

func (h *AddressHandler) addressError(w http.ResponseWriter, uid int64, err error) {
	switch {
	case errors.Is(err, address.ErrNotFound):
		writeError(w, http.StatusNotFound, "address_not_found")
	case errors.Is(err, address.ErrLimitReached):
		writeError(w, http.StatusBadRequest, "address_limit_reached")
	default:
		log.Printf("[httpx] address user=%d: %v", uid, err)
		writeError(w, http.StatusInternalServerError, "internal_error")
	}
}
