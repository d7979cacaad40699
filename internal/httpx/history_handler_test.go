package httpx

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/ariefcatur/go-realtime-checkout/internal/history"
	"github.com/ariefcatur/go-realtime-checkout/internal/mocks"
	"github.com/ariefcatur/go-realtime-checkout/internal/orders"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newHistoryRouter(hs HistoryStore, skus SKUReader) *chi.Mux {
	h := &HistoryHandler{History: hs, SKUs: skus, Timeout: time.Second}
	r := NewRouter(time.Second)
	r.Group(func(r chi.Router) {
		r.Use(RequireUser)
		h.Register(r)
	})
	return r
}

func TestHistoryHandler_Add(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		setupMocks   func(*mocks.MockHistoryStore, *mocks.MockSKUReader)
		expectedCode int
		expectedErr  string
	}{
		{
			name: "recorded",
			body: `{"sku_id":3}`,
			setupMocks: func(hs *mocks.MockHistoryStore, skus *mocks.MockSKUReader) {
				skus.On("FindSKUs", mock.Anything, []int64{3}).Return([]orders.SKU{{ID: 3}}, nil)
				hs.On("Add", mock.Anything, int64(42), int64(3)).Return(nil)
			},
			expectedCode: http.StatusCreated,
		},
		{
			name: "unknown sku",
			body: `{"sku_id":99}`,
			setupMocks: func(hs *mocks.MockHistoryStore, skus *mocks.MockSKUReader) {
				skus.On("FindSKUs", mock.Anything, []int64{99}).Return([]orders.SKU{}, nil)
			},
			expectedCode: http.StatusBadRequest,
			expectedErr:  "sku_not_found",
		},
		{
			name:         "missing sku",
			body:         `{}`,
			expectedCode: http.StatusBadRequest,
			expectedErr:  "validation_failed",
		},
		{
			name: "redis down",
			body: `{"sku_id":3}`,
			setupMocks: func(hs *mocks.MockHistoryStore, skus *mocks.MockSKUReader) {
				skus.On("FindSKUs", mock.Anything, []int64{3}).Return([]orders.SKU{{ID: 3}}, nil)
				hs.On("Add", mock.Anything, int64(42), int64(3)).Return(errors.New("dial tcp: refused"))
			},
			expectedCode: http.StatusInternalServerError,
			expectedErr:  "internal_error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hs := new(mocks.MockHistoryStore)
			skus := new(mocks.MockSKUReader)
			if tt.setupMocks != nil {
				tt.setupMocks(hs, skus)
			}

			rec := do(newHistoryRouter(hs, skus), http.MethodPost, "/browse_histories", tt.body, "42")
			assert.Equal(t, tt.expectedCode, rec.Code)
			if tt.expectedErr != "" {
				assert.Equal(t, tt.expectedErr, decodeBody(t, rec)["error"])
			}
			hs.AssertExpectations(t)
			skus.AssertExpectations(t)
		})
	}
}

// List keeps history order even though the db returns skus by id.
func TestHistoryHandler_ListWithStore(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	store := &history.Store{Redis: rdb}

	skus := new(mocks.MockSKUReader)
	skus.On("FindSKUs", mock.Anything, []int64{1}).Return([]orders.SKU{{ID: 1}}, nil).Once()
	skus.On("FindSKUs", mock.Anything, []int64{2}).Return([]orders.SKU{{ID: 2}}, nil).Once()
	skus.On("FindSKUs", mock.Anything, []int64{2, 1}).Return([]orders.SKU{
		{ID: 1, Name: "Phone", Price: decimal.NewFromInt(20)},
		{ID: 2, Name: "Case", Price: decimal.NewFromInt(3)},
	}, nil).Once()
	r := newHistoryRouter(store, skus)

	rec := do(r, http.MethodGet, "/browse_histories", "", "42")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	require.Equal(t, http.StatusCreated, do(r, http.MethodPost, "/browse_histories", `{"sku_id":1}`, "42").Code)
	require.Equal(t, http.StatusCreated, do(r, http.MethodPost, "/browse_histories", `{"sku_id":2}`, "42").Code)

	rec = do(r, http.MethodGet, "/browse_histories", "", "42")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[
		{"id":2,"name":"Case","price":"3","default_image_url":""},
		{"id":1,"name":"Phone","price":"20","default_image_url":""}
	]`, rec.Body.String())
	skus.AssertExpectations(t)
}
