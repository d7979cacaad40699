package httpx

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/ariefcatur/go-realtime-checkout/internal/catalog"
	"github.com/ariefcatur/go-realtime-checkout/internal/mocks"
	"github.com/ariefcatur/go-realtime-checkout/internal/orders"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCatalogHandler_List(t *testing.T) {
	skus := new(mocks.MockSKULister)
	skus.On("ListByCategory", mock.Anything, int64(115), "-sales", 2, 10).Return(&catalog.Page{
		Count:   11,
		Results: []catalog.Item{{SKU: orders.SKU{ID: 3, Name: "Laptop"}}},
	}, nil)
	skus.On("ListByCategory", mock.Anything, int64(115), "name", 0, 0).
		Return(nil, fmt.Errorf("%w: %q", catalog.ErrBadOrdering, "name"))

	r := NewRouter(0)
	(&CatalogHandler{SKUs: skus}).Register(r)

	rec := do(r, http.MethodGet, "/categories/115/skus?ordering=-sales&page=2&page_size=10", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.EqualValues(t, 11, body["count"])
	assert.Len(t, body["results"], 1)

	rec = do(r, http.MethodGet, "/categories/115/skus?ordering=name", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_ordering", decodeBody(t, rec)["error"])

	rec = do(r, http.MethodGet, "/categories/abc/skus", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	skus.AssertExpectations(t)
}
