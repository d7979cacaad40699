package mocks

import (
	"context"

	"github.com/ariefcatur/go-realtime-checkout/internal/address"
	"github.com/ariefcatur/go-realtime-checkout/internal/cart"
	"github.com/ariefcatur/go-realtime-checkout/internal/catalog"
	"github.com/ariefcatur/go-realtime-checkout/internal/orders"
	"github.com/stretchr/testify/mock"
)

type MockOrderService struct {
	mock.Mock
}

type MockAddressChecker struct {
	mock.Mock
}

type MockCartService struct {
	mock.Mock
}

type MockSKUReader struct {
	mock.Mock
}

type MockSKULister struct {
	mock.Mock
}

func (m *MockOrderService) PlaceOrder(ctx context.Context, userID, addressID int64, pay orders.PayMethod) (*orders.Order, error) {
	args := m.Called(ctx, userID, addressID, pay)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*orders.Order), args.Error(1)
}

func (m *MockOrderService) Settlement(ctx context.Context, userID int64) (*orders.Settlement, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*orders.Settlement), args.Error(1)
}

func (m *MockOrderService) GetOrder(ctx context.Context, userID int64, orderID string) (*orders.Order, error) {
	args := m.Called(ctx, userID, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*orders.Order), args.Error(1)
}

func (m *MockAddressChecker) Owns(ctx context.Context, userID, addressID int64) (bool, error) {
	args := m.Called(ctx, userID, addressID)
	return args.Bool(0), args.Error(1)
}

func (m *MockCartService) Add(ctx context.Context, userID, skuID int64, count int, selected bool) error {
	args := m.Called(ctx, userID, skuID, count, selected)
	return args.Error(0)
}

func (m *MockCartService) Update(ctx context.Context, userID, skuID int64, count int, selected bool) error {
	args := m.Called(ctx, userID, skuID, count, selected)
	return args.Error(0)
}

func (m *MockCartService) Delete(ctx context.Context, userID, skuID int64) error {
	args := m.Called(ctx, userID, skuID)
	return args.Error(0)
}

func (m *MockCartService) SelectAll(ctx context.Context, userID int64, selected bool) error {
	args := m.Called(ctx, userID, selected)
	return args.Error(0)
}

func (m *MockCartService) List(ctx context.Context, userID int64) ([]cart.Entry, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]cart.Entry), args.Error(1)
}

func (m *MockSKUReader) FindSKUs(ctx context.Context, ids []int64) ([]orders.SKU, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]orders.SKU), args.Error(1)
}

func (m *MockSKULister) ListByCategory(ctx context.Context, categoryID int64, ordering string, page, pageSize int) (*catalog.Page, error) {
	args := m.Called(ctx, categoryID, ordering, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Page), args.Error(1)
}

type MockAddressService struct {
	mock.Mock
}

type MockHistoryStore struct {
	mock.Mock
}

func (m *MockAddressService) List(ctx context.Context, userID int64) ([]address.Address, int64, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]address.Address), args.Get(1).(int64), args.Error(2)
}

func (m *MockAddressService) Create(ctx context.Context, a *address.Address) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockAddressService) Update(ctx context.Context, a *address.Address) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockAddressService) Delete(ctx context.Context, userID, addressID int64) error {
	args := m.Called(ctx, userID, addressID)
	return args.Error(0)
}

func (m *MockAddressService) SetDefault(ctx context.Context, userID, addressID int64) error {
	args := m.Called(ctx, userID, addressID)
	return args.Error(0)
}

func (m *MockAddressService) SetTitle(ctx context.Context, userID, addressID int64, title string) error {
	args := m.Called(ctx, userID, addressID, title)
	return args.Error(0)
}

func (m *MockHistoryStore) Add(ctx context.Context, userID, skuID int64) error {
	args := m.Called(ctx, userID, skuID)
	return args.Error(0)
}

func (m *MockHistoryStore) List(ctx context.Context, userID int64) ([]int64, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}
