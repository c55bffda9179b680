package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/Hikikomori041/techno-web-groupe10-sub000/internal/domain/model"
	repo "github.com/Hikikomori041/techno-web-groupe10-sub000/internal/repository"
	"github.com/Hikikomori041/techno-web-groupe10-sub000/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newCartUsecase() (*usecase.CartUsecase, *CartItemRepoMock, *ProductRepoMock, *CleanerMock) {
	cartItems := new(CartItemRepoMock)
	products := new(ProductRepoMock)
	cleaner := new(CleanerMock)
	return usecase.NewCartUsecase(cartItems, products, cleaner), cartItems, products, cleaner
}

func TestCartUsecase_GetCart_Empty(t *testing.T) {
	uc, cartItems, _, _ := newCartUsecase()
	ctx := context.Background()

	cartItems.On("ListByUserID", ctx, int64(1)).Return([]model.CartItem{}, nil).Once()

	out, err := uc.GetCart(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, out.Items)
	assert.NotNil(t, out.Items)
	assert.True(t, out.Total.IsZero())
	assert.Equal(t, int64(0), out.ItemCount)
}

func TestCartUsecase_GetCart_TotalsAndOrphans(t *testing.T) {
	uc, cartItems, products, cleaner := newCartUsecase()
	ctx := context.Background()
	added := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	cartItems.On("ListByUserID", ctx, int64(1)).Return([]model.CartItem{
		{ID: 11, UserID: 1, ProductID: 100, Quantity: 2, CreatedAt: added},
		{ID: 12, UserID: 1, ProductID: 200, Quantity: 3, CreatedAt: added},
		{ID: 13, UserID: 1, ProductID: 999, Quantity: 1, CreatedAt: added},
	}, nil).Once()
	products.On("FindByIDs", ctx, []int64{100, 200, 999}).Return([]model.Product{
		{ID: 100, Name: "Keyboard", Price: decimal.NewFromInt(50), Stock: 10, Images: []string{"a.png", "b.png"}},
		{ID: 200, Name: "Mouse", Price: decimal.RequireFromString("9.99"), Stock: 5},
	}, nil).Once()
	cleaner.On("Schedule", []int64{13}).Return().Once()

	out, err := uc.GetCart(ctx, 1)
	require.NoError(t, err)
	require.Len(t, out.Items, 2)

	assert.Equal(t, "a.png", out.Items[0].Image)
	assert.True(t, out.Items[0].Subtotal.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, "", out.Items[1].Image)
	assert.True(t, out.Items[1].Subtotal.Equal(decimal.RequireFromString("29.97")))
	assert.True(t, out.Total.Equal(decimal.RequireFromString("129.97")))
	assert.Equal(t, int64(5), out.ItemCount)
	assert.Equal(t, added, out.Items[0].AddedAt)

	cleaner.AssertExpectations(t)
}

func TestCartUsecase_AddToCart_DefaultQuantityIsOne(t *testing.T) {
	uc, cartItems, products, _ := newCartUsecase()
	ctx := context.Background()

	products.On("FindByID", ctx, int64(100)).Return(model.Product{ID: 100, Price: decimal.NewFromInt(10), Stock: 1}, nil).Once()
	cartItems.On("Upsert", ctx, int64(1), int64(100), int64(1)).Return(nil).Once()
	cartItems.On("ListByUserID", ctx, int64(1)).Return([]model.CartItem{
		{ID: 1, UserID: 1, ProductID: 100, Quantity: 1},
	}, nil).Once()
	products.On("FindByIDs", ctx, []int64{100}).Return([]model.Product{
		{ID: 100, Name: "Cable", Price: decimal.NewFromInt(10), Stock: 1},
	}, nil).Once()

	out, err := uc.AddToCart(ctx, 1, usecase.AddCartInput{ProductID: 100})
	require.NoError(t, err)
	assert.Equal(t, int64(1), out.ItemCount)
	cartItems.AssertExpectations(t)
}

func TestCartUsecase_AddToCart_InsufficientStock_NoUpsert(t *testing.T) {
	uc, cartItems, products, _ := newCartUsecase()
	ctx := context.Background()

	products.On("FindByID", ctx, int64(100)).Return(model.Product{ID: 100, Stock: 2}, nil).Once()

	_, err := uc.AddToCart(ctx, 1, usecase.AddCartInput{ProductID: 100, Quantity: int64Ptr(3)})
	assertErrContains(t, err, "insufficient stock")
	cartItems.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCartUsecase_AddToCart_InvalidQuantity(t *testing.T) {
	uc, _, _, _ := newCartUsecase()

	_, err := uc.AddToCart(context.Background(), 1, usecase.AddCartInput{ProductID: 100, Quantity: int64Ptr(0)})
	assertErrContains(t, err, "quantity must be >= 1")
}

func TestCartUsecase_AddToCart_ProductNotFound(t *testing.T) {
	uc, _, products, _ := newCartUsecase()
	ctx := context.Background()

	products.On("FindByID", ctx, int64(5)).Return(model.Product{}, repo.ErrNotFound).Once()

	_, err := uc.AddToCart(ctx, 1, usecase.AddCartInput{ProductID: 5})
	he, ok := usecase.AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, 404, he.Status)
}

func TestCartUsecase_UpdateQuantity_ZeroRemoves(t *testing.T) {
	uc, cartItems, _, _ := newCartUsecase()
	ctx := context.Background()

	cartItems.On("DeleteByUserAndProduct", ctx, int64(1), int64(100)).Return(nil).Once()
	cartItems.On("ListByUserID", ctx, int64(1)).Return([]model.CartItem{}, nil).Once()

	out, err := uc.UpdateQuantity(ctx, 1, 100, 0)
	require.NoError(t, err)
	assert.Empty(t, out.Items)
	cartItems.AssertExpectations(t)
}

func TestCartUsecase_UpdateQuantity_NotInCart(t *testing.T) {
	uc, cartItems, products, _ := newCartUsecase()
	ctx := context.Background()

	products.On("FindByID", ctx, int64(100)).Return(model.Product{ID: 100, Stock: 10}, nil).Once()
	cartItems.On("UpdateQuantity", ctx, int64(1), int64(100), int64(4)).Return(repo.ErrNotFound).Once()

	_, err := uc.UpdateQuantity(ctx, 1, 100, 4)
	assertErrContains(t, err, "item not in cart")
}

func TestCartUsecase_RemoveItem_NotInCart(t *testing.T) {
	uc, cartItems, _, _ := newCartUsecase()
	ctx := context.Background()

	cartItems.On("DeleteByUserAndProduct", ctx, int64(1), int64(100)).Return(repo.ErrNotFound).Once()

	_, err := uc.RemoveItem(ctx, 1, 100)
	assertErrContains(t, err, "item not in cart")
}

func TestCartUsecase_ClearCart_Empty_OK(t *testing.T) {
	uc, cartItems, _, _ := newCartUsecase()
	ctx := context.Background()

	cartItems.On("DeleteByUserID", ctx, int64(1)).Return(nil).Once()

	out, err := uc.ClearCart(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, out.Items)
	assert.True(t, out.Total.IsZero())
}
